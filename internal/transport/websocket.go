package transport

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/timesync-io/timesync/pkg/logger"
)

// wireMessage is the JSON frame exchanged over the socket. A ping
// carries only t0; the peer fills in t1/t2 and the receive side stamps
// t3 locally.
type wireMessage struct {
	Type string  `json:"type"`
	ID   string  `json:"id"`
	T0   float64 `json:"t0"`
	T1   float64 `json:"t1,omitempty"`
	T2   float64 `json:"t2,omitempty"`
}

// WSTransport implements Transport over a WebSocket connection. A
// single read pump goroutine delivers pongs to the callback in arrival
// order.
type WSTransport struct {
	conn    *websocket.Conn
	limiter *rate.Limiter
	clock   func() float64

	writeMu sync.Mutex

	cbMu sync.RWMutex
	cb   func(Pong)

	closeOnce sync.Once
	done      chan struct{}
}

// WSOptions configures a WebSocket transport.
type WSOptions struct {
	// PingsPerSecond caps the outbound ping rate; 0 disables limiting.
	PingsPerSecond float64
	// Burst is the limiter burst size; defaults to 1 when limiting is
	// enabled.
	Burst int
	// NowMillis overrides the local receive clock; used by tests.
	NowMillis func() float64
}

// DialWebSocket connects to a reference clock peer and starts the read
// pump.
func DialWebSocket(url string, opts WSOptions) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s failed: %w", url, err)
	}
	return NewWSTransport(conn, opts), nil
}

// NewWSTransport wraps an established connection. Ownership of the
// connection passes to the transport.
func NewWSTransport(conn *websocket.Conn, opts WSOptions) *WSTransport {
	var limiter *rate.Limiter
	if opts.PingsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.PingsPerSecond), burst)
	}

	clock := opts.NowMillis
	if clock == nil {
		clock = systemMillis
	}

	t := &WSTransport{
		conn:    conn,
		limiter: limiter,
		clock:   clock,
		done:    make(chan struct{}),
	}
	go t.readPump()
	return t
}

// SendPing writes a ping frame. Sends beyond the configured rate are
// rejected with ErrRateLimited rather than queued, so a misconfigured
// timer cannot flood the peer.
func (t *WSTransport) SendPing(p Ping) error {
	if t.limiter != nil && !t.limiter.Allow() {
		return ErrRateLimited
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	msg := wireMessage{Type: "ping", ID: p.ID, T0: p.T0}
	if err := t.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("websocket ping write failed: %w", err)
	}
	return nil
}

// OnPong registers the pong callback. The engine registers exactly one
// callback at construction.
func (t *WSTransport) OnPong(cb func(Pong)) {
	t.cbMu.Lock()
	t.cb = cb
	t.cbMu.Unlock()
}

// Close shuts the connection down and stops the read pump. Idempotent.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

func (t *WSTransport) readPump() {
	for {
		var msg wireMessage
		if err := t.conn.ReadJSON(&msg); err != nil {
			select {
			case <-t.done:
			default:
				logger.Debugf("transport", "websocket read ended: %v", err)
			}
			return
		}

		if msg.Type != "pong" {
			continue
		}

		t3 := t.clock()

		t.cbMu.RLock()
		cb := t.cb
		t.cbMu.RUnlock()

		if cb != nil {
			cb(Pong{T0: msg.T0, T1: msg.T1, T2: msg.T2, T3: t3, ID: msg.ID})
		}
	}
}
