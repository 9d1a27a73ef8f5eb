package transport

import (
	"sync"
	"time"

	"github.com/beevik/ntp"

	"github.com/timesync-io/timesync/pkg/logger"
	"github.com/timesync-io/timesync/pkg/mathutil"
)

// NTPTransport answers pings by querying a real NTP server, so the
// engine can synchronize against public time sources without a
// cooperating peer. The measured offset and RTT are folded back into a
// four-timestamp pong that reproduces them exactly:
//
//	t1 = t0 + rtt/2 + offset
//	t2 = t3 - rtt/2 + offset
//
// A lost or failed query produces no pong; the engine's periodic timer
// naturally retries with the next ping.
type NTPTransport struct {
	server  string
	timeout time.Duration
	version int

	cbMu sync.RWMutex
	cb   func(Pong)
}

// NTPOptions configures an NTP transport.
type NTPOptions struct {
	Timeout time.Duration // query timeout, default 5s
	Version int           // NTP protocol version, default 4
}

// NewNTPTransport creates a transport backed by the given NTP server.
func NewNTPTransport(server string, opts NTPOptions) *NTPTransport {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Version == 0 {
		opts.Version = 4
	}

	return &NTPTransport{
		server:  server,
		timeout: opts.Timeout,
		version: opts.Version,
	}
}

// SendPing launches an NTP query. The query runs asynchronously, like
// a network round trip, and delivers its pong through the registered
// callback.
func (t *NTPTransport) SendPing(p Ping) error {
	go t.query(p)
	return nil
}

// OnPong registers the pong callback.
func (t *NTPTransport) OnPong(cb func(Pong)) {
	t.cbMu.Lock()
	t.cb = cb
	t.cbMu.Unlock()
}

func (t *NTPTransport) query(p Ping) {
	opts := ntp.QueryOptions{
		Timeout: t.timeout,
		Version: t.version,
	}

	resp, err := ntp.QueryWithOptions(t.server, opts)
	if err != nil {
		logger.DebugFields("transport", "NTP query failed", map[string]interface{}{
			"server": t.server,
			"error":  err.Error(),
		})
		return
	}

	t3 := systemMillis()
	rtt := mathutil.DurationMillis(resp.RTT)
	offset := mathutil.DurationMillis(resp.ClockOffset)

	pong := synthesizePong(p, t3, rtt, offset)

	t.cbMu.RLock()
	cb := t.cb
	t.cbMu.RUnlock()

	if cb != nil {
		cb(pong)
	}
}

// synthesizePong builds a four-timestamp pong whose derived RTT and
// offset match the values measured by the NTP query.
func synthesizePong(p Ping, t3, rtt, offset float64) Pong {
	return Pong{
		T0: p.T0,
		T1: p.T0 + rtt/2 + offset,
		T2: t3 - rtt/2 + offset,
		T3: t3,
		ID: p.ID,
	}
}
