package testutil

import (
	"sync"
	"time"

	"github.com/timesync-io/timesync/internal/transport"
)

// SimTransport simulates a reference clock peer with a fixed remote
// offset and asymmetric one-way latencies. Pong timestamps are derived
// deterministically from the ping's t0; delivery is scheduled after
// the simulated round trip so pongs arrive asynchronously like on a
// real network.
type SimTransport struct {
	// RemoteOffset is how far the remote clock runs ahead of the
	// local one, in milliseconds.
	RemoteOffset float64

	// UpLatency and DownLatency are the one-way network delays in
	// milliseconds.
	UpLatency   float64
	DownLatency float64

	// ProcessingTime is the remote hold time between receive and send.
	ProcessingTime float64

	// Drop decides whether a ping is silently lost. Nil drops nothing.
	Drop func(id string) bool

	// Deliver overrides pong delivery scheduling; nil uses
	// time.AfterFunc with the simulated round-trip latency.
	Deliver func(delay time.Duration, fn func())

	mu   sync.Mutex
	cb   func(transport.Pong)
	sent []transport.Ping
}

// SendPing computes the four timestamps for this exchange and
// schedules the pong.
func (s *SimTransport) SendPing(p transport.Ping) error {
	s.mu.Lock()
	s.sent = append(s.sent, p)
	drop := s.Drop
	cb := s.cb
	deliver := s.Deliver
	s.mu.Unlock()

	if drop != nil && drop(p.ID) {
		return nil
	}
	if cb == nil {
		return nil
	}

	t1 := p.T0 + s.UpLatency + s.RemoteOffset
	t2 := t1 + s.ProcessingTime
	t3 := p.T0 + s.UpLatency + s.ProcessingTime + s.DownLatency

	pong := transport.Pong{T0: p.T0, T1: t1, T2: t2, T3: t3, ID: p.ID}

	total := time.Duration((s.UpLatency + s.ProcessingTime + s.DownLatency) * float64(time.Millisecond))
	if deliver != nil {
		deliver(total, func() { cb(pong) })
	} else {
		time.AfterFunc(total, func() { cb(pong) })
	}

	return nil
}

// OnPong registers the pong callback.
func (s *SimTransport) OnPong(cb func(transport.Pong)) {
	s.mu.Lock()
	s.cb = cb
	s.mu.Unlock()
}

// SentPings returns a copy of the pings sent so far.
func (s *SimTransport) SentPings() []transport.Ping {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transport.Ping, len(s.sent))
	copy(out, s.sent)
	return out
}

// DeliverNow makes pong delivery synchronous: the callback runs inside
// SendPing. Useful for deterministic engine tests.
func DeliverNow(_ time.Duration, fn func()) {
	fn()
}
