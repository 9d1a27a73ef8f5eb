// Package transport carries ping/pong exchanges for the sync engine.
// The engine only depends on the Transport contract; this package
// provides a WebSocket implementation, an adapter that answers pings
// with real NTP queries, and a circuit breaker decorator.
package transport

import (
	"errors"
	"time"
)

// Ping is the client half of a four-timestamp exchange: the local send
// time and a monotonically incrementing identifier.
type Ping struct {
	T0 float64 `json:"t0"`
	ID string  `json:"id"`
}

// Pong carries all four timestamps back to the engine. T1 is the
// remote receive time, T2 the remote send time, T3 the local receive
// time. Timestamps are float64 milliseconds.
type Pong struct {
	T0 float64 `json:"t0"`
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
	T3 float64 `json:"t3"`
	ID string  `json:"id"`
}

// Transport delivers pings to a remote reference clock and pongs back
// to the registered callback. Pongs are delivered in arrival order;
// the transport does not correlate a pong to a specific outstanding
// ping. Implementations must tolerate OnPong being called exactly once
// before the first SendPing.
type Transport interface {
	SendPing(p Ping) error
	OnPong(cb func(Pong))
}

// ErrRateLimited is returned by SendPing when the outbound ping rate
// limiter rejects the send.
var ErrRateLimited = errors.New("transport: ping rate limit exceeded")

func systemMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
