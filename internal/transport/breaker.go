package transport

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/timesync-io/timesync/pkg/logger"
)

// BreakerConfig holds circuit breaker settings for ping sends.
type BreakerConfig struct {
	// MaxRequests is the number of probe sends allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period over which the closed-state
	// failure counts are cleared.
	Interval time.Duration

	// Timeout is the open-state duration before probing resumes.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker
	// once at least three sends have been observed.
	FailureThreshold float64
}

// DefaultBreakerConfig returns the breaker settings used when none are
// configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
	}
}

// BreakerTransport wraps a Transport with a circuit breaker so that a
// dead peer stops consuming sends: after repeated failures the breaker
// opens and pings are dropped locally until the probe window.
type BreakerTransport struct {
	inner   Transport
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerTransport wraps the given transport.
func NewBreakerTransport(inner Transport, cfg BreakerConfig) *BreakerTransport {
	if cfg.MaxRequests == 0 {
		cfg = DefaultBreakerConfig()
	}

	settings := gobreaker.Settings{
		Name:        "timesync-ping",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.InfoFields("transport", "Ping circuit breaker state change", map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}

	return &BreakerTransport{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// SendPing forwards the ping through the breaker.
func (t *BreakerTransport) SendPing(p Ping) error {
	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, t.inner.SendPing(p)
	})
	return err
}

// OnPong forwards callback registration to the wrapped transport.
func (t *BreakerTransport) OnPong(cb func(Pong)) {
	t.inner.OnPong(cb)
}

// State returns the current breaker state for observability.
func (t *BreakerTransport) State() gobreaker.State {
	return t.breaker.State()
}
