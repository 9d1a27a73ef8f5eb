package transport

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport records sends and fails on demand.
type stubTransport struct {
	mu    sync.Mutex
	fail  bool
	sent  []Ping
	cb    func(Pong)
}

func (s *stubTransport) SendPing(p Ping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("peer unreachable")
	}
	s.sent = append(s.sent, p)
	return nil
}

func (s *stubTransport) OnPong(cb func(Pong)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

func (s *stubTransport) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestBreakerTransport_PassesThrough(t *testing.T) {
	stub := &stubTransport{}
	bt := NewBreakerTransport(stub, DefaultBreakerConfig())

	require.NoError(t, bt.SendPing(Ping{T0: 1, ID: "1"}))
	require.NoError(t, bt.SendPing(Ping{T0: 2, ID: "2"}))

	assert.Equal(t, 2, stub.sentCount())
	assert.Equal(t, gobreaker.StateClosed, bt.State())
}

func TestBreakerTransport_OpensAfterFailures(t *testing.T) {
	stub := &stubTransport{fail: true}
	bt := NewBreakerTransport(stub, BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
	})

	for i := 0; i < 3; i++ {
		assert.Error(t, bt.SendPing(Ping{T0: float64(i)}))
	}

	assert.Equal(t, gobreaker.StateOpen, bt.State())

	// While open the inner transport is not reached.
	before := stub.sentCount()
	assert.Error(t, bt.SendPing(Ping{T0: 99}))
	assert.Equal(t, before, stub.sentCount())
}

func TestBreakerTransport_ZeroConfigUsesDefaults(t *testing.T) {
	stub := &stubTransport{}
	bt := NewBreakerTransport(stub, BreakerConfig{})

	require.NoError(t, bt.SendPing(Ping{T0: 1}))
	assert.Equal(t, gobreaker.StateClosed, bt.State())
}

func TestBreakerTransport_ForwardsOnPong(t *testing.T) {
	stub := &stubTransport{}
	bt := NewBreakerTransport(stub, DefaultBreakerConfig())

	called := false
	bt.OnPong(func(Pong) { called = true })

	require.NotNil(t, stub.cb)
	stub.cb(Pong{})
	assert.True(t, called)
}
