// Package testutil provides shared test doubles for the sync engine:
// a manually advanced clock, a simulated transport with configurable
// latency and remote offset, and Prometheus metric assertions.
package testutil

import "sync"

// ManualClock is a Clock whose time only moves when the test says so.
// Times are float64 milliseconds.
type ManualClock struct {
	mu  sync.Mutex
	now float64
}

// NewManualClock creates a manual clock starting at the given time.
func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms milliseconds.
func (c *ManualClock) Advance(ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
}

// Set jumps the clock to an absolute time. Used to simulate suspend
// gaps.
func (c *ManualClock) Set(ms float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = ms
}
