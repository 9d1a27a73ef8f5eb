package slew

import (
	"sync"

	"github.com/timesync-io/timesync/pkg/mathutil"
)

// StepClock implements SteppedClock. Each read (and each explicit
// Step) moves the applied offset toward the target by at most rate
// milliseconds, then returns real time plus the applied offset,
// clamped to the last returned value. Large corrections are therefore
// walked down in bounded increments without the exposed value ever
// moving backward.
type StepClock struct {
	mu sync.Mutex

	clock   Clock
	rate    float64
	offset  float64
	target  float64
	lastNow float64
}

// NewStepClock creates a StepClock with the given per-step slew rate
// in milliseconds.
func NewStepClock(clock Clock, rate float64) *StepClock {
	return &StepClock{
		clock:   clock,
		rate:    rate,
		lastNow: clock.Now(),
	}
}

// SetTargetOffset sets the offset the clock converges toward.
func (c *StepClock) SetTargetOffset(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = offset
}

// Step applies one bounded correction without reading the clock.
// Called by the engine on every timer tick so convergence continues
// even when nobody reads the wall clock.
func (c *StepClock) Step() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stepLocked()
}

func (c *StepClock) stepLocked() {
	diff := c.target - c.offset
	if diff == 0 {
		return
	}
	c.offset += mathutil.Min(mathutil.Abs(diff), c.rate) * mathutil.Sign(diff)
}

// Now applies one correction step and returns real time plus the
// applied offset, never smaller than the previous reading.
func (c *StepClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stepLocked()

	candidate := c.clock.Now() + c.offset
	candidate = mathutil.Max(candidate, c.lastNow)
	c.lastNow = candidate
	return candidate
}

// Offset returns the currently applied offset in milliseconds.
func (c *StepClock) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}
