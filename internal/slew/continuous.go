package slew

import (
	"sync"

	"github.com/timesync-io/timesync/pkg/mathutil"
)

// DefaultConvergenceThreshold is the gap in milliseconds below which
// the continuous clock considers itself caught up and runs at real
// time rate.
const DefaultConvergenceThreshold = 0.001

// ScaleClock implements ContinuousClock. It keeps an anchor pair
// (epochReal, epochSlewed) and computes
//
//	slewed(real) = epochSlewed + (real - epochReal) * scaleFactor
//
// with scaleFactor in {1-rate, 1, 1+rate}. The target it chases is
// real time plus a constant offset, so it advances at rate 1 per real
// millisecond; a scale factor slightly above or below 1 shrinks the
// gap linearly and crosses zero after |gap|/rate real milliseconds.
type ScaleClock struct {
	mu sync.Mutex

	clock   Clock
	rate    float64
	epsilon float64

	epochReal   float64
	epochSlewed float64
	target      float64
	scale       float64
	lastNow     float64
}

// NewScaleClock creates a ScaleClock anchored at the current instant,
// running at real-time rate with a zero target offset. rate is the
// dimensionless dilation (e.g. 0.05 for 5%).
func NewScaleClock(clock Clock, rate float64) *ScaleClock {
	now := clock.Now()
	return &ScaleClock{
		clock:       clock,
		rate:        rate,
		epsilon:     DefaultConvergenceThreshold,
		epochReal:   now,
		epochSlewed: now,
		scale:       1,
		lastNow:     now,
	}
}

func (c *ScaleClock) computeSlewed(real float64) float64 {
	return c.epochSlewed + (real-c.epochReal)*c.scale
}

// SetTargetOffset re-anchors the clock at the current real/slewed
// instant, so a target change mid-convergence does not discard
// accumulated progress, then chooses a new scale factor from the sign
// of the remaining gap.
func (c *ScaleClock) SetTargetOffset(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	real := c.clock.Now()
	slewed := c.computeSlewed(real)
	c.epochReal = real
	c.epochSlewed = slewed
	c.target = offset

	gap := (real + offset) - slewed
	switch {
	case mathutil.Abs(gap) < c.epsilon:
		c.scale = 1
	case gap > 0:
		c.scale = 1 + c.rate
	default:
		c.scale = 1 - c.rate
	}
}

// Now returns the slewed time. When the dilated clock reaches or
// crosses the moving target it snaps exactly onto it, re-anchors there
// and resets the scale factor to 1. The result is clamped to never be
// smaller than the previously returned value.
func (c *ScaleClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	real := c.clock.Now()
	candidate := c.computeSlewed(real)
	moving := real + c.target

	converged := (c.scale > 1 && candidate >= moving) ||
		(c.scale < 1 && candidate <= moving)
	if converged {
		candidate = moving
		c.epochReal = real
		c.epochSlewed = candidate
		c.scale = 1
	}

	candidate = mathutil.Max(candidate, c.lastNow)
	c.lastNow = candidate
	return candidate
}

// ScaleFactor returns the current rate multiplier. Exposed for
// observability and tests.
func (c *ScaleClock) ScaleFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}
