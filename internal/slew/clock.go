// Package slew provides the two time-slewing clocks used by the sync
// engine: a continuous clock that converges by dilating the rate of
// elapsed time, and a stepped clock that walks corrections down in
// bounded per-call increments. Both guarantee non-decreasing readings.
package slew

import "time"

// Clock supplies the current wall time in float64 milliseconds since
// the Unix epoch. Injectable for deterministic tests.
type Clock interface {
	Now() float64
}

// ContinuousClock is a monotonic clock that morphs toward a moving
// target offset by running slightly faster or slower than real time.
// Intended for high-frequency consumers where a visible step would be
// disruptive.
type ContinuousClock interface {
	Now() float64
	SetTargetOffset(offset float64)
}

// SteppedClock is a monotonic clock that applies a bounded correction
// step on every read. Intended for sparse, event-driven wall-clock
// consumers.
type SteppedClock interface {
	Now() float64
	SetTargetOffset(offset float64)
}

type systemClock struct{}

func (systemClock) Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}
