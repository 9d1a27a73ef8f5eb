// Package filter maintains a bounded window of round-trip samples and
// produces an outlier-robust clock offset estimate from it.
package filter

import (
	"errors"
	"strconv"

	"github.com/timesync-io/timesync/pkg/mathutil"
	"github.com/timesync-io/timesync/pkg/timemath"
)

// Sample holds the measurements of one completed ping/pong round trip.
// Timestamps are float64 milliseconds. A sample is immutable once pushed.
type Sample struct {
	RTT       float64
	Offset    float64
	Timestamp float64
}

// SampleFilter is a fixed-capacity FIFO of samples with an estimator
// that rejects RTT outliers before averaging offsets.
//
// It is not safe for concurrent use; the engine serializes access.
type SampleFilter struct {
	samples   []Sample
	head      int
	count     int
	threshold float64
}

// New creates a SampleFilter with the given window capacity and outlier
// threshold (deviation multiplier). Both must be positive.
func New(historySize int, outlierThreshold float64) (*SampleFilter, error) {
	if historySize <= 0 {
		return nil, errors.New("history size must be a positive integer, got " + strconv.Itoa(historySize))
	}
	if outlierThreshold <= 0 {
		return nil, errors.New("outlier threshold must be a positive number, got " + strconv.FormatFloat(outlierThreshold, 'g', -1, 64))
	}

	return &SampleFilter{
		samples:   make([]Sample, historySize),
		threshold: outlierThreshold,
	}, nil
}

// Push appends a sample to the history, evicting the oldest entry once
// the window is full. O(1).
func (f *SampleFilter) Push(s Sample) {
	if f.count < len(f.samples) {
		f.samples[(f.head+f.count)%len(f.samples)] = s
		f.count++
		return
	}

	f.samples[f.head] = s
	f.head = (f.head + 1) % len(f.samples)
}

// Flush empties the history. Used on detected clock-continuity breaks,
// when pre-suspend samples would bias the post-resume estimate.
func (f *SampleFilter) Flush() {
	f.head = 0
	f.count = 0
}

// Len returns the number of retained samples.
func (f *SampleFilter) Len() int {
	return f.count
}

// Window returns the retained samples in arrival order.
func (f *SampleFilter) Window() []Sample {
	out := make([]Sample, 0, f.count)
	for i := 0; i < f.count; i++ {
		out = append(out, f.samples[(f.head+i)%len(f.samples)])
	}
	return out
}

// Estimate returns a single robust offset estimate for the window:
// samples whose RTT deviates from the mean RTT by more than
// threshold*stddev are excluded, and the mean offset of the survivors
// is returned. When the RTT stddev is 0 every sample is kept. When no
// sample survives, the mean offset of the whole window is used instead
// so a momentarily noisy round never collapses the estimate to zero.
// An empty history yields 0.
func (f *SampleFilter) Estimate() float64 {
	if f.count == 0 {
		return 0
	}

	window := f.Window()
	rtts := make([]float64, len(window))
	for i, s := range window {
		rtts[i] = s.RTT
	}

	meanRTT := timemath.Mean(rtts)
	sd := timemath.StdDev(rtts)
	limit := f.threshold * sd

	var sum float64
	var kept int
	for _, s := range window {
		if sd != 0 && mathutil.Abs(s.RTT-meanRTT) > limit {
			continue
		}
		sum += s.Offset
		kept++
	}

	if kept == 0 {
		for _, s := range window {
			sum += s.Offset
		}
		kept = len(window)
	}

	return sum / float64(kept)
}
