// Package timemath provides the pure arithmetic behind NTP-style clock
// synchronization: round-trip time and offset from a four-timestamp
// exchange, plus the statistics used for outlier-robust filtering.
//
// All timestamps are float64 milliseconds. Functions are total over
// numeric input and never return errors.
package timemath

import "math"

// RTT computes the round-trip time of one ping/pong exchange: total
// elapsed time minus the remote processing time.
//
//	t0: client send, t1: remote receive, t2: remote send, t3: client receive
func RTT(t0, t1, t2, t3 float64) float64 {
	return (t3 - t0) - (t2 - t1)
}

// Offset computes the estimated clock offset between the remote and
// local clocks as the average of the two one-way latency estimates.
// Positive means the remote clock is ahead.
func Offset(t0, t1, t2, t3 float64) float64 {
	return ((t1 - t0) + (t2 - t3)) / 2
}

// Mean calculates the arithmetic mean of a slice of values.
// Returns 0 if the slice is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev calculates the population standard deviation (N denominator)
// of a slice of values. Returns 0 if the slice is empty.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m := Mean(values)
	sumSquaredDiff := 0.0

	for _, v := range values {
		diff := v - m
		sumSquaredDiff += diff * diff
	}

	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}

// FilterByDeviation retains the values within k standard deviations of
// the mean. When the standard deviation is 0 there is no variance to
// measure against, so all values are returned unchanged. Empty input
// yields empty output.
func FilterByDeviation(values []float64, k float64) []float64 {
	if len(values) == 0 {
		return values
	}

	sd := StdDev(values)
	if sd == 0 {
		return values
	}

	m := Mean(values)
	limit := k * sd

	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if math.Abs(v-m) <= limit {
			kept = append(kept, v)
		}
	}
	return kept
}
