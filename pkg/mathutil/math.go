package mathutil

import "time"

// Abs returns the absolute value of a float64
func Abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Sign returns -1, 0 or +1 depending on the sign of f
func Sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp clamps a value between min and max
func Clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// DurationMillis converts a duration to float64 milliseconds
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// MillisDuration converts float64 milliseconds to a duration
func MillisDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
