package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// AtLeast returns f, or low when f is smaller.
func AtLeast[T constraints.Ordered](f, low T) T {
	if f < low {
		return low
	}
	return f
}

// Sign returns -1 for negative values and 1 otherwise, zero included.
func Sign[T constraints.Signed | constraints.Float](f T) T {
	if f < 0 {
		return -1
	}
	return 1
}
