package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// ClampColor clamps every channel of an RGBA color to [0, 1].
func ClampColor(c [4]float32) [4]float32 {
	for i := range c {
		c[i] = Clamp(c[i], 0, 1)
	}
	return c
}
