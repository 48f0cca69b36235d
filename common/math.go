package common

import "github.com/go-gl/mathgl/mgl64"

// Vec2 is a world-space point or vector.
type Vec2 = mgl64.Vec2

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Sqr returns the square of the value.
func Sqr[T Number](a T) T {
	return a * a
}

// Abs returns the absolute value.
func Abs[T Number](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// Clamp keeps v within [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
