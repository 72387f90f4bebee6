package mathx

import "golang.org/x/exp/constraints"

// Bit reports whether bit i of v is set. i beyond the width of T reports false.
func Bit[T constraints.Unsigned](v T, i uint) bool {
	return (v>>i)&1 == 1
}

// Mask returns a value with the low width bits set.
func Mask[T constraints.Unsigned](width uint) T {
	var zero T
	return ^(^zero << width)
}

// Truncate keeps the low width bits of v, as an unsigned cast to that width would.
func Truncate[T constraints.Unsigned](v T, width uint) T {
	return v & Mask[T](width)
}
