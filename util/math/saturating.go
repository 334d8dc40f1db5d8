package math

import stdmath "math"

// SaturatingAddUint64 returns x + y, clamped to math.MaxUint64 on overflow.
func SaturatingAddUint64(x, y uint64) uint64 {
	if x > stdmath.MaxUint64-y {
		return stdmath.MaxUint64
	}
	return x + y
}

// SaturatingSubUint64 returns x - y, clamped to 0 on underflow.
func SaturatingSubUint64(x, y uint64) uint64 {
	if y > x {
		return 0
	}
	return x - y
}
