// Package mathutil provides small numeric helpers shared by the DSP packages.
package mathutil

import "math"

// Float is the type constraint for supported floating-point sample types.
type Float interface {
	float32 | float64
}

// Clamp limits value to the inclusive range [lo, hi].
// NaN is mapped to lo so that callers never forward it.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if value < lo || math.IsNaN(value) {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormal converts tiny values to exact zero.
// Go offers no flush-to-zero floating point mode, so IIR feedback paths call
// this on every stored output to avoid decaying into subnormals.
func FlushDenormal[F Float](x F) F {
	if x > -denormalThreshold && x < denormalThreshold {
		return 0
	}
	return x
}

// Sanitize returns x when it is finite and 0 otherwise.
// x-x is zero for every finite value and NaN for NaN and ±Inf.
func Sanitize[F Float](x F) F {
	if x-x != 0 {
		return 0
	}
	return x
}
