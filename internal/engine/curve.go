package engine

import "math"

// Curve maps a normalized depth in [0, 1] to an effective modulation scalar
// using 2^(k·(x-1)) - 2^(-k). The curve is monotonically increasing, is
// exactly 0 at x=0 and reaches 1 - 2^(-k) at x=1.
type Curve struct {
	steepness float64
	offset    float64
}

// NewCurve returns the curve for steepness k.
func NewCurve(steepness float64) Curve {
	return Curve{
		steepness: steepness,
		offset:    math.Exp2(-steepness),
	}
}

// At evaluates the curve. x is expected to be clamped to [0, 1] by the caller.
func (c Curve) At(x float64) float64 {
	return math.Exp2(c.steepness*(x-1)) - c.offset
}

// Steepness returns k.
func (c Curve) Steepness() float64 {
	return c.steepness
}

// Offset returns 2^(-k).
func (c Curve) Offset() float64 {
	return c.offset
}

// ModulationCurve evaluates the depth curve for a single value.
func ModulationCurve(x, steepness float64) float64 {
	return NewCurve(steepness).At(x)
}
