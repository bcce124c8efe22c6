package engine

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-selfmod/internal/simdops"
)

// Interpolation selects how fractional delay positions are read.
type Interpolation int

const (
	// InterpolationLinear blends the two nearest samples.
	InterpolationLinear Interpolation = iota

	// InterpolationCubic uses 4-point Hermite interpolation.
	InterpolationCubic
)

// String returns the lower-case mode name.
func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "linear"
	case InterpolationCubic:
		return "cubic"
	default:
		return fmt.Sprintf("interpolation(%d)", int(i))
	}
}

// ParseInterpolation maps a mode name to its Interpolation value.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "linear", "":
		return InterpolationLinear, nil
	case "cubic", "hermite":
		return InterpolationCubic, nil
	default:
		return InterpolationLinear, fmt.Errorf("unknown interpolation %q", s)
	}
}

// linear interpolates between y0 (t=0) and y1 (t=1).
func linear[F simdops.Float](t, y0, y1 F) F {
	return y0 + t*(y1-y0)
}

// hermite performs cubic Hermite interpolation between y1 (t=0) and y2 (t=1),
// with y0 and y3 as the outer neighbours.
func hermite[F simdops.Float](t, y0, y1, y2, y3 F) F {
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*t+coefB)*t+coefC)*t + coefD
}
