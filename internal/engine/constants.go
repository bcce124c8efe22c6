package engine

// Effect defaults
const (
	// DefaultMaxDepthSeconds is the base (bias) delay and the largest
	// amplitude-driven excursion for a full-scale sample.
	DefaultMaxDepthSeconds = 0.1

	// DefaultMaxDelaySeconds sizes the delay buffers.
	DefaultMaxDelaySeconds = 3.0

	// DefaultDepthCurveSteepness is k in 2^(k·(x-1)) - 2^(-k).
	DefaultDepthCurveSteepness = 6.0

	// Initial filter parameters used until the first block supplies real ones.
	defaultCutoffHz = 1000.0
	defaultQ        = 0.707
	defaultDepth    = 0.5
)

// Cubic (Hermite) interpolation constants
const (
	// Cubic interpolation uses a 4-point window
	cubicInterpolationPoints = 4

	// Hermite interpolation coefficients for smooth C1 continuity
	// Formula: y = ((a*x + b)*x + c)*x + d
	// coefA := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// Delay line sizing
const (
	// minDelayCapacity keeps the 4-point window inside distinct slots.
	minDelayCapacity = cubicInterpolationPoints
)

// Memory estimates
const (
	bytesPerFloat32 = 4
	bytesPerFloat64 = 8

	// historyFields is the number of F values kept per channel by LowPass.
	historyFields = 4
)
