package mathutil

// Denormal handling
const (
	// denormalThreshold is the magnitude below which values are flushed to zero.
	// Anything this small is inaudible and far above the float32 subnormal range
	// (~1.18e-38), so flushing here keeps both float32 and float64 paths off the
	// slow subnormal hardware path.
	denormalThreshold = 1e-30
)
