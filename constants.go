package selfmod

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2   // Stereo channel count (used by interleave functions)
	maxChannels    = 256 // Maximum supported channel count
)

// Sample rate limits
const (
	minSampleRate = 1000.0
	maxSampleRate = 768000.0
)

// Block defaults
const (
	// DefaultMaxBlockSize is used when Config.MaxBlockSize is zero.
	DefaultMaxBlockSize = 512

	// renderBlockSize is the block length used by the offline helpers.
	renderBlockSize = 1024
)

// Delay sizing
const (
	// maxExcursionFactor bounds bias + curve(1)·bias, which is always below
	// twice the bias, so MaxDelaySeconds must hold at least that much.
	maxExcursionFactor = 2.0
)
