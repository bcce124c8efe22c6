package selfmod

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-selfmod/internal/engine"
)

// Effect is implemented by both processor precisions.
type Effect interface {
	// Prepare sizes the delay buffers for sampleRate and clears all state.
	// It must not run concurrently with block processing.
	Prepare(sampleRate float64, maxBlockSize int) error

	// Reset clears filter history and delay contents without reallocating.
	Reset()

	// GetLatency returns the base (bias) delay in samples.
	GetLatency() int

	// TailLength returns how many samples the effect keeps sounding after
	// the input goes silent.
	TailLength() int

	// GetInfo returns information about the prepared effect.
	GetInfo() Info
}

// Params are the per-block parameters: Depth in [0, 1], CutoffHz and Q for
// the smoothing low-pass. Out-of-range values are clamped; NaN and ±Inf fall
// back to the previous block's value.
type Params = engine.Params

// DefaultParams returns depth 0.5, 1 kHz cutoff and Q 0.707.
func DefaultParams() Params {
	return engine.DefaultParams()
}

// Interpolation selects the fractional delay read.
type Interpolation = engine.Interpolation

const (
	// InterpolationLinear blends the two nearest delayed samples.
	InterpolationLinear = engine.InterpolationLinear

	// InterpolationCubic uses 4-point Hermite interpolation. Smoother at
	// high modulation depth, roughly twice the read cost.
	InterpolationCubic = engine.InterpolationCubic
)

// ParseInterpolation maps "linear" or "cubic" to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	return engine.ParseInterpolation(s)
}

// Config holds effect configuration.
type Config struct {
	// SampleRate is the stream sample rate in Hz.
	SampleRate float64

	// MaxBlockSize is the largest block the host will pass.
	// Set to 0 to use DefaultMaxBlockSize.
	MaxBlockSize int

	// Channels is the number of processed channels.
	Channels int

	// InputChannels is the number of channels carrying input. Channels at or
	// beyond this index are silenced, as when a mono input feeds a stereo
	// output. Set to 0 to treat every channel as input.
	InputChannels int

	// MaxDepthSeconds is both the base delay and the largest amplitude-driven
	// excursion. Set to 0 to use 0.1 s.
	MaxDepthSeconds float64

	// MaxDelaySeconds sizes the delay buffers. Set to 0 to use 3 s.
	MaxDelaySeconds float64

	// DepthCurveSteepness is k in the depth curve 2^(k·(x-1)) - 2^(-k).
	// Set to 0 to use 6.
	DepthCurveSteepness float64

	// Interpolation selects the fractional delay read.
	Interpolation Interpolation

	// EnableParallel renders channels concurrently in the offline helpers
	// (Render). Block processing is always single-goroutine.
	EnableParallel bool
}

// DefaultConfig returns a stereo configuration for sampleRate.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		SampleRate:          sampleRate,
		MaxBlockSize:        DefaultMaxBlockSize,
		Channels:            stereoChannels,
		MaxDepthSeconds:     engine.DefaultMaxDepthSeconds,
		MaxDelaySeconds:     engine.DefaultMaxDelaySeconds,
		DepthCurveSteepness: engine.DefaultDepthCurveSteepness,
		Interpolation:       InterpolationLinear,
	}
}

// Common errors returned by the effect.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid selfmod configuration")

	// ErrNotPrepared indicates processing before a successful Prepare.
	ErrNotPrepared = errors.New("processor not prepared")

	// ErrChannelMismatch indicates a buffer whose shape does not match the
	// configured channel layout.
	ErrChannelMismatch = errors.New("channel layout mismatch")
)

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.MaxBlockSize == 0 {
		c.MaxBlockSize = DefaultMaxBlockSize
	}
	if c.MaxDepthSeconds == 0 {
		c.MaxDepthSeconds = engine.DefaultMaxDepthSeconds
	}
	if c.MaxDelaySeconds == 0 {
		c.MaxDelaySeconds = engine.DefaultMaxDelaySeconds
	}
	if c.DepthCurveSteepness == 0 {
		c.DepthCurveSteepness = engine.DefaultDepthCurveSteepness
	}
	return c
}

// Validate checks if the configuration is valid. Zero fields that have
// defaults are accepted.
func (c *Config) Validate() error {
	cfg := c.withDefaults()

	if !(cfg.SampleRate >= minSampleRate && cfg.SampleRate <= maxSampleRate) {
		return fmt.Errorf("%w: sample rate must be in [%g, %g] Hz", ErrInvalidConfig, minSampleRate, maxSampleRate)
	}

	if cfg.MaxBlockSize < 1 {
		return fmt.Errorf("%w: max block size must be at least 1", ErrInvalidConfig)
	}

	if cfg.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if cfg.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if cfg.InputChannels < 0 || cfg.InputChannels > cfg.Channels {
		return fmt.Errorf("%w: input channels must be in [0, %d]", ErrInvalidConfig, cfg.Channels)
	}

	if cfg.MaxDepthSeconds < 0 || math.IsInf(cfg.MaxDepthSeconds, 0) || math.IsNaN(cfg.MaxDepthSeconds) {
		return fmt.Errorf("%w: max depth must be a non-negative number of seconds", ErrInvalidConfig)
	}

	if !(cfg.MaxDelaySeconds >= maxExcursionFactor*cfg.MaxDepthSeconds) || math.IsInf(cfg.MaxDelaySeconds, 0) {
		return fmt.Errorf("%w: max delay must be finite and at least %g× max depth", ErrInvalidConfig, maxExcursionFactor)
	}

	if !(cfg.DepthCurveSteepness > 0) || math.IsInf(cfg.DepthCurveSteepness, 0) {
		return fmt.Errorf("%w: depth curve steepness must be positive", ErrInvalidConfig)
	}

	if cfg.Interpolation != InterpolationLinear && cfg.Interpolation != InterpolationCubic {
		return fmt.Errorf("%w: unsupported interpolation %v", ErrInvalidConfig, cfg.Interpolation)
	}

	return nil
}

// settings converts a defaulted config into engine settings.
func (c Config) settings() engine.Settings {
	return engine.Settings{
		Channels:            c.Channels,
		InputChannels:       c.InputChannels,
		MaxDepthSeconds:     c.MaxDepthSeconds,
		MaxDelaySeconds:     c.MaxDelaySeconds,
		DepthCurveSteepness: c.DepthCurveSteepness,
		Interpolation:       c.Interpolation,
	}
}

// SupportsLayout reports whether an input/output channel pairing is
// supported by a host bus: mono or stereo output with a matching input.
func SupportsLayout(inputChannels, outputChannels int) bool {
	if outputChannels != monoChannels && outputChannels != stereoChannels {
		return false
	}
	return inputChannels == outputChannels
}

// Info returns information about the effect.
type Info struct {
	// Algorithm describes the processing chain.
	Algorithm string

	// SampleRate is the prepared sample rate (0 before Prepare).
	SampleRate float64

	// Channels is the number of processed channels.
	Channels int

	// Latency is the base delay in samples.
	Latency int

	// TailLength is the longest delay a full-scale sample can reach.
	TailLength int

	// DelayCapacity is the per-channel delay buffer length in samples.
	DelayCapacity int

	// Interpolation is the fractional read mode.
	Interpolation Interpolation

	// Precision is the sample type width in bits (32 or 64).
	Precision int

	// MemoryUsage is the approximate state memory in bytes.
	MemoryUsage int64

	// SIMDType describes the SIMD instruction set the analysis and
	// interleave kernels use.
	SIMDType string
}
