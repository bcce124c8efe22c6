package selfmod

import (
	"fmt"
	"math"

	"github.com/tphakala/go-selfmod/internal/engine"
	"github.com/tphakala/go-selfmod/internal/simdops"
)

const algorithmName = "rbj-lowpass + self-modulated delay"

// core is the precision-independent part of Processor and ProcessorFloat32.
type core[F simdops.Float] struct {
	config Config
	engine *engine.Processor[F]
}

func newCore[F simdops.Float](config *Config) (core[F], error) {
	if config == nil {
		return core[F]{}, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return core[F]{}, err
	}

	cfg := config.withDefaults()
	e, err := engine.NewProcessor[F](cfg.settings())
	if err != nil {
		return core[F]{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := core[F]{config: cfg, engine: e}
	if err := c.Prepare(cfg.SampleRate, cfg.MaxBlockSize); err != nil {
		return core[F]{}, err
	}
	return c, nil
}

// Prepare sizes the delay buffers for sampleRate, recomputes the filter from
// the last cutoff and Q, and clears filter history and delay contents.
// Buffers are reallocated only when the sample rate changes.
func (c *core[F]) Prepare(sampleRate float64, maxBlockSize int) error {
	next := c.config
	next.SampleRate = sampleRate
	next.MaxBlockSize = maxBlockSize
	if maxBlockSize == 0 {
		next.MaxBlockSize = DefaultMaxBlockSize
	}
	if err := next.Validate(); err != nil {
		return err
	}

	if err := c.engine.Prepare(next.SampleRate, next.MaxBlockSize); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.config = next
	return nil
}

// ProcessBlock processes buffer in place. buffer is indexed [channel][sample]
// and every channel must hold the same number of samples.
//
// ProcessBlock is safe to call from a real-time audio callback: it does not
// allocate, lock or return errors. Extra channels are silenced.
func (c *core[F]) ProcessBlock(buffer [][]F, params Params) {
	c.engine.ProcessBlock(buffer, params)
}

// Process is the checked form of ProcessBlock for offline callers. It
// rejects unprepared processors and malformed buffers instead of silencing
// them.
func (c *core[F]) Process(buffer [][]F, params Params) error {
	if !c.Prepared() {
		return ErrNotPrepared
	}
	if len(buffer) != c.config.Channels {
		return fmt.Errorf("%w: expected %d channels, got %d", ErrChannelMismatch, c.config.Channels, len(buffer))
	}
	for ch := 1; ch < len(buffer); ch++ {
		if len(buffer[ch]) != len(buffer[0]) {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrChannelMismatch, ch, len(buffer[ch]), len(buffer[0]))
		}
	}

	c.engine.ProcessBlock(buffer, params)
	return nil
}

// Reset clears all internal state.
func (c *core[F]) Reset() {
	c.engine.Reset()
}

// Prepared reports whether the processor is ready for ProcessBlock.
func (c *core[F]) Prepared() bool {
	return c.engine != nil && c.engine.Prepared()
}

// Config returns the active configuration with defaults applied.
func (c *core[F]) Config() Config {
	return c.config
}

// GetLatency returns the base delay in samples.
func (c *core[F]) GetLatency() int {
	return int(math.Round(c.engine.BiasSamples()))
}

// TailLength returns the tail in samples.
func (c *core[F]) TailLength() int {
	return c.engine.TailSamples()
}

// TailSeconds returns the tail in seconds.
func (c *core[F]) TailSeconds() float64 {
	if c.config.SampleRate == 0 {
		return 0
	}
	return float64(c.TailLength()) / c.config.SampleRate
}

// ModulationDepthSamples returns the delay swing in samples that a
// full-scale sample produces at depth.
func (c *core[F]) ModulationDepthSamples(depth float64) float64 {
	return c.engine.ModulationDepthSamples(depth)
}

// CoefficientUpdates returns how many times the low-pass was redesigned.
func (c *core[F]) CoefficientUpdates() uint64 {
	return c.engine.CoefficientUpdates()
}

// GetStatistics returns processing statistics.
func (c *core[F]) GetStatistics() map[string]int64 {
	return c.engine.GetStatistics()
}

// GetInfo returns information about the processor.
func (c *core[F]) GetInfo() Info {
	var zero F
	precision := 64
	if _, ok := any(zero).(float32); ok {
		precision = 32
	}

	return Info{
		Algorithm:     algorithmName,
		SampleRate:    c.engine.SampleRate(),
		Channels:      c.config.Channels,
		Latency:       c.GetLatency(),
		TailLength:    c.TailLength(),
		DelayCapacity: c.engine.DelayCapacity(),
		Interpolation: c.config.Interpolation,
		Precision:     precision,
		MemoryUsage:   c.engine.MemoryUsage(),
		SIMDType:      simdops.CPUInfo(),
	}
}

// Processor is the float64 self-modulating delay.
type Processor struct {
	core[float64]
}

// New creates a prepared float64 processor.
func New(config *Config) (*Processor, error) {
	c, err := newCore[float64](config)
	if err != nil {
		return nil, err
	}
	return &Processor{core: c}, nil
}

// =============================================================================
// Float32 Native API
// =============================================================================
//
// ProcessorFloat32 runs the whole chain in float32, matching hosts that hand
// out float32 buffers (portaudio, most plugin APIs). The filter and delay
// coefficients are still designed in float64.

// ProcessorFloat32 is the float32 self-modulating delay.
type ProcessorFloat32 struct {
	core[float32]
}

// NewFloat32 creates a prepared float32 processor.
func NewFloat32(config *Config) (*ProcessorFloat32, error) {
	c, err := newCore[float32](config)
	if err != nil {
		return nil, err
	}
	return &ProcessorFloat32{core: c}, nil
}

var (
	_ Effect = (*Processor)(nil)
	_ Effect = (*ProcessorFloat32)(nil)
)
