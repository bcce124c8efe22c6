// Package engine implements the self-modulating delay: a low-pass smoothing
// filter followed by a delay line whose read offset is driven by the filtered
// signal's own amplitude.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-selfmod/internal/filter"
	"github.com/tphakala/go-selfmod/internal/mathutil"
	"github.com/tphakala/go-selfmod/internal/simdops"
)

// ErrInvalidPrepare is returned by Prepare for unusable stream settings.
var ErrInvalidPrepare = errors.New("invalid prepare arguments")

// Params are the per-block continuous parameters.
type Params struct {
	Depth    float64 // normalized, [0, 1]
	CutoffHz float64 // low-pass cutoff
	Q        float64 // low-pass resonance
}

// DefaultParams returns the parameters used before the first block.
func DefaultParams() Params {
	return Params{
		Depth:    defaultDepth,
		CutoffHz: defaultCutoffHz,
		Q:        defaultQ,
	}
}

// Settings fixes the shape of a Processor.
type Settings struct {
	// Channels is the number of processed (output) channels.
	Channels int

	// InputChannels is the number of channels carrying input. Output channels
	// at or beyond this index are cleared before processing. Zero means all.
	InputChannels int

	MaxDepthSeconds     float64
	MaxDelaySeconds     float64
	DepthCurveSteepness float64
	Interpolation       Interpolation
}

// DefaultSettings returns stereo settings with the standard constants.
func DefaultSettings() Settings {
	return Settings{
		Channels:            2,
		MaxDepthSeconds:     DefaultMaxDepthSeconds,
		MaxDelaySeconds:     DefaultMaxDelaySeconds,
		DepthCurveSteepness: DefaultDepthCurveSteepness,
		Interpolation:       InterpolationLinear,
	}
}

// coeffCache remembers the inputs of the active coefficient set.
type coeffCache struct {
	valid      bool
	sampleRate float64
	cutoffHz   float64
	q          float64
}

func (c coeffCache) matches(sampleRate, cutoffHz, q float64) bool {
	return c.valid && c.sampleRate == sampleRate && c.cutoffHz == cutoffHz && c.q == q
}

// Processor is the block processor. Prepare must be called before the first
// ProcessBlock and again whenever the sample rate or maximum block size
// changes. Prepare and ProcessBlock must never run concurrently on one
// instance; ProcessBlock itself never allocates, locks or panics on valid
// buffers.
type Processor[F simdops.Float] struct {
	settings Settings
	curve    Curve

	sampleRate float64
	blockSize  int
	prepared   bool

	lowpass *LowPass[F]
	delay   *DelayLine[F]

	cache      coeffCache
	lastParams Params

	// Statistics
	coeffUpdates     uint64
	blocksProcessed  int64
	samplesProcessed int64
}

// NewProcessor creates an unprepared processor.
func NewProcessor[F simdops.Float](s Settings) (*Processor[F], error) {
	if s.Channels < 1 {
		return nil, fmt.Errorf("channels must be at least 1: %d", s.Channels)
	}
	if s.InputChannels < 0 || s.InputChannels > s.Channels {
		return nil, fmt.Errorf("input channels must be in [0, %d]: %d", s.Channels, s.InputChannels)
	}
	if s.InputChannels == 0 {
		s.InputChannels = s.Channels
	}
	if !(s.MaxDepthSeconds >= 0) || !mathutil.IsFinite(s.MaxDepthSeconds) {
		return nil, fmt.Errorf("max depth must be >= 0 and finite: %f", s.MaxDepthSeconds)
	}
	if !(s.MaxDelaySeconds > 0) || !mathutil.IsFinite(s.MaxDelaySeconds) {
		return nil, fmt.Errorf("max delay must be > 0 and finite: %f", s.MaxDelaySeconds)
	}
	if !(s.DepthCurveSteepness > 0) || !mathutil.IsFinite(s.DepthCurveSteepness) {
		return nil, fmt.Errorf("depth curve steepness must be > 0 and finite: %f", s.DepthCurveSteepness)
	}
	if s.Interpolation != InterpolationLinear && s.Interpolation != InterpolationCubic {
		return nil, fmt.Errorf("unsupported interpolation: %v", s.Interpolation)
	}

	return &Processor[F]{
		settings:   s,
		curve:      NewCurve(s.DepthCurveSteepness),
		lowpass:    NewLowPass[F](s.Channels),
		lastParams: DefaultParams(),
	}, nil
}

// Prepare (re)allocates the delay buffers for sampleRate, recomputes the
// filter from the last known cutoff and Q, and clears filter history and
// delay contents. Buffers are reallocated only when the sample rate changes.
func (p *Processor[F]) Prepare(sampleRate float64, maxBlockSize int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite: %f", ErrInvalidPrepare, sampleRate)
	}
	if maxBlockSize < 1 {
		return fmt.Errorf("%w: max block size must be at least 1: %d", ErrInvalidPrepare, maxBlockSize)
	}

	if p.delay == nil || sampleRate != p.sampleRate {
		capacity := int(math.Ceil(sampleRate * p.settings.MaxDelaySeconds))
		if p.delay == nil {
			p.delay = NewDelayLine[F](p.settings.Channels, capacity, p.settings.Interpolation)
		} else {
			p.delay.SetMaxDelay(capacity)
		}
	} else {
		p.delay.Reset()
	}

	p.sampleRate = sampleRate
	p.blockSize = maxBlockSize
	p.lowpass.Reset()
	p.updateCoefficients(p.lastParams)
	p.prepared = true

	return nil
}

// ProcessBlock runs one block in place. buffer is indexed [channel][sample].
//
// Channels at or beyond the configured input count, and any channels beyond
// the prepared channel count, are silenced. An unprepared processor outputs
// silence.
func (p *Processor[F]) ProcessBlock(buffer [][]F, params Params) {
	if !p.prepared {
		for _, ch := range buffer {
			clear(ch)
		}
		return
	}

	numChannels := min(len(buffer), p.settings.Channels)
	for ch := p.settings.InputChannels; ch < len(buffer); ch++ {
		clear(buffer[ch])
	}

	params = p.sanitize(params)
	p.updateCoefficients(params)

	for ch := range numChannels {
		p.lowpass.Process(ch, buffer[ch])
	}

	bias := p.sampleRate * p.settings.MaxDepthSeconds
	modulationDepth := p.curve.At(mathutil.Clamp(params.Depth, 0, 1)) * bias

	for ch := range numChannels {
		samples := buffer[ch]
		for i, x := range samples {
			target := float64(x)*modulationDepth + bias
			p.delay.SetDelay(ch, target)
			p.delay.PushSample(ch, x)
			samples[i] = p.delay.PopSample(ch)
		}
	}

	p.blocksProcessed++
	if numChannels > 0 {
		p.samplesProcessed += int64(len(buffer[0]))
	}
}

// Reset clears filter history and delay contents without reallocating.
func (p *Processor[F]) Reset() {
	p.lowpass.Reset()
	if p.delay != nil {
		p.delay.Reset()
	}
	p.blocksProcessed = 0
	p.samplesProcessed = 0
}

// sanitize replaces non-finite parameters with the last valid ones and
// remembers the result.
func (p *Processor[F]) sanitize(params Params) Params {
	if !mathutil.IsFinite(params.Depth) {
		params.Depth = p.lastParams.Depth
	}
	if !mathutil.IsFinite(params.CutoffHz) {
		params.CutoffHz = p.lastParams.CutoffHz
	}
	if !mathutil.IsFinite(params.Q) {
		params.Q = p.lastParams.Q
	}
	p.lastParams = params
	return params
}

// updateCoefficients recomputes the shared low-pass coefficients when the
// clamped cutoff, Q or sample rate differ from the cached ones.
func (p *Processor[F]) updateCoefficients(params Params) {
	cutoff := filter.ClampCutoff(params.CutoffHz, p.sampleRate)
	q := filter.ClampQ(params.Q)
	if p.cache.matches(p.sampleRate, cutoff, q) {
		return
	}

	p.lowpass.SetCoefficients(filter.LowpassRBJ(p.sampleRate, cutoff, q))
	p.cache = coeffCache{
		valid:      true,
		sampleRate: p.sampleRate,
		cutoffHz:   cutoff,
		q:          q,
	}
	p.coeffUpdates++
}

// Prepared reports whether Prepare has succeeded.
func (p *Processor[F]) Prepared() bool {
	return p.prepared
}

// SampleRate returns the prepared sample rate.
func (p *Processor[F]) SampleRate() float64 {
	return p.sampleRate
}

// BlockSize returns the last maximum block size given to Prepare.
func (p *Processor[F]) BlockSize() int {
	return p.blockSize
}

// Settings returns the processor settings with defaults applied.
func (p *Processor[F]) Settings() Settings {
	return p.settings
}

// Coefficients returns the active low-pass coefficients.
func (p *Processor[F]) Coefficients() filter.Coefficients {
	return p.lowpass.Coefficients()
}

// CoefficientUpdates returns how many times coefficients were recomputed.
func (p *Processor[F]) CoefficientUpdates() uint64 {
	return p.coeffUpdates
}

// BiasSamples returns the constant delay offset in samples.
func (p *Processor[F]) BiasSamples() float64 {
	return p.sampleRate * p.settings.MaxDepthSeconds
}

// ModulationDepthSamples returns the amplitude-to-delay scale for depth.
func (p *Processor[F]) ModulationDepthSamples(depth float64) float64 {
	return p.curve.At(mathutil.Clamp(depth, 0, 1)) * p.BiasSamples()
}

// DelayCapacity returns the per-channel delay buffer length, or 0 before
// Prepare.
func (p *Processor[F]) DelayCapacity() int {
	if p.delay == nil {
		return 0
	}
	return p.delay.Capacity()
}

// TailSamples returns how long the output keeps sounding after the input
// stops: the longest delay a full-scale sample can request at maximum depth.
func (p *Processor[F]) TailSamples() int {
	if !p.prepared {
		return 0
	}
	tail := math.Ceil(p.BiasSamples() + p.curve.At(1)*p.BiasSamples())
	return min(int(tail), p.delay.Capacity()-1)
}

// MemoryUsage returns approximate state memory in bytes.
func (p *Processor[F]) MemoryUsage() int64 {
	usage := int64(p.lowpass.Channels()) * historyFields * bytesPer[F]()
	if p.delay != nil {
		usage += p.delay.MemoryUsage()
	}
	return usage
}

// GetStatistics returns processing counters.
func (p *Processor[F]) GetStatistics() map[string]int64 {
	return map[string]int64{
		"blocksProcessed":    p.blocksProcessed,
		"samplesProcessed":   p.samplesProcessed,
		"coefficientUpdates": int64(p.coeffUpdates),
	}
}
