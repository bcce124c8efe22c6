package selfmod

import (
	"github.com/tphakala/go-selfmod/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD and video production sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000
)

// NewMono creates a mono processor with default settings.
func NewMono(sampleRate float64) (*Processor, error) {
	cfg := DefaultConfig(sampleRate)
	cfg.Channels = monoChannels
	return New(&cfg)
}

// NewStereo creates a stereo processor with default settings.
func NewStereo(sampleRate float64) (*Processor, error) {
	cfg := DefaultConfig(sampleRate)
	return New(&cfg)
}

// NewMonoToStereo creates a stereo processor fed by a single input channel;
// the second output channel is silenced.
func NewMonoToStereo(sampleRate float64) (*Processor, error) {
	cfg := DefaultConfig(sampleRate)
	cfg.InputChannels = monoChannels
	return New(&cfg)
}

// ProcessMono is a convenience function for one-shot mono processing.
// The result includes the effect tail.
func ProcessMono(input []float64, sampleRate float64, params Params) ([]float64, error) {
	cfg := DefaultConfig(sampleRate)
	cfg.Channels = monoChannels

	out, err := Render(&cfg, [][]float64{input}, params, true)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ProcessStereo is a convenience function for one-shot stereo processing.
// Both channels must have the same length. The result includes the tail.
func ProcessStereo(left, right []float64, sampleRate float64, params Params) (leftOut, rightOut []float64, err error) {
	cfg := DefaultConfig(sampleRate)

	out, err := Render(&cfg, [][]float64{left, right}, params, true)
	if err != nil {
		return nil, nil, err
	}
	return out[0], out[1], nil
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float64) []float64 {
	minLen := min(len(left), len(right))
	result := make([]float64, minLen*stereoChannels)
	simdops.Float64Ops().Interleave2(result, left[:minLen], right[:minLen])
	return result
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo(interleaved []float64) (left, right []float64) {
	return deinterleave(interleaved)
}

// =============================================================================
// Float32 Native API
// =============================================================================

// NewStereoFloat32 creates a stereo float32 processor with default settings.
func NewStereoFloat32(sampleRate float64) (*ProcessorFloat32, error) {
	cfg := DefaultConfig(sampleRate)
	return NewFloat32(&cfg)
}

// ProcessMonoFloat32 is the float32 form of ProcessMono.
func ProcessMonoFloat32(input []float32, sampleRate float64, params Params) ([]float32, error) {
	cfg := DefaultConfig(sampleRate)
	cfg.Channels = monoChannels

	p, err := NewFloat32(&cfg)
	if err != nil {
		return nil, err
	}

	output := make([]float32, len(input)+p.TailLength())
	copy(output, input)

	blockSize := min(p.Config().MaxBlockSize, renderBlockSize)
	for start := 0; start < len(output); start += blockSize {
		end := min(start+blockSize, len(output))
		p.ProcessBlock([][]float32{output[start:end]}, params)
	}

	return output, nil
}

// InterleaveToStereoFloat32 converts two float32 channels to interleaved stereo.
func InterleaveToStereoFloat32(left, right []float32) []float32 {
	minLen := min(len(left), len(right))
	result := make([]float32, minLen*stereoChannels)
	simdops.Float32Ops().Interleave2(result, left[:minLen], right[:minLen])
	return result
}

// DeinterleaveFromStereoFloat32 converts interleaved float32 stereo to two channels.
func DeinterleaveFromStereoFloat32(interleaved []float32) (left, right []float32) {
	return deinterleave(interleaved)
}

func deinterleave[F simdops.Float](interleaved []F) (left, right []F) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]F, numSamples)
	right = make([]F, numSamples)
	for i := range numSamples {
		left[i] = interleaved[i*stereoChannels]
		right[i] = interleaved[i*stereoChannels+1]
	}
	return left, right
}
