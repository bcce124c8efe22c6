// Package selfmod implements a self-modulating delay audio effect.
//
// Each channel is smoothed by a resonant low-pass biquad (RBJ cookbook
// design) and fed into a delay line. The delay read position is driven by the
// filtered signal itself:
//
//	bias            = sampleRate × 0.1
//	modulationDepth = curve(depth) × bias
//	delay[n]        = filtered[n] × modulationDepth + bias
//	curve(x)        = 2^(6·(x−1)) − 2^(−6)
//
// Loud positive samples are read from further back, negative ones from closer
// to the present, which produces an amplitude-dependent pitch and phase
// warble. Fractional delays use linear (default) or cubic Hermite
// interpolation.
//
// # Real-time use
//
// Create a processor with New (float64) or NewFloat32, then call ProcessBlock
// from the audio callback:
//
//	cfg := selfmod.DefaultConfig(48000)
//	p, err := selfmod.New(&cfg)
//	if err != nil {
//		return err
//	}
//
//	// audio callback
//	p.ProcessBlock(buffer, selfmod.Params{Depth: 0.5, CutoffHz: 1000, Q: 0.707})
//
// ProcessBlock works in place on a [channel][sample] buffer, never allocates,
// locks or panics, clamps every parameter into a safe range and never emits
// NaN or ±Inf. Filter coefficients are redesigned only when cutoff, Q or the
// sample rate change.
//
// Call Prepare when the stream's sample rate or maximum block size changes.
// Prepare and ProcessBlock must not run concurrently on one processor.
//
// # Offline use
//
// ProcessMono, ProcessStereo and Render process whole signals and append the
// effect tail. Render can process channels concurrently when
// Config.EnableParallel is set.
//
// # Float32
//
// ProcessorFloat32 runs the delay line and filter state in float32 for hosts
// that deliver float32 buffers:
//
//	p, _ := selfmod.NewStereoFloat32(44100)
//	p.ProcessBlock([][]float32{left, right}, params)
package selfmod
