// Command selfmod-live runs the self-modulating delay on the default audio
// input and output device in real time.
//
// Usage:
//
//	selfmod-live -rate 48000 -block 256 -depth 0.6
//
// While running, parameters can be changed by typing lines on stdin:
//
//	depth 0.8
//	cutoff 400
//	q 6
//
// Interrupt (Ctrl-C) stops the stream.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/tphakala/go-selfmod"
	"github.com/tphakala/go-selfmod/internal/simdops"
)

const (
	defaultSampleRate = 48000.0
	defaultBlockSize  = 256
	defaultChannels   = 2
	defaultDepth      = 0.5
	defaultCutoffHz   = 1000.0
	defaultQ          = 0.707
	defaultGain       = 1.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rate := flag.Float64("rate", defaultSampleRate, "Stream sample rate in Hz")
	block := flag.Int("block", defaultBlockSize, "Frames per buffer")
	channels := flag.Int("channels", defaultChannels, "Channels (1 or 2)")
	depth := flag.Float64("depth", defaultDepth, "Modulation depth, 0..1")
	cutoff := flag.Float64("cutoff", defaultCutoffHz, "Smoothing low-pass cutoff in Hz")
	q := flag.Float64("q", defaultQ, "Smoothing low-pass resonance")
	gain := flag.Float64("gain", defaultGain, "Linear output gain")
	cubic := flag.Bool("cubic", false, "Use cubic Hermite interpolation")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if !selfmod.SupportsLayout(*channels, *channels) {
		return fmt.Errorf("unsupported channel count %d (want 1 or 2)", *channels)
	}

	cfg := selfmod.DefaultConfig(*rate)
	cfg.Channels = *channels
	cfg.MaxBlockSize = *block
	if *cubic {
		cfg.Interpolation = selfmod.InterpolationCubic
	}

	proc, err := selfmod.NewFloat32(&cfg)
	if err != nil {
		return err
	}

	var params atomic.Pointer[selfmod.Params]
	params.Store(&selfmod.Params{Depth: *depth, CutoffHz: *cutoff, Q: *q})

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	ops := simdops.Float32Ops()
	outGain := float32(*gain)

	// Runs on the audio thread. Parameters are read through an atomic
	// pointer, never a lock.
	callback := func(in, out [][]float32) {
		for ch := range out {
			if ch < len(in) {
				copy(out[ch], in[ch])
			} else {
				clear(out[ch])
			}
		}
		proc.ProcessBlock(out, *params.Load())
		if outGain != 1 {
			for ch := range out {
				ops.Scale(out[ch], out[ch], outGain)
			}
		}
	}

	stream, err := portaudio.OpenDefaultStream(cfg.Channels, cfg.Channels, cfg.SampleRate, cfg.MaxBlockSize, callback)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	if *verbose {
		info := proc.GetInfo()
		log.Printf("Stream: %g Hz, %d channels, %d frames per buffer", cfg.SampleRate, cfg.Channels, cfg.MaxBlockSize)
		log.Printf("Base delay %d samples, tail %d samples, %s interpolation",
			info.Latency, info.TailLength, info.Interpolation)
	}

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	go readControls(os.Stdin, &params, *verbose)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stop stream: %w", err)
	}
	return nil
}

// readControls applies "name value" lines from r to params until EOF.
func readControls(r io.Reader, params *atomic.Pointer[selfmod.Params], verbose bool) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		next, err := applyControl(*params.Load(), scanner.Text())
		if err != nil {
			log.Printf("%v", err)
			continue
		}
		params.Store(&next)
		if verbose {
			log.Printf("depth %.3f, cutoff %.1f Hz, Q %.3f", next.Depth, next.CutoffHz, next.Q)
		}
	}
}
