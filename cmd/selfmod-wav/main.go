// Command selfmod-wav renders a WAV file through the self-modulating delay.
//
// Usage:
//
//	selfmod-wav input.wav output.wav
//	selfmod-wav -depth 0.8 -cutoff 400 -q 4 input.wav output.wav
//	selfmod-wav -cubic -fast input.wav output.wav   # Hermite reads, float32 engine
//	selfmod-wav -tail=false input.wav output.wav    # keep the input length
//
// The output has the input's sample rate, channel count and bit depth. By
// default the effect tail is appended so the delayed signal is not cut off.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/tphakala/go-selfmod"
)

const (
	// Buffer size for file I/O (frames per chunk)
	bufferSize = 65536

	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16         = 32767.0
	maxInt24         = 8388607.0
	maxInt32         = 2147483647.0
	progressInterval = 10 // Print progress every N%

	// CLI defaults
	defaultDepth    = 0.5
	defaultCutoffHz = 1000.0
	defaultQ        = 0.707
	minRequiredArgs = 2
	percentScale    = 100

	// analysisWindow is how many output frames of channel 0 are kept for the
	// spectrum in the summary.
	analysisWindow = 1 << 16
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// options collects the parsed command line.
type options struct {
	params    selfmod.Params
	blockSize int
	cubic     bool
	fast      bool
	tail      bool
	verbose   bool
}

func run() error {
	depth := flag.Float64("depth", defaultDepth, "Modulation depth, 0..1")
	cutoff := flag.Float64("cutoff", defaultCutoffHz, "Smoothing low-pass cutoff in Hz")
	q := flag.Float64("q", defaultQ, "Smoothing low-pass resonance (0.1..20)")
	block := flag.Int("block", selfmod.DefaultMaxBlockSize, "Processing block size in frames")
	cubic := flag.Bool("cubic", false, "Use cubic Hermite interpolation for fractional delays")
	fast := flag.Bool("fast", false, "Use the float32 engine")
	tail := flag.Bool("tail", true, "Append the effect tail to the output")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	// Validate arguments before setting up profiling
	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s in.wav out.wav                          # Default settings\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -depth 1 -cutoff 300 -q 6 in.wav out.wav # Heavy wobble\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	// Start CPU profiling if requested (for PGO)
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	outputPath := args[1]

	opts := options{
		params:    selfmod.Params{Depth: *depth, CutoffHz: *cutoff, Q: *q},
		blockSize: *block,
		cubic:     *cubic,
		fast:      *fast,
		tail:      *tail,
		verbose:   *verbose,
	}

	if opts.verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Depth: %.3f, cutoff: %.1f Hz, Q: %.3f", opts.params.Depth, opts.params.CutoffHz, opts.params.Q)
		if opts.fast {
			log.Printf("Precision: float32 (fast mode)")
		} else {
			log.Printf("Precision: float64 (high precision)")
		}
	}

	start := time.Now()
	var stats *renderStats
	var err error
	if opts.fast {
		stats, err = renderWAV[float32](inputPath, outputPath, opts)
	} else {
		stats, err = renderWAV[float64](inputPath, outputPath, opts)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// Print summary
	fmt.Printf("Processed %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit, %s interpolation\n",
		stats.sampleRate, stats.channels, stats.bitDepth, stats.interpolation)
	fmt.Printf("  %d frames in -> %d frames out (tail %d)\n", stats.inputFrames, stats.outputFrames, stats.tailFrames)
	fmt.Printf("  RMS in %.4f, RMS out %.4f, peak out %.4f\n", stats.inputRMS, stats.outputRMS, stats.outputPeak)
	if stats.dominantHz > 0 {
		fmt.Printf("  Dominant output frequency: %.1f Hz\n", stats.dominantHz)
	}
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputFrames)/float64(stats.sampleRate)/elapsed.Seconds())

	return nil
}

// renderWAV streams inputPath through the effect into outputPath.
func renderWAV[F Float](inputPath, outputPath string, opts options) (stats *renderStats, err error) {
	// 1. Open and validate input
	input, err := openWAVInput(inputPath, opts.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	// 2. Create the effect
	proc, err := newProcessor[F](input.rate, input.channels, opts)
	if err != nil {
		return nil, err
	}

	// 3. Create output writer
	output, err := createWAVOutput(outputPath, input.rate, input.bitDepth, input.channels)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	// 4. Initialize processing buffers and tracking
	buffers := newEffectBuffers[F](input.channels, input.bitDepth, input.format)
	info := proc.GetInfo()
	stats = &renderStats{
		sampleRate:    input.rate,
		channels:      input.channels,
		bitDepth:      input.bitDepth,
		interpolation: info.Interpolation.String(),
	}
	meter := newLevelMeter[F](analysisWindow)
	progress := newProgressTracker(input.totalSamples, opts.verbose)

	// 5. Main processing loop
	for {
		n, err := input.decoder.PCMBuffer(buffers.intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		frames := n / input.channels
		if frames == 0 {
			break
		}
		stats.inputFrames += int64(frames)

		deinterleaveInto(buffers.intBuffer.Data, buffers.channelBufs, input.channels, frames, buffers.invMaxVal)
		meter.addInput(buffers.channelBufs[0][:frames])

		if err := processAndWrite(proc, buffers, frames, opts, output, meter); err != nil {
			return nil, err
		}
		stats.outputFrames += int64(frames)

		progress.reportIfNeeded(stats.inputFrames)
	}

	// 6. Render the tail from silence
	if opts.tail {
		remaining := proc.TailLength()
		stats.tailFrames = int64(remaining)
		for remaining > 0 {
			frames := min(remaining, bufferSize)
			for ch := range buffers.channelBufs {
				clear(buffers.channelBufs[ch][:frames])
			}
			if err := processAndWrite(proc, buffers, frames, opts, output, meter); err != nil {
				return nil, err
			}
			stats.outputFrames += int64(frames)
			remaining -= frames
		}
	}

	meter.fill(stats, float64(input.rate))
	return stats, nil
}

// processAndWrite runs frames of channelBufs through proc in blocks of
// opts.blockSize and writes the result.
func processAndWrite[F Float](
	proc blockProcessor[F],
	buffers *effectBuffers[F],
	frames int,
	opts options,
	output *wavOutputWriter,
	meter *levelMeter[F],
) error {
	for start := 0; start < frames; start += opts.blockSize {
		end := min(start+opts.blockSize, frames)
		for ch := range buffers.channelBufs {
			buffers.block[ch] = buffers.channelBufs[ch][start:end]
		}
		proc.ProcessBlock(buffers.block, opts.params)
	}

	for ch := range buffers.channelBufs {
		buffers.block[ch] = buffers.channelBufs[ch][:frames]
	}
	meter.addOutput(buffers.block[0])

	outputLen := interleaveInto(buffers.block, buffers.outputIntBuf, buffers.maxVal)
	if err := output.WriteSamples(buffers.outputIntBuf[:outputLen]); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}
