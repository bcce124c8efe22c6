// Command selfmod prints the configuration of the self-modulating delay and
// runs it over a generated test tone.
//
// Usage:
//
//	selfmod -rate 44100 -depth 0.8
//	selfmod -demo
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/tphakala/go-selfmod"
	"github.com/tphakala/go-selfmod/internal/analysis"
)

func main() {
	// Command-line flags
	var (
		sampleRate    = flag.Float64("rate", defaultSampleRate, "Sample rate in Hz")
		channels      = flag.Int("channels", defaultChannels, "Number of audio channels")
		depth         = flag.Float64("depth", defaultDepth, "Modulation depth, 0..1")
		cutoff        = flag.Float64("cutoff", defaultCutoffHz, "Smoothing low-pass cutoff in Hz")
		q             = flag.Float64("q", defaultQ, "Smoothing low-pass resonance")
		interpolation = flag.String("interp", "linear", "Fractional delay interpolation: linear, cubic")
		demo          = flag.Bool("demo", false, "Run a demonstration")
	)
	flag.Parse()

	if *demo {
		runDemo()
		return
	}

	mode, err := selfmod.ParseInterpolation(*interpolation)
	if err != nil {
		log.Fatalf("Invalid interpolation: %v", err)
	}

	config := selfmod.DefaultConfig(*sampleRate)
	config.Channels = *channels
	config.Interpolation = mode

	p, err := selfmod.New(&config)
	if err != nil {
		log.Fatalf("Failed to create processor: %v", err)
	}

	params := selfmod.Params{Depth: *depth, CutoffHz: *cutoff, Q: *q}
	printInfo(p, params)

	fmt.Println("\nProcessing test signal...")
	signal := generateTestSignal(int(*sampleRate*testSignalSeconds), *sampleRate)
	buffer := make([][]float64, config.Channels)
	for ch := range buffer {
		buffer[ch] = append([]float64(nil), signal...)
	}

	start := time.Now()
	if err := processBlocks(p, buffer, params); err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
	elapsed := time.Since(start)

	summary := analysis.Summarize(buffer[0], *sampleRate)
	fmt.Printf("  Input RMS:  %.4f\n", analysis.RMS(signal))
	fmt.Printf("  Output RMS: %.4f, peak %.4f, finite %v\n", summary.RMS, summary.Peak, summary.Finite)
	fmt.Printf("  Dominant output frequency: %.1f Hz\n", summary.DominantHz)
	fmt.Printf("  Processed %d frames x %d channels in %v\n", len(signal), config.Channels, elapsed)
}

// printInfo prints the effect configuration.
func printInfo(p *selfmod.Processor, params selfmod.Params) {
	info := p.GetInfo()
	fmt.Printf("Processor created:\n")
	fmt.Printf("  Algorithm: %s\n", info.Algorithm)
	fmt.Printf("  Sample rate: %g Hz, %d channels, %d-bit float\n", info.SampleRate, info.Channels, info.Precision)
	fmt.Printf("  Base delay: %d samples (%.1f ms)\n", info.Latency, float64(info.Latency)/info.SampleRate*msPerSecond)
	fmt.Printf("  Modulation swing at depth %.2f: ±%.1f samples\n", params.Depth, p.ModulationDepthSamples(params.Depth))
	fmt.Printf("  Tail: %d samples (%.1f ms)\n", info.TailLength, p.TailSeconds()*msPerSecond)
	fmt.Printf("  Delay capacity: %d samples per channel\n", info.DelayCapacity)
	fmt.Printf("  Interpolation: %s\n", info.Interpolation)
	fmt.Printf("  Memory usage: %.2f KB\n", float64(info.MemoryUsage)/bytesPerKilobyte)
	fmt.Printf("  SIMD: %s\n", info.SIMDType)
}

// processBlocks runs buffer through p in blocks of the configured size.
func processBlocks(p *selfmod.Processor, buffer [][]float64, params selfmod.Params) error {
	blockSize := p.Config().MaxBlockSize
	block := make([][]float64, len(buffer))
	for start := 0; start < len(buffer[0]); start += blockSize {
		end := min(start+blockSize, len(buffer[0]))
		for ch := range buffer {
			block[ch] = buffer[ch][start:end]
		}
		if err := p.Process(block, params); err != nil {
			return err
		}
	}
	return nil
}

func generateTestSignal(samples int, sampleRate float64) []float64 {
	signal := make([]float64, samples)
	omega := 2 * math.Pi * testSignalFrequency / sampleRate
	for i := range signal {
		signal[i] = testSignalAmplitude * math.Sin(omega*float64(i))
	}
	return signal
}

func runDemo() {
	fmt.Println("=== Self-Modulating Delay Demo ===")

	// Demo 1: Depth curve
	fmt.Println("\n1. Depth Curve (delay swing for a full-scale sample)")
	fmt.Println("-----------------------------------------------------")

	p, err := selfmod.NewMono(sampleRateDAT)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, depth := range []float64{0, 0.25, 0.5, 0.75, 1} {
		swing := p.ModulationDepthSamples(depth)
		fmt.Printf("  depth %.2f: ±%7.1f samples (±%5.2f ms)\n",
			depth, swing, swing/sampleRateDAT*msPerSecond)
	}

	// Demo 2: Sample rates
	fmt.Println("\n2. Sample Rates")
	fmt.Println("---------------")

	for _, rate := range []float64{sampleRateCD, sampleRateDAT, sampleRateHiRes} {
		if err := p.Prepare(rate, selfmod.DefaultMaxBlockSize); err != nil {
			fmt.Printf("  %.0f Hz: Error - %v\n", rate, err)
			continue
		}
		info := p.GetInfo()
		fmt.Printf("  %.0f Hz: base delay %d, tail %d, capacity %d samples\n",
			rate, info.Latency, info.TailLength, info.DelayCapacity)
	}

	// Demo 3: Filter settings
	fmt.Println("\n3. Smoothing Filter (1 s of 440 Hz at depth 1)")
	fmt.Println("-----------------------------------------------")

	signal := generateTestSignal(int(sampleRateDAT), sampleRateDAT)
	for _, f := range []struct{ cutoff, q float64 }{{200, 0.707}, {1000, 0.707}, {1000, 8}, {8000, 0.707}} {
		out, err := selfmod.ProcessMono(signal, sampleRateDAT, selfmod.Params{Depth: 1, CutoffHz: f.cutoff, Q: f.q})
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}
		s := analysis.Summarize(out, sampleRateDAT)
		fmt.Printf("  cutoff %6.0f Hz, Q %5.3f: RMS %.4f, peak %.4f\n", f.cutoff, f.q, s.RMS, s.Peak)
	}

	// Demo 4: Multi-channel memory
	fmt.Println("\n4. Multi-channel Processing")
	fmt.Println("---------------------------")

	for _, ch := range []int{monoChannels, stereoChannels, surround5_1, surround7_1} {
		config := selfmod.DefaultConfig(sampleRateDAT)
		config.Channels = ch

		mc, err := selfmod.New(&config)
		if err != nil {
			fmt.Printf("  %d channels: Error - %v\n", ch, err)
			continue
		}
		fmt.Printf("  %d channels: %.1f KB total memory\n",
			ch, float64(mc.GetInfo().MemoryUsage)/bytesPerKilobyte)
	}

	fmt.Println("\n=== Demo Complete ===")
}
