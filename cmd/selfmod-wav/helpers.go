package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/go-selfmod"
	"github.com/tphakala/go-selfmod/internal/analysis"
)

// Float constraint for generic processing.
type Float interface {
	float32 | float64
}

// renderStats summarizes one rendered file.
type renderStats struct {
	sampleRate    int
	channels      int
	bitDepth      int
	interpolation string
	inputFrames   int64
	outputFrames  int64
	tailFrames    int64
	inputRMS      float64
	outputRMS     float64
	outputPeak    float64
	dominantHz    float64
}

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file         *os.File
	decoder      *wav.Decoder
	rate         int
	channels     int
	bitDepth     int
	totalSamples int64
	format       *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if bitDepth != bitsPerSample16 && bitDepth != bitsPerSample24 && bitDepth != bitsPerSample32 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("unsupported bit depth %d (want 16, 24 or 32)", bitDepth)
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
	}

	// Get total duration for progress reporting
	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}
	totalSamples := int64(duration.Seconds() * float64(format.SampleRate))

	return &wavInputInfo{
		file:         inputFile,
		decoder:      decoder,
		rate:         format.SampleRate,
		channels:     format.NumChannels,
		bitDepth:     bitDepth,
		totalSamples: totalSamples,
		format:       format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and its PCM writer.
type wavOutputWriter struct {
	file   *os.File
	writer *fastWAVWriter
}

// createWAVOutput creates output file and writer.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	fastWriter, err := newFastWAVWriter(outputFile, sampleRate, bitDepth, channels)
	if err != nil {
		_ = outputFile.Close()
		return nil, fmt.Errorf("failed to create WAV writer: %w", err)
	}

	return &wavOutputWriter{
		file:   outputFile,
		writer: fastWriter,
	}, nil
}

// WriteSamples writes samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	return w.writer.WriteSamples(samples)
}

// Close closes the output writer and file.
func (w *wavOutputWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		return err
	}
	return w.file.Close()
}

// blockProcessor is the part of the effect API the renderer needs; both
// *selfmod.Processor and *selfmod.ProcessorFloat32 satisfy it for their F.
type blockProcessor[F Float] interface {
	ProcessBlock(buffer [][]F, params selfmod.Params)
	TailLength() int
	GetInfo() selfmod.Info
}

// newProcessor creates the effect for the file's layout in precision F.
func newProcessor[F Float](sampleRate, channels int, opts options) (blockProcessor[F], error) {
	if opts.blockSize < 1 {
		return nil, fmt.Errorf("block size must be at least 1: %d", opts.blockSize)
	}

	cfg := selfmod.DefaultConfig(float64(sampleRate))
	cfg.Channels = channels
	cfg.MaxBlockSize = opts.blockSize
	if opts.cubic {
		cfg.Interpolation = selfmod.InterpolationCubic
	}

	var zero F
	var proc any
	var err error
	switch any(zero).(type) {
	case float32:
		proc, err = selfmod.NewFloat32(&cfg)
	default:
		proc, err = selfmod.New(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create processor: %w", err)
	}

	bp, ok := proc.(blockProcessor[F])
	if !ok {
		return nil, fmt.Errorf("processor does not support %T samples", zero)
	}
	return bp, nil
}

// effectBuffers holds all preallocated buffers for processing.
type effectBuffers[F Float] struct {
	intBuffer    *audio.IntBuffer
	channelBufs  [][]F
	block        [][]F // per-channel views handed to ProcessBlock
	outputIntBuf []int
	invMaxVal    float64
	maxVal       float64
}

// newEffectBuffers creates and preallocates all processing buffers.
func newEffectBuffers[F Float](channels, bitDepth int, format *audio.Format) *effectBuffers[F] {
	intBuffer := &audio.IntBuffer{
		Data:           make([]int, bufferSize*channels),
		Format:         format,
		SourceBitDepth: bitDepth,
	}

	channelBufs := make([][]F, channels)
	for ch := range channels {
		channelBufs[ch] = make([]F, bufferSize)
	}

	maxVal := getMaxValue(bitDepth)

	return &effectBuffers[F]{
		intBuffer:    intBuffer,
		channelBufs:  channelBufs,
		block:        make([][]F, channels),
		outputIntBuf: make([]int, bufferSize*channels),
		invMaxVal:    1.0 / maxVal,
		maxVal:       maxVal,
	}
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalSamples int64
	lastProgress int
	verbose      bool
}

// newProgressTracker creates a new progress tracker.
func newProgressTracker(totalSamples int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalSamples: totalSamples,
		verbose:      verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentSamples int64) {
	if !p.verbose || p.totalSamples == 0 {
		return
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}

// levelMeter accumulates channel 0 levels and keeps the start of the output
// for spectral analysis.
type levelMeter[F Float] struct {
	inSumSq   float64
	inFrames  int64
	outSumSq  float64
	outFrames int64
	peak      float64
	window    []float64
	capacity  int
	scratch   []float64
}

func newLevelMeter[F Float](windowFrames int) *levelMeter[F] {
	return &levelMeter[F]{
		window:   make([]float64, 0, windowFrames),
		capacity: windowFrames,
		scratch:  make([]float64, bufferSize),
	}
}

func (m *levelMeter[F]) addInput(block []F) {
	rms := analysis.RMS(block)
	m.inSumSq += rms * rms * float64(len(block))
	m.inFrames += int64(len(block))
}

func (m *levelMeter[F]) addOutput(block []F) {
	rms := analysis.RMS(block)
	m.outSumSq += rms * rms * float64(len(block))
	m.outFrames += int64(len(block))

	samples := m.scratch[:len(block)]
	for i, v := range block {
		samples[i] = float64(v)
	}
	m.peak = math.Max(m.peak, analysis.Peak(samples))
	if room := m.capacity - len(m.window); room > 0 {
		m.window = append(m.window, samples[:min(room, len(samples))]...)
	}
}

// fill writes the accumulated levels into stats.
func (m *levelMeter[F]) fill(stats *renderStats, sampleRate float64) {
	if m.inFrames > 0 {
		stats.inputRMS = math.Sqrt(m.inSumSq / float64(m.inFrames))
	}
	if m.outFrames > 0 {
		stats.outputRMS = math.Sqrt(m.outSumSq / float64(m.outFrames))
	}
	stats.outputPeak = m.peak
	if freq, err := analysis.DominantFrequency(m.window, sampleRate); err == nil {
		stats.dominantHz = freq
	}
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleaveInto converts interleaved int samples into preallocated per-channel buffers.
// This avoids allocations in the hot loop.
func deinterleaveInto[F Float](data []int, channelBufs [][]F, numChannels, samplesPerChannel int, invMaxVal float64) {
	// Fast path for mono
	if numChannels == monoChannels {
		buf := channelBufs[0]
		for i := range samplesPerChannel {
			buf[i] = F(float64(data[i]) * invMaxVal)
		}
		return
	}

	// Fast path for stereo
	if numChannels == stereoChannels {
		buf0, buf1 := channelBufs[0], channelBufs[1]
		for i := range samplesPerChannel {
			idx := i * stereoChannels
			buf0[i] = F(float64(data[idx]) * invMaxVal)
			buf1[i] = F(float64(data[idx+1]) * invMaxVal)
		}
		return
	}

	// General case
	for i := range samplesPerChannel {
		base := i * numChannels
		for ch := range numChannels {
			channelBufs[ch][i] = F(float64(data[base+ch]) * invMaxVal)
		}
	}
}

// interleaveInto converts per-channel float slices into a preallocated int
// buffer, clipping to full scale. Returns the number of elements written, or
// 0 if dst is too small.
func interleaveInto[F Float](channels [][]F, dst []int, maxVal float64) int {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return 0
	}

	numChannels := len(channels)
	samplesPerChannel := len(channels[0])
	totalLen := samplesPerChannel * numChannels
	if len(dst) < totalLen {
		return 0
	}

	for i := range samplesPerChannel {
		base := i * numChannels
		for ch := range numChannels {
			dst[base+ch] = int(clipUnit(float64(channels[ch][i])) * maxVal)
		}
	}

	return totalLen
}

// clipUnit limits s to [-1, 1].
func clipUnit(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}
