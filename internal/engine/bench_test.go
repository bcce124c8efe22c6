package engine

import (
	"math"
	"testing"
)

func benchmarkProcessBlock[F float32 | float64](b *testing.B, mode Interpolation, blockSize int) {
	b.Helper()

	p, err := NewProcessor[F](Settings{
		Channels:            2,
		MaxDepthSeconds:     DefaultMaxDepthSeconds,
		MaxDelaySeconds:     DefaultMaxDelaySeconds,
		DepthCurveSteepness: DefaultDepthCurveSteepness,
		Interpolation:       mode,
	})
	if err != nil {
		b.Fatal(err)
	}
	if err := p.Prepare(48000, blockSize); err != nil {
		b.Fatal(err)
	}

	left := make([]F, blockSize)
	right := make([]F, blockSize)
	buffer := [][]F{left, right}
	params := Params{Depth: 0.5, CutoffHz: 1000, Q: 0.707}

	phase := 0.0
	b.ReportAllocs()
	b.SetBytes(int64(2 * blockSize))
	b.ResetTimer()
	for b.Loop() {
		for i := range left {
			v := F(math.Sin(phase))
			left[i], right[i] = v, v
			phase += 2 * math.Pi * 440 / 48000
		}
		p.ProcessBlock(buffer, params)
	}
}

// BenchmarkProcessBlock_Linear64 benchmarks the default stereo path.
func BenchmarkProcessBlock_Linear64(b *testing.B) {
	benchmarkProcessBlock[float64](b, InterpolationLinear, 512)
}

func BenchmarkProcessBlock_Cubic64(b *testing.B) {
	benchmarkProcessBlock[float64](b, InterpolationCubic, 512)
}

func BenchmarkProcessBlock_Linear32(b *testing.B) {
	benchmarkProcessBlock[float32](b, InterpolationLinear, 512)
}

// BenchmarkProcessBlock_SmallBlocks benchmarks host-typical 64-sample blocks.
func BenchmarkProcessBlock_SmallBlocks(b *testing.B) {
	benchmarkProcessBlock[float64](b, InterpolationLinear, 64)
}

// BenchmarkLowPass_Process benchmarks the filter alone.
func BenchmarkLowPass_Process(b *testing.B) {
	l := newTestLowPass(1)
	buf := make([]float64, 4096)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.01)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		l.Process(0, buf)
	}
}
