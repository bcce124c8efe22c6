package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-selfmod/internal/filter"
	"github.com/tphakala/go-selfmod/internal/testutil"
)

const testBlockSize = 512

func newPreparedProcessor(t *testing.T, channels int, mode Interpolation) *Processor[float64] {
	t.Helper()
	s := DefaultSettings()
	s.Channels = channels
	s.Interpolation = mode

	p, err := NewProcessor[float64](s)
	require.NoError(t, err)
	require.NoError(t, p.Prepare(testSampleRate, testBlockSize))
	return p
}

// processInBlocks runs a mono signal through p in host-sized blocks.
func processInBlocks(p *Processor[float64], input []float64, blockSize int, params Params) []float64 {
	out := append([]float64(nil), input...)
	for start := 0; start < len(out); start += blockSize {
		end := min(start+blockSize, len(out))
		p.ProcessBlock([][]float64{out[start:end]}, params)
	}
	return out
}

func TestNewProcessor_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero channels", func(s *Settings) { s.Channels = 0 }},
		{"negative input channels", func(s *Settings) { s.InputChannels = -1 }},
		{"too many input channels", func(s *Settings) { s.InputChannels = 3 }},
		{"negative depth", func(s *Settings) { s.MaxDepthSeconds = -0.1 }},
		{"NaN depth", func(s *Settings) { s.MaxDepthSeconds = math.NaN() }},
		{"zero max delay", func(s *Settings) { s.MaxDelaySeconds = 0 }},
		{"infinite max delay", func(s *Settings) { s.MaxDelaySeconds = math.Inf(1) }},
		{"zero steepness", func(s *Settings) { s.DepthCurveSteepness = 0 }},
		{"unknown interpolation", func(s *Settings) { s.Interpolation = Interpolation(7) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			_, err := NewProcessor[float64](s)
			require.Error(t, err)
		})
	}
}

func TestNewProcessor_InputChannelsDefaultToChannels(t *testing.T) {
	p, err := NewProcessor[float64](DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 2, p.Settings().InputChannels)
	assert.False(t, p.Prepared())
}

func TestProcessor_PrepareValidation(t *testing.T) {
	p, err := NewProcessor[float64](DefaultSettings())
	require.NoError(t, err)

	for _, rate := range []float64{0, -48000, math.NaN(), math.Inf(1)} {
		err := p.Prepare(rate, testBlockSize)
		require.Error(t, err, "rate %v", rate)
		assert.True(t, errors.Is(err, ErrInvalidPrepare))
	}

	err = p.Prepare(testSampleRate, 0)
	require.ErrorIs(t, err, ErrInvalidPrepare)
	assert.False(t, p.Prepared())
}

func TestProcessor_UnpreparedOutputsSilence(t *testing.T) {
	p, err := NewProcessor[float64](DefaultSettings())
	require.NoError(t, err)

	left := testutil.SineWave(256, 440, testSampleRate, 1)
	right := testutil.SineWave(256, 660, testSampleRate, 1)
	p.ProcessBlock([][]float64{left, right}, DefaultParams())

	testutil.AssertSilent(t, left)
	testutil.AssertSilent(t, right)
}

func TestProcessor_PrepareSizesDelayBuffers(t *testing.T) {
	p := newPreparedProcessor(t, 2, InterpolationLinear)
	assert.Equal(t, 144000, p.DelayCapacity())
	assert.Equal(t, testBlockSize, p.BlockSize())

	require.NoError(t, p.Prepare(44100, 1024))
	assert.Equal(t, 132300, p.DelayCapacity())
	assert.Equal(t, 44100.0, p.SampleRate())
	assert.Equal(t, 1024, p.BlockSize())
}

func TestProcessor_CoefficientRecomputePolicy(t *testing.T) {
	p := newPreparedProcessor(t, 1, InterpolationLinear)
	require.Equal(t, uint64(1), p.CoefficientUpdates())

	block := func(params Params) {
		p.ProcessBlock([][]float64{make([]float64, 64)}, params)
	}

	params := Params{Depth: 0.5, CutoffHz: defaultCutoffHz, Q: defaultQ}
	block(params)
	assert.Equal(t, uint64(1), p.CoefficientUpdates(), "same cutoff/Q as prepare")

	for _, depth := range []float64{0, 0.25, 1} {
		params.Depth = depth
		block(params)
	}
	assert.Equal(t, uint64(1), p.CoefficientUpdates(), "depth changes must not recompute")

	params.CutoffHz = 2000
	block(params)
	block(params)
	assert.Equal(t, uint64(2), p.CoefficientUpdates())

	params.Q = 2
	block(params)
	assert.Equal(t, uint64(3), p.CoefficientUpdates())

	require.NoError(t, p.Prepare(testSampleRate, 256))
	assert.Equal(t, uint64(3), p.CoefficientUpdates(), "same rate keeps coefficients")

	require.NoError(t, p.Prepare(96000, 256))
	assert.Equal(t, uint64(4), p.CoefficientUpdates(), "rate change recomputes")
	assert.Equal(t, filter.LowpassRBJ(96000, 2000, 2), p.Coefficients())
}

func TestProcessor_ClampedParametersShareCacheEntry(t *testing.T) {
	p := newPreparedProcessor(t, 1, InterpolationLinear)

	p.ProcessBlock([][]float64{make([]float64, 16)}, Params{CutoffHz: 1e6, Q: 100})
	updates := p.CoefficientUpdates()

	// Both clamp to the same (fs/2-1, MaxQ) pair.
	p.ProcessBlock([][]float64{make([]float64, 16)}, Params{CutoffHz: 5e6, Q: 500})
	assert.Equal(t, updates, p.CoefficientUpdates())
	assert.True(t, p.Coefficients().IsStable())
}

func TestProcessor_DepthZeroIsConstantDelay(t *testing.T) {
	const (
		length  = 8000
		impulse = 100
	)

	p := newPreparedProcessor(t, 1, InterpolationLinear)
	params := Params{Depth: 0, CutoffHz: testCutoff, Q: testQ}
	out := processInBlocks(p, testutil.Impulse(length, impulse), testBlockSize, params)

	// Reference: the same impulse through the filter alone.
	ref := testutil.Impulse(length, impulse)
	newTestLowPass(1).Process(0, ref)

	bias := int(math.Round(p.BiasSamples()))
	require.Equal(t, 4800, bias)

	for i := range bias {
		require.Zero(t, out[i], "output before the bias delay must be silent (i=%d)", i)
	}
	for i := bias; i < length; i++ {
		require.InDelta(t, ref[i-bias], out[i], 1e-12, "sample %d", i)
	}

	// The impulse itself (first non-zero sample) lands exactly bias samples later.
	assert.Zero(t, out[bias+impulse-1])
	assert.NotZero(t, out[bias+impulse])
	assert.Equal(t, argMaxAbs(ref)+bias, argMaxAbs(out))
}

func TestProcessor_FullDepthStressStaysFinite(t *testing.T) {
	for _, mode := range []Interpolation{InterpolationLinear, InterpolationCubic} {
		t.Run(mode.String(), func(t *testing.T) {
			p := newPreparedProcessor(t, 2, mode)

			const length = 96000
			left := make([]float64, length)
			right := make([]float64, length)
			for i := range left {
				// Full-scale square and alternating-sign clicks.
				if (i/37)%2 == 0 {
					left[i] = 1
				} else {
					left[i] = -1
				}
				if i%2 == 0 {
					right[i] = 1
				} else {
					right[i] = -1
				}
			}

			params := Params{Depth: 1, CutoffHz: 18000, Q: filter.MaxQ}
			require.NotPanics(t, func() {
				for start := 0; start < length; start += testBlockSize {
					end := min(start+testBlockSize, length)
					p.ProcessBlock([][]float64{left[start:end], right[start:end]}, params)
				}
			})

			testutil.AssertNoNaNOrInf(t, left)
			testutil.AssertNoNaNOrInf(t, right)
		})
	}
}

func TestProcessor_NonFiniteInputNeverReachesOutput(t *testing.T) {
	p := newPreparedProcessor(t, 1, InterpolationLinear)

	buf := testutil.SineWave(20000, 440, testSampleRate, 1)
	buf[5] = math.NaN()
	buf[6] = math.Inf(1)
	buf[7] = math.Inf(-1)
	buf[8] = math.MaxFloat64
	buf[9] = -math.MaxFloat64

	for start := 0; start < len(buf); start += testBlockSize {
		end := min(start+testBlockSize, len(buf))
		p.ProcessBlock([][]float64{buf[start:end]}, Params{Depth: 1, CutoffHz: 5000, Q: 10})
	}

	testutil.AssertNoNaNOrInf(t, buf)
}

func TestProcessor_NonFiniteParametersKeepLastValid(t *testing.T) {
	p := newPreparedProcessor(t, 1, InterpolationLinear)
	params := Params{Depth: 0.3, CutoffHz: 3000, Q: 1.5}
	p.ProcessBlock([][]float64{make([]float64, 32)}, params)
	coeffs := p.Coefficients()
	updates := p.CoefficientUpdates()

	buf := testutil.SineWave(512, 440, testSampleRate, 1)
	p.ProcessBlock([][]float64{buf}, Params{Depth: math.NaN(), CutoffHz: math.Inf(1), Q: math.NaN()})

	assert.Equal(t, coeffs, p.Coefficients())
	assert.Equal(t, updates, p.CoefficientUpdates())
	testutil.AssertNoNaNOrInf(t, buf)
}

func TestProcessor_SilenceInSilenceOut(t *testing.T) {
	paramSets := []Params{
		{Depth: 0, CutoffHz: 20, Q: 0.1},
		{Depth: 0.5, CutoffHz: 1000, Q: 0.707},
		{Depth: 1, CutoffHz: 23000, Q: 20},
	}

	for _, mode := range []Interpolation{InterpolationLinear, InterpolationCubic} {
		p := newPreparedProcessor(t, 2, mode)
		for _, params := range paramSets {
			left := make([]float64, testBlockSize)
			right := make([]float64, testBlockSize)
			p.ProcessBlock([][]float64{left, right}, params)
			testutil.AssertSilent(t, left)
			testutil.AssertSilent(t, right)
		}
	}
}

func TestProcessor_SineBurstEndToEnd(t *testing.T) {
	p := newPreparedProcessor(t, 1, InterpolationLinear)
	input := testutil.SineWave(int(testSampleRate), 440, testSampleRate, 1)
	params := Params{Depth: 0.5, CutoffHz: 1000, Q: 0.707}

	out := processInBlocks(p, input, testBlockSize, params)

	testutil.AssertNoNaNOrInf(t, out)
	testutil.AssertAllInRange(t, out, -1.5, 1.5)

	// Skip the bias delay and modulation excursion before measuring.
	settled := int(p.BiasSamples() + p.ModulationDepthSamples(params.Depth))
	inRMS := testutil.RMS(input[settled:])
	outRMS := testutil.RMS(out[settled:])
	ratio := outRMS / inRMS

	assert.Greater(t, outRMS, 0.0)
	testutil.AssertInRange(t, ratio, 0.1, 2.0)
}

func TestProcessor_BlockSizeIndependent(t *testing.T) {
	input := testutil.SineWave(6000, 300, testSampleRate, 0.9)
	params := Params{Depth: 0.8, CutoffHz: 2500, Q: 1.2}

	whole := processInBlocks(newPreparedProcessor(t, 1, InterpolationLinear), input, len(input), params)
	small := processInBlocks(newPreparedProcessor(t, 1, InterpolationLinear), input, 100, params)

	assert.InDeltaSlice(t, whole, small, 1e-12)
}

func TestProcessor_ExtraOutputChannelsAreSilenced(t *testing.T) {
	s := DefaultSettings()
	s.Channels = 2
	s.InputChannels = 1
	p, err := NewProcessor[float64](s)
	require.NoError(t, err)
	require.NoError(t, p.Prepare(testSampleRate, testBlockSize))

	left := testutil.SineWave(testBlockSize, 440, testSampleRate, 1)
	right := testutil.SineWave(testBlockSize, 440, testSampleRate, 1)
	extra := testutil.SineWave(testBlockSize, 440, testSampleRate, 1)

	p.ProcessBlock([][]float64{left, right, extra}, DefaultParams())

	testutil.AssertSilent(t, right)
	testutil.AssertSilent(t, extra)
}

func TestProcessor_Float32MatchesFloat64(t *testing.T) {
	input := testutil.SineWave(12000, 220, testSampleRate, 0.7)
	params := Params{Depth: 0.5, CutoffHz: 1000, Q: 0.707}

	want := processInBlocks(newPreparedProcessor(t, 1, InterpolationLinear), input, testBlockSize, params)

	s := DefaultSettings()
	s.Channels = 1
	p32, err := NewProcessor[float32](s)
	require.NoError(t, err)
	require.NoError(t, p32.Prepare(testSampleRate, testBlockSize))

	got := testutil.ToFloat32(input)
	for start := 0; start < len(got); start += testBlockSize {
		end := min(start+testBlockSize, len(got))
		p32.ProcessBlock([][]float32{got[start:end]}, params)
	}

	for i := range want {
		require.InDelta(t, want[i], float64(got[i]), 1e-3, "sample %d", i)
	}
}

func TestProcessor_TailAndMemory(t *testing.T) {
	p := newPreparedProcessor(t, 2, InterpolationLinear)

	// bias (4800) + curve(1)·bias (4725)
	testutil.AssertRelativeError(t, 9525, float64(p.TailSamples()), 1e-3)
	assert.InDelta(t, 4800, p.BiasSamples(), 1e-9)
	assert.InDelta(t, 525, p.ModulationDepthSamples(0.5), 1e-9)
	assert.Zero(t, p.ModulationDepthSamples(0))
	assert.GreaterOrEqual(t, p.MemoryUsage(), int64(2*144000*8))
}

func TestProcessor_Statistics(t *testing.T) {
	p := newPreparedProcessor(t, 1, InterpolationLinear)
	processInBlocks(p, make([]float64, 1000), 250, DefaultParams())

	stats := p.GetStatistics()
	assert.Equal(t, int64(4), stats["blocksProcessed"])
	assert.Equal(t, int64(1000), stats["samplesProcessed"])
	assert.Equal(t, int64(1), stats["coefficientUpdates"])
}

func TestProcessor_NoAllocations(t *testing.T) {
	p := newPreparedProcessor(t, 2, InterpolationCubic)
	left := testutil.SineWave(testBlockSize, 440, testSampleRate, 1)
	right := testutil.SineWave(testBlockSize, 550, testSampleRate, 1)
	buffer := [][]float64{left, right}
	params := Params{Depth: 0.7, CutoffHz: 1500, Q: 0.9}

	allocs := testing.AllocsPerRun(100, func() {
		p.ProcessBlock(buffer, params)
	})
	assert.Zero(t, allocs)
}

func argMaxAbs(s []float64) int {
	best, idx := -1.0, -1
	for i, v := range s {
		if math.Abs(v) > best {
			best, idx = math.Abs(v), i
		}
	}
	return idx
}
