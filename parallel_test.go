package selfmod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderParallel tests that parallel rendering produces the same result
// as sequential rendering.
func TestRenderParallel(t *testing.T) {
	const (
		channels   = 4
		numSamples = 9600
		freq       = 440.0
	)

	input := make([][]float64, channels)
	for ch := range channels {
		input[ch] = make([]float64, numSamples)
		for i := range numSamples {
			// Different phases per channel to ensure independent processing
			phase := float64(ch) * math.Pi / 4
			input[ch][i] = math.Sin(2*math.Pi*freq*float64(i)/RateDAT + phase)
		}
	}

	configSeq := DefaultConfig(RateDAT)
	configSeq.Channels = channels
	configPar := configSeq
	configPar.EnableParallel = true

	params := Params{Depth: 0.8, CutoffHz: 1500, Q: 2}

	outputSeq, err := Render(&configSeq, input, params, true)
	require.NoError(t, err)
	outputPar, err := Render(&configPar, input, params, true)
	require.NoError(t, err)

	require.Len(t, outputPar, channels)
	for ch := range channels {
		assert.Equal(t, outputSeq[ch], outputPar[ch], "channel %d differs", ch)
	}
}

// TestRenderParallel_InputChannels verifies silenced channels stay silent
// when rendered concurrently.
func TestRenderParallel_InputChannels(t *testing.T) {
	cfg := DefaultConfig(RateDAT)
	cfg.InputChannels = 1
	cfg.EnableParallel = true

	input := [][]float64{sine(2048, 440, RateDAT), sine(2048, 440, RateDAT)}
	out, err := Render(&cfg, input, DefaultParams(), false)
	require.NoError(t, err)

	for i, v := range out[1] {
		require.Zero(t, v, "sample %d", i)
	}
}

// TestRenderParallel_InvalidConfig verifies errors from worker goroutines
// are reported.
func TestRenderParallel_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig(-1)
	cfg.EnableParallel = true

	_, err := Render(&cfg, [][]float64{{0}, {0}}, DefaultParams(), false)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
