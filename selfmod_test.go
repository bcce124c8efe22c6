package selfmod

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero fields take defaults", func(c *Config) {
			c.MaxBlockSize, c.MaxDepthSeconds, c.MaxDelaySeconds, c.DepthCurveSteepness = 0, 0, 0, 0
		}, false},
		{"mono in stereo out", func(c *Config) { c.InputChannels = 1 }, false},
		{"cubic", func(c *Config) { c.Interpolation = InterpolationCubic }, false},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"NaN sample rate", func(c *Config) { c.SampleRate = math.NaN() }, true},
		{"sample rate too high", func(c *Config) { c.SampleRate = 1e7 }, true},
		{"negative block size", func(c *Config) { c.MaxBlockSize = -1 }, true},
		{"no channels", func(c *Config) { c.Channels = 0 }, true},
		{"too many channels", func(c *Config) { c.Channels = maxChannels + 1 }, true},
		{"input channels above channels", func(c *Config) { c.InputChannels = 3 }, true},
		{"negative depth", func(c *Config) { c.MaxDepthSeconds = -0.1 }, true},
		{"delay shorter than excursion", func(c *Config) { c.MaxDepthSeconds = 2; c.MaxDelaySeconds = 3 }, true},
		{"infinite delay", func(c *Config) { c.MaxDelaySeconds = math.Inf(1) }, true},
		{"negative steepness", func(c *Config) { c.DepthCurveSteepness = -6 }, true},
		{"unknown interpolation", func(c *Config) { c.Interpolation = Interpolation(9) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(RateDAT)
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFloat32(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_AppliesDefaults(t *testing.T) {
	p, err := New(&Config{SampleRate: RateCD, Channels: 1})
	require.NoError(t, err)

	cfg := p.Config()
	assert.Equal(t, DefaultMaxBlockSize, cfg.MaxBlockSize)
	assert.Equal(t, 0.1, cfg.MaxDepthSeconds)
	assert.Equal(t, 3.0, cfg.MaxDelaySeconds)
	assert.Equal(t, 6.0, cfg.DepthCurveSteepness)
	assert.True(t, p.Prepared())
}

func TestSupportsLayout(t *testing.T) {
	assert.True(t, SupportsLayout(1, 1))
	assert.True(t, SupportsLayout(2, 2))
	assert.False(t, SupportsLayout(1, 2))
	assert.False(t, SupportsLayout(2, 1))
	assert.False(t, SupportsLayout(6, 6))
	assert.False(t, SupportsLayout(0, 0))
}

func TestParseInterpolation(t *testing.T) {
	mode, err := ParseInterpolation("cubic")
	require.NoError(t, err)
	assert.Equal(t, InterpolationCubic, mode)

	mode, err = ParseInterpolation("Linear")
	require.NoError(t, err)
	assert.Equal(t, InterpolationLinear, mode)

	_, err = ParseInterpolation("sinc")
	require.Error(t, err)
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 0.5, p.Depth)
	assert.Equal(t, 1000.0, p.CutoffHz)
	assert.Equal(t, 0.707, p.Q)
}
