package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		lo, hi float64
		want   float64
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, 0, 1, 0},
		{"above", 3, 0, 1, 1},
		{"NaN", math.NaN(), 0, 1, 0},
		{"+Inf", math.Inf(1), 0, 1, 1},
		{"-Inf", math.Inf(-1), 0, 1, 0},
		{"swapped bounds", 5, 10, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.value, tt.lo, tt.hi))
		})
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0))
	assert.True(t, IsFinite(-math.MaxFloat64))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}

func TestFlushDenormal(t *testing.T) {
	assert.Equal(t, 0.0, FlushDenormal(1e-31))
	assert.Equal(t, 0.0, FlushDenormal(-1e-31))
	assert.Equal(t, 0.0, FlushDenormal(math.SmallestNonzeroFloat64))
	assert.Equal(t, 1e-20, FlushDenormal(1e-20))
	assert.Equal(t, float32(0), FlushDenormal(float32(1e-40)))
	assert.Equal(t, float32(0.25), FlushDenormal(float32(0.25)))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, 0.0, Sanitize(math.NaN()))
	assert.Equal(t, 0.0, Sanitize(math.Inf(1)))
	assert.Equal(t, 0.0, Sanitize(math.Inf(-1)))
	assert.Equal(t, -0.75, Sanitize(-0.75))
	assert.Equal(t, math.MaxFloat64, Sanitize(math.MaxFloat64))
	assert.Equal(t, float32(0), Sanitize(float32(math.Inf(1))))
	assert.Equal(t, float32(2), Sanitize(float32(2)))
}
