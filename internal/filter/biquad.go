// Package filter provides second-order IIR filter design for the low-pass
// smoothing stage that precedes the modulated delay.
package filter

import (
	"math"

	"github.com/tphakala/go-selfmod/internal/mathutil"
)

const (
	// Parameter safety bounds applied before coefficient design.
	MinCutoffHz = 20.0
	MinQ        = 0.1
	MaxQ        = 20.0

	// nyquistMarginHz keeps the cutoff strictly below fs/2.
	nyquistMarginHz = 1.0

	// DefaultQ is the Butterworth Q (1/sqrt 2), a maximally flat response.
	DefaultQ = 1 / math.Sqrt2

	nyquistDivisor = 2.0
)

// Coefficients holds a normalized biquad (a0 == 1).
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Passthrough returns the identity filter.
func Passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// LowpassRBJ designs the Audio EQ Cookbook (R. Bristow-Johnson) low-pass
// biquad. The result has unity gain at DC and a resonant peak controlled by q.
//
// No validation is performed: cutoffHz must lie in (0, sampleRate/2) and q must
// be positive. Use ClampCutoff and ClampQ on untrusted input first.
func LowpassRBJ(sampleRate, cutoffHz, q float64) Coefficients {
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	invA0 := 1 / a0

	return Coefficients{
		B0: (1 - cosW0) / 2 * invA0,
		B1: (1 - cosW0) * invA0,
		B2: (1 - cosW0) / 2 * invA0,
		A1: -2 * cosW0 * invA0,
		A2: (1 - alpha) * invA0,
	}
}

// ClampCutoff limits cutoffHz to [MinCutoffHz, sampleRate/2 - 1].
// At very low sample rates where that range is empty the cutoff is placed at
// a quarter of the sample rate.
func ClampCutoff(cutoffHz, sampleRate float64) float64 {
	hi := sampleRate/nyquistDivisor - nyquistMarginHz
	if hi <= MinCutoffHz {
		return sampleRate / (2 * nyquistDivisor)
	}
	return mathutil.Clamp(cutoffHz, MinCutoffHz, hi)
}

// ClampQ limits q to [MinQ, MaxQ].
func ClampQ(q float64) float64 {
	return mathutil.Clamp(q, MinQ, MaxQ)
}

// IsStable reports whether both poles lie strictly inside the unit circle
// (stability triangle for a second-order denominator).
func (c Coefficients) IsStable() bool {
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

// DCGain returns H(1).
func (c Coefficients) DCGain() float64 {
	return (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
}

// MagnitudeAt evaluates |H(e^jω)| at freqHz for the given sample rate.
func (c Coefficients) MagnitudeAt(freqHz, sampleRate float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	cos1, sin1 := math.Cos(w), math.Sin(w)
	cos2, sin2 := math.Cos(2*w), math.Sin(2*w)

	numRe := c.B0 + c.B1*cos1 + c.B2*cos2
	numIm := -(c.B1*sin1 + c.B2*sin2)
	denRe := 1 + c.A1*cos1 + c.A2*cos2
	denIm := -(c.A1*sin1 + c.A2*sin2)

	return math.Sqrt((numRe*numRe + numIm*numIm) / (denRe*denRe + denIm*denIm))
}

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	Frequencies []float64 // Hz
	Magnitude   []float64 // linear
}

// ComputeFrequencyResponse evaluates the response at numPoints frequencies
// linearly spaced from 0 to just below Nyquist.
func ComputeFrequencyResponse(c Coefficients, sampleRate float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}

	nyquist := sampleRate / nyquistDivisor
	for k := range numPoints {
		freq := nyquist * float64(k) / float64(numPoints)
		response.Frequencies[k] = freq
		response.Magnitude[k] = c.MagnitudeAt(freq, sampleRate)
	}

	return response
}

const defaultResponsePoints = 512

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
