// Package analysis measures rendered audio: level statistics via the SIMD
// kernels and spectra via gonum's FFT.
package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-selfmod/internal/simdops"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// ErrTooShort is returned when a signal is too short to analyze.
var ErrTooShort = errors.New("signal too short for analysis")

// minSpectrumLength is the smallest signal Spectrum accepts.
const minSpectrumLength = 16

// RMS returns the root-mean-square level of s, or 0 for an empty slice.
func RMS[F simdops.Float](s []F) float64 {
	if len(s) == 0 {
		return 0
	}
	ops := simdops.For[F]()
	return math.Sqrt(float64(ops.DotProductUnsafe(s, s)) / float64(len(s)))
}

// DC returns the mean of s, or 0 for an empty slice.
func DC[F simdops.Float](s []F) float64 {
	if len(s) == 0 {
		return 0
	}
	return float64(simdops.For[F]().Sum(s)) / float64(len(s))
}

// Peak returns the largest absolute sample value of s.
func Peak(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Max(floats.Max(s), -floats.Min(s))
}

// Spectrum is a one-sided magnitude spectrum.
type Spectrum struct {
	SampleRate  float64
	Frequencies []float64 // Hz
	Magnitudes  []float64 // linear, normalized so a full-scale sine reads ~1
}

// ComputeSpectrum returns the Hann-windowed magnitude spectrum of signal.
// The input is not modified.
func ComputeSpectrum(signal []float64, sampleRate float64) (*Spectrum, error) {
	n := len(signal)
	if n < minSpectrumLength {
		return nil, ErrTooShort
	}

	windowed := window.Hann(append([]float64(nil), signal...))

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	// Hann coherent gain is 0.5; one-sided spectrum doubles the energy.
	scale := 4 / float64(n)

	spectrum := &Spectrum{
		SampleRate:  sampleRate,
		Frequencies: make([]float64, len(coeffs)),
		Magnitudes:  make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		spectrum.Frequencies[i] = fft.Freq(i) * sampleRate
		spectrum.Magnitudes[i] = cmplx.Abs(c) * scale
	}

	return spectrum, nil
}

// Dominant returns the frequency of the strongest non-DC bin.
func (s *Spectrum) Dominant() float64 {
	if len(s.Magnitudes) < 2 {
		return 0
	}
	return s.Frequencies[1+floats.MaxIdx(s.Magnitudes[1:])]
}

// EnergyAbove returns the fraction of spectral energy at or above freqHz.
func (s *Spectrum) EnergyAbove(freqHz float64) float64 {
	var total, above float64
	for i, m := range s.Magnitudes {
		e := m * m
		total += e
		if s.Frequencies[i] >= freqHz {
			above += e
		}
	}
	if total == 0 {
		return 0
	}
	return above / total
}

// DominantFrequency is a shortcut for ComputeSpectrum followed by Dominant.
func DominantFrequency(signal []float64, sampleRate float64) (float64, error) {
	spectrum, err := ComputeSpectrum(signal, sampleRate)
	if err != nil {
		return 0, err
	}
	return spectrum.Dominant(), nil
}

// Summary describes one channel of rendered audio.
type Summary struct {
	RMS        float64
	Peak       float64
	DC         float64
	DominantHz float64 // 0 when the signal is too short for a spectrum
	Finite     bool    // false if any sample is NaN or ±Inf
}

// Summarize computes a Summary for s.
func Summarize(s []float64, sampleRate float64) Summary {
	sum := Summary{
		RMS:    RMS(s),
		Peak:   Peak(s),
		DC:     DC(s),
		Finite: !floats.HasNaN(s) && allFinite(s),
	}
	if freq, err := DominantFrequency(s, sampleRate); err == nil {
		sum.DominantHz = freq
	}
	return sum
}

func allFinite(s []float64) bool {
	for _, v := range s {
		if math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
