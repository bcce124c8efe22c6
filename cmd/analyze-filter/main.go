// Command analyze-filter prints the response of the smoothing low-pass for a
// cutoff, Q and sample rate, after the same clamping the effect applies.
//
// Usage:
//
//	analyze-filter -cutoff 1000 -q 0.707 -rate 48000
//	analyze-filter -cutoff 300 -q 8 -points 32
package main

import (
	"flag"
	"fmt"
	"math"

	"github.com/tphakala/go-selfmod/internal/filter"
)

const (
	defaultSampleRate = 48000.0
	defaultCutoffHz   = 1000.0
	defaultQ          = 0.707
	defaultPoints     = 24

	// -3 dB search resolution
	searchSteps = 10000

	halfPowerDB = -3.0103
)

func main() {
	rate := flag.Float64("rate", defaultSampleRate, "Sample rate in Hz")
	cutoff := flag.Float64("cutoff", defaultCutoffHz, "Cutoff frequency in Hz")
	q := flag.Float64("q", defaultQ, "Resonance")
	points := flag.Int("points", defaultPoints, "Number of log-spaced response points")
	flag.Parse()

	if !(*rate > 0) || math.IsInf(*rate, 0) {
		fmt.Printf("Error: invalid sample rate %v\n", *rate)
		return
	}

	f := filter.ClampCutoff(*cutoff, *rate)
	res := filter.ClampQ(*q)
	c := filter.LowpassRBJ(*rate, f, res)

	fmt.Println("=== Smoothing Low-Pass ===")
	if f != *cutoff || res != *q {
		fmt.Printf("Clamped: cutoff %.2f -> %.2f Hz, Q %.3f -> %.3f\n", *cutoff, f, *q, res)
	}
	fmt.Printf("Design: RBJ low-pass, fs = %g Hz, f0 = %.2f Hz, Q = %.3f\n\n", *rate, f, res)

	fmt.Println("Coefficients (a0 = 1):")
	fmt.Printf("  b0 = %+.12f\n  b1 = %+.12f\n  b2 = %+.12f\n", c.B0, c.B1, c.B2)
	fmt.Printf("  a1 = %+.12f\n  a2 = %+.12f\n\n", c.A1, c.A2)

	fmt.Printf("Stable: %v\n", c.IsStable())
	fmt.Printf("DC gain: %.10f\n", c.DCGain())
	fmt.Printf("Gain at f0: %.3f dB\n", filter.MagnitudeDB(c.MagnitudeAt(f, *rate)))

	peakFreq, peakDB := findPeak(c, *rate)
	fmt.Printf("Peak: %.3f dB at %.1f Hz\n", peakDB, peakFreq)
	if f3 := findHalfPower(c, *rate); f3 > 0 {
		fmt.Printf("-3 dB point: %.1f Hz\n", f3)
	}

	fmt.Println("\nResponse:")
	nyquist := *rate / 2
	low := math.Log10(filter.MinCutoffHz)
	high := math.Log10(nyquist * 0.999)
	n := max(*points, 2)
	for i := range n {
		freq := math.Pow(10, low+(high-low)*float64(i)/float64(n-1))
		db := filter.MagnitudeDB(c.MagnitudeAt(freq, *rate))
		fmt.Printf("  %9.1f Hz  %8.2f dB  %s\n", freq, db, bar(db))
	}
}

// findPeak scans the linear response for its maximum.
func findPeak(c filter.Coefficients, rate float64) (freq, db float64) {
	resp := filter.ComputeFrequencyResponse(c, rate, searchSteps)
	best := 0
	for i, m := range resp.Magnitude {
		if m > resp.Magnitude[best] {
			best = i
		}
	}
	return resp.Frequencies[best], filter.MagnitudeDB(resp.Magnitude[best])
}

// findHalfPower returns the first frequency above the peak where the response
// falls below -3 dB, or 0 if it never does.
func findHalfPower(c filter.Coefficients, rate float64) float64 {
	resp := filter.ComputeFrequencyResponse(c, rate, searchSteps)
	peakFreq, _ := findPeak(c, rate)
	for i, m := range resp.Magnitude {
		if resp.Frequencies[i] > peakFreq && filter.MagnitudeDB(m) < halfPowerDB {
			return resp.Frequencies[i]
		}
	}
	return 0
}

// bar renders a dB value as a crude horizontal bar from -60 dB.
func bar(db float64) string {
	const (
		floorDB  = -60.0
		dbPerCol = 2.0
	)
	cols := int((db - floorDB) / dbPerCol)
	if cols < 0 {
		cols = 0
	}
	out := make([]byte, cols)
	for i := range out {
		out[i] = '#'
	}
	return string(out)
}
