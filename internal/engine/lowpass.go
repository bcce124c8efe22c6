package engine

import (
	"github.com/tphakala/go-selfmod/internal/filter"
	"github.com/tphakala/go-selfmod/internal/mathutil"
	"github.com/tphakala/go-selfmod/internal/simdops"
)

// History is the Direct Form I state of one channel.
type History[F simdops.Float] struct {
	X1, X2 F // previous inputs
	Y1, Y2 F // previous outputs
}

// LowPass runs one biquad over several channels. All channels share a single
// read-only coefficient set; each channel owns its History.
type LowPass[F simdops.Float] struct {
	coeffs filter.Coefficients

	// Coefficients converted to the sample type once per update.
	b0, b1, b2 F
	a1, a2     F

	history []History[F]
}

// NewLowPass creates a pass-through filter for the given channel count.
func NewLowPass[F simdops.Float](channels int) *LowPass[F] {
	l := &LowPass[F]{
		history: make([]History[F], max(channels, 0)),
	}
	l.SetCoefficients(filter.Passthrough())
	return l
}

// SetCoefficients replaces the shared coefficient set. History is kept.
func (l *LowPass[F]) SetCoefficients(c filter.Coefficients) {
	l.coeffs = c
	l.b0 = F(c.B0)
	l.b1 = F(c.B1)
	l.b2 = F(c.B2)
	l.a1 = F(c.A1)
	l.a2 = F(c.A2)
}

// Coefficients returns the active coefficient set.
func (l *LowPass[F]) Coefficients() filter.Coefficients {
	return l.coeffs
}

// Channels returns the number of channel histories.
func (l *LowPass[F]) Channels() int {
	return len(l.history)
}

// History returns a copy of a channel's state.
func (l *LowPass[F]) History(channel int) History[F] {
	return l.history[channel]
}

// ProcessSample filters one sample on the given channel.
func (l *LowPass[F]) ProcessSample(channel int, x F) F {
	h := &l.history[channel]
	x = mathutil.Sanitize(x)

	y := l.b0*x + l.b1*h.X1 + l.b2*h.X2 - l.a1*h.Y1 - l.a2*h.Y2
	y = mathutil.Sanitize(mathutil.FlushDenormal(y))

	h.X2 = h.X1
	h.X1 = x
	h.Y2 = h.Y1
	h.Y1 = y

	return y
}

// Process filters buf in place on the given channel - no allocations.
func (l *LowPass[F]) Process(channel int, buf []F) {
	h := &l.history[channel]
	x1, x2 := h.X1, h.X2
	y1, y2 := h.Y1, h.Y2
	b0, b1, b2 := l.b0, l.b1, l.b2
	a1, a2 := l.a1, l.a2

	for i, x := range buf {
		x = mathutil.Sanitize(x)

		// Direct Form I
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		y = mathutil.Sanitize(mathutil.FlushDenormal(y))

		x2 = x1
		x1 = x
		y2 = y1
		y1 = y

		buf[i] = y
	}

	h.X1, h.X2 = x1, x2
	h.Y1, h.Y2 = y1, y2
}

// Reset zeroes every channel's history.
func (l *LowPass[F]) Reset() {
	clear(l.history)
}
