package engine

import (
	"math"

	"github.com/tphakala/go-selfmod/internal/simdops"
)

// DelayLine is a multi-channel circular buffer with a continuously variable,
// fractional read offset per channel.
//
// Each sample is written with PushSample and read back with PopSample. The
// sample just pushed sits at delay 0, so a delay of d samples returns the
// value pushed d calls earlier.
type DelayLine[F simdops.Float] struct {
	buffers  [][]F
	writePos []int
	delay    []float64
	capacity int
	mode     Interpolation
}

// NewDelayLine allocates channels buffers holding capacity samples each.
func NewDelayLine[F simdops.Float](channels, capacity int, mode Interpolation) *DelayLine[F] {
	channels = max(channels, 0)
	d := &DelayLine[F]{
		buffers:  make([][]F, channels),
		writePos: make([]int, channels),
		delay:    make([]float64, channels),
		mode:     mode,
	}
	d.SetMaxDelay(capacity)
	return d
}

// SetMaxDelay reallocates every channel to hold samples values and resets
// cursors and delays. It allocates and must not be called from the
// real-time path.
func (d *DelayLine[F]) SetMaxDelay(samples int) {
	d.capacity = max(samples, minDelayCapacity)
	for ch := range d.buffers {
		d.buffers[ch] = make([]F, d.capacity)
	}
	clear(d.writePos)
	clear(d.delay)
}

// Capacity returns the per-channel buffer length.
func (d *DelayLine[F]) Capacity() int {
	return d.capacity
}

// Channels returns the number of channels.
func (d *DelayLine[F]) Channels() int {
	return len(d.buffers)
}

// MaxDelay returns the largest delay SetDelay accepts.
func (d *DelayLine[F]) MaxDelay() float64 {
	return float64(d.capacity - 1)
}

// Mode returns the interpolation mode.
func (d *DelayLine[F]) Mode() Interpolation {
	return d.mode
}

// SetDelay sets the read offset in samples for the next PopSample on channel.
// The offset is clamped to [0, capacity-1]; NaN maps to 0.
func (d *DelayLine[F]) SetDelay(channel int, samples float64) {
	maxDelay := float64(d.capacity - 1)
	switch {
	case samples > maxDelay:
		samples = maxDelay
	case samples >= 0:
	default:
		// negative or NaN
		samples = 0
	}
	d.delay[channel] = samples
}

// Delay returns the current read offset of channel.
func (d *DelayLine[F]) Delay(channel int) float64 {
	return d.delay[channel]
}

// PushSample writes value at the channel's cursor and advances it.
func (d *DelayLine[F]) PushSample(channel int, value F) {
	pos := d.writePos[channel]
	d.buffers[channel][pos] = value
	pos++
	if pos >= d.capacity {
		pos = 0
	}
	d.writePos[channel] = pos
}

// PopSample reads the channel's delayed value at the current offset.
func (d *DelayLine[F]) PopSample(channel int) F {
	buf := d.buffers[channel]
	delay := d.delay[channel]

	whole := math.Floor(delay)
	frac := F(delay - whole)
	di := int(whole)

	// Index of the sample di steps behind the newest one.
	i0 := d.writePos[channel] - 1 - di
	if i0 < 0 {
		i0 += d.capacity
	}
	i1 := d.wrap(i0 - 1)

	if d.mode == InterpolationCubic {
		newer := i0
		if di > 0 {
			newer = d.wrap(i0 + 1)
		}
		i2 := d.wrap(i1 - 1)
		return hermite(frac, buf[newer], buf[i0], buf[i1], buf[i2])
	}

	return linear(frac, buf[i0], buf[i1])
}

// Process pushes value and pops with the given delay in one call.
func (d *DelayLine[F]) Process(channel int, value F, delay float64) F {
	d.SetDelay(channel, delay)
	d.PushSample(channel, value)
	return d.PopSample(channel)
}

// Reset zeroes buffer contents, cursors and delays without reallocating.
func (d *DelayLine[F]) Reset() {
	for _, buf := range d.buffers {
		clear(buf)
	}
	clear(d.writePos)
	clear(d.delay)
}

// MemoryUsage returns approximate buffer memory in bytes.
func (d *DelayLine[F]) MemoryUsage() int64 {
	return int64(d.capacity) * int64(len(d.buffers)) * bytesPer[F]()
}

func (d *DelayLine[F]) wrap(i int) int {
	if i < 0 {
		return i + d.capacity
	}
	if i >= d.capacity {
		return i - d.capacity
	}
	return i
}

func bytesPer[F simdops.Float]() int64 {
	var zero F
	if _, ok := any(zero).(float64); ok {
		return bytesPerFloat64
	}
	return bytesPerFloat32
}
