package dsp

import "math"

// DelayLine implements a circular buffer for delay
type DelayLine struct {
	buffer   []float64
	writePos int
	size     int
}

// NewDelayLine creates a new delay line with the given size
func NewDelayLine(size int) *DelayLine {
	if size < 1 {
		size = 1
	}
	return &DelayLine{
		buffer: make([]float64, size),
		size:   size,
	}
}

// Size returns the number of samples the line holds.
func (d *DelayLine) Size() int {
	return d.size
}

// Write writes a sample to the delay line
func (d *DelayLine) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Read returns the sample written delay writes ago, counting the next
// write as zero. Read(Size()) before a Write yields the sample that the
// Write is about to overwrite.
func (d *DelayLine) Read(delay int) float64 {
	readPos := ((d.writePos-delay)%d.size + d.size) % d.size
	return d.buffer[readPos]
}

// Reset clears the delay line
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// DCBlock removes slow drift in place with a one-pole highpass of pole r.
func DCBlock(x []float64, r float64) {
	prevIn := 0.0
	prevOut := 0.0
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

// FadeOut applies a raised-cosine fade to the last n samples of x.
func FadeOut(x []float64, n int) {
	if n <= 0 || len(x) == 0 {
		return
	}
	if n > len(x) {
		n = len(x)
	}
	start := len(x) - n
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		x[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}
