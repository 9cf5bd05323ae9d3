package oud

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-oud/dsp"
)

// Bus is a named accumulator for one instrument group.
type Bus struct {
	Name    string
	Samples []float64
	Gain    float64
}

// NewBus allocates a zero-filled bus of n samples.
func NewBus(name string, n int, gain float64) *Bus {
	if n < 0 {
		n = 0
	}
	return &Bus{Name: name, Samples: make([]float64, n), Gain: gain}
}

// Place adds sound into bus starting at start, truncating whatever would
// run past the end. It never writes outside [0, len(bus)) and is a no-op
// when start >= len(bus). For negative start, the part of sound that would
// land before index 0 is dropped.
func Place(bus []float64, sound []float64, start int) {
	if start >= len(bus) || len(sound) == 0 {
		return
	}
	if start < 0 {
		if -start >= len(sound) {
			return
		}
		sound = sound[-start:]
		start = 0
	}
	avail := len(bus) - start
	if len(sound) > avail {
		sound = sound[:avail]
	}
	dst := bus[start : start+len(sound)]
	for i, s := range sound {
		dst[i] += s
	}
}

// Place adds sound into the bus; see Place.
func (b *Bus) Place(sound []float64, start int) {
	Place(b.Samples, sound, start)
}

// Reverb applies a single-tap delay: wet = dry + decay * dry delayed by
// delayMs. The result has the same length as dry.
func Reverb(dry []float64, sampleRate int, delayMs, decay float64) []float64 {
	delay := int(delayMs * float64(sampleRate) / 1000)
	wet := make([]float64, len(dry))
	if delay <= 0 || delay >= len(dry) {
		for i, x := range dry {
			wet[i] = x
			if delay == 0 {
				wet[i] += decay * x
			}
		}
		return wet
	}
	line := dsp.NewDelayLine(delay)
	for i, x := range dry {
		wet[i] = x + decay*line.Read(delay)
		line.Write(x)
	}
	return wet
}

// Mix sums buses elementwise with their gains. All buses must have the same
// length.
func Mix(buses ...*Bus) ([]float64, error) {
	if len(buses) == 0 {
		return nil, nil
	}
	n := len(buses[0].Samples)
	for _, b := range buses[1:] {
		if len(b.Samples) != n {
			return nil, fmt.Errorf("bus %q has %d samples, want %d", b.Name, len(b.Samples), n)
		}
	}
	out := make([]float64, n)
	for _, b := range buses {
		for i, s := range b.Samples {
			out[i] += b.Gain * s
		}
	}
	return out, nil
}

// Peak returns the largest absolute sample value.
func Peak(buf []float64) float64 {
	m := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// Normalize scales buf in place so its peak absolute value is 1. Silent
// buffers are left unchanged. It returns the peak before scaling.
func Normalize(buf []float64) float64 {
	peak := Peak(buf)
	if peak > 0 {
		for i := range buf {
			buf[i] /= peak
		}
	}
	return peak
}
