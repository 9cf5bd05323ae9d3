package oud

import (
	"math"
	"math/rand"
)

// KarplusString implements the Karplus-Strong plucked string: a noise-filled
// delay line recirculated through a two-point averaging loss filter.
type KarplusString struct {
	delayLine []float64
	pos       int
	decay     float64
}

// DelayLength returns the delay-line length for frequency, truncated as
// floor(sampleRate/frequency). It returns 0 for rests: non-positive or
// non-finite frequencies and frequencies whose delay line would exceed
// MaxDelayLength.
func DelayLength(sampleRate int, frequency float64) int {
	if sampleRate < 1 || !(frequency > 0) || math.IsInf(frequency, 0) {
		return 0
	}
	ratio := float64(sampleRate) / frequency
	if ratio > float64(MaxDelayLength(sampleRate)) {
		return 0
	}
	n := int(ratio)
	if n < 1 {
		n = 1
	}
	return n
}

// MaxDelayLength caps the delay line at one second of samples; anything
// lower than 1 Hz is infrasonic and rendered as a rest.
func MaxDelayLength(sampleRate int) int {
	return sampleRate
}

// NewKarplusString excites a new string at frequency. It returns nil when
// frequency is a rest (see DelayLength).
func NewKarplusString(sampleRate int, frequency, decay float64, rng *rand.Rand) *KarplusString {
	n := DelayLength(sampleRate, frequency)
	if n == 0 {
		return nil
	}
	s := &KarplusString{
		delayLine: make([]float64, n),
		decay:     decay,
	}
	for i := range s.delayLine {
		s.delayLine[i] = 2*rng.Float64() - 1
	}
	return s
}

// Len returns the delay-line length N.
func (s *KarplusString) Len() int { return len(s.delayLine) }

// Process emits one sample and advances the string by one step.
func (s *KarplusString) Process() float64 {
	n := len(s.delayLine)
	out := s.delayLine[s.pos]
	next := (s.pos + 1) % n
	s.delayLine[s.pos] = 0.5 * (out + s.delayLine[next]) * s.decay
	s.pos = next
	return out
}

// SampleCount converts a duration to a sample count, rounding to nearest.
// Non-positive and non-finite durations yield 0.
func SampleCount(sampleRate int, durationS float64) int {
	if !(durationS > 0) || math.IsInf(durationS, 0) {
		return 0
	}
	return int(math.Round(float64(sampleRate) * durationS))
}

// Pluck renders one string pluck of durationS seconds. Rests produce a
// zero-filled buffer of the same length.
func Pluck(sampleRate int, decay, frequency, durationS float64, rng *rand.Rand) []float64 {
	out := make([]float64, SampleCount(sampleRate, durationS))
	if len(out) == 0 {
		return out
	}
	s := NewKarplusString(sampleRate, frequency, decay, rng)
	if s == nil {
		return out
	}
	for i := range out {
		out[i] = s.Process()
	}
	return out
}
