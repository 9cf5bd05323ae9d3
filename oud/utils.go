package oud

import (
	"math"
	"math/rand"
)

// midiNoteToFreq converts MIDI note number to frequency in Hz.
func midiNoteToFreq(note int) float64 {
	const a4Freq = 440.0
	const a4Note = 69
	return a4Freq * math.Pow(2, float64(note-a4Note)/12.0)
}

// MIDIToFrequency converts a MIDI note number to equal-tempered Hz.
func MIDIToFrequency(note int) float64 {
	return midiNoteToFreq(note)
}

// weightedChoice draws an index with probability proportional to weights.
func weightedChoice(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
