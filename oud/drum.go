package oud

import (
	"math"
	"math/rand"
	"strings"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// DrumKind selects a percussion voice.
type DrumKind int

const (
	DrumUnknown DrumKind = iota
	Kick
	Clap
)

// HitDuration is the fixed length of every percussion hit in seconds.
const HitDuration = 0.3

const (
	kickStartHz = 150.0
	kickEndHz   = 50.0
	kickDecay   = 10.0
	kickGain    = 0.8
	clapDecay   = 20.0
	clapGain    = 0.4
)

// ParseDrumKind maps a drum name to its kind. Unknown names map to DrumUnknown.
func ParseDrumKind(name string) DrumKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kick":
		return Kick
	case "clap":
		return Clap
	default:
		return DrumUnknown
	}
}

func (k DrumKind) String() string {
	switch k {
	case Kick:
		return "kick"
	case Clap:
		return "clap"
	default:
		return "unknown"
	}
}

// DrumHit renders one percussion hit. Unknown kinds render silence of the
// same length so new kinds can be sequenced before they are voiced.
func DrumHit(sampleRate int, kind DrumKind, rng *rand.Rand) []float64 {
	n := int(float64(sampleRate) * HitDuration)
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	sr := float64(sampleRate)

	switch kind {
	case Kick:
		for i := range out {
			t := float64(i) / sr
			// linspace(150, 50, n)
			f := kickStartHz
			if n > 1 {
				f += (kickEndHz - kickStartHz) * float64(i) / float64(n-1)
			}
			out[i] = math.Sin(2*math.Pi*f*t) * envelope(kickDecay, t) * kickGain
		}
	case Clap:
		for i := range out {
			t := float64(i) / sr
			noise := 2*rng.Float64() - 1
			out[i] = noise * envelope(clapDecay, t) * clapGain
		}
	}
	return out
}

func envelope(rate, t float64) float64 {
	e := float64(approx.FastExp(float32(-rate * t)))
	return dspcore.FlushDenormals(e)
}
