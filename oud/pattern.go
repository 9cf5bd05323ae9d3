package oud

import "math/rand"

// patternHit is one percussion onset within a bar, in beats from the
// downbeat.
type patternHit struct {
	kind DrumKind
	beat float64
	gain float64
}

// dhaantoBar is kick on 1 and 3, clap on 2 and 4, and a half-level ghost
// clap on the "and" of 3 that anticipates the fourth beat.
var dhaantoBar = []patternHit{
	{Kick, 0, 1},
	{Clap, 1, 1},
	{Kick, 2, 1},
	{Clap, 3, 1},
	{Clap, 3.5, 0.5},
}

// BuildPattern renders one four-beat bar of percussion. The clap noise is
// drawn once from rng and reused for every clap in the bar.
func BuildPattern(cfg Config, rng *rand.Rand) []float64 {
	beat := cfg.BeatDuration()
	sr := float64(cfg.SampleRate)
	bar := make([]float64, int(beat*4*sr))

	hits := map[DrumKind][]float64{
		Kick: DrumHit(cfg.SampleRate, Kick, rng),
		Clap: DrumHit(cfg.SampleRate, Clap, rng),
	}
	for _, h := range dhaantoBar {
		sound := hits[h.kind]
		if h.gain != 1 {
			sound = scaled(sound, h.gain)
		}
		Place(bar, sound, int(beat*h.beat*sr))
	}
	return bar
}

// Tile repeats pattern end to end across a new buffer of n samples,
// truncating the final repetition.
func Tile(pattern []float64, n int) []float64 {
	out := make([]float64, n)
	if len(pattern) == 0 {
		return out
	}
	for pos := 0; pos < n; pos += len(pattern) {
		Place(out, pattern, pos)
	}
	return out
}

func scaled(x []float64, g float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * g
	}
	return out
}
