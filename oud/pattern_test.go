package oud

import (
	"math/rand"
	"testing"
)

func TestBuildPatternLayout(t *testing.T) {
	cfg := testConfig(t)
	bar := BuildPattern(cfg, rand.New(rand.NewSource(5)))

	beat := cfg.BeatDuration()
	sr := float64(cfg.SampleRate)
	if want := int(beat * 4 * sr); len(bar) != want {
		t.Fatalf("bar length = %d, want %d", len(bar), want)
	}

	kick := DrumHit(cfg.SampleRate, Kick, nil)
	clap := DrumHit(cfg.SampleRate, Clap, rand.New(rand.NewSource(5)))
	onset := func(b float64) int { return int(beat * b * sr) }

	check := func(name string, start int, sound []float64, gain float64) {
		t.Helper()
		for i, v := range sound {
			if got := bar[start+i]; got != v*gain {
				t.Fatalf("%s sample %d: got %v want %v", name, i, got, v*gain)
			}
		}
	}
	check("kick 1", onset(0), kick, 1)
	check("clap 2", onset(1), clap, 1)
	check("kick 3", onset(2), kick, 1)
	check("clap 4", onset(3), clap, 1)
	check("ghost clap", onset(3.5), clap, 0.5)

	if !allZero(bar[len(kick):onset(1)]) {
		t.Fatalf("expected silence between kick tail and beat 2")
	}
}

func TestTile(t *testing.T) {
	tests := []struct {
		name    string
		pattern []float64
		n       int
		want    []float64
	}{
		{"repeat and truncate", []float64{1, 2, 3}, 7, []float64{1, 2, 3, 1, 2, 3, 1}},
		{"exact", []float64{1, 2}, 4, []float64{1, 2, 1, 2}},
		{"shorter than pattern", []float64{1, 2, 3}, 2, []float64{1, 2}},
		{"empty pattern", nil, 3, []float64{0, 0, 0}},
		{"zero length", []float64{1}, 0, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tile(tt.pattern, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
