package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-oud/oud"
)

func TestParseWorkers(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"auto", 0, false},
		{" AUTO ", 0, false},
		{"4", 4, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"many", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWorkers(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseWorkers(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseWorkers(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	base := oud.NewDefaultConfig()
	seed := int64(9)
	rate := 48000
	got := applyOverrides(base, overrides{seed: &seed, sampleRate: &rate}, false)
	if got.Seed != 9 || got.SampleRate != 48000 || got.Hall.SampleRate != 48000 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.BPM != base.BPM || got.HallWet != 0 {
		t.Fatalf("unset flags changed config: %+v", got)
	}
	got.Scale[0] = 1
	if base.Scale[0] == 1 {
		t.Fatalf("override result aliases the input scale")
	}

	if withIR := applyOverrides(base, overrides{}, true); withIR.HallWet != defaultIRWet {
		t.Fatalf("IR without -hall: wet = %v", withIR.HallWet)
	}
	wet := 0.0
	if explicit := applyOverrides(base, overrides{hallWet: &wet}, true); explicit.HallWet != 0 {
		t.Fatalf("explicit -hall 0 must win: %v", explicit.HallWet)
	}
}

func TestStemPath(t *testing.T) {
	tests := []struct{ out, name, want string }{
		{"out/song.wav", "melody", "out/song_melody.wav"},
		{"song", "percussion", "song_percussion.wav"},
	}
	for _, tt := range tests {
		if got := stemPath(tt.out, tt.name); got != tt.want {
			t.Errorf("stemPath(%q, %q) = %q, want %q", tt.out, tt.name, got, tt.want)
		}
	}
}

func TestStemsSumToMaster(t *testing.T) {
	cfg := oud.NewDefaultConfig()
	cfg.SampleRate = 8000
	cfg.Hall.SampleRate = 8000
	cfg.TotalDuration = 3
	e, err := oud.NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res, err := e.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	mel := stemSamples(res.Melody, res.Peak)
	perc := stemSamples(res.Percussion, res.Peak)
	for i := range res.Master {
		if math.Abs(mel[i]+perc[i]-res.Master[i]) > 1e-12 {
			t.Fatalf("sample %d: stems %v + %v != master %v", i, mel[i], perc[i], res.Master[i])
		}
	}
}
