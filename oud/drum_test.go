package oud

import (
	"math"
	"math/rand"
	"testing"
)

func TestDrumHitLength(t *testing.T) {
	for _, sr := range []int{8000, 44100, 48000} {
		for _, kind := range []DrumKind{Kick, Clap, DrumUnknown} {
			out := DrumHit(sr, kind, rand.New(rand.NewSource(1)))
			if want := int(float64(sr) * HitDuration); len(out) != want {
				t.Fatalf("%v at %d Hz: len = %d, want %d", kind, sr, len(out), want)
			}
		}
	}
}

func TestDrumHitUnknownIsSilent(t *testing.T) {
	out := DrumHit(44100, DrumKind(42), rand.New(rand.NewSource(1)))
	if !allZero(out) {
		t.Fatalf("unknown drum kind produced sound")
	}
}

func TestKickShape(t *testing.T) {
	out := DrumHit(44100, Kick, nil)
	if out[0] != 0 {
		t.Fatalf("kick must start at zero phase, got %v", out[0])
	}
	if p := Peak(out); p > kickGain || p < 0.5*kickGain {
		t.Fatalf("kick peak %v outside (%.2f, %.2f]", p, 0.5*kickGain, kickGain)
	}
	head := windowRMS(out[:2000])
	tail := windowRMS(out[len(out)-2000:])
	if tail > head*0.2 {
		t.Fatalf("kick did not decay: head %v tail %v", head, tail)
	}
}

func TestClapShape(t *testing.T) {
	a := DrumHit(44100, Clap, rand.New(rand.NewSource(3)))
	b := DrumHit(44100, Clap, rand.New(rand.NewSource(3)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("clap not reproducible at %d", i)
		}
		if math.Abs(a[i]) > 1.01*clapGain {
			t.Fatalf("clap sample %d exceeds gain: %v", i, a[i])
		}
	}
	head := windowRMS(a[:1000])
	tail := windowRMS(a[len(a)-1000:])
	if tail > head*0.02 {
		t.Fatalf("clap did not decay: head %v tail %v", head, tail)
	}
}

func TestParseDrumKind(t *testing.T) {
	tests := []struct {
		in   string
		want DrumKind
	}{
		{"kick", Kick},
		{" Clap ", Clap},
		{"KICK", Kick},
		{"snare", DrumUnknown},
		{"", DrumUnknown},
	}
	for _, tt := range tests {
		if got := ParseDrumKind(tt.in); got != tt.want {
			t.Errorf("ParseDrumKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Kick.String() != "kick" || Clap.String() != "clap" || DrumUnknown.String() != "unknown" {
		t.Fatalf("unexpected kind names")
	}
}
