package oud

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func newTestComposer(t *testing.T, cfg Config) *Composer {
	t.Helper()
	c, err := NewComposer(cfg)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return c
}

func TestComposeIsDeterministic(t *testing.T) {
	c := newTestComposer(t, NewDefaultConfig())
	a := c.Compose(60, QaraamiScale, rand.New(rand.NewSource(5)))
	b := c.Compose(60, QaraamiScale, rand.New(rand.NewSource(5)))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different compositions")
	}
	d := c.Compose(60, QaraamiScale, rand.New(rand.NewSource(6)))
	if reflect.DeepEqual(a, d) {
		t.Fatalf("different seeds produced identical compositions")
	}
}

func TestComposeWalkInvariants(t *testing.T) {
	cfg := NewDefaultConfig()
	c := newTestComposer(t, cfg)
	const total = 120.0
	events := c.Compose(total, QaraamiScale, rand.New(rand.NewSource(1)))
	if len(events) == 0 {
		t.Fatalf("no events")
	}
	beat := cfg.BeatDuration()
	allowed := map[float64]bool{0.5 * beat: true, 1.0 * beat: true, 1.5 * beat: true}

	prev := cfg.StartIndex
	elapsed := 0.0
	audible := 0
	for i, ev := range events {
		if elapsed >= total {
			t.Fatalf("event %d starts after the composition ended", i)
		}
		if ev.Degree < 0 || ev.Degree >= len(QaraamiScale) {
			t.Fatalf("event %d: degree %d out of range", i, ev.Degree)
		}
		target := c.GravityTarget(elapsed/total, len(QaraamiScale))
		step := ev.Degree - prev
		if dist := target - prev; abs(dist) > cfg.StepThreshold {
			want := 1
			if dist < 0 {
				want = -1
			}
			if step != want {
				t.Fatalf("event %d: distance %d must force a unit step toward target, got %d", i, dist, step)
			}
		} else if abs(step) > 2 {
			t.Fatalf("event %d: step %d too large", i, step)
		}

		if !allowed[ev.Duration] {
			t.Fatalf("event %d: duration %v not a rhythm value", i, ev.Duration)
		}
		switch delay := ev.Start - elapsed; {
		case delay == 0:
		case math.Abs(delay-cfg.SwingDelay) < 1e-9:
			if ev.Duration != 0.5*beat {
				t.Fatalf("event %d: swing on a non-shortest note", i)
			}
		default:
			t.Fatalf("event %d: unexpected onset offset %v", i, delay)
		}

		if !ev.Rest() {
			audible++
			if ev.Note != QaraamiScale[ev.Degree] {
				t.Fatalf("event %d: note %d not scale degree %d", i, ev.Note, ev.Degree)
			}
			if want := 440 * math.Pow(2, float64(ev.Note-69)/12); math.Abs(ev.Frequency-want) > 1e-9 {
				t.Fatalf("event %d: frequency %v, want %v", i, ev.Frequency, want)
			}
			if ev.Loudness < cfg.LoudnessMin || ev.Loudness > cfg.LoudnessMax {
				t.Fatalf("event %d: loudness %v out of range", i, ev.Loudness)
			}
		}
		prev = ev.Degree
		elapsed += ev.Duration
	}
	if elapsed < total {
		t.Fatalf("composition covers %v s, want >= %v", elapsed, total)
	}
	frac := float64(audible) / float64(len(events))
	if frac < 0.8 || frac > 0.98 {
		t.Fatalf("audible fraction %.3f far from 0.9", frac)
	}
}

func TestComposeEmptyInputs(t *testing.T) {
	c := newTestComposer(t, NewDefaultConfig())
	if ev := c.Compose(10, nil, rand.New(rand.NewSource(1))); ev != nil {
		t.Fatalf("empty scale: %v", ev)
	}
	if ev := c.Compose(0, QaraamiScale, rand.New(rand.NewSource(1))); ev != nil {
		t.Fatalf("zero duration: %v", ev)
	}
}

func TestComposeSingleDegreeScale(t *testing.T) {
	c := newTestComposer(t, NewDefaultConfig())
	for _, ev := range c.Compose(20, []int{62}, rand.New(rand.NewSource(2))) {
		if ev.Degree != 0 {
			t.Fatalf("degree %d in single-note scale", ev.Degree)
		}
	}
}

func TestGravityTarget(t *testing.T) {
	c := newTestComposer(t, NewDefaultConfig())
	tests := []struct {
		progress float64
		scaleLen int
		want     int
	}{
		{0, 11, 2},
		{0.1999, 11, 2},
		{0.2, 11, 5},
		{0.4999, 11, 5},
		{0.5, 11, 9},
		{0.7999, 11, 9},
		{0.8, 11, 2},
		{0.9999, 11, 2},
		{0.6, 4, 3},
		{0.3, 1, 0},
	}
	for _, tt := range tests {
		if got := c.GravityTarget(tt.progress, tt.scaleLen); got != tt.want {
			t.Errorf("GravityTarget(%v, %d) = %d, want %d", tt.progress, tt.scaleLen, got, tt.want)
		}
	}
}

func TestNewComposerRejectsInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.BPM = 0
	if _, err := NewComposer(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMIDIToFrequency(t *testing.T) {
	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 261.6255653},
	}
	for _, tt := range tests {
		if got := MIDIToFrequency(tt.note); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("MIDIToFrequency(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}
