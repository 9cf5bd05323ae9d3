package main

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-oud/gait"
	"github.com/cwbudde/algo-oud/preset"
)

func TestPresetRoundTrip(t *testing.T) {
	opts := gait.DefaultFitOptions()
	res := gait.FitResult{BPM: 108, LongFraction: 0.62}
	path := filepath.Join(t.TempDir(), "fit.json")
	if err := writeJSON(path, presetFor(res, opts)); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	p, err := preset.LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.Config.BPM != 108 || p.Config.LongFraction != 0.62 || p.Config.SecondsPerMinute != 60 {
		t.Fatalf("config = %+v", p.Config)
	}
}

func TestReadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	content := `[{"pitch": 146.83, "duration": 0.333}, {"pitch": 0, "duration": 0.222}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	events, err := readEvents(path)
	if err != nil {
		t.Fatalf("readEvents: %v", err)
	}
	if len(events) != 2 || events[0].Pitch != 146.83 || events[1].Duration != 0.222 {
		t.Fatalf("events = %+v", events)
	}
	if err := os.WriteFile(path, []byte(`{"pitch": 1}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := readEvents(path); err == nil {
		t.Fatalf("expected error for non-array JSON")
	}
}

func TestEventsFromAudioFollowsGallop(t *testing.T) {
	const sr = 16000
	g, err := gait.New(100, 60, 0.62)
	if err != nil {
		t.Fatalf("gait.New: %v", err)
	}
	const notes = 10
	var onsets []float64
	at := 0.1
	for i := 0; i < notes; i++ {
		onsets = append(onsets, at)
		at += g.Duration(gait.Eighth, i)
	}
	x := make([]float64, int((at+0.2)*sr))
	rng := rand.New(rand.NewSource(2))
	for _, s := range onsets {
		begin := int(s * sr)
		for i := 0; i < sr/20; i++ {
			x[begin+i] = (2*rng.Float64() - 1) * math.Exp(-float64(i)/float64(sr)*40)
		}
	}

	events := eventsFromAudio(x, sr)
	if len(events) != notes-1 {
		t.Fatalf("got %d events, want %d", len(events), notes-1)
	}
	tol := 2 * 256.0 / sr
	for i, ev := range events {
		want := g.Duration(gait.Eighth, i)
		if math.Abs(ev.Duration-want) > tol {
			t.Fatalf("event %d: duration %.4f, want %.4f", i, ev.Duration, want)
		}
	}
}
