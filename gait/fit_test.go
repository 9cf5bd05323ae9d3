package gait

import (
	"math"
	"testing"
)

func syntheticEvents(t *testing.T, bpm, long float64, n, offset int) []Event {
	t.Helper()
	g, err := New(bpm, 60, long)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{Pitch: 146.83, Duration: g.Duration(Eighth, i+offset)}
	}
	return events
}

func TestFitRecoversGait(t *testing.T) {
	events := syntheticEvents(t, 108, 0.6, 16, 0)
	res, err := Fit(events, DefaultFitOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if math.Abs(res.BPM-108) > 1.0 {
		t.Fatalf("bpm = %.3f, want ~108", res.BPM)
	}
	if math.Abs(res.LongFraction-0.6) > 0.01 {
		t.Fatalf("long fraction = %.4f, want ~0.6", res.LongFraction)
	}
	if res.Offset != 0 {
		t.Fatalf("offset = %d, want 0", res.Offset)
	}
	if res.RMSE > 5e-3 {
		t.Fatalf("rmse = %g", res.RMSE)
	}
	if res.Evals == 0 {
		t.Fatalf("expected evaluation count")
	}
}

func TestFitDetectsUpbeatStart(t *testing.T) {
	events := syntheticEvents(t, 96, 0.62, 12, 1)
	res, err := Fit(events, DefaultFitOptions())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if res.Offset != 1 {
		t.Fatalf("offset = %d, want 1 (rmse=%g)", res.Offset, res.RMSE)
	}
}

func TestFitRejectsTooFewEvents(t *testing.T) {
	events := []Event{{Pitch: 220, Duration: 0.5}, {Pitch: 0, Duration: 0}}
	if _, err := Fit(events, DefaultFitOptions()); err == nil {
		t.Fatalf("expected error for a single usable event")
	}
}

func TestFitRejectsInvalidOptions(t *testing.T) {
	events := syntheticEvents(t, 108, 0.6, 8, 0)
	opts := DefaultFitOptions()
	opts.MaxBPM = opts.MinBPM
	if _, err := Fit(events, opts); err == nil {
		t.Fatalf("expected error for empty bpm range")
	}
	opts = DefaultFitOptions()
	opts.MinLong = 0.3
	if _, err := Fit(events, opts); err == nil {
		t.Fatalf("expected error for long fraction below 0.5")
	}
}
