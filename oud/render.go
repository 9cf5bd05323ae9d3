package oud

import (
	"context"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RenderNote plucks one audible event at RingFactor times its nominal
// duration so the tail rings past the next onset. Rests render nil.
func RenderNote(cfg Config, ev NoteEvent) []float64 {
	if ev.Rest() {
		return nil
	}
	rng := rand.New(rand.NewSource(ev.Seed))
	out := Pluck(cfg.SampleRate, cfg.DecayFactor, ev.Frequency, ev.Duration*cfg.RingFactor, rng)
	for i := range out {
		out[i] *= ev.Loudness
	}
	return out
}

// Render renders events into a new melodic buffer of n samples.
//
// Plucks are computed concurrently into private buffers and then placed in
// event order, so the result does not depend on scheduling. Rendering stops
// with ctx.Err() once ctx is cancelled.
func Render(ctx context.Context, cfg Config, events []NoteEvent, n int) ([]float64, error) {
	bus := make([]float64, n)
	if len(events) == 0 || n == 0 {
		return bus, nil
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rendered := make([][]float64, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ev := range events {
		if ev.Rest() || startSample(cfg.SampleRate, ev.Start) >= n {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rendered[i] = RenderNote(cfg, ev)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, ev := range events {
		Place(bus, rendered[i], startSample(cfg.SampleRate, ev.Start))
	}
	return bus, nil
}

func startSample(sampleRate int, seconds float64) int {
	return int(seconds * float64(sampleRate))
}
