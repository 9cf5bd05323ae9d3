package oud

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-oud/hall"
)

// Bus names used by the engine.
const (
	MelodyBus     = "melody"
	PercussionBus = "percussion"
)

// Result is the output of one generation run.
type Result struct {
	// Master is the peak-normalized mix.
	Master     []float64
	Melody     *Bus
	Percussion *Bus
	Notes      []NoteEvent
	// Peak is the absolute peak of the mix before normalization.
	Peak float64
}

// Engine runs the full composition pipeline: percussion loop, melodic walk,
// rendering, effects, mix and mastering.
type Engine struct {
	cfg    Config
	hallIR []float64
}

// NewEngine validates cfg and creates an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetHallIR sets a mono impulse response for the hall stage, replacing the
// synthetic one. It must be at the engine sample rate.
func (e *Engine) SetHallIR(ir []float64) {
	e.hallIR = append([]float64(nil), ir...)
}

// Generate renders one composition. Runs with equal configuration produce
// identical output.
func (e *Engine) Generate() (*Result, error) {
	return e.GenerateContext(context.Background())
}

// GenerateContext is Generate with cancellation of the note rendering stage.
func (e *Engine) GenerateContext(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	n := cfg.TotalSamples()
	rng := rand.New(rand.NewSource(cfg.Seed))

	perc := NewBus(PercussionBus, n, cfg.PercussionGain)
	perc.Place(Tile(BuildPattern(cfg, rng), n), 0)

	composer, err := NewComposer(cfg)
	if err != nil {
		return nil, err
	}
	notes := composer.Compose(cfg.TotalDuration, cfg.Scale, rng)
	dry, err := Render(ctx, cfg, notes, n)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	wet := Reverb(dry, cfg.SampleRate, cfg.ReverbDelayMs, cfg.ReverbDecay)
	if cfg.HallWet > 0 {
		if err := e.applyHall(wet); err != nil {
			return nil, err
		}
	}
	melody := &Bus{Name: MelodyBus, Samples: wet, Gain: cfg.MelodyGain}

	master, err := Mix(perc, melody)
	if err != nil {
		return nil, fmt.Errorf("mix: %w", err)
	}
	peak := Normalize(master)

	return &Result{
		Master:     master,
		Melody:     melody,
		Percussion: perc,
		Notes:      notes,
		Peak:       peak,
	}, nil
}

// applyHall adds the convolved room response to wet in place.
func (e *Engine) applyHall(wet []float64) error {
	ir := e.hallIR
	if len(ir) == 0 {
		hc := e.cfg.Hall
		hc.SampleRate = e.cfg.SampleRate
		var err error
		ir, err = hall.Generate(hc)
		if err != nil {
			return fmt.Errorf("hall: %w", err)
		}
	}
	conv, err := hall.NewConvolver(ir)
	if err != nil {
		return fmt.Errorf("hall: %w", err)
	}
	room, err := conv.Apply(wet)
	if err != nil {
		return fmt.Errorf("hall convolution: %w", err)
	}
	for i := range wet {
		wet[i] += e.cfg.HallWet * room[i]
	}
	return nil
}
