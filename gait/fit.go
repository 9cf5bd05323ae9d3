package gait

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// Event is one observed note as produced by an external transcription
// stage. Pitch is in Hz (0 or negative for rests), Duration in seconds.
type Event struct {
	Pitch    float64 `json:"pitch"`
	Duration float64 `json:"duration"`
}

// FitOptions bounds the gait search.
type FitOptions struct {
	SecondsPerMinute float64 `json:"seconds_per_minute"`
	MinBPM           float64 `json:"min_bpm"`
	MaxBPM           float64 `json:"max_bpm"`
	MinLong          float64 `json:"min_long"`
	MaxLong          float64 `json:"max_long"`

	Population int   `json:"population"`
	Iterations int   `json:"iterations"`
	Seed       int64 `json:"seed"`
}

// DefaultFitOptions returns search bounds suited to dhaanto material.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		SecondsPerMinute: 60,
		MinBPM:           60,
		MaxBPM:           180,
		MinLong:          0.5,
		MaxLong:          0.75,
		Population:       12,
		Iterations:       60,
		Seed:             1,
	}
}

// FitResult is the best gait found by Fit.
type FitResult struct {
	BPM          float64 `json:"bpm"`
	LongFraction float64 `json:"long_fraction"`
	// Offset is 1 when the first observed event is an upbeat.
	Offset int     `json:"offset"`
	RMSE   float64 `json:"rmse"`
	Evals  int     `json:"evals"`
}

func (o FitOptions) validate() error {
	if o.SecondsPerMinute <= 0 {
		return fmt.Errorf("seconds per minute must be > 0")
	}
	if o.MinBPM <= 0 || o.MaxBPM <= o.MinBPM {
		return fmt.Errorf("invalid bpm range [%v,%v]", o.MinBPM, o.MaxBPM)
	}
	if o.MinLong < 0.5 || o.MaxLong >= 1 || o.MaxLong <= o.MinLong {
		return fmt.Errorf("invalid long fraction range [%v,%v]", o.MinLong, o.MaxLong)
	}
	if o.Population < 2 {
		return fmt.Errorf("population must be >= 2")
	}
	if o.Iterations < 1 {
		return fmt.Errorf("iterations must be >= 1")
	}
	return nil
}

// Fit estimates tempo and long fraction from a run of alternating eighth
// notes by minimizing the squared duration error with the mayfly optimizer.
func Fit(events []Event, opts FitOptions) (FitResult, error) {
	if err := opts.validate(); err != nil {
		return FitResult{}, err
	}
	durations := make([]float64, 0, len(events))
	for _, e := range events {
		if e.Duration > 0 && !math.IsInf(e.Duration, 0) {
			durations = append(durations, e.Duration)
		}
	}
	if len(durations) < 2 {
		return FitResult{}, fmt.Errorf("need at least 2 events with positive duration, got %d", len(durations))
	}

	best := FitResult{RMSE: math.Inf(1)}
	evals := 0
	evaluate := func(pos []float64) float64 {
		evals++
		bpm := opts.MinBPM + clamp01(pos[0])*(opts.MaxBPM-opts.MinBPM)
		long := opts.MinLong + clamp01(pos[1])*(opts.MaxLong-opts.MinLong)
		if long <= 0.5 {
			long = math.Nextafter(0.5, 1)
		}
		g, err := New(bpm, opts.SecondsPerMinute, long)
		if err != nil {
			return math.Inf(1)
		}
		score := math.Inf(1)
		for offset := 0; offset < 2; offset++ {
			e := durationRMSE(g, durations, offset)
			if e < best.RMSE {
				best = FitResult{BPM: bpm, LongFraction: long, Offset: offset, RMSE: e}
			}
			score = math.Min(score, e)
		}
		return score
	}

	// The mean eighth lasts one beat, which pins the tempo; scan the long
	// fraction there before handing over to the optimizer.
	mean := 0.0
	for _, d := range durations {
		mean += d
	}
	mean /= float64(len(durations))
	guess := clamp01((opts.SecondsPerMinute/mean - opts.MinBPM) / (opts.MaxBPM - opts.MinBPM))
	for step := 0; step <= 50; step++ {
		evaluate([]float64{guess, float64(step) / 50})
	}

	cfg := mayfly.NewDefaultConfig()
	cfg.ProblemSize = 2
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = opts.Iterations
	cfg.NPop = opts.Population
	cfg.NPopF = opts.Population
	cfg.NC = 2 * opts.Population
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(opts.Population))))
	cfg.Rand = rand.New(rand.NewSource(opts.Seed))
	cfg.ObjectiveFunc = evaluate

	if _, err := runMayfly(cfg); err != nil {
		return FitResult{}, fmt.Errorf("gait optimization failed: %w", err)
	}
	best.Evals = evals
	return best, nil
}

func durationRMSE(g *Gait, durations []float64, offset int) float64 {
	var sum float64
	for i, d := range durations {
		diff := d - g.Duration(Eighth, i+offset)
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(durations)))
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
