package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/algo-oud/analysis"
	"github.com/cwbudde/algo-oud/gait"
	"github.com/cwbudde/algo-oud/internal/wavio"
	"github.com/cwbudde/algo-oud/preset"
)

func main() {
	opts := gait.DefaultFitOptions()

	eventsPath := flag.String("events", "", "JSON event list [{\"pitch\": Hz, \"duration\": s}, ...]")
	audioPath := flag.String("audio", "", "Audio file to transcribe by onset detection instead of -events")
	sampleRate := flag.Int("sample-rate", 44100, "Analysis sample rate for -audio")
	flag.Float64Var(&opts.SecondsPerMinute, "seconds-per-minute", opts.SecondsPerMinute, "Beat duration numerator")
	flag.Float64Var(&opts.MinBPM, "min-bpm", opts.MinBPM, "Lower tempo bound")
	flag.Float64Var(&opts.MaxBPM, "max-bpm", opts.MaxBPM, "Upper tempo bound")
	flag.Float64Var(&opts.MinLong, "min-long", opts.MinLong, "Lower long-fraction bound")
	flag.Float64Var(&opts.MaxLong, "max-long", opts.MaxLong, "Upper long-fraction bound")
	flag.IntVar(&opts.Population, "pop", opts.Population, "Mayfly population size")
	flag.IntVar(&opts.Iterations, "iters", opts.Iterations, "Mayfly iterations")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "Optimizer seed")
	outputPreset := flag.String("output-preset", "", "Write the fitted gait as a preset JSON")
	reportPath := flag.String("report", "", "Write a JSON report")
	flag.Parse()

	var events []gait.Event
	var err error
	switch {
	case *eventsPath != "" && *audioPath != "":
		err = fmt.Errorf("use either -events or -audio, not both")
	case *eventsPath != "":
		events, err = readEvents(*eventsPath)
	case *audioPath != "":
		var x []float64
		x, err = wavio.ReadMonoAt(*audioPath, *sampleRate)
		if err == nil {
			events = eventsFromAudio(x, *sampleRate)
		}
	default:
		err = fmt.Errorf("one of -events or -audio is required")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Fitting %d events (bpm %.0f..%.0f, long %.2f..%.2f)...\n",
		len(events), opts.MinBPM, opts.MaxBPM, opts.MinLong, opts.MaxLong)
	start := time.Now()
	res, err := gait.Fit(events, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fitting gait: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start).Seconds()
	fmt.Printf("BPM: %.2f  long fraction: %.4f  offset: %d  rmse: %.5f s  (%d evals, %.2fs)\n",
		res.BPM, res.LongFraction, res.Offset, res.RMSE, res.Evals, elapsed)

	if *outputPreset != "" {
		if err := writeJSON(*outputPreset, presetFor(res, opts)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing preset: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *outputPreset)
	}
	if *reportPath != "" {
		r := fitReport{
			Source:      firstNonEmpty(*eventsPath, *audioPath),
			Events:      len(events),
			Options:     opts,
			Result:      res,
			DurationSec: elapsed,
		}
		if err := writeJSON(*reportPath, r); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *reportPath)
	}
}

type fitReport struct {
	Source      string          `json:"source"`
	Events      int             `json:"events"`
	Options     gait.FitOptions `json:"options"`
	Result      gait.FitResult  `json:"result"`
	DurationSec float64         `json:"elapsed_seconds"`
}

func readEvents(path string) ([]gait.Event, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var events []gait.Event
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// eventsFromAudio turns detected onsets into events: each duration is the
// gap to the next onset and each pitch the fundamental of that segment.
// The last onset has no successor and is dropped.
func eventsFromAudio(x []float64, sampleRate int) []gait.Event {
	onsets := analysis.Onsets(x, sampleRate)
	intervals := analysis.InterOnsetIntervals(onsets)
	events := make([]gait.Event, len(intervals))
	for i, d := range intervals {
		from := int(onsets[i] * float64(sampleRate))
		to := int(onsets[i+1] * float64(sampleRate))
		if to > len(x) {
			to = len(x)
		}
		events[i] = gait.Event{
			Pitch:    analysis.Fundamental(x[from:to], sampleRate),
			Duration: d,
		}
	}
	return events
}

func presetFor(res gait.FitResult, opts gait.FitOptions) preset.File {
	bpm := res.BPM
	spm := opts.SecondsPerMinute
	long := res.LongFraction
	return preset.File{
		BPM:              &bpm,
		SecondsPerMinute: &spm,
		LongFraction:     &long,
	}
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
