package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-oud/oud"
)

// defaultIRWet is the hall level used when an impulse response is given
// without an explicit -hall level.
const defaultIRWet = 0.25

// overrides holds the command-line values that were explicitly set.
type overrides struct {
	seed       *int64
	duration   *float64
	bpm        *float64
	sampleRate *int
	hallWet    *float64
	workers    *int
}

func applyOverrides(cfg oud.Config, o overrides, haveIR bool) oud.Config {
	if o.seed != nil {
		cfg.Seed = *o.seed
	}
	if o.duration != nil {
		cfg.TotalDuration = *o.duration
	}
	if o.bpm != nil {
		cfg.BPM = *o.bpm
	}
	if o.sampleRate != nil {
		cfg.SampleRate = *o.sampleRate
		cfg.Hall.SampleRate = *o.sampleRate
	}
	if o.hallWet != nil {
		cfg.HallWet = *o.hallWet
	} else if haveIR && cfg.HallWet == 0 {
		cfg.HallWet = defaultIRWet
	}
	if o.workers != nil {
		cfg.Workers = *o.workers
	}
	cfg.Scale = append([]int(nil), cfg.Scale...)
	return cfg
}

// parseWorkers accepts a positive integer or "auto" (returned as 0).
func parseWorkers(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}

// stemPath derives "<base>_<name><ext>" from the master output path.
func stemPath(output, name string) string {
	ext := filepath.Ext(output)
	if ext == "" {
		ext = ".wav"
	}
	return strings.TrimSuffix(output, filepath.Ext(output)) + "_" + name + ext
}

// stemSamples applies the bus gain and the master normalization so stems
// sum back to the master.
func stemSamples(bus *oud.Bus, masterPeak float64) []float64 {
	scale := bus.Gain
	if masterPeak > 0 {
		scale /= masterPeak
	}
	out := make([]float64, len(bus.Samples))
	for i, v := range bus.Samples {
		out[i] = v * scale
	}
	return out
}
