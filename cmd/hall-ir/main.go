package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-oud/analysis"
	"github.com/cwbudde/algo-oud/hall"
	"github.com/cwbudde/algo-oud/internal/wavio"
)

func main() {
	cfg := hall.DefaultConfig()

	output := flag.String("output", "assets/ir/hall_44k.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.IntVar(&cfg.Modes, "modes", cfg.Modes, "Number of damped room modes")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.RoomLength, "room", cfg.RoomLength, "Room length in meters")
	flag.Float64Var(&cfg.Brightness, "brightness", cfg.Brightness, "Spectral brightness control (>0)")
	flag.Float64Var(&cfg.DirectLevel, "direct", cfg.DirectLevel, "Direct impulse level")
	flag.IntVar(&cfg.EarlyCount, "early", cfg.EarlyCount, "Number of early reflections")
	flag.Float64Var(&cfg.LateLevel, "late", cfg.LateLevel, "Diffuse late-tail level")
	flag.Float64Var(&cfg.LowDecayS, "low-decay", cfg.LowDecayS, "Low-frequency decay time (s)")
	flag.Float64Var(&cfg.HighDecayS, "high-decay", cfg.HighDecayS, "High-frequency decay time (s)")
	flag.Float64Var(&cfg.FadeS, "fade", cfg.FadeS, "Raised-cosine fade-out length (s)")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target")
	listModes := flag.Bool("list-modes", false, "Print the modal frequencies and exit")
	flag.Parse()

	if *listModes {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "hall-ir error: %v\n", err)
			os.Exit(1)
		}
		for i, f := range hall.ModeFrequencies(cfg) {
			fmt.Printf("%3d  %9.3f Hz\n", i+1, f)
		}
		return
	}

	ir, err := hall.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hall-ir error: %v\n", err)
		os.Exit(1)
	}
	if err := wavio.WriteMonoWAV(*output, ir, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	env := analysis.RMSEnvelope(ir, 256, 128)
	decay := analysis.DecaySlopeDBPerS(env, 128/float64(cfg.SampleRate))
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(ir))
	fmt.Printf("Peak: %.6f, RMS: %.6f, Decay: %.1f dB/s\n", analysis.Peak(ir), analysis.RMS(ir), decay)
}
