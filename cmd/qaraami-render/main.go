package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-oud/internal/playback"
	"github.com/cwbudde/algo-oud/internal/wavio"
	"github.com/cwbudde/algo-oud/oud"
	"github.com/cwbudde/algo-oud/preset"
)

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	seed := flag.Int64("seed", 1, "Random seed")
	duration := flag.Float64("duration", 120, "Composition length in seconds")
	bpm := flag.Float64("bpm", 120, "Tempo in beats per minute")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	exportRate := flag.Int("export-rate", 0, "Output WAV sample rate (0 = render rate)")
	hallWet := flag.Float64("hall", 0, "Hall reverb wet level (0 disables)")
	hallIR := flag.String("hall-ir", "", "Impulse response file (.wav/.mp3/.ogg) for the hall stage")
	workers := flag.String("workers", "auto", "Parallel note renderers (integer >= 1 or 'auto')")
	stems := flag.Bool("stems", false, "Also write melody and percussion stems next to the output")
	notesJSON := flag.String("notes-json", "", "Write the composed note events to this JSON file")
	play := flag.Bool("play", false, "Play the result on the default audio device")
	output := flag.String("output", "qaraami_dhaanto.wav", "Output WAV file path")
	flag.Parse()

	cfg := oud.NewDefaultConfig()
	irPath := ""
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		cfg = p.Config
		irPath = p.HallIRPath
	}

	set := setFlags()
	o := overrides{}
	if set["seed"] {
		o.seed = seed
	}
	if set["duration"] {
		o.duration = duration
	}
	if set["bpm"] {
		o.bpm = bpm
	}
	if set["sample-rate"] {
		o.sampleRate = sampleRate
	}
	if set["hall"] {
		o.hallWet = hallWet
	}
	if set["hall-ir"] {
		irPath = strings.TrimSpace(*hallIR)
	}
	n, err := parseWorkers(*workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -workers: %v\n", err)
		os.Exit(1)
	}
	o.workers = &n
	cfg = applyOverrides(cfg, o, irPath != "")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	engine, err := oud.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if irPath != "" {
		ir, err := wavio.ReadMonoAt(irPath, cfg.SampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading hall IR %q: %v\n", irPath, err)
			os.Exit(1)
		}
		engine.SetHallIR(ir)
	}

	fmt.Printf("Composing %.1f s at %.0f bpm, %d Hz, seed %d (hall wet %.2f)...\n",
		cfg.TotalDuration, cfg.BPM, cfg.SampleRate, cfg.Seed, cfg.HallWet)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := engine.GenerateContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}
	audible := 0
	for _, ev := range res.Notes {
		if !ev.Rest() {
			audible++
		}
	}
	fmt.Printf("Notes: %d (%d audible), pre-normalization peak %.4f\n", len(res.Notes), audible, res.Peak)

	rate := cfg.SampleRate
	if *exportRate > 0 {
		rate = *exportRate
	}
	if err := writeExport(*output, res.Master, cfg.SampleRate, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d Hz)\n", *output, rate)

	if *stems {
		for _, bus := range []*oud.Bus{res.Melody, res.Percussion} {
			path := stemPath(*output, bus.Name)
			if err := writeExport(path, stemSamples(bus, res.Peak), cfg.SampleRate, rate); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing stem %s: %v\n", path, err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s\n", path)
		}
	}

	if *notesJSON != "" {
		if err := writeNotes(*notesJSON, res.Notes); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing notes: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *notesJSON)
	}

	if *play {
		fmt.Println("Playing... (Ctrl+C to stop)")
		if err := playback.Play(ctx, res.Master, cfg.SampleRate); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Error playing: %v\n", err)
			os.Exit(1)
		}
	}
}

func setFlags() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func writeExport(path string, samples []float64, renderRate, exportRate int) error {
	out, err := wavio.Resample(samples, renderRate, exportRate)
	if err != nil {
		return err
	}
	return wavio.WriteMonoWAV(path, out, exportRate)
}

func writeNotes(path string, notes []oud.NoteEvent) error {
	b, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
