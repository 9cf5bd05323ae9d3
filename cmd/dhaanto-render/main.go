package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-oud/gait"
	"github.com/cwbudde/algo-oud/internal/playback"
	"github.com/cwbudde/algo-oud/internal/wavio"
	"github.com/cwbudde/algo-oud/oud"
)

func main() {
	bpm := flag.Float64("bpm", oud.DefaultSequencerBPM, "Tempo in beats per minute")
	phrase := flag.String("phrase", formatPhrase(oud.DhaantoPhrase), "Comma-separated phrase degrees (0 = rest, 1..6)")
	repeats := flag.Int("repeats", 4, "Number of times to play the phrase")
	longFraction := flag.Float64("long-fraction", gait.DefaultLongFraction, "Downbeat share of each eighth-note pair")
	sampleRate := flag.Int("sample-rate", 44100, "Sample rate in Hz")
	decay := flag.Float64("decay", 0.996, "String decay factor in (0,1)")
	seed := flag.Int64("seed", 1, "Random seed")
	play := flag.Bool("play", false, "Play the result on the default audio device")
	output := flag.String("output", "dhaanto.wav", "Output WAV file path")
	flag.Parse()

	degrees, err := parsePhrase(*phrase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -phrase: %v\n", err)
		os.Exit(1)
	}
	if *repeats < 1 {
		fmt.Fprintf(os.Stderr, "Error: -repeats must be >= 1\n")
		os.Exit(1)
	}
	if *sampleRate < 1 || !(*decay > 0 && *decay < 1) {
		fmt.Fprintf(os.Stderr, "Error: need -sample-rate >= 1 and -decay in (0,1)\n")
		os.Exit(1)
	}
	g, err := gait.New(*bpm, 60, *longFraction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	seq := oud.NewSequencer(*sampleRate, *decay, g)
	rng := rand.New(rand.NewSource(*seed))
	var out []float64
	for i := 0; i < *repeats; i++ {
		out = append(out, seq.RenderMeasure(degrees, rng)...)
	}
	peak := oud.Normalize(out)

	fmt.Printf("Rendered %d notes x %d at %.0f bpm (long %.2f / short %.2f s), peak %.4f\n",
		len(degrees), *repeats, *bpm, g.Duration(gait.Eighth, 0), g.Duration(gait.Eighth, 1), peak)
	if err := wavio.WriteMonoWAV(*output, out, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)

	if *play {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := playback.Play(ctx, out, *sampleRate); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Error playing: %v\n", err)
			os.Exit(1)
		}
	}
}

func parsePhrase(raw string) ([]int, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty phrase")
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("degree %d: %q is not an integer", i, f)
		}
		if _, ok := oud.DhaantoDegrees[d]; !ok {
			return nil, fmt.Errorf("degree %d: %d out of range 0..%d", i, d, len(oud.DhaantoDegrees)-1)
		}
		out[i] = d
	}
	return out, nil
}

func formatPhrase(degrees []int) string {
	parts := make([]string, len(degrees))
	for i, d := range degrees {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
