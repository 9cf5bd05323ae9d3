package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-oud/analysis"
	"github.com/cwbudde/algo-oud/internal/wavio"
)

// report is the JSON output of one run.
type report struct {
	Reference  analysis.Features  `json:"reference"`
	Candidate  *analysis.Features `json:"candidate,omitempty"`
	Metrics    *analysis.Metrics  `json:"metrics,omitempty"`
	Bands      []bandRow          `json:"bands,omitempty"`
	Intervals  []float64          `json:"reference_intervals,omitempty"`
	SampleRate int                `json:"sample_rate"`
}

type bandRow struct {
	Name        string   `json:"name"`
	ReferenceDB float64  `json:"reference_db"`
	CandidateDB *float64 `json:"candidate_db,omitempty"`
}

func main() {
	referencePath := flag.String("reference", "", "Reference audio file (.wav/.mp3/.ogg)")
	candidatePath := flag.String("candidate", "", "Candidate audio file; if empty, only the reference is analyzed")
	sampleRate := flag.Int("sample-rate", 44100, "Analysis sample rate in Hz")
	jsonOut := flag.Bool("json", false, "Print results as JSON")
	flag.Parse()

	if *referencePath == "" && flag.NArg() > 0 {
		*referencePath = flag.Arg(0)
	}
	if *candidatePath == "" && flag.NArg() > 1 {
		*candidatePath = flag.Arg(1)
	}
	if *referencePath == "" {
		die("usage: oud-compare -reference a.wav [-candidate b.wav] [-json]")
	}

	ref, err := wavio.ReadMonoAt(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	var cand []float64
	if *candidatePath != "" {
		cand, err = wavio.ReadMonoAt(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	}

	r := buildReport(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}
	printReport(os.Stdout, r)
}

func buildReport(ref, cand []float64, sampleRate int) report {
	r := report{
		SampleRate: sampleRate,
		Reference:  analysis.Analyze(ref, sampleRate),
	}
	r.Intervals = analysis.InterOnsetIntervals(r.Reference.Onsets)
	refBands := analysis.BandLevelsDB(ref, sampleRate, analysis.DefaultBands)
	var candBands []float64
	if cand != nil {
		f := analysis.Analyze(cand, sampleRate)
		m := analysis.Compare(ref, cand, sampleRate)
		r.Candidate = &f
		r.Metrics = &m
		candBands = analysis.BandLevelsDB(cand, sampleRate, analysis.DefaultBands)
	}
	for i, b := range analysis.DefaultBands {
		row := bandRow{Name: b.Name, ReferenceDB: refBands[i]}
		if candBands != nil {
			v := candBands[i]
			row.CandidateDB = &v
		}
		r.Bands = append(r.Bands, row)
	}
	return r
}

func printReport(w io.Writer, r report) {
	printFeatures(w, "Reference", r.Reference)
	if r.Candidate != nil {
		printFeatures(w, "Candidate", *r.Candidate)
	}
	if len(r.Intervals) > 0 {
		fmt.Fprintf(w, "Reference inter-onset intervals (s):")
		for _, v := range r.Intervals {
			fmt.Fprintf(w, " %.3f", v)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s %10s", "Band", "ref dB")
	if r.Candidate != nil {
		fmt.Fprintf(w, " %10s %8s", "cand dB", "diff")
	}
	fmt.Fprintln(w)
	for _, b := range r.Bands {
		fmt.Fprintf(w, "%-10s %10.1f", b.Name, b.ReferenceDB)
		if b.CandidateDB != nil {
			fmt.Fprintf(w, " %10.1f %+8.1f", *b.CandidateDB, *b.CandidateDB-b.ReferenceDB)
		}
		fmt.Fprintln(w)
	}

	m := r.Metrics
	if m == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Aligned frames:   %d\n", m.AlignedFrames)
	fmt.Fprintf(w, "Lag:              %d samples (%.3f ms)\n", m.LagSamples, 1000.0*float64(m.LagSamples)/float64(m.SampleRate))
	fmt.Fprintf(w, "Component        Raw          Norm   Weight  Contribution\n")
	printComp := func(name, raw, key string, norm, weight float64) {
		marker := ""
		if m.Dominant == key {
			marker = " <"
		}
		fmt.Fprintf(w, "%-16s %-12s %5.1f%%  x%.2f   -> %.4f%s\n", name, raw, norm*100, weight, norm*weight, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.6f", m.TimeRMSE), "time", m.TimeNorm, analysis.WeightTime)
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", m.EnvelopeRMSEDB), "envelope", m.EnvelopeNorm, analysis.WeightEnvelope)
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", m.SpectralRMSEDB), "spectral", m.SpectralNorm, analysis.WeightSpectral)
	printComp("Decay diff", fmt.Sprintf("%.1f dB/s", m.DecayDiffDBPerS), "decay", m.DecayNorm, analysis.WeightDecay)
	fmt.Fprintf(w, "Score:            %.4f  (0 best, 1 worst)\n", m.Score)
	fmt.Fprintf(w, "Similarity:       %.2f%%\n", m.Similarity*100.0)
}

func printFeatures(w io.Writer, label string, f analysis.Features) {
	fmt.Fprintf(w, "%s: %d frames (%.2fs), peak %.4f (%.1f dBFS), rms %.4f, crest %.1f dB\n",
		label, f.Frames, f.DurationS, f.Peak, analysis.LinToDB(f.Peak), f.RMS, f.CrestDB)
	fmt.Fprintf(w, "  fundamental %.2f Hz, decay %.1f dB/s, %d onsets\n", f.FundamentalHz, f.DecayDBPerS, len(f.Onsets))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
