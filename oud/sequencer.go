package oud

import (
	"math/rand"

	"github.com/cwbudde/algo-oud/gait"
)

// DhaantoDegrees maps phrase degrees to string frequencies in Hz; degree 0
// is a rest. The set approximates the oud maqam pentatonic on D.
var DhaantoDegrees = map[int]float64{
	0: 0,
	1: 146.83, // D3
	2: 174.61, // F3
	3: 196.00, // G3
	4: 220.00, // A3
	5: 261.63, // C4
	6: 293.66, // D4
}

// DhaantoPhrase is a typical two-bar repeating phrase, eight notes per bar.
var DhaantoPhrase = []int{1, 1, 4, 3, 1, 0, 5, 4, 1, 1, 6, 5, 4, 3, 1, 0}

// DefaultSequencerBPM is the tempo of the fixed-phrase sequencer.
const DefaultSequencerBPM = 108

// Sequencer renders fixed phrases of eighth notes with the gallop gait.
type Sequencer struct {
	sampleRate int
	decay      float64
	gait       *gait.Gait
	degrees    map[int]float64
}

// NewSequencer creates a sequencer playing plucks at the given gait.
func NewSequencer(sampleRate int, decay float64, g *gait.Gait) *Sequencer {
	return &Sequencer{
		sampleRate: sampleRate,
		decay:      decay,
		gait:       g,
		degrees:    DhaantoDegrees,
	}
}

// Events returns the note events of a phrase without rendering them.
// Unknown degrees become rests.
func (s *Sequencer) Events(degrees []int) []NoteEvent {
	events := make([]NoteEvent, len(degrees))
	t := 0.0
	for i, d := range degrees {
		dur := s.gait.Duration(gait.Eighth, i)
		freq := s.degrees[d]
		events[i] = NoteEvent{Frequency: freq, Duration: dur, Start: t, Degree: d}
		if freq > 0 {
			events[i].Loudness = 1
		}
		t += dur
	}
	return events
}

// RenderMeasure renders degrees back to back, one pluck per eighth note.
// Each pluck lasts exactly its gait duration; plucks are concatenated.
func (s *Sequencer) RenderMeasure(degrees []int, rng *rand.Rand) []float64 {
	var out []float64
	for _, ev := range s.Events(degrees) {
		out = append(out, Pluck(s.sampleRate, s.decay, ev.Frequency, ev.Duration, rng)...)
	}
	if out == nil {
		out = []float64{}
	}
	return out
}
