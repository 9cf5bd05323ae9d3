package gait

import (
	"fmt"
	"math"
)

// NoteType selects the rhythmic subdivision used by Duration.
type NoteType int

const (
	Quarter NoteType = iota
	Eighth
)

// String returns the conventional name of the note type.
func (t NoteType) String() string {
	switch t {
	case Quarter:
		return "quarter"
	case Eighth:
		return "eighth"
	default:
		return fmt.Sprintf("NoteType(%d)", int(t))
	}
}

const (
	// DefaultLongFraction is the downbeat share of an eighth-note pair ("gallop" step).
	DefaultLongFraction = 0.60
	// DefaultSwingDelay is the onset delay in seconds applied to late short notes.
	DefaultSwingDelay = 0.05
	// DefaultSwingThreshold is the fractional beat position after which a short note counts as late.
	DefaultSwingThreshold = 0.4
	// DefaultShortestMultiplier is the beat multiplier that receives the swing delay.
	DefaultShortestMultiplier = 0.5
)

// Gait computes note durations and micro-offsets from a beat grid.
//
// The zero value is not usable; construct with New.
type Gait struct {
	bpm              float64
	secondsPerMinute float64
	beatDur          float64
	longFraction     float64

	swingDelay     float64
	swingThreshold float64
	shortest       float64
}

// New creates a gait for the given tempo. secondsPerMinute is the numerator
// of the beat duration (60 for a classical beat, 90 for the dotted "dhaanto"
// pulse). longFraction is the downbeat share of an eighth-note pair and must
// lie in (0.5, 1).
func New(bpm, secondsPerMinute, longFraction float64) (*Gait, error) {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("bpm must be > 0, got %v", bpm)
	}
	if !(secondsPerMinute > 0) || math.IsInf(secondsPerMinute, 0) {
		return nil, fmt.Errorf("seconds per minute must be > 0, got %v", secondsPerMinute)
	}
	if !(longFraction > 0.5 && longFraction < 1) {
		return nil, fmt.Errorf("long fraction must be in (0.5,1), got %v", longFraction)
	}
	return &Gait{
		bpm:              bpm,
		secondsPerMinute: secondsPerMinute,
		beatDur:          secondsPerMinute / bpm,
		longFraction:     longFraction,
		swingDelay:       DefaultSwingDelay,
		swingThreshold:   DefaultSwingThreshold,
		shortest:         DefaultShortestMultiplier,
	}, nil
}

// WithSwing returns a copy of g using a different late-note swing model.
func (g *Gait) WithSwing(delaySeconds, threshold, shortest float64) *Gait {
	c := *g
	if delaySeconds >= 0 {
		c.swingDelay = delaySeconds
	}
	if threshold >= 0 && threshold < 1 {
		c.swingThreshold = threshold
	}
	if shortest > 0 {
		c.shortest = shortest
	}
	return &c
}

// BPM returns the configured tempo.
func (g *Gait) BPM() float64 { return g.bpm }

// BeatDuration returns the length of one beat in seconds.
func (g *Gait) BeatDuration() float64 { return g.beatDur }

// LongFraction returns the downbeat share of an eighth-note pair.
func (g *Gait) LongFraction() float64 { return g.longFraction }

// ShortFraction returns the upbeat share of an eighth-note pair.
func (g *Gait) ShortFraction() float64 { return 1 - g.longFraction }

// Duration returns the length in seconds of the note at index within its measure.
//
// Eighth notes alternate long (even index) and short (odd index). The short
// value is derived from the pair length so that a pair always sums to
// exactly two beats.
func (g *Gait) Duration(t NoteType, index int) float64 {
	switch t {
	case Eighth:
		pair := 2 * g.beatDur
		long := pair * g.longFraction
		if index%2 == 0 {
			return long
		}
		return pair - long
	default:
		return g.beatDur
	}
}

// SwingDelay returns the onset delay for a note starting at noteTime seconds
// whose length is multiplier beats. Only the shortest rhythmic value is
// delayed, and only when it falls late within its beat.
func (g *Gait) SwingDelay(noteTime, multiplier float64) float64 {
	if multiplier != g.shortest {
		return 0
	}
	beatPos := math.Mod(noteTime/g.beatDur, 4)
	_, frac := math.Modf(beatPos)
	if frac > g.swingThreshold {
		return g.swingDelay
	}
	return 0
}
