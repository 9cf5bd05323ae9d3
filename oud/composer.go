package oud

import (
	"math/rand"

	"github.com/cwbudde/algo-oud/gait"
)

// NoteEvent is one decided note of a composition. Rests have Frequency 0.
type NoteEvent struct {
	Frequency float64 `json:"frequency"`
	Duration  float64 `json:"duration"`
	Start     float64 `json:"start"`
	Loudness  float64 `json:"loudness"`

	Degree int   `json:"degree"`
	Note   int   `json:"note"`
	Seed   int64 `json:"seed"`
}

// Rest reports whether the event is silent.
func (e NoteEvent) Rest() bool {
	return e.Frequency <= 0
}

// Step and rhythm distributions of the melodic walk.
var (
	stepValues   = []int{-2, -1, 0, 1, 2}
	stepWeights  = []float64{1, 2, 1, 2, 1}
	rhythmValues = []float64{0.5, 1.0, 1.5}
	rhythmWeight = []float64{50, 40, 10}
)

// cursor is the mutable state of one composition walk.
type cursor struct {
	index  int
	time   float64
	target int
}

// Composer drives the stochastic melodic walk.
type Composer struct {
	cfg  Config
	gait *gait.Gait
}

// NewComposer builds a composer from cfg.
func NewComposer(cfg Config) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := cfg.Gait()
	if err != nil {
		return nil, err
	}
	return &Composer{cfg: cfg, gait: g}, nil
}

// GravityTarget maps normalized progress in [0,1) to the scale index the
// walk is pulled toward. The result is clamped into a scale of scaleLen
// degrees.
func (c *Composer) GravityTarget(progress float64, scaleLen int) int {
	target := c.cfg.FinalTarget
	for _, s := range c.cfg.Sections {
		if progress < s.Until {
			target = s.Target
			break
		}
	}
	return clampIndex(target, scaleLen)
}

// Compose walks the scale until totalSeconds is covered and returns the
// ordered note events, rests included. The walk is fully determined by rng.
// The last event may extend past totalSeconds.
func (c *Composer) Compose(totalSeconds float64, scale []int, rng *rand.Rand) []NoteEvent {
	if len(scale) == 0 || !(totalSeconds > 0) {
		return nil
	}
	beat := c.gait.BeatDuration()
	cur := cursor{index: clampIndex(c.cfg.StartIndex, len(scale))}
	var events []NoteEvent

	for cur.time < totalSeconds {
		cur.target = c.GravityTarget(cur.time/totalSeconds, len(scale))

		dist := cur.target - cur.index
		var step int
		if abs(dist) > c.cfg.StepThreshold {
			step = 1
			if dist < 0 {
				step = -1
			}
		} else {
			step = stepValues[weightedChoice(rng, stepWeights)]
		}
		cur.index = clampIndex(cur.index+step, len(scale))
		note := scale[cur.index]

		multiplier := rhythmValues[weightedChoice(rng, rhythmWeight)]
		delay := c.gait.SwingDelay(cur.time, multiplier)
		duration := multiplier * beat

		ev := NoteEvent{
			Duration: duration,
			Start:    cur.time + delay,
			Degree:   cur.index,
		}
		if rng.Float64() < c.cfg.AudibleProbability {
			ev.Frequency = midiNoteToFreq(note)
			ev.Note = note
			ev.Loudness = c.cfg.LoudnessMin + (c.cfg.LoudnessMax-c.cfg.LoudnessMin)*rng.Float64()
			ev.Seed = rng.Int63()
		}
		events = append(events, ev)
		cur.time += duration
	}
	return events
}
