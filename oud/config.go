package oud

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-oud/gait"
	"github.com/cwbudde/algo-oud/hall"
)

// Section is one span of the composition timeline. The gravity target
// applies while normalized progress is below Until.
type Section struct {
	Until  float64
	Target int
}

// Config holds every parameter of a generation run. It is passed by value
// and never mutated by the engine.
type Config struct {
	SampleRate       int
	BPM              float64
	SecondsPerMinute float64
	Scale            []int
	TotalDuration    float64
	DecayFactor      float64
	Seed             int64

	// Gait and swing.
	LongFraction   float64
	SwingDelay     float64
	SwingThreshold float64

	// Melodic walk.
	StartIndex         int
	StepThreshold      int
	Sections           []Section
	FinalTarget        int
	AudibleProbability float64
	LoudnessMin        float64
	LoudnessMax        float64
	RingFactor         float64

	// Effects and mix.
	ReverbDelayMs  float64
	ReverbDecay    float64
	MelodyGain     float64
	PercussionGain float64
	HallWet        float64 // 0 disables the hall stage
	Hall           hall.Config

	// Workers bounds parallel note rendering; 0 means GOMAXPROCS.
	Workers int
}

// QaraamiScale is A minor pentatonic over two and a half octaves (MIDI notes).
var QaraamiScale = []int{52, 55, 57, 60, 62, 64, 67, 69, 72, 74, 76}

// NewDefaultConfig returns the two-minute qaraami configuration.
func NewDefaultConfig() Config {
	h := hall.DefaultConfig()
	h.SampleRate = 44100
	return Config{
		SampleRate:       44100,
		BPM:              120,
		SecondsPerMinute: 90,
		Scale:            append([]int(nil), QaraamiScale...),
		TotalDuration:    120,
		DecayFactor:      0.996,
		Seed:             1,

		LongFraction:   gait.DefaultLongFraction,
		SwingDelay:     gait.DefaultSwingDelay,
		SwingThreshold: gait.DefaultSwingThreshold,

		StartIndex:    4,
		StepThreshold: 3,
		Sections: []Section{
			{Until: 0.2, Target: 2},
			{Until: 0.5, Target: 5},
			{Until: 0.8, Target: 9},
		},
		FinalTarget:        2,
		AudibleProbability: 0.9,
		LoudnessMin:        0.7,
		LoudnessMax:        1.0,
		RingFactor:         1.5,

		ReverbDelayMs:  250,
		ReverbDecay:    0.4,
		MelodyGain:     0.8,
		PercussionGain: 1.0,
		HallWet:        0,
		Hall:           h,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.SampleRate < 1 {
		return fmt.Errorf("sample_rate must be >= 1, got %d", c.SampleRate)
	}
	if !(c.BPM > 0) || math.IsInf(c.BPM, 0) {
		return fmt.Errorf("bpm must be > 0")
	}
	if !(c.SecondsPerMinute > 0) || math.IsInf(c.SecondsPerMinute, 0) {
		return fmt.Errorf("seconds_per_minute must be > 0")
	}
	if len(c.Scale) == 0 {
		return fmt.Errorf("scale must not be empty")
	}
	if c.TotalDuration < 0 || math.IsNaN(c.TotalDuration) || math.IsInf(c.TotalDuration, 0) {
		return fmt.Errorf("total_duration must be a finite value >= 0")
	}
	if !(c.DecayFactor > 0 && c.DecayFactor < 1) {
		return fmt.Errorf("decay_factor must be in (0,1), got %v", c.DecayFactor)
	}
	if !(c.LongFraction > 0.5 && c.LongFraction < 1) {
		return fmt.Errorf("long_fraction must be in (0.5,1), got %v", c.LongFraction)
	}
	if c.SwingDelay < 0 {
		return fmt.Errorf("swing_delay must be >= 0")
	}
	if c.SwingThreshold < 0 || c.SwingThreshold >= 1 {
		return fmt.Errorf("swing_threshold must be in [0,1)")
	}
	if c.StepThreshold < 1 {
		return fmt.Errorf("step_threshold must be >= 1")
	}
	prev := 0.0
	for i, s := range c.Sections {
		if s.Until <= prev || s.Until > 1 {
			return fmt.Errorf("sections[%d].until must be increasing within (0,1]", i)
		}
		prev = s.Until
	}
	if c.AudibleProbability < 0 || c.AudibleProbability > 1 {
		return fmt.Errorf("audible_probability must be in [0,1]")
	}
	if c.LoudnessMin < 0 || c.LoudnessMax > 1 || c.LoudnessMax < c.LoudnessMin {
		return fmt.Errorf("loudness range must satisfy 0 <= min <= max <= 1")
	}
	if c.RingFactor <= 0 {
		return fmt.Errorf("ring_factor must be > 0")
	}
	if c.ReverbDelayMs < 0 {
		return fmt.Errorf("reverb_delay_ms must be >= 0")
	}
	if c.ReverbDecay < 0 || c.ReverbDecay >= 1 {
		return fmt.Errorf("reverb_decay must be in [0,1)")
	}
	if c.MelodyGain < 0 || c.PercussionGain < 0 {
		return fmt.Errorf("bus gains must be >= 0")
	}
	if c.HallWet < 0 {
		return fmt.Errorf("hall_wet must be >= 0")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	return nil
}

// BeatDuration returns the beat length in seconds.
func (c Config) BeatDuration() float64 {
	return c.SecondsPerMinute / c.BPM
}

// TotalSamples returns the fixed length of every bus for this run.
func (c Config) TotalSamples() int {
	return int(float64(c.SampleRate) * c.TotalDuration)
}

// Gait builds the timing engine described by c.
func (c Config) Gait() (*gait.Gait, error) {
	g, err := gait.New(c.BPM, c.SecondsPerMinute, c.LongFraction)
	if err != nil {
		return nil, err
	}
	return g.WithSwing(c.SwingDelay, c.SwingThreshold, rhythmValues[0]), nil
}
