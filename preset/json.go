package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-oud/oud"
)

// File is the JSON schema for composition presets. Every field is optional;
// absent fields keep their default.
type File struct {
	SampleRate       *int     `json:"sample_rate"`
	BPM              *float64 `json:"bpm"`
	SecondsPerMinute *float64 `json:"seconds_per_minute"`
	Scale            []int    `json:"scale"`
	TotalDuration    *float64 `json:"total_duration"`
	DecayFactor      *float64 `json:"decay_factor"`
	Seed             *int64   `json:"seed"`

	LongFraction   *float64 `json:"long_fraction"`
	SwingDelay     *float64 `json:"swing_delay"`
	SwingThreshold *float64 `json:"swing_threshold"`

	StartIndex         *int             `json:"start_index"`
	StepThreshold      *int             `json:"step_threshold"`
	Sections           []SectionSetting `json:"sections"`
	FinalTarget        *int             `json:"final_target"`
	AudibleProbability *float64         `json:"audible_probability"`
	LoudnessMin        *float64         `json:"loudness_min"`
	LoudnessMax        *float64         `json:"loudness_max"`
	RingFactor         *float64         `json:"ring_factor"`

	ReverbDelayMs  *float64 `json:"reverb_delay_ms"`
	ReverbDecay    *float64 `json:"reverb_decay"`
	MelodyGain     *float64 `json:"melody_gain"`
	PercussionGain *float64 `json:"percussion_gain"`

	HallWet    *float64     `json:"hall_wet"`
	HallIRPath string       `json:"hall_ir_path"`
	Hall       *HallSetting `json:"hall"`

	Workers *int `json:"workers"`
}

// SectionSetting is one gravity section entry in a preset file.
type SectionSetting struct {
	Until  float64 `json:"until"`
	Target int     `json:"target"`
}

// HallSetting is a partial override of the synthetic hall response.
type HallSetting struct {
	DurationS   *float64 `json:"duration_s"`
	Modes       *int     `json:"modes"`
	Seed        *int64   `json:"seed"`
	RoomLength  *float64 `json:"room_length"`
	Brightness  *float64 `json:"brightness"`
	EarlyCount  *int     `json:"early_count"`
	LateLevel   *float64 `json:"late_level"`
	LowDecayS   *float64 `json:"low_decay_s"`
	HighDecayS  *float64 `json:"high_decay_s"`
	DirectLevel *float64 `json:"direct_level"`
}

// Preset is a loaded composition preset.
type Preset struct {
	Config oud.Config
	// HallIRPath is an impulse response file to use instead of the
	// synthetic hall, resolved against the preset directory.
	HallIRPath string
}

// LoadJSON loads a preset JSON file and applies it on top of the default
// configuration.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := &Preset{Config: oud.NewDefaultConfig()}
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	if p.HallIRPath != "" && !filepath.IsAbs(p.HallIRPath) {
		base := filepath.Dir(path)
		p.HallIRPath = filepath.Clean(filepath.Join(base, p.HallIRPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset and
// validates the result.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}
	c := &dst.Config

	setInt(&c.SampleRate, f.SampleRate)
	setFloat(&c.BPM, f.BPM)
	setFloat(&c.SecondsPerMinute, f.SecondsPerMinute)
	if f.Scale != nil {
		for i, n := range f.Scale {
			if n < 0 || n > 127 {
				return fmt.Errorf("scale[%d] = %d is not a MIDI note (0..127)", i, n)
			}
		}
		c.Scale = append([]int(nil), f.Scale...)
	}
	setFloat(&c.TotalDuration, f.TotalDuration)
	setFloat(&c.DecayFactor, f.DecayFactor)
	if f.Seed != nil {
		c.Seed = *f.Seed
	}

	setFloat(&c.LongFraction, f.LongFraction)
	setFloat(&c.SwingDelay, f.SwingDelay)
	setFloat(&c.SwingThreshold, f.SwingThreshold)

	setInt(&c.StartIndex, f.StartIndex)
	setInt(&c.StepThreshold, f.StepThreshold)
	if f.Sections != nil {
		c.Sections = make([]oud.Section, len(f.Sections))
		for i, s := range f.Sections {
			c.Sections[i] = oud.Section{Until: s.Until, Target: s.Target}
		}
	}
	setInt(&c.FinalTarget, f.FinalTarget)
	setFloat(&c.AudibleProbability, f.AudibleProbability)
	setFloat(&c.LoudnessMin, f.LoudnessMin)
	setFloat(&c.LoudnessMax, f.LoudnessMax)
	setFloat(&c.RingFactor, f.RingFactor)

	setFloat(&c.ReverbDelayMs, f.ReverbDelayMs)
	setFloat(&c.ReverbDecay, f.ReverbDecay)
	setFloat(&c.MelodyGain, f.MelodyGain)
	setFloat(&c.PercussionGain, f.PercussionGain)

	setFloat(&c.HallWet, f.HallWet)
	if f.HallIRPath != "" {
		dst.HallIRPath = strings.TrimSpace(f.HallIRPath)
	}
	if h := f.Hall; h != nil {
		setFloat(&c.Hall.DurationS, h.DurationS)
		setInt(&c.Hall.Modes, h.Modes)
		if h.Seed != nil {
			c.Hall.Seed = *h.Seed
		}
		setFloat(&c.Hall.RoomLength, h.RoomLength)
		setFloat(&c.Hall.Brightness, h.Brightness)
		setInt(&c.Hall.EarlyCount, h.EarlyCount)
		setFloat(&c.Hall.LateLevel, h.LateLevel)
		setFloat(&c.Hall.LowDecayS, h.LowDecayS)
		setFloat(&c.Hall.HighDecayS, h.HighDecayS)
		setFloat(&c.Hall.DirectLevel, h.DirectLevel)
	}
	c.Hall.SampleRate = c.SampleRate

	setInt(&c.Workers, f.Workers)

	if err := c.Validate(); err != nil {
		return err
	}
	if c.HallWet > 0 && dst.HallIRPath == "" {
		if err := c.Hall.Validate(); err != nil {
			return fmt.Errorf("hall: %w", err)
		}
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
