package hall

import (
	"fmt"
	"math"
	"math/rand"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	pdefd "github.com/cwbudde/algo-pde/fd"
	pdepoisson "github.com/cwbudde/algo-pde/poisson"

	"github.com/cwbudde/algo-oud/dsp"
)

// speedOfSound in m/s, used to turn room eigenvalues into mode frequencies.
const speedOfSound = 343.0

// Config controls synthetic hall impulse response generation.
type Config struct {
	SampleRate int     `json:"sample_rate"`
	DurationS  float64 `json:"duration_s"`
	Modes      int     `json:"modes"`
	Seed       int64   `json:"seed"`

	// RoomLength in meters sets the axial mode spacing c/(2L).
	RoomLength  float64 `json:"room_length"`
	Brightness  float64 `json:"brightness"`
	DirectLevel float64 `json:"direct_level"`
	EarlyCount  int     `json:"early_count"`
	LateLevel   float64 `json:"late_level"`

	LowDecayS  float64 `json:"low_decay_s"`
	HighDecayS float64 `json:"high_decay_s"`
	FadeS      float64 `json:"fade_s"`

	NormalizePeak float64 `json:"normalize_peak"`
}

func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		DurationS:     1.6,
		Modes:         96,
		Seed:          1,
		RoomLength:    18.0,
		Brightness:    0.8,
		DirectLevel:   0.0,
		EarlyCount:    12,
		LateLevel:     0.06,
		LowDecayS:     1.8,
		HighDecayS:    0.4,
		FadeS:         0.1,
		NormalizePeak: 0.9,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.RoomLength <= 0 {
		return fmt.Errorf("room length must be > 0")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.LateLevel < 0 {
		return fmt.Errorf("late level must be >= 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.FadeS < 0 {
		return fmt.Errorf("fade must be >= 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// ModeFrequencies returns the room's axial mode frequencies in Hz, taken
// from the Dirichlet eigenvalues of the discrete 1D Laplacian over
// RoomLength and limited to below 0.47*SampleRate.
func ModeFrequencies(cfg Config) []float64 {
	h := cfg.RoomLength / float64(cfg.Modes+1)
	eig := pdefd.Eigenvalues(cfg.Modes, h, pdepoisson.Dirichlet)
	maxF := 0.47 * float64(cfg.SampleRate)
	freqs := make([]float64, 0, len(eig))
	for _, lambda := range eig {
		if lambda <= 0 {
			continue
		}
		f := speedOfSound * math.Sqrt(lambda) / (2 * math.Pi)
		if f > maxF {
			break
		}
		freqs = append(freqs, f)
	}
	return freqs
}

// Generate synthesizes a mono hall impulse response: damped room modes,
// a cluster of early reflections and a diffuse noise tail.
func Generate(cfg Config) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := int(math.Round(cfg.DurationS * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))

	out[0] += cfg.DirectLevel

	freqs := ModeFrequencies(cfg)
	maxF := 0.47 * float64(cfg.SampleRate)
	for _, f := range freqs {
		amp := 0.9 / math.Pow(1.0+f/120.0, 0.7+0.9*cfg.Brightness)
		amp *= 0.7 + 0.6*rng.Float64()
		tau := lerp(cfg.LowDecayS, cfg.HighDecayS, math.Sqrt(f/maxF))
		decay := math.Exp(-1.0 / (tau * float64(cfg.SampleRate)))
		phi := rng.Float64() * 2.0 * math.Pi
		addMode(out, amp, f, phi, decay, cfg.SampleRate)
	}

	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.005 + 0.060*rng.Float64()
		idx := int(t * float64(cfg.SampleRate))
		if idx <= 0 || idx >= n {
			continue
		}
		sign := 1.0
		if rng.Intn(2) == 0 {
			sign = -1.0
		}
		out[idx] += sign * (0.10 + 0.35*rng.Float64()) * math.Exp(-t*20.0)
	}

	if cfg.LateLevel > 0 {
		lp := 0.0
		for i := 0; i < n; i++ {
			t := float64(i) / float64(cfg.SampleRate)
			env := math.Exp(-t / (0.75 * cfg.LowDecayS))
			lp = 0.9*lp + 0.1*rng.NormFloat64()
			out[i] += cfg.LateLevel * env * lp
		}
	}

	dsp.DCBlock(out, 0.995)
	dsp.FadeOut(out, int(math.Round(cfg.FadeS*float64(cfg.SampleRate))))

	peak := 0.0
	for _, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak < 1e-12 {
		peak = 1e-12
	}
	s := cfg.NormalizePeak / peak
	for i := range out {
		out[i] *= s
	}
	return out, nil
}

// addMode adds a damped cosine via the two-term recurrence
// x[k] = 2cos(w)x[k-1] - x[k-2].
func addMode(out []float64, amp, freq, phase, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := 1.0

	out[0] += amp * env * x0
	env *= decay
	if len(out) == 1 {
		return
	}
	out[1] += amp * env * x1
	env *= decay
	for i := 2; i < len(out); i++ {
		x2 := 2.0*cw*x1 - x0
		x0 = x1
		x1 = x2
		out[i] += amp * env * x2
		env = dspcore.FlushDenormals(env * decay)
		if env == 0 {
			return
		}
	}
}

func lerp(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a + (b-a)*t
}
