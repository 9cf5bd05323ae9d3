package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Features summarizes one mono render.
type Features struct {
	SampleRate    int       `json:"sample_rate"`
	Frames        int       `json:"frames"`
	DurationS     float64   `json:"duration_s"`
	Peak          float64   `json:"peak"`
	RMS           float64   `json:"rms"`
	CrestDB       float64   `json:"crest_db"`
	FundamentalHz float64   `json:"fundamental_hz"`
	DecayDBPerS   float64   `json:"decay_db_per_s"`
	Onsets        []float64 `json:"onsets,omitempty"`
}

// Analyze measures level, pitch, decay and onsets of x.
func Analyze(x []float64, sampleRate int) Features {
	f := Features{
		SampleRate: sampleRate,
		Frames:     len(x),
		Peak:       Peak(x),
		RMS:        RMS(x),
	}
	if sampleRate <= 0 || len(x) == 0 {
		return f
	}
	f.DurationS = float64(len(x)) / float64(sampleRate)
	if f.RMS > 0 {
		f.CrestDB = LinToDB(f.Peak) - LinToDB(f.RMS)
	}
	f.FundamentalHz = Fundamental(x, sampleRate)
	f.DecayDBPerS = DecaySlopeDBPerS(RMSEnvelope(x, envFrame, envHop), float64(envHop)/float64(sampleRate))
	if math.IsNaN(f.DecayDBPerS) {
		f.DecayDBPerS = 0
	}
	f.Onsets = Onsets(x, sampleRate)
	return f
}

// Peak returns the largest absolute sample value.
func Peak(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// RMS returns the root-mean-square level of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// RMSEnvelope returns the RMS of each frame-sample window, advancing by hop.
func RMSEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = RMS(x[start : start+frame])
	}
	return out
}

// LinToDB converts a linear amplitude to dBFS, flooring at -240 dB.
func LinToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

// spectrum computes Hann-windowed magnitude spectra of a fixed size.
type spectrum struct {
	n       int
	window  []float64
	buf     []float64
	bins    []complex128
	forward func(dst []complex128, src []float64)
}

func newSpectrum(n int) (*spectrum, error) {
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, err
	}
	s := &spectrum{
		n:      n,
		window: make([]float64, n),
		buf:    make([]float64, n),
		bins:   make([]complex128, n/2+1),
		forward: func(dst []complex128, src []float64) {
			plan.Forward(dst, src)
		},
	}
	for i := range s.window {
		s.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return s, nil
}

// magnitudes returns |X[k]| for k in [0, n/2]. Input shorter than n is
// zero-padded; longer input is truncated.
func (s *spectrum) magnitudes(x []float64) []float64 {
	for i := range s.buf {
		if i < len(x) {
			s.buf[i] = x[i] * s.window[i]
		} else {
			s.buf[i] = 0
		}
	}
	s.forward(s.bins, s.buf)
	out := make([]float64, len(s.bins))
	for k, c := range s.bins {
		out[k] = cmplx.Abs(c)
	}
	return out
}

// floorPow2 returns the largest power of two <= n, or 0 for n < 1.
func floorPow2(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

const (
	fundamentalFFT   = 16384
	fundamentalMinHz = 30.0
)

// Fundamental estimates the dominant pitch of x in Hz from the strongest
// spectral peak, refined by parabolic interpolation on log magnitudes. The
// first 50 ms are skipped so the pluck transient does not dominate. It
// returns 0 for silent or too-short input.
func Fundamental(x []float64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	x = trimLeadingSilence(x)
	if skip := sampleRate / 20; len(x) > 4*skip {
		x = x[skip:]
	}
	n := floorPow2(min(len(x), fundamentalFFT))
	if n < 256 {
		return 0
	}
	s, err := newSpectrum(n)
	if err != nil {
		return 0
	}
	mag := s.magnitudes(x)
	binHz := float64(sampleRate) / float64(n)

	lo := int(math.Ceil(fundamentalMinHz / binHz))
	if lo < 1 {
		lo = 1
	}
	best := -1
	for k := lo; k < len(mag)-1; k++ {
		if best < 0 || mag[k] > mag[best] {
			best = k
		}
	}
	if best < 0 || mag[best] <= 1e-12 {
		return 0
	}
	a := LinToDB(mag[best-1])
	b := LinToDB(mag[best])
	c := LinToDB(mag[best+1])
	offset := 0.0
	if den := a - 2*b + c; den != 0 {
		offset = 0.5 * (a - c) / den
	}
	return (float64(best) + offset) * binHz
}

// Band is a named frequency range.
type Band struct {
	Name string  `json:"name"`
	LoHz float64 `json:"lo_hz"`
	HiHz float64 `json:"hi_hz"`
}

// DefaultBands splits the audible range into seven analysis bands.
var DefaultBands = []Band{
	{"sub-bass", 20, 100},
	{"bass", 100, 300},
	{"low-mid", 300, 1000},
	{"mid", 1000, 3000},
	{"hi-mid", 3000, 6000},
	{"high", 6000, 12000},
	{"air", 12000, 20000},
}

const (
	stftSize = 4096
	stftHop  = 2048
)

// BandLevelsDB returns the mean STFT magnitude in each band, in dB. Bands
// above Nyquist report the -240 dB floor.
func BandLevelsDB(x []float64, sampleRate int, bands []Band) []float64 {
	out := make([]float64, len(bands))
	for i := range out {
		out[i] = LinToDB(0)
	}
	size := floorPow2(min(len(x), stftSize))
	if sampleRate <= 0 || size < 256 {
		return out
	}
	s, err := newSpectrum(size)
	if err != nil {
		return out
	}
	hop := size / 2
	if size == stftSize {
		hop = stftHop
	}

	avg := make([]float64, size/2+1)
	frames := 0
	for pos := 0; pos+size <= len(x); pos += hop {
		for k, m := range s.magnitudes(x[pos : pos+size]) {
			avg[k] += m
		}
		frames++
	}
	binHz := float64(sampleRate) / float64(size)
	for i, b := range bands {
		var sum float64
		count := 0
		for k := 1; k < len(avg); k++ {
			f := float64(k) * binHz
			if f >= b.LoHz && f < b.HiHz {
				sum += avg[k]
				count++
			}
		}
		if count > 0 {
			out[i] = LinToDB(sum / float64(count*frames))
		}
	}
	return out
}

const (
	onsetFrame  = 256
	onsetHop    = 128
	onsetRiseDB = 3.0
	onsetGapS   = 0.06
	onsetFloor  = 40.0
)

// Onsets returns note onset times in seconds. An onset is a frame whose RMS
// level rises by more than 3 dB over the previous frame while lying within
// 40 dB of the loudest frame; onsets closer than 60 ms to the previous one
// are merged into it.
func Onsets(x []float64, sampleRate int) []float64 {
	env := RMSEnvelope(x, onsetFrame, onsetHop)
	if len(env) == 0 || sampleRate <= 0 {
		return nil
	}
	db := make([]float64, len(env))
	peak := math.Inf(-1)
	for i, v := range env {
		db[i] = LinToDB(v)
		peak = math.Max(peak, db[i])
	}
	floor := peak - onsetFloor
	gap := int(onsetGapS * float64(sampleRate) / onsetHop)

	var out []float64
	last := -gap - 1
	prev := LinToDB(0)
	for i := 0; i < len(db); i++ {
		rise := db[i] - prev
		prev = db[i]
		if db[i] < floor || rise <= onsetRiseDB {
			continue
		}
		if i-last <= gap {
			continue
		}
		out = append(out, float64(i*onsetHop)/float64(sampleRate))
		last = i
	}
	return out
}

// InterOnsetIntervals returns the differences between successive onsets.
func InterOnsetIntervals(onsets []float64) []float64 {
	if len(onsets) < 2 {
		return nil
	}
	out := make([]float64, len(onsets)-1)
	for i := range out {
		out[i] = onsets[i+1] - onsets[i]
	}
	return out
}
