package analysis

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// Metrics contains distance and similarity measurements between two renders.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE        float64 `json:"time_rmse"`
	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`

	TimeNorm     float64 `json:"time_norm"`
	EnvelopeNorm float64 `json:"envelope_norm"`
	SpectralNorm float64 `json:"spectral_norm"`
	DecayNorm    float64 `json:"decay_norm"`
	Dominant     string  `json:"dominant,omitempty"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Weights of the normalized components in the combined score.
const (
	WeightTime     = 0.30
	WeightEnvelope = 0.25
	WeightSpectral = 0.30
	WeightDecay    = 0.15
)

const (
	envFrame = 256
	envHop   = 128

	// Comparisons look at most at this many seconds after alignment.
	compareWindowS = 12
	rmsTarget      = 0.1
	silenceLevel   = 1e-6
)

// Compare returns objective distance metrics and a combined score in [0,1].
// Both signals are trimmed of leading silence, RMS-normalized and aligned by
// cross-correlation before measuring, so a render and a re-render with a
// different start offset or gain still compare as close.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1,
	}
	if sampleRate <= 0 {
		return m
	}
	ref := scaledToRMS(trimLeadingSilence(reference), rmsTarget)
	cand := scaledToRMS(trimLeadingSilence(candidate), rmsTarget)
	if len(ref) == 0 || len(cand) == 0 {
		return m
	}

	maxLag := max(1, min(sampleRate/2, len(ref)-1, len(cand)-1))
	window := compareWindowS*sampleRate + maxLag
	m.LagSamples = estimateLag(ref[:min(len(ref), window)], cand[:min(len(cand), window)], maxLag)

	refA, candA := alignByLag(ref, cand, m.LagSamples)
	n := min(len(refA), len(candA), compareWindowS*sampleRate)
	if n < 256 {
		return m
	}
	refA, candA = refA[:n], candA[:n]
	m.AlignedFrames = n
	m.TimeRMSE = rmse(refA, candA)

	refEnv := RMSEnvelope(refA, envFrame, envHop)
	candEnv := RMSEnvelope(candA, envFrame, envHop)
	m.EnvelopeRMSEDB = envelopeRMSEDB(refEnv, candEnv)
	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	hopSec := float64(envHop) / float64(sampleRate)
	m.RefDecayDBPerS = DecaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = DecaySlopeDBPerS(candEnv, hopSec)
	if d := math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS); !math.IsNaN(d) && !math.IsInf(d, 0) {
		m.DecayDiffDBPerS = d
	}

	m.TimeNorm = clamp01(m.TimeRMSE / 0.25)
	m.EnvelopeNorm = clamp01(m.EnvelopeRMSEDB / 30.0)
	m.SpectralNorm = clamp01(m.SpectralRMSEDB / 30.0)
	m.DecayNorm = clamp01(m.DecayDiffDBPerS / 40.0)
	m.Score, m.Dominant = weightedScore([]scorePart{
		{"time", WeightTime * m.TimeNorm},
		{"envelope", WeightEnvelope * m.EnvelopeNorm},
		{"spectral", WeightSpectral * m.SpectralNorm},
		{"decay", WeightDecay * m.DecayNorm},
	})
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

type scorePart struct {
	name  string
	value float64
}

// weightedScore sums the weighted parts, clamps the total to [0,1] and names
// the largest contributor. Ties keep the earlier part.
func weightedScore(parts []scorePart) (float64, string) {
	var total, best float64
	dominant := ""
	for _, p := range parts {
		total += p.value
		if p.value > best {
			best, dominant = p.value, p.name
		}
	}
	return clamp01(total), dominant
}

func trimLeadingSilence(x []float64) []float64 {
	for i, v := range x {
		if math.Abs(v) > silenceLevel {
			return x[i:]
		}
	}
	return nil
}

// scaledToRMS returns a copy of x with the given RMS level. Silent input is
// copied unchanged.
func scaledToRMS(x []float64, target float64) []float64 {
	out := append([]float64(nil), x...)
	if r := RMS(x); r > 1e-12 {
		for i := range out {
			out[i] *= target / r
		}
	}
	return out
}

// estimateLag returns the shift of cand against ref in [-maxLag, maxLag]
// that maximizes their cross-correlation, computed as the FFT convolution of
// ref with time-reversed cand. Index len(cand)-1 of that product is lag 0.
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	a := make([]float32, len(ref))
	for i, v := range ref {
		a[i] = float32(v)
	}
	b := make([]float32, len(cand))
	for i, v := range cand {
		b[len(cand)-1-i] = float32(v)
	}
	corr := make([]float32, len(a)+len(b)-1)
	if err := algofft.ConvolveReal(corr, a, b); err != nil {
		return 0
	}

	zero := len(cand) - 1
	lo := max(-maxLag, -zero)
	hi := min(maxLag, len(corr)-1-zero)
	bestLag := 0
	best := math.Inf(-1)
	for lag := lo; lag <= hi; lag++ {
		if v := float64(corr[zero+lag]); v > best {
			best, bestLag = v, lag
		}
	}
	return bestLag
}

// alignByLag drops the leading lag samples from whichever signal starts late.
func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	switch {
	case lag >= len(ref) || -lag >= len(cand):
		return nil, nil
	case lag >= 0:
		return ref[lag:], cand
	default:
		return ref, cand[-lag:]
	}
}

func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = a[i] - b[i]
	}
	return RMS(diff)
}

// envelopeRMSEDB is the RMS of the frame-by-frame dB difference of two RMS
// envelopes over their common length.
func envelopeRMSEDB(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	diff := make([]float64, n)
	for i := range diff {
		diff[i] = LinToDB(a[i]) - LinToDB(b[i])
	}
	return RMS(diff)
}

// spectralRMSEDB is the RMS dB difference of the Hann-windowed magnitude
// spectra over the first power-of-two stretch of up to 4096 samples.
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 512 {
		return 0
	}
	n = floorPow2(min(n, 4096))
	sa, err := newSpectrum(n)
	if err != nil {
		return 0
	}
	ma := sa.magnitudes(a[:n])
	mb := sa.magnitudes(b[:n])

	diff := make([]float64, n/2-1)
	for k := range diff {
		diff[k] = LinToDB(ma[k+1]) - LinToDB(mb[k+1])
	}
	return RMS(diff)
}

// DecaySlopeDBPerS fits a line to the dB envelope from just after its peak
// down to 60 dB below it and returns the slope. It returns NaN when fewer
// than six frames are available for the fit.
func DecaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	db := make([]float64, len(env))
	peakIdx := 0
	for i, v := range env {
		db[i] = LinToDB(v)
		if db[i] > db[peakIdx] {
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(db)-4 {
		return math.NaN()
	}
	end := start
	for end < len(db) && db[end] >= db[peakIdx]-60 {
		end++
	}
	if end-start < 6 {
		return math.NaN()
	}
	return slope(db[start:end], hopSec)
}

// slope is the least-squares gradient of y sampled every dx.
func slope(y []float64, dx float64) float64 {
	n := float64(len(y))
	var sx, sy, sxx, sxy float64
	for i, v := range y {
		x := float64(i) * dx
		sx += x
		sy += v
		sxx += x * x
		sxy += x * v
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
