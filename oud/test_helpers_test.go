package oud

import (
	"math"
	"testing"
)

func windowRMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// autocorrPeakLag returns the lag in [minLag, maxLag] with the largest
// normalized autocorrelation.
func autocorrPeakLag(x []float64, minLag, maxLag int) int {
	best := minLag
	bestVal := math.Inf(-1)
	for lag := minLag; lag <= maxLag && lag < len(x); lag++ {
		var sum float64
		n := len(x) - lag
		for i := 0; i < n; i++ {
			sum += x[i] * x[i+lag]
		}
		v := sum / float64(n)
		if v > bestVal {
			bestVal = v
			best = lag
		}
	}
	return best
}

func allZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.SampleRate = 8000
	cfg.TotalDuration = 6
	cfg.Hall.SampleRate = 8000
	cfg.Hall.DurationS = 0.3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}
