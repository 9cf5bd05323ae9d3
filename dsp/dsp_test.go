package dsp

import (
	"math"
	"testing"
)

func TestDelayLineReadBeforeWriteDelaysBySize(t *testing.T) {
	const delay = 3
	d := NewDelayLine(delay)
	in := []float64{1, 2, 3, 4, 5, 6}
	want := []float64{0, 0, 0, 1, 2, 3}
	for i, x := range in {
		if got := d.Read(delay); got != want[i] {
			t.Fatalf("step %d: got %v want %v", i, got, want[i])
		}
		d.Write(x)
	}
}

func TestDelayLineReadAfterWrite(t *testing.T) {
	d := NewDelayLine(4)
	d.Write(1)
	d.Write(2)
	if got := d.Read(1); got != 2 {
		t.Fatalf("Read(1) = %v, want 2", got)
	}
	if got := d.Read(2); got != 1 {
		t.Fatalf("Read(2) = %v, want 1", got)
	}
	d.Reset()
	if got := d.Read(1); got != 0 {
		t.Fatalf("after Reset: %v", got)
	}
}

func TestDCBlockRemovesOffset(t *testing.T) {
	x := make([]float64, 20000)
	for i := range x {
		x[i] = 0.5
	}
	DCBlock(x, 0.995)
	if math.Abs(x[len(x)-1]) > 1e-6 {
		t.Fatalf("residual DC %g", x[len(x)-1])
	}
}

func TestFadeOutEndsNearZero(t *testing.T) {
	x := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	FadeOut(x, 4)
	if x[3] != 1 || x[4] != 1 {
		t.Fatalf("fade touched head or did not start at unity: %v", x)
	}
	if x[7] >= x[6] || x[7] > 0.2 {
		t.Fatalf("fade not decreasing to zero: %v", x)
	}
}
