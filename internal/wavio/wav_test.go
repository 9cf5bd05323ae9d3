package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	const sr = 22050
	x := make([]float64, sr/2)
	for i := range x {
		x[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sr)
	}
	x[10] = 3 // clipped on write

	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	if err := WriteMonoWAV(path, x, sr); err != nil {
		t.Fatalf("WriteMonoWAV: %v", err)
	}
	got, rate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != sr {
		t.Fatalf("rate = %d, want %d", rate, sr)
	}
	if len(got) != len(x) {
		t.Fatalf("len = %d, want %d", len(got), len(x))
	}
	for i := range x {
		want := x[i]
		if i == 10 {
			want = 1
		}
		if math.Abs(got[i]-want) > 1e-3 {
			t.Fatalf("sample %d: got %v want %v", i, got[i], want)
		}
	}
}

func TestReadMonoKeepsFullScaleLevel(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
	}{
		{"mixed", []float64{0, 0.5, -0.5, 0.25}},
		{"impulse", []float64{1, 0, 0, 0, 0}},
		{"quiet", []float64{0.01, -0.01, 0.001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "level.wav")
			if err := WriteMonoWAV(path, tt.in, 8000); err != nil {
				t.Fatalf("WriteMonoWAV: %v", err)
			}
			got, _, err := ReadMono(path)
			if err != nil {
				t.Fatalf("ReadMono: %v", err)
			}
			if len(got) != len(tt.in) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.in))
			}
			for i, want := range tt.in {
				if math.Abs(got[i]-want) > 1e-3 {
					t.Fatalf("sample %d: got %v want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestReadWAVMonoRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadMono(path); err == nil {
		t.Fatalf("expected error")
	}
	if _, _, err := ReadMono(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResample(t *testing.T) {
	x := make([]float64, 4800)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 48000)
	}
	same, err := Resample(x, 48000, 48000)
	if err != nil || &same[0] != &x[0] {
		t.Fatalf("equal rates must return input unchanged (err %v)", err)
	}
	down, err := Resample(x, 48000, 24000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(down) < 2000 || len(down) > 2600 {
		t.Fatalf("len = %d, want ~2400", len(down))
	}
	if _, err := Resample(x, 0, 44100); err == nil {
		t.Fatalf("expected error for zero rate")
	}
}

func TestStereoInt16LEToMono(t *testing.T) {
	// L=16384 R=-16384, then L=R=32767
	pcm := []byte{0x00, 0x40, 0x00, 0xC0, 0xFF, 0x7F, 0xFF, 0x7F, 0x01}
	got := stereoInt16LEToMono(pcm)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != 0 || math.Abs(got[1]-32767.0/32768.0) > 1e-12 {
		t.Fatalf("got %v", got)
	}
}

func TestDownmix(t *testing.T) {
	got := downmix([]float32{1, 0, 0.5, 0.5, 0.25}, 2)
	if len(got) != 2 || got[0] != 0.5 || got[1] != 0.5 {
		t.Fatalf("got %v", got)
	}
}
