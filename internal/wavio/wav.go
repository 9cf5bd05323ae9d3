package wavio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadMono reads an audio file and downmixes it to mono float samples in
// [-1,1]. The decoder is chosen by extension: .wav, .mp3 or .ogg.
func ReadMono(path string) ([]float64, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readMP3Mono(path)
	case ".ogg", ".oga":
		return readOggMono(path)
	default:
		return ReadWAVMono(path)
	}
}

// ReadWAVMono reads a PCM WAV file and averages its channels. The decoder
// already yields samples in [-1,1].
func ReadWAVMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// Resample converts in from fromRate to toRate. Equal rates return in
// unchanged.
func Resample(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates %d -> %d", fromRate, toRate)
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// ReadMonoAt reads path and resamples it to sampleRate.
func ReadMonoAt(path string, sampleRate int) ([]float64, error) {
	x, sr, err := ReadMono(path)
	if err != nil {
		return nil, err
	}
	return Resample(x, sr, sampleRate)
}

// WriteMonoWAV writes samples as a 16-bit mono WAV file, creating parent
// directories as needed. Samples are clipped to the 16-bit full scale.
func WriteMonoWAV(path string, samples []float64, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           clipped(samples),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ToFloat32 converts samples for audio devices.
func ToFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

const fullScale16 = 32767.0 / 32768.0

func clipped(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		switch {
		case v > fullScale16:
			v = fullScale16
		case v < -fullScale16:
			v = -fullScale16
		}
		out[i] = float32(v)
	}
	return out
}
