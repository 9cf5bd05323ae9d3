package wavio

import (
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// readMP3Mono decodes an MP3 file. go-mp3 always yields 16-bit
// little-endian stereo.
func readMP3Mono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 %s: %w", path, err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 %s: %w", path, err)
	}
	return stereoInt16LEToMono(pcm), dec.SampleRate(), nil
}

func stereoInt16LEToMono(pcm []byte) []float64 {
	frames := len(pcm) / 4
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(uint16(pcm[4*i]) | uint16(pcm[4*i+1])<<8)
		r := int16(uint16(pcm[4*i+2]) | uint16(pcm[4*i+3])<<8)
		out[i] = 0.5 * (float64(l) + float64(r)) / 32768.0
	}
	return out
}

// readOggMono decodes an Ogg Vorbis file.
func readOggMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, 0, fmt.Errorf("ogg %s: %w", path, err)
	}
	if format == nil || format.Channels < 1 {
		return nil, 0, fmt.Errorf("ogg %s: invalid format", path)
	}
	return downmix(data, format.Channels), format.SampleRate, nil
}

func downmix(interleaved []float32, channels int) []float64 {
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(interleaved[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}
