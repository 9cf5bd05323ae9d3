package playback

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// pollInterval is how often Play checks whether the device has drained.
const pollInterval = 20 * time.Millisecond

// Play sends mono samples to the default audio device and blocks until
// playback finishes or ctx is cancelled. Only one device context may exist
// per process, so Play is meant for one-shot CLI previews.
func Play(ctx context.Context, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(bytes.NewReader(EncodeFloat32LE(samples)))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// EncodeFloat32LE packs samples as little-endian float32 PCM, clamped to
// [-1,1].
func EncodeFloat32LE(samples []float64) []byte {
	out := make([]byte, 4*len(samples))
	for i, v := range samples {
		v = math.Max(-1, math.Min(1, v))
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(float32(v)))
	}
	return out
}
