package hall

import (
	"fmt"
	"math"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
)

// DefaultPartSize is the overlap-add partition length for offline renders.
const DefaultPartSize = 1024

// Convolver applies a mono impulse response to whole buffers.
type Convolver struct {
	ir  []float64
	ola *dspconv.OverlapAdd
}

// NewConvolver creates a convolver for ir. The response must be non-empty
// and finite.
func NewConvolver(ir []float64) (*Convolver, error) {
	if len(ir) == 0 {
		return nil, fmt.Errorf("empty impulse response")
	}
	for i, v := range ir {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("impulse response sample %d is not finite", i)
		}
	}
	ola, err := dspconv.NewOverlapAdd(ir, DefaultPartSize)
	if err != nil {
		return nil, fmt.Errorf("overlap-add setup: %w", err)
	}
	return &Convolver{ir: ir, ola: ola}, nil
}

// IRLength returns the impulse response length in samples.
func (c *Convolver) IRLength() int { return len(c.ir) }

// Apply convolves dry with the impulse response and returns the first
// len(dry) samples of the result; the tail past the end is discarded.
func (c *Convolver) Apply(dry []float64) ([]float64, error) {
	out := make([]float64, len(dry))
	if len(dry) == 0 {
		return out, nil
	}
	c.ola.Reset()
	full, err := c.ola.Process(dry)
	if err != nil {
		return nil, err
	}
	copy(out, full)
	return out, nil
}
