package bandpass

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// Quantize maps a channel delta v = large - small onto an 8-bit value.
//
// The mapping is:
//   - v >= 255         -> 255
//   - v < -1           -> floor(v + 257), saturating at 255
//   - -1 <= v < 0      -> 0
//   - 0 <= v < 255     -> floor(v)
//
// Large negative deltas therefore fold into the top of the range rather than
// clamping to zero. Deltas so negative that v + 257 is below zero (which
// cannot happen for inputs in [0, 255]) and NaN map to 0.
func Quantize(v float64) uint8 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	case v < -1:
		v += 257
		if v >= 255 {
			return 255
		}
		if v < 0 {
			return 0
		}
		return uint8(math.Floor(v))
	case v < 0:
		return 0
	default:
		return uint8(math.Floor(v))
	}
}

// Difference returns the band image large - small, quantized per channel
// with Quantize.
//
// small is the finer (less blurred) scale and large the coarser one. Both
// buffers are only read. Buffers of different shapes are a programming error
// and yield ErrDimensionMismatch before anything is allocated.
func Difference(small, large *imaging.Buffer) (*imaging.Image, error) {
	if !small.SameSize(large) {
		return nil, imaging.MismatchError(small.Width, small.Height, large.Width, large.Height)
	}
	out, err := imaging.NewImage(small.Width, small.Height)
	if err != nil {
		return nil, err
	}

	w := small.Width
	parallel.Line(small.Height, func(start, end int) {
		for i := start * w; i < end*w; i++ {
			d := large.Pix[i].Sub(small.Pix[i])
			out.Pix[i] = imaging.RGB{R: Quantize(d.R), G: Quantize(d.G), B: Quantize(d.B)}
		}
	})

	return out, nil
}
