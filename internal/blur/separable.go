package blur

import (
	"fmt"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// Separable computes the same border-clipped box mean as Box with a
// horizontal pass over rows followed by a vertical pass over columns,
// keeping the horizontal result in an intermediate buffer.
//
// The two formulations agree up to floating-point associativity. Separable
// costs O(W×H×r); it exists as an independent reference for Box.
func Separable(src *imaging.Buffer, radius int) (*imaging.Buffer, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, radius)
	}
	w, h := src.Width, src.Height
	radius = min(radius, max(w, h))

	horizontal, err := imaging.NewBuffer(w, h)
	if err != nil {
		return nil, err
	}
	dst, err := imaging.NewBuffer(w, h)
	if err != nil {
		return nil, err
	}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := y * w
			for x := 0; x < w; x++ {
				x0, x1 := max(0, x-radius), min(w-1, x+radius)
				var sum imaging.Pixel
				for i := x0; i <= x1; i++ {
					sum = sum.Add(src.Pix[row+i])
				}
				horizontal.Pix[row+x] = sum.Div(float64(x1 - x0 + 1))
			}
		}
	})

	parallel.Line(w, func(start, end int) {
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				y0, y1 := max(0, y-radius), min(h-1, y+radius)
				var sum imaging.Pixel
				for i := y0; i <= y1; i++ {
					sum = sum.Add(horizontal.Pix[i*w+x])
				}
				dst.Pix[y*w+x] = sum.Div(float64(y1 - y0 + 1))
			}
		}
	})

	return dst, nil
}
