package blur

import (
	"errors"
	"fmt"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-bandpass/internal/imaging"
)

var (
	// ErrInvalidRadius is returned for negative blur radii.
	ErrInvalidRadius = errors.New("blur: radius must not be negative")

	// ErrAliasedBuffers is returned when BoxInto is asked to read and write
	// the same buffer.
	ErrAliasedBuffers = errors.New("blur: source and destination are the same buffer")
)

// Box returns a new buffer holding the box blur of src at the given radius.
//
// Every output pixel is the mean of src over the square window of half-width
// radius centred on it, clipped at the image border: windows shrink at the
// edges and are never padded or wrapped. src is not modified.
//
// # Algorithm
//
//  1. Build a summed-area table of src (see Table.Build).
//  2. For each pixel compute the clipped window
//     [max(0,x-r), min(W-1,x+r)] × [max(0,y-r), min(H-1,y+r)].
//  3. Take the window sum from four table lookups and divide it by the exact
//     number of pixels in the window.
//
// One pass costs O(W×H) regardless of radius. Radius 0 is an exact copy, and
// radii beyond the image size act as the largest one that still fits.
func Box(src *imaging.Buffer, radius int) (*imaging.Buffer, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, radius)
	}
	dst, err := imaging.NewBuffer(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	if err := BoxInto(dst, src, radius, nil); err != nil {
		return nil, err
	}
	return dst, nil
}

// BoxInto writes the box blur of src into dst, which must have the same
// shape and must not be src.
//
// table is optional scratch space; passing the same table on every call lets
// a caller blur repeatedly without reallocating it. When table is nil a
// temporary one is allocated.
func BoxInto(dst, src *imaging.Buffer, radius int, table *Table) error {
	if radius < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRadius, radius)
	}
	if dst == src {
		return ErrAliasedBuffers
	}
	if radius == 0 {
		return dst.CopyFrom(src)
	}
	if !dst.SameSize(src) {
		return imaging.MismatchError(dst.Width, dst.Height, src.Width, src.Height)
	}
	// A window wider than the image covers all of it.
	radius = min(radius, max(src.Width, src.Height))

	if table == nil {
		var err error
		if table, err = NewTable(src.Width, src.Height); err != nil {
			return err
		}
	}
	if err := table.Build(src); err != nil {
		return err
	}

	w, h := src.Width, src.Height
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			y0, y1 := max(0, y-radius), min(h-1, y+radius)
			rows := y1 - y0 + 1
			for x := 0; x < w; x++ {
				x0, x1 := max(0, x-radius), min(w-1, x+radius)
				count := float64((x1 - x0 + 1) * rows)
				dst.Pix[y*w+x] = table.Sum(x0, y0, x1, y1).Div(count)
			}
		}
	})

	return nil
}
