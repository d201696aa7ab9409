package blur

import (
	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// Table is a summed-area table: entry (x, y) holds the sum of every source
// pixel in the rectangle (0,0)-(x,y) inclusive.
//
// A Table is scratch space. Build overwrites every entry before any is read,
// so one Table can be reused across successive blur passes of the same
// shape. A Table must not be shared between goroutines building it
// concurrently.
type Table struct {
	sums *imaging.Buffer
}

// NewTable allocates a table for width×height sources.
func NewTable(width, height int) (*Table, error) {
	sums, err := imaging.NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	return &Table{sums: sums}, nil
}

// Width returns the width of the sources the table currently fits.
func (t *Table) Width() int { return t.sums.Width }

// Height returns the height of the sources the table currently fits.
func (t *Table) Height() int { return t.sums.Height }

// Build fills the table from src, reallocating if src has a different shape.
//
// The recurrence S(x,y) = in(x,y) + S(x-1,y) + S(x,y-1) - S(x-1,y-1) is
// evaluated as two prefix-sum passes: a horizontal pass that is independent
// across rows, then a vertical pass that is independent across columns.
// Each pass is parallelized only along its independent axis.
func (t *Table) Build(src *imaging.Buffer) error {
	if t.Width() != src.Width || t.Height() != src.Height {
		sums, err := imaging.NewBuffer(src.Width, src.Height)
		if err != nil {
			return err
		}
		t.sums = sums
	}

	w, h := src.Width, src.Height
	sums := t.sums.Pix

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := y * w
			acc := imaging.Pixel{}
			for x := 0; x < w; x++ {
				acc = acc.Add(src.Pix[row+x])
				sums[row+x] = acc
			}
		}
	})

	parallel.Line(w, func(start, end int) {
		for y := 1; y < h; y++ {
			row := y * w
			prev := row - w
			for x := start; x < end; x++ {
				sums[row+x] = sums[row+x].Add(sums[prev+x])
			}
		}
	})

	return nil
}

// Sum returns the sum of the source over the rectangle (x0,y0)-(x1,y1)
// inclusive. The rectangle must lie inside the table with x0 <= x1 and
// y0 <= y1.
func (t *Table) Sum(x0, y0, x1, y1 int) imaging.Pixel {
	w := t.sums.Width
	sums := t.sums.Pix

	s := sums[y1*w+x1]
	if x0 > 0 {
		s = s.Sub(sums[y1*w+x0-1])
	}
	if y0 > 0 {
		s = s.Sub(sums[(y0-1)*w+x1])
	}
	if x0 > 0 && y0 > 0 {
		s = s.Add(sums[(y0-1)*w+x0-1])
	}
	return s
}
