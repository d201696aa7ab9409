package bandpass

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-bandpass/internal/blur"
	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// Radii are the blur radii of the four scales, finest first.
var Radii = [4]int{2, 3, 5, 8}

// Passes is the number of box blur passes applied per scale. Five passes of
// a box filter approximate a Gaussian-like kernel.
const Passes = 5

// ErrInvalidPasses is returned for a negative pass count.
var ErrInvalidPasses = errors.New("bandpass: passes must not be negative")

// Band names, finest first.
const (
	BandTiny   = "tiny"
	BandSmall  = "small"
	BandMedium = "medium"
)

// Band is the difference between two adjacent smoothed scales.
type Band struct {
	// Name is BandTiny, BandSmall or BandMedium.
	Name string

	// SmallRadius and LargeRadius are the radii of the finer and coarser
	// scale that were subtracted.
	SmallRadius int
	LargeRadius int

	// Image is the quantized difference.
	Image *imaging.Image
}

// Result holds everything a decomposition produces.
type Result struct {
	// Smoothed holds the final buffer of each chain, indexed like Radii.
	Smoothed [len(Radii)]*imaging.Buffer

	// Bands holds tiny (2 vs 3), small (3 vs 5) and medium (5 vs 8).
	Bands [len(Radii) - 1]Band
}

// Band returns the band with the given name, or nil.
func (r *Result) Band(name string) *Band {
	for i := range r.Bands {
		if r.Bands[i].Name == name {
			return &r.Bands[i]
		}
	}
	return nil
}

// Options tunes how a decomposition is scheduled. The zero value runs all
// chains concurrently.
type Options struct {
	// MaxChains caps how many radius chains run at once. Values <= 0 mean
	// no cap.
	MaxChains int
}

// chain is one scale: Passes box blurs at a fixed radius.
type chain struct {
	radius int
	passes int
}

// run takes ownership of front and blurs it passes times, alternating
// between front and a second owned buffer so no pass reads the buffer it
// writes. One summed-area table is reused across passes.
func (c chain) run(front *imaging.Buffer) (*imaging.Buffer, error) {
	if c.passes == 0 {
		return front, nil
	}

	back, err := imaging.NewBuffer(front.Width, front.Height)
	if err != nil {
		return nil, err
	}
	table, err := blur.NewTable(front.Width, front.Height)
	if err != nil {
		return nil, err
	}

	for i := 0; i < c.passes; i++ {
		if err := blur.BoxInto(back, front, c.radius, table); err != nil {
			return nil, err
		}
		front, back = back, front
	}
	return front, nil
}

// Smooth returns src blurred Passes times at radius. src is not modified.
func Smooth(src *imaging.Buffer, radius int) (*imaging.Buffer, error) {
	return SmoothPasses(src, radius, Passes)
}

// SmoothPasses is Smooth with an explicit pass count. Zero passes returns a
// copy of src.
func SmoothPasses(src *imaging.Buffer, radius, passes int) (*imaging.Buffer, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: %d", blur.ErrInvalidRadius, radius)
	}
	if passes < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPasses, passes)
	}
	front, err := src.Clone()
	if err != nil {
		return nil, err
	}
	return chain{radius: radius, passes: passes}.run(front)
}

// Decompose computes the three band images of img.
//
// Each radius in Radii is processed by its own chain, starting from its own
// high-precision copy of img; the chains share nothing but the read-only
// input and run concurrently. When every chain has finished, adjacent scales
// are subtracted with Difference. Any failure aborts the whole decomposition:
// no partial set of bands is returned.
func Decompose(img *imaging.Image, opts *Options) (*Result, error) {
	return decompose(img, Radii, Passes, opts)
}

func decompose(img *imaging.Image, radii [len(Radii)]int, passes int, opts *Options) (*Result, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", imaging.ErrInvalidDimension, img.Width, img.Height)
	}

	res := &Result{}

	var g errgroup.Group
	if opts != nil && opts.MaxChains > 0 {
		g.SetLimit(opts.MaxChains)
	}
	for i, radius := range radii {
		i, radius := i, radius
		g.Go(func() error {
			src, err := imaging.NewBufferFromImage(img)
			if err != nil {
				return fmt.Errorf("radius %d: %w", radius, err)
			}
			smoothed, err := chain{radius: radius, passes: passes}.run(src)
			if err != nil {
				return fmt.Errorf("radius %d: %w", radius, err)
			}
			res.Smoothed[i] = smoothed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := [...]string{BandTiny, BandSmall, BandMedium}
	for i, name := range names {
		diff, err := Difference(res.Smoothed[i], res.Smoothed[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s band: %w", name, err)
		}
		res.Bands[i] = Band{
			Name:        name,
			SmallRadius: radii[i],
			LargeRadius: radii[i+1],
			Image:       diff,
		}
	}

	return res, nil
}
