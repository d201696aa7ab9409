package imaging

import (
	"image"
	"unsafe"

	"github.com/disintegration/imaging"
)

// RGB is an 8-bit RGB pixel.
type RGB struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Image is a width×height grid of 8-bit RGB pixels stored row-major.
//
// This is the type exchanged with the format bridge: decoders produce it and
// the band pipeline hands three of them back. len(Pix) is always
// Width*Height.
type Image struct {
	Width  int
	Height int
	Pix    []RGB
}

// NewImage allocates a black width×height image.
//
// Returns ErrInvalidDimension if either dimension is not positive and
// ErrAllocation if the pixel slice cannot be allocated.
func NewImage(width, height int) (*Image, error) {
	n, err := pixelCount(width, height, int(unsafe.Sizeof(RGB{})))
	if err != nil {
		return nil, err
	}
	pix, err := allocate[RGB](n)
	if err != nil {
		return nil, err
	}
	return &Image{Width: width, Height: height, Pix: pix}, nil
}

// In reports whether (x, y) lies inside the image.
func (img *Image) In(x, y int) bool {
	return x >= 0 && x < img.Width && y >= 0 && y < img.Height
}

// Offset returns the index of (x, y) in Pix. It does not check bounds.
func (img *Image) Offset(x, y int) int {
	return y*img.Width + x
}

// At returns the pixel at (x, y), or the zero pixel if (x, y) is outside
// the image.
func (img *Image) At(x, y int) RGB {
	if !img.In(x, y) {
		return RGB{}
	}
	return img.Pix[img.Offset(x, y)]
}

// Set stores c at (x, y). Coordinates outside the image are ignored.
func (img *Image) Set(x, y int, c RGB) {
	if !img.In(x, y) {
		return
	}
	img.Pix[img.Offset(x, y)] = c
}

// FromImage converts any image.Image into an 8-bit RGB Image.
//
// The source is first normalized to non-premultiplied NRGBA and its alpha
// channel is discarded; the result origin is always (0, 0).
func FromImage(src image.Image) (*Image, error) {
	nrgba := imaging.Clone(src)
	bounds := nrgba.Bounds()
	out, err := NewImage(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < out.Width; x++ {
			i := x * 4
			out.Pix[out.Offset(x, y)] = RGB{R: row[i], G: row[i+1], B: row[i+2]}
		}
	}
	return out, nil
}

// NRGBA returns an opaque *image.NRGBA copy of the image for encoders.
func (img *Image) NRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < img.Width; x++ {
			c := img.Pix[img.Offset(x, y)]
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, 0xff
		}
	}
	return dst
}
