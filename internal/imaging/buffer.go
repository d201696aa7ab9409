package imaging

import (
	"math"
	"unsafe"
)

// Pixel is a high-precision RGB pixel. Channel values are unconstrained so
// that repeated filtering does not accumulate 8-bit rounding error.
type Pixel struct {
	R, G, B float64
}

// Add returns the channel-wise sum p + q.
func (p Pixel) Add(q Pixel) Pixel {
	return Pixel{R: p.R + q.R, G: p.G + q.G, B: p.B + q.B}
}

// Sub returns the channel-wise difference p - q.
func (p Pixel) Sub(q Pixel) Pixel {
	return Pixel{R: p.R - q.R, G: p.G - q.G, B: p.B - q.B}
}

// Div divides every channel by d.
func (p Pixel) Div(d float64) Pixel {
	return Pixel{R: p.R / d, G: p.G / d, B: p.B / d}
}

// Buffer is a width×height grid of high-precision pixels stored row-major.
//
// Buffer is the working representation for all band-pass arithmetic. A
// Buffer is not safe for concurrent writes to the same pixel; the blur and
// difference passes partition rows so that every pixel has one writer.
type Buffer struct {
	Width  int
	Height int
	Pix    []Pixel
}

// NewBuffer allocates a zero-initialized width×height buffer.
//
// Dimensions are validated before any allocation: a non-positive width or
// height yields ErrInvalidDimension.
func NewBuffer(width, height int) (*Buffer, error) {
	n, err := pixelCount(width, height, int(unsafe.Sizeof(Pixel{})))
	if err != nil {
		return nil, err
	}
	pix, err := allocate[Pixel](n)
	if err != nil {
		return nil, err
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// NewBufferFromImage widens an 8-bit image into a new high-precision buffer.
func NewBufferFromImage(img *Image) (*Buffer, error) {
	buf, err := NewBuffer(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	for i, c := range img.Pix {
		buf.Pix[i] = Pixel{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
	}
	return buf, nil
}

// In reports whether (x, y) lies inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Offset returns the index of (x, y) in Pix. It does not check bounds.
func (b *Buffer) Offset(x, y int) int {
	return y*b.Width + x
}

// At returns the pixel at (x, y), or the zero pixel outside the buffer.
func (b *Buffer) At(x, y int) Pixel {
	if !b.In(x, y) {
		return Pixel{}
	}
	return b.Pix[b.Offset(x, y)]
}

// Set stores p at (x, y). Coordinates outside the buffer are ignored.
func (b *Buffer) Set(x, y int, p Pixel) {
	if !b.In(x, y) {
		return
	}
	b.Pix[b.Offset(x, y)] = p
}

// SameSize reports whether two buffers share width and height.
func (b *Buffer) SameSize(other *Buffer) bool {
	return b.Width == other.Width && b.Height == other.Height
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() (*Buffer, error) {
	out, err := NewBuffer(b.Width, b.Height)
	if err != nil {
		return nil, err
	}
	copy(out.Pix, b.Pix)
	return out, nil
}

// CopyFrom overwrites b with the contents of src.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if !b.SameSize(src) {
		return MismatchError(b.Width, b.Height, src.Width, src.Height)
	}
	copy(b.Pix, src.Pix)
	return nil
}

// ToImage narrows the buffer to 8 bits by flooring each channel and
// clamping it to [0, 255].
//
// This is the plain conversion used for exporting intermediate buffers;
// band images are produced by the band-pass difference quantizer instead.
func (b *Buffer) ToImage() (*Image, error) {
	img, err := NewImage(b.Width, b.Height)
	if err != nil {
		return nil, err
	}
	for i, p := range b.Pix {
		img.Pix[i] = RGB{R: narrow(p.R), G: narrow(p.G), B: narrow(p.B)}
	}
	return img, nil
}

// narrow floors v and clamps it to the 8-bit range. NaN maps to 0.
func narrow(v float64) uint8 {
	v = math.Floor(v)
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
