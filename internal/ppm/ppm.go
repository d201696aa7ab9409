// Package ppm reads and writes 8-bit Portable Pixmap images.
//
// Both the binary (P6) and plain (P3) variants are decoded; images are always
// encoded as binary P6 with a maxval of 255. A Decoder may be used to read
// several images written back to back on one stream, which is how the
// bandpass command emits its three band images on stdout.
package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
)

// MaxVal is the only maxval written by Encode.
const MaxVal = 255

// rasterChunk bounds how far the raster buffer grows ahead of the bytes
// actually read, so a header announcing a huge image cannot allocate it
// before the stream has delivered it.
const rasterChunk = 64 * 1024

var (
	// ErrFormat indicates a malformed PPM header or pixel payload.
	ErrFormat = errors.New("ppm: invalid format")

	// ErrUnsupported indicates a valid netpbm file this package cannot read,
	// such as a 16-bit pixmap or a PGM/PBM file.
	ErrUnsupported = errors.New("ppm: unsupported format")
)

// Image is a packed RGB pixmap. Pix holds Width*Height*3 bytes, row-major,
// one byte per channel.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// IsMagic reports whether b begins with a PPM magic number.
func IsMagic(b []byte) bool {
	return len(b) >= 2 && b[0] == 'P' && (b[1] == '6' || b[1] == '3')
}

// Decoder reads consecutive PPM images from a stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading from r. If r is already a
// *bufio.Reader it is used directly so no input is lost to a second buffer.
func NewDecoder(r io.Reader) *Decoder {
	if br, ok := r.(*bufio.Reader); ok {
		return &Decoder{r: br}
	}
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads a single image from r.
func Decode(r io.Reader) (*Image, error) {
	return NewDecoder(r).Decode()
}

// Decode reads the next image. It returns io.EOF when the stream ends
// cleanly before a new image starts.
func (d *Decoder) Decode() (*Image, error) {
	magic := make([]byte, 2)
	if _, err := io.ReadFull(d.r, magic); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading magic: %v", ErrFormat, err)
	}
	if magic[0] != 'P' {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, magic)
	}
	plain := false
	switch magic[1] {
	case '6':
	case '3':
		plain = true
	case '1', '2', '4', '5', '7':
		return nil, fmt.Errorf("%w: netpbm type P%c", ErrUnsupported, magic[1])
	default:
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, magic)
	}

	width, err := d.readInt("width")
	if err != nil {
		return nil, err
	}
	height, err := d.readInt("height")
	if err != nil {
		return nil, err
	}
	maxVal, err := d.readInt("maxval")
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrFormat, width, height)
	}
	if maxVal <= 0 {
		return nil, fmt.Errorf("%w: maxval %d", ErrFormat, maxVal)
	}
	if maxVal > MaxVal {
		return nil, fmt.Errorf("%w: maxval %d (16-bit samples)", ErrUnsupported, maxVal)
	}
	if width > math.MaxInt/height/3 {
		return nil, fmt.Errorf("%w: dimensions %dx%d too large", ErrFormat, width, height)
	}

	var pix []byte
	if plain {
		pix, err = d.readPlain(width*height*3, maxVal)
	} else {
		pix, err = d.readRaw(width*height*3, maxVal)
	}
	if err != nil {
		return nil, err
	}
	return &Image{Width: width, Height: height, Pix: pix}, nil
}

// readRaw reads n binary samples in chunks of at most rasterChunk bytes.
func (d *Decoder) readRaw(n, maxVal int) ([]byte, error) {
	// Exactly one whitespace byte separates the header from the raster.
	c, err := d.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing raster: %v", ErrFormat, err)
	}
	if !isSpace(c) {
		return nil, fmt.Errorf("%w: no whitespace after maxval", ErrFormat)
	}

	pix := make([]byte, 0, min(n, rasterChunk))
	for len(pix) < n {
		k := min(n-len(pix), rasterChunk)
		pix = slices.Grow(pix, k)
		chunk := pix[len(pix) : len(pix)+k]
		if _, err := io.ReadFull(d.r, chunk); err != nil {
			return nil, fmt.Errorf("%w: truncated raster: %v", ErrFormat, err)
		}
		for i, v := range chunk {
			if int(v) > maxVal {
				return nil, fmt.Errorf("%w: sample %d exceeds maxval %d", ErrFormat, v, maxVal)
			}
			chunk[i] = scale(int(v), maxVal)
		}
		pix = pix[:len(pix)+k]
	}
	return pix, nil
}

func (d *Decoder) readPlain(n, maxVal int) ([]byte, error) {
	pix := make([]byte, 0, min(n, rasterChunk))
	for len(pix) < n {
		v, err := d.readInt("sample")
		if err != nil {
			return nil, err
		}
		if v > maxVal {
			return nil, fmt.Errorf("%w: sample %d exceeds maxval %d", ErrFormat, v, maxVal)
		}
		pix = append(pix, scale(v, maxVal))
	}
	return pix, nil
}

// readInt skips whitespace and comments, then reads a decimal integer.
// The byte following the digits is left unread.
func (d *Decoder) readInt(field string) (int, error) {
	if err := d.skipSpace(); err != nil {
		return 0, fmt.Errorf("%w: reading %s: %v", ErrFormat, field, err)
	}
	var digits []byte
	for {
		c, err := d.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: reading %s: %v", ErrFormat, field, err)
		}
		if c < '0' || c > '9' {
			_ = d.r.UnreadByte()
			break
		}
		digits = append(digits, c)
	}
	if len(digits) == 0 {
		return 0, fmt.Errorf("%w: expected %s", ErrFormat, field)
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q out of range", ErrFormat, field, digits)
	}
	return n, nil
}

func (d *Decoder) skipSpace() error {
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case isSpace(c):
		case c == '#':
			if _, err := d.r.ReadBytes('\n'); err != nil {
				return err
			}
		default:
			return d.r.UnreadByte()
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// scale maps a sample in [0, maxVal] onto [0, 255] with rounding.
func scale(v, maxVal int) byte {
	if maxVal == MaxVal {
		return byte(v)
	}
	return byte((v*MaxVal + maxVal/2) / maxVal)
}

// Encode writes img to w as a binary P6 pixmap.
func Encode(w io.Writer, img *Image) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrFormat, img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height*3 {
		return fmt.Errorf("%w: %d bytes for %dx%d pixels", ErrFormat, len(img.Pix), img.Width, img.Height)
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n%d\n", img.Width, img.Height, MaxVal); err != nil {
		return err
	}
	if _, err := bw.Write(img.Pix); err != nil {
		return err
	}
	return bw.Flush()
}
