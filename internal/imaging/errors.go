package imaging

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned when creating or combining pixel buffers.
//
// Callers should test for them with errors.Is; the returned errors are
// wrapped with the offending dimensions.
var (
	// ErrInvalidDimension is returned when a width or height is zero or negative.
	ErrInvalidDimension = errors.New("invalid image dimension")

	// ErrAllocation is returned when memory for a buffer cannot be obtained,
	// either because the pixel count overflows or the runtime refuses the
	// allocation.
	ErrAllocation = errors.New("image allocation failed")

	// ErrDimensionMismatch is returned when two buffers that must share a
	// shape do not.
	ErrDimensionMismatch = errors.New("image dimensions do not match")
)

// pixelCount validates a width/height pair and returns width*height.
//
// elemSize is the size in bytes of one stored pixel; the product of the
// three must fit in an int so the backing slice can be addressed.
func pixelCount(width, height, elemSize int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	if width > math.MaxInt/height/elemSize {
		return 0, fmt.Errorf("%w: %dx%d pixels", ErrAllocation, width, height)
	}
	return width * height, nil
}

// allocate makes a zeroed slice of n elements, converting a makeslice panic
// into ErrAllocation.
func allocate[T any](n int) (pix []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			pix = nil
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()
	return make([]T, n), nil
}

// MismatchError wraps ErrDimensionMismatch with both shapes.
func MismatchError(aw, ah, bw, bh int) error {
	return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, aw, ah, bw, bh)
}
