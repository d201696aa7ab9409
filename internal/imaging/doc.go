// Package imaging holds the pixel containers shared by the blur and band
// packages, plus the bridge between them and encoded image files.
//
// Two grids are defined. Image stores 8-bit RGB pixels and is what decoders
// produce and encoders consume. Buffer stores float64 RGB pixels and is the
// working type for blurring and differencing; it may hold values outside
// 0..255. Both are row-major with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward.
//
// # File Formats
//
// Load and Decode accept binary (P6) and plain (P3) PPM, recognized by magic
// number, and every format registered with the standard image package: PNG,
// JPEG, GIF, BMP, TIFF and WebP. Alpha is discarded. Save and Encode pick an
// encoder from the file extension; WebP is decode-only.
//
// # Errors
//
// Constructors return ErrInvalidDimension for non-positive sizes and
// ErrAllocation when the pixel slice cannot be obtained. Operations on two
// grids return ErrDimensionMismatch when their shapes differ.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Image and Buffer carry no
// locks; concurrent readers are fine but writers must be synchronized by the
// caller.
package imaging
