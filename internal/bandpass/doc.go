// Package bandpass splits an image into detail bands at three spatial scales.
//
// The image is smoothed independently at each radius in Radii (2, 3, 5 and 8
// pixels) by Passes repeated box blurs, an approximation of a Gaussian kernel.
// Subtracting each smoothed scale from the next coarser one isolates the
// detail removed between them:
//
//	tiny   = smooth(input, 3) - smooth(input, 2)
//	small  = smooth(input, 5) - smooth(input, 3)
//	medium = smooth(input, 8) - smooth(input, 5)
//
// Deltas are quantized back to 8 bits with Quantize.
//
// # Concurrency
//
// Decompose runs the four radius chains on separate goroutines. Each chain
// owns its two ping-pong buffers and its summed-area table; the only shared
// state is the input image, which is never written.
package bandpass
