// Package blur implements the border-clipped box blur used by the band-pass
// pipeline.
//
// Box and BoxInto average a square window around every pixel using a
// summed-area table, so one pass is linear in the number of pixels whatever
// the radius. Windows are clipped at the image edges: a corner pixel at
// radius r averages (r+1)×(r+1) pixels, not a padded (2r+1)×(2r+1) window.
//
// # Thread Safety
//
// Box and Separable allocate everything they write and may be called
// concurrently on shared, read-only sources. BoxInto writes into the
// caller's destination and table; concurrent callers must use distinct ones.
// Internally each pass fans out across rows or columns with bild/parallel.
package blur
