package bandpass

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// Stem returns the base name of path without its extension, the prefix of
// every file written for it.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BandPath returns dir/<stem>_<band>.<format>.
func BandPath(dir, stem, band, format string) string {
	return filepath.Join(dir, stem+"_"+band+"."+strings.TrimPrefix(format, "."))
}

// WriteBands saves every band of r into dir and returns the written paths,
// finest first. The format is a file extension understood by imaging.Save.
func (r *Result) WriteBands(dir, stem, format string) ([]string, error) {
	paths := make([]string, 0, len(r.Bands))
	for _, b := range r.Bands {
		path := BandPath(dir, stem, b.Name, format)
		if err := imaging.Save(b.Image, path); err != nil {
			return paths, fmt.Errorf("%s band: %w", b.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteSmoothed saves the smoothed scale of every radius into dir as
// <stem>_r<radius>.<format>, narrowed to 8 bits, and returns the paths.
func (r *Result) WriteSmoothed(dir, stem, format string) ([]string, error) {
	paths := make([]string, 0, len(r.Smoothed))
	for i, buf := range r.Smoothed {
		name := "r" + strconv.Itoa(Radii[i])
		img, err := buf.ToImage()
		if err != nil {
			return paths, fmt.Errorf("radius %d: %w", Radii[i], err)
		}
		path := BandPath(dir, stem, name, format)
		if err := imaging.Save(img, path); err != nil {
			return paths, fmt.Errorf("radius %d: %w", Radii[i], err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
