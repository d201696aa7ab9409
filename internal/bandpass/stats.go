package bandpass

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-bandpass/internal/imaging"
)

// ChannelStats summarizes one channel of a band image.
type ChannelStats struct {
	Mean float64 `json:"mean"`
	Min  uint8   `json:"min"`
	Max  uint8   `json:"max"`
}

// HSLColor is a color in HSL space.
type HSLColor struct {
	H float64 `json:"h"` // Hue: 0-360 degrees
	S float64 `json:"s"` // Saturation: 0-100 percent
	L float64 `json:"l"` // Lightness: 0-100 percent
}

// BandSummary describes the content of one band image.
type BandSummary struct {
	Name        string `json:"name"`
	SmallRadius int    `json:"small_radius"`
	LargeRadius int    `json:"large_radius"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`

	Red   ChannelStats `json:"red"`
	Green ChannelStats `json:"green"`
	Blue  ChannelStats `json:"blue"`

	// NonZeroFraction is the share of pixels with at least one non-zero
	// channel, from 0 to 1.
	NonZeroFraction float64 `json:"non_zero_fraction"`

	// MeanHex is the mean color as "#rrggbb".
	MeanHex string `json:"mean_hex"`

	// MeanHSL is the mean color in HSL space.
	MeanHSL HSLColor `json:"mean_hsl"`
}

// Summarize computes channel statistics for a band.
func Summarize(b Band) BandSummary {
	img := b.Image
	s := BandSummary{
		Name:        b.Name,
		SmallRadius: b.SmallRadius,
		LargeRadius: b.LargeRadius,
		Width:       img.Width,
		Height:      img.Height,
		Red:         ChannelStats{Min: math.MaxUint8},
		Green:       ChannelStats{Min: math.MaxUint8},
		Blue:        ChannelStats{Min: math.MaxUint8},
	}

	var sumR, sumG, sumB float64
	nonZero := 0
	for _, c := range img.Pix {
		sumR += float64(c.R)
		sumG += float64(c.G)
		sumB += float64(c.B)
		s.Red.Min, s.Red.Max = min(s.Red.Min, c.R), max(s.Red.Max, c.R)
		s.Green.Min, s.Green.Max = min(s.Green.Min, c.G), max(s.Green.Max, c.G)
		s.Blue.Min, s.Blue.Max = min(s.Blue.Min, c.B), max(s.Blue.Max, c.B)
		if c != (imaging.RGB{}) {
			nonZero++
		}
	}

	n := float64(len(img.Pix))
	s.Red.Mean = round2(sumR / n)
	s.Green.Mean = round2(sumG / n)
	s.Blue.Mean = round2(sumB / n)
	s.NonZeroFraction = math.Round(float64(nonZero)/n*1000) / 1000

	mean := colorful.Color{R: sumR / n / 255, G: sumG / n / 255, B: sumB / n / 255}.Clamped()
	h, sat, l := mean.Hsl()
	s.MeanHex = mean.Hex()
	s.MeanHSL = HSLColor{H: round2(h), S: round2(sat * 100), L: round2(l * 100)}

	return s
}

// Summaries returns a summary for every band, finest first.
func (r *Result) Summaries() []BandSummary {
	out := make([]BandSummary, 0, len(r.Bands))
	for _, b := range r.Bands {
		out = append(out, Summarize(b))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
