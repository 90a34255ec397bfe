// Package fontfit chooses font sizes for captions.
//
// Estimate is the closed-form rule used for every layout by default: aim
// for text spanning 80% of the target width assuming glyphs average 0.6 of
// the font size, then nudge short captions up and very long ones down.
// Measured is an alternative that binary-searches real glyph metrics and
// applies the same length nudge to the result. Both return the default for
// empty text and otherwise stay within bounds.
package fontfit

import "unicode/utf8"

const (
	// widthFraction of the target width the text should span.
	widthFraction = 0.8

	// glyphRatio is the assumed average glyph width per unit of font size.
	glyphRatio = 0.6

	// DefaultSize is returned for empty text unless Bounds says otherwise.
	DefaultSize = 40
)

// Bounds limits a fitted size. Default is returned for empty text.
type Bounds struct {
	Min     int
	Max     int
	Default int
}

// NewBounds returns bounds with the package default size.
func NewBounds(min, max int) Bounds {
	return Bounds{Min: min, Max: max, Default: DefaultSize}
}

func (b Bounds) clamp(size int) int {
	if size > b.Max {
		size = b.Max
	}
	if size < b.Min {
		size = b.Min
	}
	return size
}

// Fitter picks a font size for text in a width × height target.
type Fitter interface {
	Fit(text string, width, height float64, b Bounds) int
}

// Estimate computes the closed-form font size. height is accepted for
// symmetry with Fitter and does not affect the result.
func Estimate(text string, width, height float64, b Bounds) int {
	if text == "" {
		return b.Default
	}
	n := utf8.RuneCountInString(text)

	size := b.clamp(int(width * widthFraction / (glyphRatio * float64(n))))
	return b.adjustLength(size, n)
}

// adjustLength nudges size up for captions of at most ten runes and down
// for captions of fifty or more, then clamps.
func (b Bounds) adjustLength(size, n int) int {
	switch {
	case n <= 5:
		size = min(int(float64(size)*1.2), b.Max)
	case n <= 10:
		size = min(int(float64(size)*1.1), b.Max)
	case n >= 50:
		size = max(int(float64(size)*0.9), b.Min)
	}
	return b.clamp(size)
}

// Heuristic is the Fitter form of Estimate.
type Heuristic struct{}

func (Heuristic) Fit(text string, width, height float64, b Bounds) int {
	return Estimate(text, width, height, b)
}
