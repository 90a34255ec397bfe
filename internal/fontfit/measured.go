package fontfit

import "unicode/utf8"

// Measured fits text by binary search on real glyph metrics: the largest
// size whose advance fits 80% of the width and whose line height fits the
// height, or Min when nothing fits. The result then gets the same length
// nudge as Estimate, so captions of five runes or fewer come out 20% larger
// than the measured fit.
type Measured struct {
	Font *Font
}

// NewMeasured returns a Measured fitter over f, or the default font when f
// is nil.
func NewMeasured(f *Font) *Measured {
	if f == nil {
		f = Default()
	}
	return &Measured{Font: f}
}

func (m *Measured) Fit(text string, width, height float64, b Bounds) int {
	if text == "" {
		return b.Default
	}
	if b.Max < b.Min {
		return b.Min
	}
	maxW := width * widthFraction
	fits := func(size int) bool {
		w, h := m.Font.Measure(text, size)
		return float64(w) <= maxW && (height <= 0 || float64(h) <= height)
	}

	lo, hi := b.Min, b.Max
	best := b.Min
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if fits(mid) {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return b.adjustLength(best, utf8.RuneCountInString(text))
}
