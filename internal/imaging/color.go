package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorResult describes a sampled color.
type ColorResult struct {
	Hex       string  `json:"hex"`
	Lightness float64 `json:"lightness"` // CIE L*, 0-1
	Dark      bool    `json:"dark"`
}

// AverageColor returns the mean color of img inside r, averaged in linear
// RGB. Pixels outside the image are ignored. An empty intersection yields
// white.
func AverageColor(img image.Image, r image.Rectangle) colorful.Color {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return colorful.Color{R: 1, G: 1, B: 1}
	}

	var sr, sg, sb float64
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue // fully transparent
			}
			lr, lg, lb := c.LinearRgb()
			sr += lr
			sg += lg
			sb += lb
			n++
		}
	}
	if n == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return colorful.LinearRgb(sr/float64(n), sg/float64(n), sb/float64(n)).Clamped()
}

// IsDark reports whether c reads as a dark background (CIE L* below 0.5).
func IsDark(c colorful.Color) bool {
	l, _, _ := c.Lab()
	return l < 0.5
}

// DescribeColor summarises c for tool output.
func DescribeColor(c colorful.Color) ColorResult {
	l, _, _ := c.Lab()
	return ColorResult{
		Hex:       c.Hex(),
		Lightness: l,
		Dark:      IsDark(c),
	}
}
