package embedding

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

const (
	structSide = 16
	colorSide  = 64
	colorBins  = 4

	// PerceptualDimension is the length of a perceptual embedding.
	PerceptualDimension = structSide*structSide + colorBins*colorBins*colorBins

	// colorWeight scales the color histogram against the structure block.
	colorWeight = 0.5
)

// PerceptualExtractor is a deterministic local extractor. It needs no model
// service and suits template reuse, where near-duplicates of the same blank
// template must score close to 1.
//
// The vector is a mean-centered 16×16 grayscale thumbnail followed by a
// 4×4×4 RGB histogram, each block unit-normalized before the whole vector
// is normalized.
type PerceptualExtractor struct{}

// NewPerceptual returns a PerceptualExtractor.
func NewPerceptual() *PerceptualExtractor { return &PerceptualExtractor{} }

func (*PerceptualExtractor) Name() string { return "perceptual" }

func (*PerceptualExtractor) Dimension() int { return PerceptualDimension }

func (*PerceptualExtractor) Extract(ctx context.Context, img image.Image) ([]float32, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrExtraction)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	vec := make([]float64, 0, PerceptualDimension)
	vec = append(vec, unit(structure(img))...)
	for _, h := range unit(histogram(img)) {
		vec = append(vec, h*colorWeight)
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return normalize(out)
}

func structure(img image.Image) []float64 {
	thumb := imaging.Grayscale(imaging.Resize(img, structSide, structSide, imaging.Lanczos))
	vals := make([]float64, structSide*structSide)
	var mean float64
	for y := 0; y < structSide; y++ {
		for x := 0; x < structSide; x++ {
			v := float64(thumb.NRGBAAt(x, y).R) / 255
			vals[y*structSide+x] = v
			mean += v
		}
	}
	mean /= float64(len(vals))
	for i := range vals {
		vals[i] -= mean
	}
	return vals
}

func histogram(img image.Image) []float64 {
	thumb := imaging.Resize(img, colorSide, colorSide, imaging.Box)
	hist := make([]float64, colorBins*colorBins*colorBins)
	for y := 0; y < colorSide; y++ {
		for x := 0; x < colorSide; x++ {
			c := thumb.NRGBAAt(x, y)
			r := int(c.R) * colorBins / 256
			g := int(c.G) * colorBins / 256
			b := int(c.B) * colorBins / 256
			hist[(r*colorBins+g)*colorBins+b]++
		}
	}
	return hist
}

// unit scales v to length one. A zero vector is returned unchanged.
func unit(v []float64) []float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	if s == 0 {
		return v
	}
	inv := 1 / math.Sqrt(s)
	for i := range v {
		v[i] *= inv
	}
	return v
}
