package inpaint

import (
	"image"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/detection"
)

// BuildMask rasterizes the padded bounding boxes of regions into an alpha
// mask of the given shape. Hole pixels are 255. Regions below
// minConfidence are skipped and boxes are clamped to the image.
func BuildMask(shape bbox.Shape, regions []detection.TextRegion, padding int, minConfidence float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, shape.Width, shape.Height))
	for _, r := range regions {
		if r.Confidence < minConfidence {
			continue
		}
		box := r.Bounds().Expand(float64(padding)).Clamp(shape)
		if box.Empty() {
			continue
		}
		rect := box.Rect().Intersect(mask.Rect)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			row := mask.Pix[y*mask.Stride:]
			for x := rect.Min.X; x < rect.Max.X; x++ {
				row[x] = 0xff
			}
		}
	}
	return mask
}

// holeCount returns the number of masked pixels.
func holeCount(mask *image.Alpha) int {
	n := 0
	for _, a := range mask.Pix {
		if a != 0 {
			n++
		}
	}
	return n
}
