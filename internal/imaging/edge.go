package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// EdgeMap marks pixels whose Sobel gradient magnitude exceeds threshold
// (0-255). The result is indexed [y][x] relative to img.Bounds().Min.
//
// The image is converted to grayscale before the Sobel operator is applied
// so color edges of equal luminance are not reported.
func EdgeMap(img image.Image, threshold uint8) [][]bool {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	sobel := effect.Sobel(effect.Grayscale(img))
	sb := sobel.Bounds()

	edges := make([][]bool, height)
	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		// Border pixels have a one-sided gradient and are ignored.
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			if sobel.RGBAAt(x+sb.Min.X, y+sb.Min.Y).R > threshold {
				edges[y][x] = true
			}
		}
	}
	return edges
}

// EdgeDensity returns the fraction of edge pixels in edges within r, where
// r is relative to the edge map origin.
func EdgeDensity(edges [][]bool, r image.Rectangle) float64 {
	if r.Empty() {
		return 0
	}
	count := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if edges[y][x] {
				count++
			}
		}
	}
	return float64(count) / float64(r.Dx()*r.Dy())
}
