package bbox

import "fmt"

// Normalize maps polygons from the pixel space of src into the unit square.
//
// The result can be redrawn on an image of any size with Scale. The input
// slice is not modified.
func Normalize(polys []Polygon, src Shape) ([]Polygon, error) {
	if !src.Valid() {
		return nil, fmt.Errorf("normalize from %s: %w", src, ErrInvalidShape)
	}
	sx := 1 / float64(src.Width)
	sy := 1 / float64(src.Height)
	return apply(polys, func(p Point) Point {
		return Point{X: p.X * sx, Y: p.Y * sy}
	}), nil
}

// Scale maps unit-square polygons into the pixel space of dst.
func Scale(normalized []Polygon, dst Shape) ([]Polygon, error) {
	if !dst.Valid() {
		return nil, fmt.Errorf("scale to %s: %w", dst, ErrInvalidShape)
	}
	w := float64(dst.Width)
	h := float64(dst.Height)
	return apply(normalized, func(p Point) Point {
		return Point{X: p.X * w, Y: p.Y * h}
	}), nil
}

// Remap moves polygons detected on an image of shape from onto an image of
// shape to. It is Scale(Normalize(polys, from), to).
func Remap(polys []Polygon, from, to Shape) ([]Polygon, error) {
	n, err := Normalize(polys, from)
	if err != nil {
		return nil, err
	}
	return Scale(n, to)
}

func apply(polys []Polygon, f func(Point) Point) []Polygon {
	out := make([]Polygon, len(polys))
	for i, p := range polys {
		for j, pt := range p {
			out[i][j] = f(pt)
		}
	}
	return out
}
