// Package bbox provides the quadrilateral and rectangle types shared by the
// detection, inpainting and compositing stages, plus the coordinate-space
// transform used to move regions between differently sized images.
//
// All coordinates are pixels with (0,0) at the top-left corner, X growing
// rightward and Y growing downward. Polygons are stored in the order
// top-left, top-right, bottom-right, bottom-left.
package bbox

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidShape is returned when a shape has a non-positive dimension.
var ErrInvalidShape = errors.New("invalid image shape")

// Point is a 2D pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is a four-point region, usually an OCR quadrilateral.
type Polygon [4]Point

// Box is an axis-aligned rectangle. Max coordinates are exclusive when the
// box is rasterized.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Shape is the pixel size of an image.
type Shape struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ShapeOf returns the shape of img.
func ShapeOf(img image.Image) Shape {
	b := img.Bounds()
	return Shape{Width: b.Dx(), Height: b.Dy()}
}

// Valid reports whether both dimensions are positive.
func (s Shape) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Bounds returns the axis-aligned bounding box of p.
func (p Polygon) Bounds() Box {
	b := Box{MinX: p[0].X, MinY: p[0].Y, MaxX: p[0].X, MaxY: p[0].Y}
	for _, pt := range p[1:] {
		b.MinX = math.Min(b.MinX, pt.X)
		b.MinY = math.Min(b.MinY, pt.Y)
		b.MaxX = math.Max(b.MaxX, pt.X)
		b.MaxY = math.Max(b.MaxY, pt.Y)
	}
	return b
}

// Finite reports whether every coordinate of p is a finite number.
func (p Polygon) Finite() bool {
	for _, pt := range p {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			return false
		}
	}
	return true
}

// BoxFromRect converts an integer rectangle to a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{
		MinX: float64(r.Min.X),
		MinY: float64(r.Min.Y),
		MaxX: float64(r.Max.X),
		MaxY: float64(r.Max.Y),
	}
}

// Polygon returns the four corners of b.
func (b Box) Polygon() Polygon {
	return Polygon{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}

// Width returns the horizontal extent of b.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of b.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Empty reports whether b encloses no area.
func (b Box) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Expand grows b by pad pixels on every side.
func (b Box) Expand(pad float64) Box {
	return Box{MinX: b.MinX - pad, MinY: b.MinY - pad, MaxX: b.MaxX + pad, MaxY: b.MaxY + pad}
}

// Clamp restricts b to the area of an image of shape s.
func (b Box) Clamp(s Shape) Box {
	w, h := float64(s.Width), float64(s.Height)
	return Box{
		MinX: clampf(b.MinX, 0, w),
		MinY: clampf(b.MinY, 0, h),
		MaxX: clampf(b.MaxX, 0, w),
		MaxY: clampf(b.MaxY, 0, h),
	}
}

// Rect converts b to integer pixel bounds. Min edges are floored and max
// edges are ceiled so the rectangle always covers b.
func (b Box) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.MinX)),
		int(math.Floor(b.MinY)),
		int(math.Ceil(b.MaxX)),
		int(math.Ceil(b.MaxY)),
	)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
