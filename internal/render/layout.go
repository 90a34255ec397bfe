package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/fontfit"
)

var (
	// BoxBounds sizes captions placed in boxes. Box height is stretched by
	// boxHeightSlack before fitting.
	BoxBounds = fontfit.NewBounds(10, 100)

	// EdgeBounds sizes top and bottom captions.
	EdgeBounds = fontfit.NewBounds(20, 80)

	// MiddleBounds sizes captions spread between top and bottom.
	MiddleBounds = fontfit.NewBounds(15, 60)

	// BarBounds sizes captions in white bars.
	BarBounds = fontfit.NewBounds(20, 80)
)

const (
	boxHeightSlack = 1.2
	edgeHeight     = 100
	edgePadding    = 20
	middleStart    = 100
	middleWidth    = 0.9
	middleHeight   = 80
	barPadding     = 10
)

// FitBox sizes text for box.
func (r *Renderer) FitBox(text string, box bbox.Box) int {
	return r.Fit(text, box.Width(), box.Height()*boxHeightSlack, BoxBounds)
}

// Boxes draws captions[i] centered in boxes[i]. A positive sizes[i] is used
// as given; otherwise the size is fitted to the box. Captions without a box
// are laid out with Distributed.
func (r *Renderer) Boxes(img image.Image, captions []string, boxes []bbox.Box, sizes []int) *image.NRGBA {
	dst := canvas(img)
	n := min(len(captions), len(boxes))
	for i := 0; i < n; i++ {
		if captions[i] == "" {
			continue
		}
		size := 0
		if i < len(sizes) {
			size = sizes[i]
		}
		if size <= 0 {
			size = r.FitBox(captions[i], boxes[i])
		}
		r.DrawInBox(dst, captions[i], size, boxes[i])
	}
	if len(captions) > n {
		r.distribute(dst, captions[n:])
	}
	return dst
}

// Distributed draws the first caption at the top, the last at the bottom
// and spreads the rest evenly between them.
func (r *Renderer) Distributed(img image.Image, captions []string) *image.NRGBA {
	dst := canvas(img)
	r.distribute(dst, captions)
	return dst
}

func (r *Renderer) distribute(dst *image.NRGBA, captions []string) {
	if len(captions) == 0 {
		return
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()

	if top := captions[0]; top != "" {
		size := r.Fit(top, float64(w), edgeHeight, EdgeBounds)
		tw, _ := r.Measure(top, size)
		r.DrawOutlined(dst, top, size, (w-tw)/2, edgePadding)
	}
	if len(captions) > 1 {
		if bottom := captions[len(captions)-1]; bottom != "" {
			size := r.Fit(bottom, float64(w), edgeHeight, EdgeBounds)
			tw, th := r.Measure(bottom, size)
			r.DrawOutlined(dst, bottom, size, (w-tw)/2, h-th-edgePadding)
		}
	}
	if len(captions) <= 2 {
		return
	}

	middle := captions[1 : len(captions)-1]
	spacing := float64(h-middleStart) / float64(len(middle)+1)
	for i, text := range middle {
		if text == "" {
			continue
		}
		center := middleStart + spacing*float64(i+1)
		size := r.Fit(text, float64(w)*middleWidth, middleHeight, MiddleBounds)
		tw, th := r.Measure(text, size)
		r.DrawOutlined(dst, text, size, (w-tw)/2, floor(center-float64(th)/2))
	}
}

// WhiteBoxes adds a white bar above the image for top and below it for
// bottom, each as tall as its text plus padding, with black text inside.
// Both captions share one size fitted to their concatenation.
func (r *Renderer) WhiteBoxes(img image.Image, top, bottom string) *image.NRGBA {
	dst := canvas(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	size := r.Fit(top+bottom, float64(w), float64(h/8), BarBounds)
	white := image.NewUniform(color.White)

	if top != "" {
		tw, th := r.Measure(top, size)
		barH := th + 2*barPadding
		draw.Draw(dst, image.Rect(0, 0, w, barH), white, image.Point{}, draw.Src)
		r.DrawPlain(dst, top, size, (w-tw)/2, barPadding, color.Black)
	}
	if bottom != "" {
		tw, th := r.Measure(bottom, size)
		barH := th + 2*barPadding
		draw.Draw(dst, image.Rect(0, h-barH, w, h), white, image.Point{}, draw.Src)
		r.DrawPlain(dst, bottom, size, (w-tw)/2, h-barH+barPadding, color.Black)
	}
	return dst
}

// SplitTopBottom returns the first caption as top text and the rest joined
// by spaces as bottom text.
func SplitTopBottom(captions []string) (top, bottom string) {
	if len(captions) == 0 {
		return "", ""
	}
	var rest []string
	for _, c := range captions[1:] {
		if c != "" {
			rest = append(rest, c)
		}
	}
	return captions[0], strings.Join(rest, " ")
}
