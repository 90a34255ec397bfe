// Package render draws captions onto images.
//
// Captions are drawn in the classic meme style: black text with a white
// outline made by stamping the text at every offset within the outline
// width. Layouts place captions in detected or suggested boxes, in white
// bars above and below a template, or spread top to bottom.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/fontfit"
	"github.com/ironsheep/memezap/internal/imaging"
)

// Style is the look of outlined captions.
type Style struct {
	Text         color.Color
	Outline      color.Color
	OutlineWidth int
}

// DefaultStyle is black text with a 3px white outline.
func DefaultStyle() Style {
	return Style{Text: color.Black, Outline: color.White, OutlineWidth: 3}
}

// Renderer draws captions with one font, fitter and style. It is safe for
// concurrent use.
type Renderer struct {
	font   *fontfit.Font
	fitter fontfit.Fitter
	style  Style
}

// New creates a Renderer. A nil font selects the bundled bold font and a
// nil fitter the closed-form estimate.
func New(f *fontfit.Font, fitter fontfit.Fitter, style Style) *Renderer {
	if f == nil {
		f = fontfit.Default()
	}
	if fitter == nil {
		fitter = fontfit.Heuristic{}
	}
	if style.Text == nil || style.Outline == nil {
		style = DefaultStyle()
	}
	return &Renderer{font: f, fitter: fitter, style: style}
}

// Font returns the font used for drawing.
func (r *Renderer) Font() *fontfit.Font { return r.font }

// Fit picks a size through the configured fitter.
func (r *Renderer) Fit(text string, width, height float64, b fontfit.Bounds) int {
	return r.fitter.Fit(text, width, height, b)
}

// Measure returns the drawn width and height of text at size.
func (r *Renderer) Measure(text string, size int) (int, int) {
	return r.font.Measure(text, max(size, 1))
}

// DrawOutlined draws text with its top-left corner at (x, y).
func (r *Renderer) DrawOutlined(dst draw.Image, text string, size, x, y int) {
	face := r.font.Face(max(size, 1))
	defer face.Close()

	ow := r.style.OutlineWidth
	outline := image.NewUniform(r.style.Outline)
	for dy := -ow; dy <= ow; dy++ {
		for dx := -ow; dx <= ow; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(dst, face, outline, text, x+dx, y+dy)
		}
	}
	drawString(dst, face, image.NewUniform(r.style.Text), text, x, y)
}

// DrawPlain draws text without an outline.
func (r *Renderer) DrawPlain(dst draw.Image, text string, size, x, y int, c color.Color) {
	face := r.font.Face(max(size, 1))
	defer face.Close()
	drawString(dst, face, image.NewUniform(c), text, x, y)
}

// DrawInBox draws text outlined and centered in box.
func (r *Renderer) DrawInBox(dst draw.Image, text string, size int, box bbox.Box) {
	tw, th := r.Measure(text, size)
	x := box.MinX + (box.Width()-float64(tw))/2
	y := box.MinY + (box.Height()-float64(th))/2
	r.DrawOutlined(dst, text, size, int(x), int(y))
}

func drawString(dst draw.Image, face font.Face, src image.Image, text string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// canvas returns a drawable copy of img.
func canvas(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

func floor(v float64) int { return int(math.Floor(v)) }
