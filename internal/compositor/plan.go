package compositor

import (
	"image"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/suggest"
)

// Layout names how captions were placed.
type Layout string

const (
	// LayoutTemplateRegions draws on the template at regions detected in
	// the request image, mapped to the template's size.
	LayoutTemplateRegions Layout = "template-regions"

	// LayoutTemplateAI draws on the template at suggested boxes.
	LayoutTemplateAI Layout = "template-ai"

	// LayoutTemplateWhiteBox adds white bars above and below the template.
	LayoutTemplateWhiteBox Layout = "template-whitebox"

	// LayoutRegions draws on the cleaned request image at detected regions.
	LayoutRegions Layout = "regions"

	// LayoutAI draws on the cleaned request image at suggested boxes.
	LayoutAI Layout = "ai"

	// LayoutDistributed spreads captions top to bottom on the cleaned
	// request image.
	LayoutDistributed Layout = "distributed"
)

// Template is the outcome of the template search. Image is nil when no
// template was found.
type Template struct {
	Path       string
	Similarity float64
	Image      image.Image
}

// Found reports whether a template is usable.
func (t Template) Found() bool { return t.Image != nil }

// Plan is a placement decision: a layout, the image to draw on and, for
// box layouts, one box per caption with optional font sizes.
type Plan struct {
	Layout Layout
	Base   image.Image
	Boxes  []bbox.Box
	Sizes  []int
}

// UsesBoxes reports whether captions go into Boxes.
func (p Plan) UsesBoxes() bool {
	switch p.Layout {
	case LayoutTemplateRegions, LayoutTemplateAI, LayoutRegions, LayoutAI:
		return true
	}
	return false
}

// regionPlan places captions at detected regions, on the template when one
// was found and on the cleaned image otherwise. It returns false when there
// are no regions to place at.
func regionPlan(tpl Template, cleaned image.Image, src bbox.Shape, regions []detection.TextRegion) (Plan, bool, error) {
	if len(regions) == 0 {
		return Plan{}, false, nil
	}
	polys := detection.Polygons(regions)
	if !tpl.Found() {
		return Plan{Layout: LayoutRegions, Base: cleaned, Boxes: bounds(polys)}, true, nil
	}
	mapped, err := bbox.Remap(polys, src, bbox.ShapeOf(tpl.Image))
	if err != nil {
		return Plan{}, false, err
	}
	return Plan{Layout: LayoutTemplateRegions, Base: tpl.Image, Boxes: bounds(mapped)}, true, nil
}

// suggestedPlan places captions at suggested boxes on base.
func suggestedPlan(tpl Template, base image.Image, s []suggest.Suggestion) Plan {
	layout := LayoutAI
	if tpl.Found() {
		layout = LayoutTemplateAI
	}
	return Plan{Layout: layout, Base: base, Boxes: suggest.Boxes(s), Sizes: suggest.Sizes(s)}
}

// fallbackPlan is used when neither regions nor suggestions are available.
func fallbackPlan(tpl Template, cleaned image.Image) Plan {
	if tpl.Found() {
		return Plan{Layout: LayoutTemplateWhiteBox, Base: tpl.Image}
	}
	return Plan{Layout: LayoutDistributed, Base: cleaned}
}

// suggestBase is the image the suggester is shown.
func suggestBase(tpl Template, cleaned image.Image) image.Image {
	if tpl.Found() {
		return tpl.Image
	}
	return cleaned
}

func bounds(polys []bbox.Polygon) []bbox.Box {
	out := make([]bbox.Box, len(polys))
	for i, p := range polys {
		out[i] = p.Bounds()
	}
	return out
}
