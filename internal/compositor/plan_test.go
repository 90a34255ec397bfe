package compositor

import (
	"image"
	"testing"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/suggest"
)

func TestRegionPlan(t *testing.T) {
	cleaned := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	regions := []detection.TextRegion{region(40, 20, 360, 80, "a")}
	src := bbox.Shape{Width: 400, Height: 200}

	t.Run("no regions", func(t *testing.T) {
		_, ok, err := regionPlan(Template{}, cleaned, src, nil)
		if ok || err != nil {
			t.Errorf("ok = %v, err = %v", ok, err)
		}
	})

	t.Run("cleaned image", func(t *testing.T) {
		p, ok, err := regionPlan(Template{}, cleaned, src, regions)
		if !ok || err != nil {
			t.Fatalf("ok = %v, err = %v", ok, err)
		}
		if p.Layout != LayoutRegions || p.Base != image.Image(cleaned) {
			t.Errorf("plan = %+v", p)
		}
		if p.Boxes[0] != (bbox.Box{MinX: 40, MinY: 20, MaxX: 360, MaxY: 80}) {
			t.Errorf("box = %+v", p.Boxes[0])
		}
	})

	t.Run("mapped to template", func(t *testing.T) {
		tpl := Template{Path: "b.png", Image: image.NewNRGBA(image.Rect(0, 0, 200, 100))}
		p, ok, err := regionPlan(tpl, cleaned, src, regions)
		if !ok || err != nil {
			t.Fatalf("ok = %v, err = %v", ok, err)
		}
		if p.Layout != LayoutTemplateRegions {
			t.Errorf("layout = %s", p.Layout)
		}
		want := bbox.Box{MinX: 20, MinY: 10, MaxX: 180, MaxY: 40}
		got := p.Boxes[0]
		if abs(got.MinX-want.MinX) > 1e-9 || abs(got.MinY-want.MinY) > 1e-9 ||
			abs(got.MaxX-want.MaxX) > 1e-9 || abs(got.MaxY-want.MaxY) > 1e-9 {
			t.Errorf("box = %+v, want %+v", got, want)
		}
	})

	t.Run("invalid source shape", func(t *testing.T) {
		tpl := Template{Image: image.NewNRGBA(image.Rect(0, 0, 10, 10))}
		_, ok, err := regionPlan(tpl, cleaned, bbox.Shape{}, regions)
		if ok || err == nil {
			t.Errorf("ok = %v, err = %v", ok, err)
		}
	})
}

func TestFallbackAndSuggestedPlans(t *testing.T) {
	cleaned := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	tpl := Template{Path: "t.png", Image: image.NewNRGBA(image.Rect(0, 0, 20, 20))}

	if p := fallbackPlan(Template{}, cleaned); p.Layout != LayoutDistributed || p.UsesBoxes() {
		t.Errorf("no template fallback = %+v", p)
	}
	if p := fallbackPlan(tpl, cleaned); p.Layout != LayoutTemplateWhiteBox || p.Base != tpl.Image {
		t.Errorf("template fallback = %+v", p)
	}

	s := []suggest.Suggestion{{Polygon: bbox.Box{MaxX: 5, MaxY: 5}.Polygon(), FontSize: 12}}
	if p := suggestedPlan(tpl, suggestBase(tpl, cleaned), s); p.Layout != LayoutTemplateAI || p.Sizes[0] != 12 || !p.UsesBoxes() {
		t.Errorf("template suggestion = %+v", p)
	}
	if p := suggestedPlan(Template{}, suggestBase(Template{}, cleaned), s); p.Layout != LayoutAI || p.Base != image.Image(cleaned) {
		t.Errorf("suggestion = %+v", p)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
