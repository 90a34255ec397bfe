package detection

import (
	"math"
	"reflect"
	"testing"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/ocr"
)

func region(x0, y0, x1, y1 float64, text string, conf float64) TextRegion {
	return TextRegion{
		Polygon:    bbox.Box{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}.Polygon(),
		Text:       text,
		Confidence: conf,
	}
}

func TestFilter(t *testing.T) {
	raw := []ocr.Detection{
		{Text: "keep", Confidence: 0.9},
		{Text: "edge", Confidence: 0.5},
		{Text: "drop", Confidence: 0.2},
	}
	got := Filter(raw, 0.5)
	if len(got) != 1 || got[0].Text != "keep" {
		t.Errorf("Filter() = %+v, want only 'keep'", got)
	}
}

func TestMerge_Empty(t *testing.T) {
	got := Merge(nil, 50)
	if got == nil || len(got) != 0 {
		t.Errorf("Merge(nil) = %v, want empty non-nil slice", got)
	}
}

func TestMerge_FarApartUnchanged(t *testing.T) {
	in := []TextRegion{
		region(0, 0, 50, 20, "a", 0.9),
		region(0, 200, 50, 220, "b", 0.8),
		region(300, 400, 350, 420, "c", 0.7),
	}
	got := Merge(in, 50)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Merge() = %+v, want input unchanged", got)
	}
}

func TestMerge_Overlapping(t *testing.T) {
	in := []TextRegion{
		region(20, 50, 100, 80, "WORLD", 0.7),
		region(10, 10, 110, 40, "HELLO", 0.9),
	}
	got := Merge(in, 50)
	if len(got) != 1 {
		t.Fatalf("Merge() returned %d regions, want 1", len(got))
	}
	if got[0].Text != "HELLO WORLD" {
		t.Errorf("Text = %q, want %q", got[0].Text, "HELLO WORLD")
	}
	if math.Abs(got[0].Confidence-0.8) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.8", got[0].Confidence)
	}
	want := bbox.Box{MinX: 10, MinY: 10, MaxX: 110, MaxY: 80}
	if got[0].Bounds() != want {
		t.Errorf("Bounds = %+v, want %+v", got[0].Bounds(), want)
	}
}

func TestMerge_SideRules(t *testing.T) {
	tests := []struct {
		name string
		next TextRegion
		want int
	}{
		{"beside within gap", region(130, 5, 200, 35, "b", 0.9), 1},
		{"beside too far", region(200, 5, 260, 35, "b", 0.9), 2},
		{"diagonal too low", region(130, 60, 200, 90, "b", 0.9), 2},
		{"below overlapping", region(50, 75, 90, 100, "b", 0.9), 1},
		{"below too far", region(50, 90, 90, 110, "b", 0.9), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []TextRegion{region(0, 0, 100, 30, "a", 0.9), tt.next}
			if got := Merge(in, 50); len(got) != tt.want {
				t.Errorf("Merge() returned %d regions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMerge_GapMeasuredFromCluster(t *testing.T) {
	// The third line is within reach of the second but not the first.
	in := []TextRegion{
		region(0, 0, 100, 30, "one", 0.9),
		region(0, 60, 100, 90, "two", 0.9),
		region(0, 120, 100, 150, "three", 0.9),
	}
	got := Merge(in, 50)
	if len(got) != 1 || got[0].Text != "one two three" {
		t.Errorf("Merge() = %+v, want one block 'one two three'", got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	in := []TextRegion{
		region(10, 10, 110, 40, "top", 0.9),
		region(20, 50, 100, 80, "line", 0.7),
		region(10, 400, 200, 440, "bottom", 0.8),
	}
	once := Merge(in, 50)
	twice := Merge(once, 50)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Merge is not idempotent:\n once  %+v\n twice %+v", once, twice)
	}
}

func TestMerge_OrderedByTop(t *testing.T) {
	in := []TextRegion{
		region(0, 500, 50, 520, "c", 0.9),
		region(0, 0, 50, 20, "a", 0.9),
		region(0, 250, 50, 270, "b", 0.9),
	}
	got := Merge(in, 50)
	for i := 1; i < len(got); i++ {
		if got[i].Bounds().MinY < got[i-1].Bounds().MinY {
			t.Fatalf("regions not ordered by top edge: %+v", got)
		}
	}
	if got[0].Text != "a" || got[2].Text != "c" {
		t.Errorf("order = %q %q %q", got[0].Text, got[1].Text, got[2].Text)
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	in := []TextRegion{
		region(0, 100, 50, 120, "b", 0.9),
		region(0, 0, 50, 20, "a", 0.9),
	}
	before := append([]TextRegion(nil), in...)
	Merge(in, 50)
	if !reflect.DeepEqual(in, before) {
		t.Error("Merge modified its input")
	}
}
