package suggest

import (
	"errors"
	"testing"

	"github.com/ironsheep/memezap/internal/bbox"
)

var shape = bbox.Shape{Width: 500, Height: 400}

func TestParse_ObjectEntries(t *testing.T) {
	content := `{"text1": {"bbox": [[50,50],[450,50],[450,130],[50,130]], "font_size": 42},
	             "text2": {"bbox": [[50,270],[450,270],[450,350],[50,350]]}}`
	got, err := Parse(content, 2, shape)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].FontSize != 42 || got[1].FontSize != 0 {
		t.Errorf("font sizes = %d, %d", got[0].FontSize, got[1].FontSize)
	}
	want := bbox.Box{MinX: 50, MinY: 270, MaxX: 450, MaxY: 350}
	if b := got[1].Polygon.Bounds(); b != want {
		t.Errorf("text2 bounds = %+v, want %+v", b, want)
	}
}

func TestParse_BarePolygons(t *testing.T) {
	content := `{"text1": [[0,0],[100,0],[100,50],[0,50]]}`
	got, err := Parse(content, 1, shape)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b := got[0].Polygon.Bounds(); b.Width() != 100 || b.Height() != 50 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestParse_CodeFence(t *testing.T) {
	content := "Here you go:\n```json\n{\"text1\": [[10,10],[90,10],[90,40],[10,40]]}\n```"
	if _, err := Parse(content, 1, shape); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fenced := "```json\n{\"text1\": [[10,10],[90,10],[90,40],[10,40]]}\n```"
	if _, err := Parse(fenced, 1, shape); err != nil {
		t.Fatalf("Parse fenced: %v", err)
	}
}

func TestParse_Clamps(t *testing.T) {
	content := `{"text1": [[-20,-5],[600,-5],[600,80],[-20,80]]}`
	got, err := Parse(content, 1, shape)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := bbox.Box{MinX: 0, MinY: 0, MaxX: 500, MaxY: 80}
	if b := got[0].Polygon.Bounds(); b != want {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
	}{
		{"not json", "I cannot help with that", 1},
		{"broken json", `{"text1": [[0,0],`, 1},
		{"missing key", `{"text1": [[0,0],[10,0],[10,10],[0,10]]}`, 2},
		{"three points", `{"text1": [[0,0],[10,0],[10,10]]}`, 1},
		{"three coordinates", `{"text1": [[0,0,1],[10,0],[10,10],[0,10]]}`, 1},
		{"zero area", `{"text1": [[5,5],[5,5],[5,5],[5,5]]}`, 1},
		{"outside image", `{"text1": [[600,10],[700,10],[700,50],[600,50]]}`, 1},
		{"string entry", `{"text1": "top"}`, 1},
		{"negative font", `{"text1": {"bbox": [[0,0],[10,0],[10,10],[0,10]], "font_size": -3}}`, 1},
		{"bbox missing", `{"text1": {"font_size": 30}}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content, tt.n, shape)
			if !errors.Is(err, ErrInvalidSuggestion) {
				t.Errorf("err = %v, want ErrInvalidSuggestion", err)
			}
		})
	}
}

func TestParse_InvalidShape(t *testing.T) {
	_, err := Parse(`{"text1": [[0,0],[10,0],[10,10],[0,10]]}`, 1, bbox.Shape{})
	if !errors.Is(err, ErrInvalidSuggestion) || !errors.Is(err, bbox.ErrInvalidShape) {
		t.Errorf("err = %v", err)
	}
}

func TestParse_ExtraKeysIgnored(t *testing.T) {
	content := `{"text1": [[0,0],[10,0],[10,10],[0,10]], "text2": [[0,20],[10,20],[10,30],[0,30]]}`
	got, err := Parse(content, 1, shape)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}

func TestBoxesAndSizes(t *testing.T) {
	s := []Suggestion{
		{Polygon: bbox.Box{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}.Polygon(), FontSize: 30},
		{Polygon: bbox.Box{MinX: 5, MinY: 6, MaxX: 7, MaxY: 8}.Polygon()},
	}
	boxes := Boxes(s)
	if boxes[0] != (bbox.Box{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}) {
		t.Errorf("boxes[0] = %+v", boxes[0])
	}
	if sizes := Sizes(s); sizes[0] != 30 || sizes[1] != 0 {
		t.Errorf("sizes = %v", sizes)
	}
}
