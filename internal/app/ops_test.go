package app

import (
	"context"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/ocr"
)

// stubEngine reports the same fragments for every image.
type stubEngine struct{ found []ocr.Detection }

func (stubEngine) Name() string { return "stub" }

func (e stubEngine) DetectRaw(context.Context, image.Image) ([]ocr.Detection, error) {
	return e.found, nil
}

func TestDetectText_Background(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	s.Detector = detection.NewDetector(stubEngine{found: []ocr.Detection{{
		Polygon:    bbox.BoxFromRect(image.Rect(0, 0, 32, 24)).Polygon(),
		Text:       "HELLO",
		Confidence: 0.9,
	}}})

	path := filepath.Join(t.TempDir(), "red.png")
	writeImage(t, path, color.NRGBA{255, 0, 0, 255})
	src, err := imaging.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	reports, err := s.DetectText(context.Background(), src)
	if err != nil {
		t.Fatalf("DetectText: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d regions, want 1", len(reports))
	}
	r := reports[0]
	if r.Text != "HELLO" || r.Background.Hex != "#ff0000" || r.Background.Dark {
		t.Errorf("report = %+v", r)
	}
}

func TestEmbed_CleanFlatImage(t *testing.T) {
	s, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	path := filepath.Join(t.TempDir(), "plain.png")
	writeImage(t, path, color.NRGBA{10, 120, 60, 255})
	src, err := imaging.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := s.Embed(context.Background(), src, false)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	cleaned, err := s.Embed(context.Background(), src, true)
	if err != nil {
		t.Fatalf("Embed clean: %v", err)
	}
	if len(raw) != len(cleaned) || len(raw) != s.Index.Dim() {
		t.Fatalf("dims = %d, %d, index %d", len(raw), len(cleaned), s.Index.Dim())
	}
	// A flat image has no text, so cleaning leaves it unchanged.
	for i := range raw {
		if math.Abs(float64(raw[i]-cleaned[i])) > 1e-6 {
			t.Fatalf("component %d differs: %v vs %v", i, raw[i], cleaned[i])
		}
	}
}

func TestOutputPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Dir = "/out"
	s, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	a, b := s.OutputPath("meme"), s.OutputPath("meme")
	if a == b {
		t.Error("output paths repeat")
	}
	if filepath.Dir(a) != "/out" || !strings.HasPrefix(filepath.Base(a), "meme-") || filepath.Ext(a) != ".png" {
		t.Errorf("OutputPath = %q", a)
	}
}
