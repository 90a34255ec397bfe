package embedding

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
)

func gradient(w, h int, vertical bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(x) / float64(w-1)
			if vertical {
				t = float64(y) / float64(h-1)
			}
			v := uint8(t * 255)
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

func cosine(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestPerceptual_UnitAndDeterministic(t *testing.T) {
	e := NewPerceptual()
	img := gradient(120, 80, false)

	a, err := e.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(a) != e.Dimension() {
		t.Fatalf("len = %d, want %d", len(a), e.Dimension())
	}
	if n := cosine(a, a); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm² = %v, want 1", n)
	}

	b, err := e.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs between runs", i)
		}
	}
}

func TestPerceptual_ResizedCopyIsSimilar(t *testing.T) {
	e := NewPerceptual()
	img := gradient(200, 100, false)
	big := imaging.Resize(img, 400, 200, imaging.Linear)

	a, _ := e.Extract(context.Background(), img)
	b, _ := e.Extract(context.Background(), big)
	if s := cosine(a, b); s < 0.95 {
		t.Errorf("similarity of resized copy = %.3f, want >= 0.95", s)
	}
}

func TestPerceptual_DifferentImagesDiffer(t *testing.T) {
	e := NewPerceptual()
	a, _ := e.Extract(context.Background(), gradient(200, 200, false))
	b, _ := e.Extract(context.Background(), gradient(200, 200, true))
	if s := cosine(a, b); s >= 0.8 {
		t.Errorf("similarity of unrelated layouts = %.3f, want < 0.8", s)
	}
}

func TestPerceptual_UniformImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	v, err := NewPerceptual().Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if n := cosine(v, v); math.Abs(n-1) > 1e-5 {
		t.Errorf("norm² = %v, want 1", n)
	}
}

func TestPerceptual_Errors(t *testing.T) {
	e := NewPerceptual()
	if _, err := e.Extract(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrExtraction) {
		t.Errorf("empty image: err = %v, want ErrExtraction", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Extract(ctx, gradient(10, 10, false)); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: err = %v, want context.Canceled", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"", "perceptual", false},
		{"perceptual", "perceptual", false},
		{"http", "http:" + DefaultModel, false},
		{"onnx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			e, err := New(Config{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if e.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", e.Name(), tt.wantName)
			}
		})
	}
}
