//go:build cgo

package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestTesseract(t *testing.T, level Level) *Tesseract {
	t.Helper()
	engine, err := NewTesseract(TesseractConfig{Language: "eng", Level: level})
	if err != nil {
		t.Fatalf("NewTesseract failed: %v", err)
	}
	t.Cleanup(func() { _ = engine.Close() })

	if info := engine.Info(); !info.Available {
		t.Skipf("Tesseract not available: %s", info.Error)
	}
	return engine
}

func TestTesseract_RealText(t *testing.T) {
	engine := newTestTesseract(t, LevelLine)
	img := textImage([]string{"HELLO WORLD"}, 4)

	dets, err := engine.DetectRaw(context.Background(), img)
	if err != nil {
		t.Fatalf("DetectRaw failed: %v", err)
	}

	t.Logf("Detected %d fragments", len(dets))
	bounds := img.Bounds()
	for i, d := range dets {
		t.Logf("  Fragment %d: %q (confidence: %.2f)", i, strings.TrimSpace(d.Text), d.Confidence)
		if d.Confidence < 0 || d.Confidence > 1 {
			t.Errorf("fragment %d confidence %v outside [0,1]", i, d.Confidence)
		}
		b := d.Polygon.Bounds()
		if b.MinX < 0 || b.MinY < 0 || b.MaxX > float64(bounds.Dx()) || b.MaxY > float64(bounds.Dy()) {
			t.Errorf("fragment %d bounds %+v outside image", i, b)
		}
	}
}

func TestTesseract_MultiLineWords(t *testing.T) {
	engine := newTestTesseract(t, LevelWord)
	img := textImage([]string{"LINE ONE", "LINE TWO"}, 3)

	dets, err := engine.DetectRaw(context.Background(), img)
	if err != nil {
		t.Fatalf("DetectRaw failed: %v", err)
	}
	for i, d := range dets {
		if d.Text == "" {
			t.Errorf("fragment %d has empty text", i)
		}
	}
	t.Logf("Detected %d words", len(dets))
}

func TestTesseract_CanceledContext(t *testing.T) {
	engine, err := NewTesseract(TesseractConfig{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.DetectRaw(ctx, textImage([]string{"X"}, 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTesseract_InvalidLanguage(t *testing.T) {
	engine, err := NewTesseract(TesseractConfig{Language: "invalid_lang_xyz"})
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	_, err = engine.DetectRaw(context.Background(), textImage([]string{"TEST"}, 2))
	if err == nil {
		t.Log("Tesseract accepted an invalid language code")
		return
	}
	if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrEngine) {
		t.Errorf("err = %v, want ErrUnavailable or ErrEngine", err)
	}
}
