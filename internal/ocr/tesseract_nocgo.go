//go:build !cgo

package ocr

import (
	"context"
	"image"
)

// TesseractConfig configures the Tesseract engine.
type TesseractConfig struct {
	Language       string
	Level          Level
	TessdataPrefix string
}

// Tesseract is unavailable in builds without cgo.
type Tesseract struct {
	cfg TesseractConfig
}

// NewTesseract always fails without cgo; use the heuristic engine instead.
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	return nil, ErrUnavailable
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) DetectRaw(ctx context.Context, img image.Image) ([]Detection, error) {
	return nil, ErrUnavailable
}

func (t *Tesseract) Close() error { return nil }

func (t *Tesseract) Info() Info {
	return Info{Engine: "tesseract", Error: ErrUnavailable.Error()}
}
