package app

import (
	"context"
	"image"

	"github.com/ironsheep/memezap/internal/embedding"
	"github.com/ironsheep/memezap/internal/lazy"
	"github.com/ironsheep/memezap/internal/ocr"
)

// lazyEngine defers building the OCR engine to the first detection.
type lazyEngine struct {
	v    *lazy.Value[ocr.Engine]
	name string
}

// Name builds the engine so cache keys carry the engine actually used.
func (l *lazyEngine) Name() string {
	if e, err := l.v.Get(); err == nil {
		return e.Name()
	}
	return l.name
}

func (l *lazyEngine) DetectRaw(ctx context.Context, img image.Image) ([]ocr.Detection, error) {
	e, err := l.v.Get()
	if err != nil {
		return nil, err
	}
	return e.DetectRaw(ctx, img)
}

// lazyExtractor defers building the embedding extractor to the first
// extraction.
type lazyExtractor struct {
	v    *lazy.Value[embedding.Extractor]
	name string
}

func (l *lazyExtractor) Name() string {
	if l.v.Built() {
		if e, err := l.v.Get(); err == nil {
			return e.Name()
		}
	}
	return l.name
}

func (l *lazyExtractor) Dimension() int {
	if !l.v.Built() {
		return 0
	}
	e, err := l.v.Get()
	if err != nil {
		return 0
	}
	return e.Dimension()
}

func (l *lazyExtractor) Extract(ctx context.Context, img image.Image) ([]float32, error) {
	e, err := l.v.Get()
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, img)
}
