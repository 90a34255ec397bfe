// Package embedding turns images into unit-length feature vectors for the
// template index.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/memezap/internal/index"
)

// ErrExtraction wraps every failure to produce an embedding.
var ErrExtraction = errors.New("embedding extraction failed")

// Extractor produces a fixed-length unit vector for an image.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) ([]float32, error)

	// Dimension is the vector length, or zero when it is only known after
	// the first extraction.
	Dimension() int

	Name() string
}

// Config selects and configures an Extractor.
type Config struct {
	// Provider is "perceptual" (local, default) or "http".
	Provider   string
	Target     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// New builds the extractor named by cfg.Provider.
func New(cfg Config) (Extractor, error) {
	switch cfg.Provider {
	case "", "perceptual":
		return NewPerceptual(), nil
	case "http", "clip":
		return NewHTTP(HTTPConfig{
			BaseURL:    cfg.Target,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// normalize returns a unit copy of v or an extraction error.
func normalize(v []float32) ([]float32, error) {
	unit, ok := index.NormalizeL2(v)
	if !ok {
		return nil, fmt.Errorf("%w: zero or non-finite vector", ErrExtraction)
	}
	return unit, nil
}
