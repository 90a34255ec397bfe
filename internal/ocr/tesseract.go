//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/memezap/internal/imaging"
)

// TesseractConfig configures the Tesseract engine.
type TesseractConfig struct {
	// Language is the Tesseract language code. Defaults to "eng".
	Language string

	// Level is the iterator granularity used for bounding boxes.
	Level Level

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string
}

// Tesseract is an Engine backed by the native Tesseract library.
//
// A single gosseract client is created on first use and reused for every
// call. Tesseract clients are not goroutine safe, so calls are serialized.
type Tesseract struct {
	cfg TesseractConfig

	once    sync.Once
	initErr error

	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract returns a Tesseract engine. The native client is not
// created until the first DetectRaw call.
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) init() error {
	t.once.Do(func() {
		client := gosseract.NewClient()
		if t.cfg.TessdataPrefix != "" {
			if err := client.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
				client.Close()
				t.initErr = fmt.Errorf("%w: failed to set tessdata path: %v", ErrUnavailable, err)
				return
			}
		}
		if err := client.SetLanguage(t.cfg.Language); err != nil {
			client.Close()
			t.initErr = fmt.Errorf("%w: failed to set language: %v", ErrUnavailable, err)
			return
		}
		t.client = client
	})
	return t.initErr
}

// DetectRaw runs Tesseract over img and returns one Detection per
// iterator element at the configured level.
func (t *Tesseract) DetectRaw(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.init(); err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: failed to set image: %v", ErrEngine, err)
	}

	boxes, err := t.client.GetBoundingBoxes(t.iteratorLevel())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get bounding boxes: %v", ErrEngine, err)
	}

	origin := img.Bounds().Min
	out := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		out = append(out, Detection{
			Polygon:    rectPolygon(box.Box.Add(origin)),
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
		})
	}
	return out, nil
}

func (t *Tesseract) iteratorLevel() gosseract.PageIteratorLevel {
	switch t.cfg.Level {
	case LevelWord:
		return gosseract.RIL_WORD
	case LevelBlock:
		return gosseract.RIL_BLOCK
	default:
		return gosseract.RIL_TEXTLINE
	}
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// Info reports whether Tesseract can be initialized and its version.
func (t *Tesseract) Info() Info {
	info := Info{
		Engine:   t.Name(),
		Language: t.cfg.Language,
		Level:    t.cfg.Level.String(),
	}
	if err := t.init(); err != nil {
		info.Error = err.Error()
		return info
	}
	t.mu.Lock()
	info.Version = t.client.Version()
	t.mu.Unlock()
	info.Available = true
	return info
}
