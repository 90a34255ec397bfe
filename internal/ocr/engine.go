package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/memezap/internal/bbox"
)

var (
	// ErrEngine wraps failures reported by an OCR backend.
	ErrEngine = errors.New("ocr engine failed")

	// ErrUnavailable is returned when an engine cannot run in this build or
	// environment (for example Tesseract without cgo).
	ErrUnavailable = errors.New("ocr engine unavailable")
)

// Detection is a raw text fragment reported by an engine.
type Detection struct {
	Polygon    bbox.Polygon `json:"polygon"`
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"` // 0-1
}

// Engine finds text fragments in an image.
//
// Implementations must be safe for concurrent use. DetectRaw returns
// fragments in engine order; callers sort and merge them.
type Engine interface {
	DetectRaw(ctx context.Context, img image.Image) ([]Detection, error)
	Name() string
}

// Level selects the granularity of Tesseract's page iterator.
type Level int

const (
	LevelWord Level = iota
	LevelLine
	LevelBlock
)

func (l Level) String() string {
	switch l {
	case LevelWord:
		return "word"
	case LevelLine:
		return "line"
	case LevelBlock:
		return "block"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts "word", "line" or "block" into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word":
		return LevelWord, nil
	case "line", "textline", "":
		return LevelLine, nil
	case "block":
		return LevelBlock, nil
	default:
		return LevelLine, fmt.Errorf("unknown ocr level %q", s)
	}
}

// Info describes the OCR subsystem for diagnostics.
type Info struct {
	Engine    string `json:"engine"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language,omitempty"`
	Level     string `json:"level,omitempty"`
	Error     string `json:"error,omitempty"`
}

func rectPolygon(r image.Rectangle) bbox.Polygon {
	return bbox.BoxFromRect(r).Polygon()
}
