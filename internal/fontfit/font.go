package fontfit

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// Font is a parsed TrueType font. It is safe for concurrent use; faces
// returned by Face are not and belong to one caller.
type Font struct {
	name string
	ttf  *truetype.Font
}

var defaultFont = sync.OnceValues(func() (*Font, error) {
	return parse("Go Bold", gobold.TTF)
})

// Default returns the bundled Go Bold font.
func Default() *Font {
	f, err := defaultFont()
	if err != nil {
		panic(fmt.Sprintf("fontfit: bundled font is invalid: %v", err))
	}
	return f
}

// Load reads a TrueType font from path.
func Load(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return parse(path, data)
}

// Parse parses TrueType font data.
func Parse(data []byte) (*Font, error) {
	return parse("custom", data)
}

func parse(name string, data []byte) (*Font, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}
	return &Font{name: name, ttf: ttf}, nil
}

// Name identifies the font source.
func (f *Font) Name() string { return f.name }

// Face returns a face at size pixels.
func (f *Font) Face(size int) font.Face {
	return truetype.NewFace(f.ttf, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Measure returns the advance width and line height of text at size.
func (f *Font) Measure(text string, size int) (width, height int) {
	face := f.Face(size)
	defer face.Close()
	return MeasureFace(face, text)
}

// MeasureFace returns the advance width and line height of text in face.
func MeasureFace(face font.Face, text string) (width, height int) {
	adv := font.MeasureString(face, text)
	m := face.Metrics()
	return adv.Ceil(), (m.Ascent + m.Descent).Ceil()
}
