// Package suggest asks a vision model where captions should go when no
// text regions were detected.
//
// The model answers with a JSON object keyed text1..textN, one entry per
// caption in order. Each entry is either {"bbox": [[x,y] x4], "font_size": n}
// or a bare four-point polygon. Anything else is ErrInvalidSuggestion, which
// callers treat as a soft failure.
package suggest

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/memezap/internal/bbox"
)

var (
	// ErrInvalidSuggestion is returned when the model response does not
	// follow the placement contract.
	ErrInvalidSuggestion = errors.New("invalid suggestion")

	// ErrDisabled is returned by the Disabled suggester.
	ErrDisabled = errors.New("suggestions disabled")

	// ErrRequest is returned when the model could not be reached or
	// answered with an error status.
	ErrRequest = errors.New("suggestion request failed")
)

// Suggestion places one caption. FontSize is zero when the model did not
// give one.
type Suggestion struct {
	Polygon  bbox.Polygon `json:"bbox"`
	FontSize int          `json:"font_size,omitempty"`
}

// Suggester proposes one placement per caption, in caption order.
type Suggester interface {
	Suggest(ctx context.Context, img image.Image, captions []string) ([]Suggestion, error)
}

// Disabled is a Suggester that always fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Suggest(context.Context, image.Image, []string) ([]Suggestion, error) {
	return nil, ErrDisabled
}

// Boxes returns the bounding box of every suggestion.
func Boxes(s []Suggestion) []bbox.Box {
	out := make([]bbox.Box, len(s))
	for i := range s {
		out[i] = s[i].Polygon.Bounds()
	}
	return out
}

// Sizes returns the font size of every suggestion.
func Sizes(s []Suggestion) []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = s[i].FontSize
	}
	return out
}
