package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/memezap/internal/bbox"
)

type placement struct {
	BBox     [][]float64 `json:"bbox"`
	FontSize *float64    `json:"font_size"`
}

// Parse decodes a model response for n captions on an image of the given
// shape. Markdown code fences and text around the JSON object are ignored.
// Points are clamped to the image.
func Parse(content string, n int, shape bbox.Shape) ([]Suggestion, error) {
	if !shape.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuggestion, bbox.ErrInvalidShape)
	}
	body := extractObject(content)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidSuggestion)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSuggestion, err)
	}

	out := make([]Suggestion, n)
	for i := 0; i < n; i++ {
		key := "text" + strconv.Itoa(i+1)
		raw, ok := entries[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidSuggestion, key)
		}
		s, err := parseEntry(raw, shape)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSuggestion, key, err)
		}
		out[i] = s
	}
	return out, nil
}

func parseEntry(raw json.RawMessage, shape bbox.Shape) (Suggestion, error) {
	var p placement
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		if err := json.Unmarshal(raw, &p); err != nil {
			return Suggestion{}, err
		}
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(raw, &p.BBox); err != nil {
			return Suggestion{}, err
		}
	default:
		return Suggestion{}, fmt.Errorf("unexpected value %s", trimmed)
	}

	poly, err := polygon(p.BBox, shape)
	if err != nil {
		return Suggestion{}, err
	}
	s := Suggestion{Polygon: poly}
	if p.FontSize != nil {
		if math.IsNaN(*p.FontSize) || *p.FontSize < 0 || *p.FontSize > 1000 {
			return Suggestion{}, fmt.Errorf("font_size %v out of range", *p.FontSize)
		}
		s.FontSize = int(*p.FontSize)
	}
	return s, nil
}

func polygon(points [][]float64, shape bbox.Shape) (bbox.Polygon, error) {
	var poly bbox.Polygon
	if len(points) != len(poly) {
		return poly, fmt.Errorf("want 4 points, got %d", len(points))
	}
	w, h := float64(shape.Width), float64(shape.Height)
	for i, pt := range points {
		if len(pt) != 2 {
			return poly, fmt.Errorf("point %d has %d coordinates", i, len(pt))
		}
		poly[i] = bbox.Point{X: pt[0], Y: pt[1]}
	}
	if !poly.Finite() {
		return poly, errors.New("polygon has non-finite coordinates")
	}
	for i, pt := range poly {
		poly[i] = bbox.Point{X: math.Min(math.Max(pt.X, 0), w), Y: math.Min(math.Max(pt.Y, 0), h)}
	}
	if poly.Bounds().Empty() {
		return poly, fmt.Errorf("polygon has no area inside the image")
	}
	return poly, nil
}

// extractObject returns the outermost {...} of s after removing code fences.
func extractObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
