package ocr

import (
	"context"
	"image"
	"math"

	"github.com/ironsheep/memezap/internal/imaging"
)

// Heuristic finds regions likely to contain text from edge density and
// horizontal edge structure. It reports locations only; Text is empty.
//
// It needs no native libraries and serves as the engine for builds without
// Tesseract. Its confidences are scores in [0,1], not recognition
// probabilities.
type Heuristic struct {
	// MinScore discards windows scoring below this value. Defaults to 0.3.
	MinScore float64

	// EdgeThreshold is the Sobel magnitude (0-255) that counts as an edge.
	// Defaults to 60.
	EdgeThreshold uint8
}

// window sizes scanned by Heuristic, small to large text
var heuristicWindows = []struct{ w, h int }{
	{80, 25},
	{100, 30},
	{150, 40},
	{200, 50},
}

func (h *Heuristic) Name() string { return "heuristic" }

// DetectRaw slides windows of several sizes over the edge map and keeps
// those whose edge density and orientation look like text. Overlapping
// windows are merged before returning.
func (h *Heuristic) DetectRaw(ctx context.Context, img image.Image) ([]Detection, error) {
	minScore := h.MinScore
	if minScore <= 0 {
		minScore = 0.3
	}
	threshold := h.EdgeThreshold
	if threshold == 0 {
		threshold = 60
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	edges := imaging.EdgeMap(img, threshold)

	var candidates []scored
	for _, ws := range heuristicWindows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stepX := ws.w / 2
		stepY := ws.h / 2

		for y := 0; y <= height-ws.h; y += stepY {
			for x := 0; x <= width-ws.w; x += stepX {
				win := image.Rect(x, y, x+ws.w, y+ws.h)
				density := imaging.EdgeDensity(edges, win)

				// Text has medium edge density: not sparse, not textured.
				if density < 0.05 || density > 0.4 {
					continue
				}
				score := horizontalScore(edges, win) * (1.0 - math.Abs(density-0.2)/0.2)
				if score < minScore {
					continue
				}
				candidates = append(candidates, scored{
					rect:  win.Add(bounds.Min),
					score: math.Round(score*1000) / 1000,
				})
			}
		}
	}

	merged := mergeOverlapping(candidates)
	out := make([]Detection, len(merged))
	for i, c := range merged {
		out[i] = Detection{Polygon: rectPolygon(c.rect), Confidence: c.score}
	}
	return out, nil
}

type scored struct {
	rect  image.Rectangle
	score float64
}

// horizontalScore is the share of horizontal edge runs among all runs in r.
// Lines of text produce more horizontal than vertical runs.
func horizontalScore(edges [][]bool, r image.Rectangle) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	for row := r.Min.Y; row < r.Max.Y; row++ {
		inRun := false
		for col := r.Min.X; col < r.Max.X; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	for col := r.Min.X; col < r.Max.X; col++ {
		inRun := false
		for row := r.Min.Y; row < r.Max.Y; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlapping unions overlapping candidates, keeping the best score.
// It repeats until no two results overlap.
func mergeOverlapping(regions []scored) []scored {
	merged := regions
	for {
		next := make([]scored, 0, len(merged))
		changed := false
		for _, r := range merged {
			found := false
			for i := range next {
				if r.rect.Overlaps(next[i].rect) {
					next[i].rect = next[i].rect.Union(r.rect)
					next[i].score = math.Max(next[i].score, r.score)
					found = true
					changed = true
					break
				}
			}
			if !found {
				next = append(next, r)
			}
		}
		merged = next
		if !changed {
			return merged
		}
	}
}
