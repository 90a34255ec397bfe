package app

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/imaging"
)

// Clean detects the text in src and removes it. When removal fails the
// returned image is an unmodified copy and err wraps inpaint.ErrInpaint.
func (s *Services) Clean(ctx context.Context, src *imaging.Source) (image.Image, []detection.TextRegion, error) {
	regions, err := s.Detector.Detect(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	cleaned, err := s.Remover.Remove(ctx, src.Image, regions, s.Config.Inpaint.Padding, s.Config.Inpaint.MinConfidence)
	return cleaned, regions, err
}

// RegionReport is a detected text block with the average color behind it.
type RegionReport struct {
	detection.TextRegion
	Background imaging.ColorResult `json:"background"`
}

// DetectText detects the text blocks of src and samples each block's
// background.
func (s *Services) DetectText(ctx context.Context, src *imaging.Source) ([]RegionReport, error) {
	regions, err := s.Detector.Detect(ctx, src)
	if err != nil {
		return nil, err
	}
	out := make([]RegionReport, len(regions))
	for i, r := range regions {
		out[i] = RegionReport{
			TextRegion: r,
			Background: imaging.DescribeColor(imaging.AverageColor(src.Image, r.Bounds().Rect())),
		}
	}
	return out, nil
}

// Embed returns the embedding of src. With clean set, text is removed
// first so the vector matches what the compositor indexes. A failed
// removal falls back to the original pixels.
func (s *Services) Embed(ctx context.Context, src *imaging.Source, clean bool) ([]float32, error) {
	x, err := s.Extractor()
	if err != nil {
		return nil, err
	}
	img := src.Image
	if clean {
		cleaned, _, err := s.Clean(ctx, src)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			s.Logger.Warn("text removal failed, embedding original", "path", src.Path, "err", err)
		}
		if cleaned != nil {
			img = cleaned
		}
	}
	vec, err := x.Extract(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", src.Path, err)
	}
	return vec, nil
}

// OutputPath returns a fresh file name under the configured output
// directory.
func (s *Services) OutputPath(prefix string) string {
	return filepath.Join(s.Config.Output.Dir, prefix+"-"+uuid.NewString()+".png")
}
