package inpaint

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/imaging"
)

// ErrInpaint is matched by every *Error.
var ErrInpaint = errors.New("inpaint failed")

// Error reports a failed fill. The image returned alongside it is the
// unmodified input.
type Error struct {
	Regions int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("inpaint %d regions: %v", e.Regions, e.Err)
}

func (e *Error) Is(target error) bool { return target == ErrInpaint }

func (e *Error) Unwrap() error { return e.Err }

// Strategy selects the fill algorithm.
type Strategy string

const (
	// Telea is the smoother, slower strategy.
	Telea Strategy = "telea"

	// Fast is the coarser, faster strategy.
	Fast Strategy = "fast"
)

// ParseStrategy accepts "telea" (or "ns", "smooth") and "fast". An empty
// string selects Telea.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "telea", "smooth", "ns":
		return Telea, nil
	case "fast", "onion":
		return Fast, nil
	}
	return Telea, fmt.Errorf("unknown inpaint strategy %q", s)
}

const (
	// DefaultRadius is the Telea neighborhood radius.
	DefaultRadius = 3

	// DefaultPadding is added around each region's box.
	DefaultPadding = 5

	// DefaultFeather is the Gaussian radius used to soften Telea fills.
	DefaultFeather = 1.0
)

// Options configure a Remover.
type Options struct {
	Strategy Strategy
	Radius   int
	Feather  float64
}

// DefaultOptions returns Telea with radius 3 and a 1px feather.
func DefaultOptions() Options {
	return Options{Strategy: Telea, Radius: DefaultRadius, Feather: DefaultFeather}
}

// Remover erases text regions from images.
type Remover struct {
	opts   Options
	logger *slog.Logger
}

// NewRemover creates a Remover. A nil logger discards.
func NewRemover(opts Options, logger *slog.Logger) *Remover {
	if opts.Strategy == "" {
		opts.Strategy = Telea
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Remover{opts: opts, logger: logger}
}

// Strategy reports the configured algorithm.
func (r *Remover) Strategy() Strategy { return r.opts.Strategy }

// Remove returns a copy of img with the padded boxes of regions filled in.
// Regions below minConfidence are left alone.
//
// On failure Remove returns an unmodified copy of img together with an
// *Error, so callers can carry on with the original pixels.
func (r *Remover) Remove(ctx context.Context, img image.Image, regions []detection.TextRegion, padding int, minConfidence float64) (*image.NRGBA, error) {
	dst := imaging.Clone(img)
	shape := bbox.ShapeOf(img)

	// Regions are in the coordinates of img; dst starts at the origin.
	if off := img.Bounds().Min; off != (image.Point{}) {
		regions = translate(regions, off)
	}
	mask := BuildMask(shape, regions, padding, minConfidence)
	holes := holeCount(mask)
	if holes == 0 {
		return dst, nil
	}

	start := time.Now()
	work := imaging.Clone(dst)
	var err error
	switch r.opts.Strategy {
	case Fast:
		err = fast(ctx, work, mask)
	default:
		err = telea(ctx, work, mask, r.opts.Radius, r.opts.Feather)
	}
	if err != nil {
		r.logger.Warn("inpaint failed, keeping original", "strategy", r.opts.Strategy, "regions", len(regions), "error", err)
		return dst, &Error{Regions: len(regions), Err: err}
	}

	r.logger.Debug("inpaint",
		"strategy", r.opts.Strategy,
		"regions", len(regions),
		"pixels", holes,
		"duration", time.Since(start),
	)
	return work, nil
}

func translate(regions []detection.TextRegion, off image.Point) []detection.TextRegion {
	out := make([]detection.TextRegion, len(regions))
	for i, reg := range regions {
		out[i] = reg
		for j := range reg.Polygon {
			out[i].Polygon[j].X -= float64(off.X)
			out[i].Polygon[j].Y -= float64(off.Y)
		}
	}
	return out
}
