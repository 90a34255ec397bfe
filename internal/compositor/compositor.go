// Package compositor turns a request image and captions into a meme.
//
// Compose runs a fixed sequence of stages. Text regions are detected on
// the original image and removed to produce a clean base. The clean base
// is embedded and looked up in the template index. The placement plan is
// then chosen from whether a template was found and whether regions were
// detected, with suggested boxes and then a fixed layout as fallbacks.
// Finally the request image joins the index so later renders can reuse it.
// The index stores the embedding of the cleaned image under the request's
// path, so a matched template is cleaned again as it is loaded.
//
// Every stage failure other than a canceled context is recovered and
// recorded in the result trace.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/embedding"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/index"
	"github.com/ironsheep/memezap/internal/inpaint"
	"github.com/ironsheep/memezap/internal/render"
	"github.com/ironsheep/memezap/internal/suggest"
)

// DefaultThreshold is the minimum similarity for reusing a template.
const DefaultThreshold = 0.8

// ErrInvalidRequest is returned for a request without an image or captions.
var ErrInvalidRequest = errors.New("invalid render request")

// Detector finds text regions in a source image.
type Detector interface {
	Detect(ctx context.Context, src *imaging.Source) ([]detection.TextRegion, error)
}

// Cleaner removes detected text from an image. On failure it returns an
// unmodified copy along with the error.
type Cleaner interface {
	Remove(ctx context.Context, img image.Image, regions []detection.TextRegion, padding int, minConfidence float64) (*image.NRGBA, error)
}

// TemplateIndex is the part of the embedding index used by renders.
type TemplateIndex interface {
	Search(vec []float32, threshold float64) (index.Match, bool)
	Add(ctx context.Context, path string, vec []float32) (bool, error)
}

// TemplateLoader loads an indexed template image. The loaded image must
// be free of text; see TemplateCleaner.
type TemplateLoader interface {
	Load(ctx context.Context, path string) (*imaging.Source, error)
}

// TemplateCleaner returns an imaging.PrepareFunc that removes the text of
// a template as it is read from disk. Index paths name the files renders
// came from, which still carry their captions; the index holds the
// embedding of the cleaned image.
func TemplateCleaner(d Detector, cl Cleaner, opts Options) imaging.PrepareFunc {
	return func(ctx context.Context, src *imaging.Source) (image.Image, error) {
		regions, err := d.Detect(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("detect template text: %w", err)
		}
		cleaned, err := cl.Remove(ctx, src.Image, regions, opts.Padding, opts.MinConfidence)
		if err != nil {
			return nil, fmt.Errorf("clean template: %w", err)
		}
		return cleaned, nil
	}
}

// Request is one render.
type Request struct {
	Source   *imaging.Source
	Captions []string

	// Path identifies the request image in the index. When empty, Source.Path
	// is used.
	Path string
}

// Result is a finished render.
type Result struct {
	Image        *image.NRGBA
	Layout       Layout
	UsedTemplate bool
	TemplatePath string
	Similarity   float64
	Regions      []detection.TextRegion
	Trace        Trace

	// Indexed is the path added to the index, or empty when the index did
	// not change.
	Indexed string
}

// Options tunes a Compositor.
type Options struct {
	// Threshold is the minimum template similarity. Zero means
	// DefaultThreshold.
	Threshold float64

	// Padding grows each region before removal.
	Padding int

	// MinConfidence excludes regions from removal.
	MinConfidence float64

	// TemplateDir receives cleaned request images that have no path of
	// their own, so they can be indexed. Saving is off when empty.
	TemplateDir string
}

// DefaultOptions returns the default Options.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		Padding:       inpaint.DefaultPadding,
		MinConfidence: detection.DefaultMinConfidence,
	}
}

// Deps are the collaborators of a Compositor. Detector, Cleaner, Extractor
// and Index are required.
type Deps struct {
	Detector  Detector
	Cleaner   Cleaner
	Extractor embedding.Extractor
	Index     TemplateIndex
	Templates TemplateLoader
	Suggester suggest.Suggester
	Renderer  *render.Renderer
	Logger    *slog.Logger
}

// Compositor renders memes. It is safe for concurrent use when its
// collaborators are.
type Compositor struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
}

// New creates a Compositor.
func New(deps Deps, opts Options) (*Compositor, error) {
	switch {
	case deps.Detector == nil:
		return nil, errors.New("compositor: detector is required")
	case deps.Cleaner == nil:
		return nil, errors.New("compositor: cleaner is required")
	case deps.Extractor == nil:
		return nil, errors.New("compositor: extractor is required")
	case deps.Index == nil:
		return nil, errors.New("compositor: index is required")
	}
	if deps.Templates == nil {
		deps.Templates = imaging.NewImageCache(imaging.WithPrepare(TemplateCleaner(deps.Detector, deps.Cleaner, opts)))
	}
	if deps.Suggester == nil {
		deps.Suggester = suggest.Disabled{}
	}
	if deps.Renderer == nil {
		deps.Renderer = render.New(nil, nil, render.DefaultStyle())
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	return &Compositor{deps: deps, opts: opts, logger: logger}, nil
}

// Options returns the effective options.
func (c *Compositor) Options() Options { return c.opts }

// Compose renders req. Only an invalid request or a canceled context is
// returned as an error; every other failure falls through to the next
// placement strategy.
func (c *Compositor) Compose(ctx context.Context, req Request) (*Result, error) {
	if req.Source == nil || req.Source.Image == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidRequest)
	}
	if len(req.Captions) == 0 {
		return nil, fmt.Errorf("%w: no captions", ErrInvalidRequest)
	}
	src := req.Source
	shape := src.Shape()
	tr := &tracer{}

	regions := c.detect(ctx, tr, src)
	cleaned := c.clean(ctx, tr, src.Image, regions)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := c.embed(ctx, tr, cleaned)
	tpl := c.search(ctx, tr, vec)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := c.plan(ctx, tr, tpl, cleaned, shape, regions, req.Captions)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := tr.start(StageDraw)
	out := c.draw(plan, req.Captions)
	done(string(plan.Layout), nil)

	res := &Result{
		Image:        out,
		Layout:       plan.Layout,
		UsedTemplate: tpl.Found(),
		TemplatePath: tpl.Path,
		Similarity:   tpl.Similarity,
		Regions:      regions,
	}
	res.Indexed = c.grow(ctx, tr, req, tpl, cleaned, vec)
	res.Trace = tr.events

	c.logger.Debug("render complete",
		"layout", res.Layout,
		"template", res.TemplatePath,
		"similarity", res.Similarity,
		"regions", len(regions),
		"stages", res.Trace,
	)
	return res, nil
}

func (c *Compositor) detect(ctx context.Context, tr *tracer, src *imaging.Source) []detection.TextRegion {
	done := tr.start(StageDetect)
	regions, err := c.deps.Detector.Detect(ctx, src)
	if err != nil {
		c.logger.Warn("text detection failed, continuing without regions", "error", err)
		done("", err)
		return nil
	}
	done(fmt.Sprintf("%d regions", len(regions)), nil)
	return regions
}

func (c *Compositor) clean(ctx context.Context, tr *tracer, img image.Image, regions []detection.TextRegion) *image.NRGBA {
	done := tr.start(StageClean)
	cleaned, err := c.deps.Cleaner.Remove(ctx, img, regions, c.opts.Padding, c.opts.MinConfidence)
	if err != nil {
		c.logger.Warn("text removal failed, using original", "error", err)
		done("", err)
		if cleaned == nil {
			cleaned = imaging.Clone(img)
		}
		return cleaned
	}
	done("", nil)
	return cleaned
}

func (c *Compositor) embed(ctx context.Context, tr *tracer, img image.Image) []float32 {
	done := tr.start(StageEmbed)
	vec, err := c.deps.Extractor.Extract(ctx, img)
	if err != nil {
		c.logger.Warn("embedding failed, skipping template search", "extractor", c.deps.Extractor.Name(), "error", err)
		done("", err)
		return nil
	}
	done(c.deps.Extractor.Name(), nil)
	return vec
}

func (c *Compositor) search(ctx context.Context, tr *tracer, vec []float32) Template {
	if vec == nil {
		return Template{}
	}
	done := tr.start(StageSearch)
	m, ok := c.deps.Index.Search(vec, c.opts.Threshold)
	if !ok {
		done("no template", nil)
		return Template{}
	}
	src, err := c.deps.Templates.Load(ctx, m.Path)
	if err != nil {
		c.logger.Warn("template unreadable, ignoring match", "path", m.Path, "error", err)
		done(m.Path, err)
		return Template{}
	}
	done(fmt.Sprintf("%s %.3f", m.Path, m.Score), nil)
	return Template{Path: m.Path, Similarity: m.Score, Image: src.Image}
}

func (c *Compositor) plan(ctx context.Context, tr *tracer, tpl Template, cleaned image.Image, src bbox.Shape, regions []detection.TextRegion, captions []string) Plan {
	p, ok, err := regionPlan(tpl, cleaned, src, regions)
	if err != nil {
		c.logger.Warn("regions could not be mapped to template", "template", tpl.Path, "error", err)
	}
	if ok {
		return p
	}

	base := suggestBase(tpl, cleaned)
	done := tr.start(StageSuggest)
	s, err := c.deps.Suggester.Suggest(ctx, base, captions)
	if err != nil {
		if !errors.Is(err, suggest.ErrDisabled) {
			c.logger.Warn("placement suggestion failed, using fixed layout", "error", err)
		}
		done("", err)
		return fallbackPlan(tpl, cleaned)
	}
	done(fmt.Sprintf("%d boxes", len(s)), nil)
	return suggestedPlan(tpl, base, s)
}

func (c *Compositor) draw(p Plan, captions []string) *image.NRGBA {
	r := c.deps.Renderer
	switch {
	case p.UsesBoxes():
		return r.Boxes(p.Base, captions, p.Boxes, p.Sizes)
	case p.Layout == LayoutTemplateWhiteBox:
		top, bottom := render.SplitTopBottom(captions)
		return r.WhiteBoxes(p.Base, top, bottom)
	default:
		return r.Distributed(p.Base, captions)
	}
}

// grow adds the request image to the index unless it is the matched
// template itself. A request without a path is saved under TemplateDir
// first, and only when no template was reused.
func (c *Compositor) grow(ctx context.Context, tr *tracer, req Request, tpl Template, cleaned *image.NRGBA, vec []float32) string {
	if vec == nil || ctx.Err() != nil {
		return ""
	}
	path := req.Path
	if path == "" {
		path = req.Source.Path
	}
	if path != "" && path == tpl.Path {
		return ""
	}
	generated := path == ""
	if generated {
		if tpl.Found() || c.opts.TemplateDir == "" {
			return ""
		}
		path = filepath.Join(c.opts.TemplateDir, req.Source.Hash+".png")
	}

	done := tr.start(StageIndex)
	if generated {
		if err := saveTemplate(path, cleaned); err != nil {
			c.logger.Warn("template save failed, not indexing", "path", path, "error", err)
			done(path, err)
			return ""
		}
	}
	added, err := c.deps.Index.Add(ctx, path, vec)
	if err != nil {
		c.logger.Warn("index add failed", "path", path, "error", err)
		done(path, err)
		return ""
	}
	if !added {
		done("already indexed", nil)
		return ""
	}
	c.logger.Info("template indexed", "path", path)
	done(path, nil)
	return path
}

// saveTemplate writes img to path unless a file is already there. Names
// are content hashes, so an existing file holds the same template.
func saveTemplate(path string, img image.Image) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return imaging.Save(img, path)
}
