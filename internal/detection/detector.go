package detection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ironsheep/memezap/internal/bbox"
	"github.com/ironsheep/memezap/internal/cache"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/ocr"
)

const (
	// DefaultMinConfidence is the confidence a fragment must exceed.
	DefaultMinConfidence = 0.5

	// DefaultMergeThreshold is the merge distance V in pixels.
	DefaultMergeThreshold = 50.0
)

// Options tune filtering and merging.
type Options struct {
	MinConfidence  float64
	MergeThreshold float64
}

// DefaultOptions returns the confidence floor 0.5 and merge distance 50.
func DefaultOptions() Options {
	return Options{
		MinConfidence:  DefaultMinConfidence,
		MergeThreshold: DefaultMergeThreshold,
	}
}

// cacheEntry is the stored form of a detection result.
type cacheEntry struct {
	Shape   bbox.Shape   `json:"shape"`
	Regions []TextRegion `json:"regions"`
}

// Detector finds merged text regions, caching results by content hash.
// It is safe for concurrent use.
type Detector struct {
	engine ocr.Engine
	store  cache.Store
	opts   Options
	logger *slog.Logger
	group  singleflight.Group
}

// Option configures a Detector.
type Option func(*Detector)

// WithCache stores results in s. Without it nothing is cached.
func WithCache(s cache.Store) Option {
	return func(d *Detector) {
		if s != nil {
			d.store = s
		}
	}
}

// WithOptions overrides the filtering and merge parameters.
func WithOptions(o Options) Option {
	return func(d *Detector) { d.opts = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDetector creates a Detector over engine.
func NewDetector(engine ocr.Engine, opts ...Option) *Detector {
	d := &Detector{
		engine: engine,
		store:  cache.Nop{},
		opts:   DefaultOptions(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Options returns the active parameters.
func (d *Detector) Options() Options { return d.opts }

// EngineName reports the underlying OCR engine.
func (d *Detector) EngineName() string { return d.engine.Name() }

// Detect returns the merged text regions of src ordered top to bottom.
//
// Cache failures are logged and otherwise ignored. Concurrent calls for the
// same image share one engine run; a caller whose ctx ends stops waiting
// while the run completes for the others.
func (d *Detector) Detect(ctx context.Context, src *imaging.Source) ([]TextRegion, error) {
	if src == nil || src.Image == nil {
		return nil, errors.New("detect text: no image")
	}
	shape := src.Shape()
	key := d.cacheKey(src.Hash)

	if entry, ok := d.lookup(ctx, key); ok {
		d.logger.Debug("ocr cache hit", "hash", short(src.Hash), "regions", len(entry.Regions))
		return adapt(entry, shape)
	}

	// The shared run is not canceled by any one caller.
	shared := context.WithoutCancel(ctx)
	ch := d.group.DoChan(key, func() (any, error) {
		start := time.Now()
		raw, err := d.engine.DetectRaw(shared, src.Image)
		if err != nil {
			return nil, fmt.Errorf("detect text: %w", err)
		}
		regions := Merge(Filter(raw, d.opts.MinConfidence), d.opts.MergeThreshold)
		d.logger.Debug("ocr detect",
			"engine", d.engine.Name(),
			"raw", len(raw),
			"regions", len(regions),
			"duration", time.Since(start),
		)
		entry := cacheEntry{Shape: shape, Regions: regions}
		d.save(shared, key, entry)
		return entry, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Shared {
		d.logger.Debug("ocr detect shared", "hash", short(src.Hash))
	}
	return adapt(r.Val.(cacheEntry), shape)
}

func (d *Detector) cacheKey(hash string) string {
	return fmt.Sprintf("ocr:%s:c%g:v%g:%s", d.engine.Name(), d.opts.MinConfidence, d.opts.MergeThreshold, hash)
}

func (d *Detector) lookup(ctx context.Context, key string) (cacheEntry, bool) {
	data, err := d.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			d.logger.Warn("ocr cache read failed", "error", err)
		}
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		d.logger.Warn("ocr cache entry unreadable", "error", err)
		return cacheEntry{}, false
	}
	return entry, true
}

func (d *Detector) save(ctx context.Context, key string, entry cacheEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		d.logger.Warn("ocr cache encode failed", "error", err)
		return
	}
	if err := d.store.Set(ctx, key, data); err != nil {
		d.logger.Warn("ocr cache write failed", "error", err)
	}
}

// adapt copies the cached regions, remapping them when the image was
// detected at a different size.
func adapt(entry cacheEntry, shape bbox.Shape) ([]TextRegion, error) {
	out := make([]TextRegion, len(entry.Regions))
	copy(out, entry.Regions)
	if entry.Shape == shape || len(out) == 0 {
		return out, nil
	}
	polys, err := bbox.Remap(Polygons(out), entry.Shape, shape)
	if err != nil {
		return nil, fmt.Errorf("remap cached regions: %w", err)
	}
	for i := range out {
		out[i].Polygon = polys[i]
	}
	return out, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
