// Package app wires memezap's services from configuration.
//
// Services is built once per process and handed to the CLI commands and
// the MCP server. The OCR engine and the embedding extractor are built on
// first use and then shared.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ironsheep/memezap/internal/blobstore"
	miniostore "github.com/ironsheep/memezap/internal/blobstore/minio"
	s3store "github.com/ironsheep/memezap/internal/blobstore/s3"
	"github.com/ironsheep/memezap/internal/cache"
	"github.com/ironsheep/memezap/internal/compositor"
	"github.com/ironsheep/memezap/internal/config"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/embedding"
	"github.com/ironsheep/memezap/internal/fontfit"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/index"
	"github.com/ironsheep/memezap/internal/inpaint"
	"github.com/ironsheep/memezap/internal/lazy"
	"github.com/ironsheep/memezap/internal/ocr"
	"github.com/ironsheep/memezap/internal/render"
	"github.com/ironsheep/memezap/internal/suggest"
)

// Services holds every long-lived component.
type Services struct {
	Config     *config.Config
	Logger     *slog.Logger
	IndexStore blobstore.Store
	Index      *index.Index
	Cache      cache.Store
	Detector   *detection.Detector
	Remover    *inpaint.Remover
	Renderer   *render.Renderer
	Suggester  suggest.Suggester
	Templates  *imaging.ImageCache
	Compositor *compositor.Compositor

	engine    *lazy.Value[ocr.Engine]
	extractor *lazy.Value[embedding.Extractor]
}

// New builds Services from cfg. A nil logger discards.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Services{
		Config: cfg,
		Logger: logger,
	}

	s.engine = lazy.New(func() (ocr.Engine, error) { return newEngine(cfg.OCR, logger) })
	s.extractor = lazy.New(func() (embedding.Extractor, error) {
		return embedding.New(embedding.Config{
			Provider:   cfg.Embedding.Provider,
			Target:     cfg.Embedding.Target,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    cfg.Embedding.Timeout,
		})
	})

	store, err := newIndexStore(ctx, cfg.Index)
	if err != nil {
		return nil, err
	}
	s.IndexStore = store
	s.Index = index.Open(ctx, store, cfg.Index.Name,
		index.WithLogger(logger.With("component", "index")),
		index.WithDimension(indexDimension(cfg.Embedding)),
	)

	if s.Cache, err = newCache(cfg.Cache); err != nil {
		return nil, err
	}
	s.Detector = detection.NewDetector(&lazyEngine{v: s.engine, name: cfg.OCR.Engine},
		detection.WithCache(s.Cache),
		detection.WithOptions(detection.Options{
			MinConfidence:  cfg.Detection.MinConfidence,
			MergeThreshold: cfg.Detection.MergeThreshold,
		}),
		detection.WithLogger(logger.With("component", "detection")),
	)

	strategy, err := inpaint.ParseStrategy(cfg.Inpaint.Strategy)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Remover = inpaint.NewRemover(inpaint.Options{
		Strategy: strategy,
		Radius:   cfg.Inpaint.Radius,
		Feather:  inpaint.DefaultFeather,
	}, logger.With("component", "inpaint"))

	if s.Renderer, err = NewRenderer(cfg.Font); err != nil {
		s.Close()
		return nil, err
	}
	if s.Suggester, err = newSuggester(cfg.Suggest, logger); err != nil {
		s.Close()
		return nil, err
	}

	opts := compositor.Options{
		Threshold:     cfg.Index.Threshold,
		Padding:       cfg.Inpaint.Padding,
		MinConfidence: cfg.Inpaint.MinConfidence,
	}
	if cfg.Compositor.SaveTemplates {
		opts.TemplateDir = cfg.Compositor.TemplateDir
	}
	s.Templates = imaging.NewImageCache(
		imaging.WithCapacity(cfg.Compositor.TemplateCache),
		imaging.WithPrepare(compositor.TemplateCleaner(s.Detector, s.Remover, opts)),
	)
	s.Compositor, err = compositor.New(compositor.Deps{
		Detector:  s.Detector,
		Cleaner:   s.Remover,
		Extractor: &lazyExtractor{v: s.extractor, name: cfg.Embedding.Provider},
		Index:     s.Index,
		Templates: s.Templates,
		Suggester: s.Suggester,
		Renderer:  s.Renderer,
		Logger:    logger.With("component", "compositor"),
	}, opts)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Engine returns the OCR engine, building it on first use.
func (s *Services) Engine() (ocr.Engine, error) { return s.engine.Get() }

// Extractor returns the embedding extractor, building it on first use.
func (s *Services) Extractor() (embedding.Extractor, error) { return s.extractor.Get() }

// Close releases the cache and a built OCR engine.
func (s *Services) Close() error {
	var errs []error
	if s.Cache != nil {
		errs = append(errs, s.Cache.Close())
	}
	if s.engine != nil && s.engine.Built() {
		if e, err := s.engine.Get(); err == nil {
			if c, ok := e.(io.Closer); ok {
				errs = append(errs, c.Close())
			}
		}
	}
	return errors.Join(errs...)
}

func indexDimension(cfg config.EmbeddingConfig) int {
	switch cfg.Provider {
	case "", "perceptual":
		return embedding.PerceptualDimension
	default:
		return cfg.Dimensions
	}
}

func newEngine(cfg config.OCRConfig, logger *slog.Logger) (ocr.Engine, error) {
	switch cfg.Engine {
	case "heuristic":
		return &ocr.Heuristic{}, nil
	case "", "tesseract":
		level, err := ocr.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		t, err := ocr.NewTesseract(ocr.TesseractConfig{
			Language:       cfg.Language,
			Level:          level,
			TessdataPrefix: cfg.TessdataPrefix,
		})
		if errors.Is(err, ocr.ErrUnavailable) {
			logger.Warn("tesseract unavailable in this build, using heuristic text finder")
			return &ocr.Heuristic{}, nil
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported ocr engine: %s", cfg.Engine)
	}
}

func newIndexStore(ctx context.Context, cfg config.IndexConfig) (blobstore.Store, error) {
	switch cfg.Backend {
	case "", "local":
		return blobstore.NewLocalStore(cfg.Dir), nil
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		return s3store.New(ctx, s3store.Config{
			Bucket:   cfg.S3.Bucket,
			Prefix:   cfg.S3.Prefix,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
		})
	case "minio":
		return miniostore.New(miniostore.Config{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.MinIO.Bucket,
			Prefix:    cfg.MinIO.Prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", cfg.Backend)
	}
}

func newCache(cfg config.CacheConfig) (cache.Store, error) {
	opts := cache.Options{TTL: cfg.TTL, MaxEntries: cfg.MaxEntries}
	switch cfg.Backend {
	case "", "memory":
		return cache.NewMemory(opts), nil
	case "none":
		return cache.Nop{}, nil
	case "bolt":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		return cache.OpenBolt(cfg.Path)
	case "badger":
		return cache.OpenBadger(cfg.Path, opts)
	case "redis":
		return cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}, opts), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// NewRenderer builds the caption renderer for the configured font and fitter.
func NewRenderer(cfg config.FontConfig) (*render.Renderer, error) {
	f := fontfit.Default()
	if cfg.Path != "" {
		loaded, err := fontfit.Load(cfg.Path)
		if err != nil {
			return nil, err
		}
		f = loaded
	}
	var fitter fontfit.Fitter = fontfit.Heuristic{}
	if cfg.Measured {
		fitter = fontfit.NewMeasured(f)
	}
	return render.New(f, fitter, render.DefaultStyle()), nil
}

func newSuggester(cfg config.SuggestConfig, logger *slog.Logger) (suggest.Suggester, error) {
	if !cfg.Enabled {
		return suggest.Disabled{}, nil
	}
	return suggest.NewClient(suggest.Config{
		BaseURL:           cfg.BaseURL,
		Model:             cfg.Model,
		APIKey:            cfg.APIKey,
		Timeout:           cfg.Timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, logger.With("component", "suggest"))
}
