package config

import (
	"time"

	"github.com/ironsheep/memezap/internal/cache"
	"github.com/ironsheep/memezap/internal/compositor"
	"github.com/ironsheep/memezap/internal/detection"
	"github.com/ironsheep/memezap/internal/embedding"
	"github.com/ironsheep/memezap/internal/imaging"
	"github.com/ironsheep/memezap/internal/index"
	"github.com/ironsheep/memezap/internal/inpaint"
	"github.com/ironsheep/memezap/internal/suggest"
)

const (
	defaultDataDir  = ".memezap"
	defaultCacheTTL = 24 * time.Hour
)

// NewDefaultConfig returns a Config with defaults for every field.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Index: IndexConfig{
			Backend:   "local",
			Name:      index.DefaultName,
			Dir:       defaultDataDir,
			Threshold: compositor.DefaultThreshold,
			S3: S3Config{
				Prefix: "memezap/",
			},
			MinIO: MinIOConfig{
				Prefix: "memezap/",
				UseSSL: true,
			},
		},
		Embedding: EmbeddingConfig{
			Provider:   "perceptual",
			Target:     embedding.DefaultBaseURL,
			Model:      embedding.DefaultModel,
			Timeout:    embedding.DefaultTimeout,
		},
		OCR: OCRConfig{
			Engine:   "tesseract",
			Language: "eng",
			Level:    "line",
		},
		Detection: DetectionConfig{
			MinConfidence:  detection.DefaultMinConfidence,
			MergeThreshold: detection.DefaultMergeThreshold,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			MaxEntries: cache.DefaultMaxEntries,
			TTL:        defaultCacheTTL,
			Path:       defaultDataDir + "/ocr-cache",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "memezap:",
			},
		},
		Inpaint: InpaintConfig{
			Strategy:      string(inpaint.Telea),
			Radius:        inpaint.DefaultRadius,
			Padding:       inpaint.DefaultPadding,
			MinConfidence: detection.DefaultMinConfidence,
		},
		Compositor: CompositorConfig{
			TemplateDir:   defaultDataDir + "/templates",
			SaveTemplates: true,
			TemplateCache: imaging.DefaultCacheCapacity,
		},
		Suggest: SuggestConfig{
			BaseURL:           suggest.DefaultBaseURL,
			Model:             suggest.DefaultModel,
			Timeout:           suggest.DefaultTimeout,
			RequestsPerMinute: suggest.DefaultRequestsPerMinute,
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}
