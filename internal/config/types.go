// Package config holds memezap configuration.
//
// NewDefaultConfig is the single source of default values. InitViper layers
// a memezap.toml file and MEMEZAP_* environment variables on top of those
// defaults, and Load decodes the result into a Config.
package config

import "time"

// Config is the full configuration, laid out like memezap.toml.
type Config struct {
	Log        LogConfig        `toml:"log" mapstructure:"log"`
	Index      IndexConfig      `toml:"index" mapstructure:"index"`
	Embedding  EmbeddingConfig  `toml:"embedding" mapstructure:"embedding"`
	OCR        OCRConfig        `toml:"ocr" mapstructure:"ocr"`
	Detection  DetectionConfig  `toml:"detection" mapstructure:"detection"`
	Cache      CacheConfig      `toml:"cache" mapstructure:"cache"`
	Inpaint    InpaintConfig    `toml:"inpaint" mapstructure:"inpaint"`
	Font       FontConfig       `toml:"font" mapstructure:"font"`
	Compositor CompositorConfig `toml:"compositor" mapstructure:"compositor"`
	Suggest    SuggestConfig    `toml:"suggest" mapstructure:"suggest"`
	Output     OutputConfig     `toml:"output" mapstructure:"output"`
}

// LogConfig selects log level and format (text, pretty or json).
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// IndexConfig selects where the template index is persisted.
type IndexConfig struct {
	// Backend is local, memory, s3 or minio.
	Backend   string      `toml:"backend" mapstructure:"backend"`
	Name      string      `toml:"name" mapstructure:"name"`
	Dir       string      `toml:"dir" mapstructure:"dir"`
	Threshold float64     `toml:"threshold" mapstructure:"threshold"`
	S3        S3Config    `toml:"s3" mapstructure:"s3"`
	MinIO     MinIOConfig `toml:"minio" mapstructure:"minio"`
}

// S3Config locates the index in an S3 bucket.
type S3Config struct {
	Bucket   string `toml:"bucket" mapstructure:"bucket"`
	Prefix   string `toml:"prefix" mapstructure:"prefix"`
	Region   string `toml:"region" mapstructure:"region"`
	Endpoint string `toml:"endpoint" mapstructure:"endpoint"`
}

// MinIOConfig locates the index in a MinIO bucket.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint" mapstructure:"endpoint"`
	Bucket    string `toml:"bucket" mapstructure:"bucket"`
	Prefix    string `toml:"prefix" mapstructure:"prefix"`
	AccessKey string `toml:"access_key" mapstructure:"access_key"`
	SecretKey string `toml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `toml:"use_ssl" mapstructure:"use_ssl"`
}

// EmbeddingConfig selects the image embedding extractor.
type EmbeddingConfig struct {
	// Provider is perceptual or http.
	Provider   string        `toml:"provider" mapstructure:"provider"`
	Target     string        `toml:"target" mapstructure:"target"`
	Model      string        `toml:"model" mapstructure:"model"`
	// Dimensions of the http provider. Zero learns it from the first vector.
	Dimensions int           `toml:"dimensions" mapstructure:"dimensions"`
	Timeout    time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// OCRConfig selects the OCR engine.
type OCRConfig struct {
	// Engine is tesseract or heuristic.
	Engine         string `toml:"engine" mapstructure:"engine"`
	Language       string `toml:"language" mapstructure:"language"`
	Level          string `toml:"level" mapstructure:"level"`
	TessdataPrefix string `toml:"tessdata_prefix" mapstructure:"tessdata_prefix"`
}

// DetectionConfig tunes region filtering and merging.
type DetectionConfig struct {
	MinConfidence  float64 `toml:"min_confidence" mapstructure:"min_confidence"`
	MergeThreshold float64 `toml:"merge_threshold" mapstructure:"merge_threshold"`
}

// CacheConfig selects the OCR result cache.
type CacheConfig struct {
	// Backend is memory, bolt, badger, redis or none.
	Backend    string        `toml:"backend" mapstructure:"backend"`
	MaxEntries int           `toml:"max_entries" mapstructure:"max_entries"`
	TTL        time.Duration `toml:"ttl" mapstructure:"ttl"`
	Path       string        `toml:"path" mapstructure:"path"`
	Redis      RedisConfig   `toml:"redis" mapstructure:"redis"`
}

// RedisConfig locates the Redis cache.
type RedisConfig struct {
	Addr     string `toml:"addr" mapstructure:"addr"`
	Password string `toml:"password" mapstructure:"password"`
	DB       int    `toml:"db" mapstructure:"db"`
	Prefix   string `toml:"prefix" mapstructure:"prefix"`
}

// InpaintConfig tunes text removal.
type InpaintConfig struct {
	// Strategy is telea or fast.
	Strategy      string  `toml:"strategy" mapstructure:"strategy"`
	Radius        int     `toml:"radius" mapstructure:"radius"`
	Padding       int     `toml:"padding" mapstructure:"padding"`
	MinConfidence float64 `toml:"min_confidence" mapstructure:"min_confidence"`
}

// FontConfig selects the caption font and sizing.
type FontConfig struct {
	// Path to a TrueType font. Empty uses the bundled Go Bold.
	Path string `toml:"path" mapstructure:"path"`

	// Measured sizes captions from glyph metrics instead of the estimate.
	Measured bool `toml:"measured" mapstructure:"measured"`
}

// CompositorConfig tunes renders.
type CompositorConfig struct {
	TemplateDir   string `toml:"template_dir" mapstructure:"template_dir"`
	SaveTemplates bool   `toml:"save_templates" mapstructure:"save_templates"`

	// TemplateCache bounds the cleaned templates kept in memory.
	TemplateCache int `toml:"template_cache" mapstructure:"template_cache"`
}

// SuggestConfig configures the vision model used for caption placement.
type SuggestConfig struct {
	Enabled           bool          `toml:"enabled" mapstructure:"enabled"`
	BaseURL           string        `toml:"base_url" mapstructure:"base_url"`
	Model             string        `toml:"model" mapstructure:"model"`
	APIKey            string        `toml:"api_key" mapstructure:"api_key"`
	Timeout           time.Duration `toml:"timeout" mapstructure:"timeout"`
	RequestsPerMinute int           `toml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// OutputConfig controls where rendered images go.
type OutputConfig struct {
	Dir string `toml:"dir" mapstructure:"dir"`
}
