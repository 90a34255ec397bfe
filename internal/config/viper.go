package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file name searched for without an explicit path.
const FileName = "memezap.toml"

// EnvPrefix prefixes every environment override, e.g. MEMEZAP_INDEX_BACKEND.
const EnvPrefix = "MEMEZAP"

// InitViper creates and returns a configured *viper.Viper.
//
// With an explicit path that file must exist. Otherwise memezap.toml is
// looked up in the working directory and in .memezap/, and a missing file
// leaves the defaults in place.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound with BindPFlag)
//  2. Environment variables (MEMEZAP_INDEX_BACKEND, MEMEZAP_OCR_ENGINE, ...)
//  3. memezap.toml values
//  4. Defaults from NewDefaultConfig()
func InitViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".toml"))
		v.AddConfigPath(".")
		v.AddConfigPath(defaultDataDir)
	}

	if err := v.ReadInConfig(); err != nil {
		if path != "" || !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load decodes the effective configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation, so defaults.go stays the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("index.backend", d.Index.Backend)
	v.SetDefault("index.name", d.Index.Name)
	v.SetDefault("index.dir", d.Index.Dir)
	v.SetDefault("index.threshold", d.Index.Threshold)
	v.SetDefault("index.s3.bucket", d.Index.S3.Bucket)
	v.SetDefault("index.s3.prefix", d.Index.S3.Prefix)
	v.SetDefault("index.s3.region", d.Index.S3.Region)
	v.SetDefault("index.s3.endpoint", d.Index.S3.Endpoint)
	v.SetDefault("index.minio.endpoint", d.Index.MinIO.Endpoint)
	v.SetDefault("index.minio.bucket", d.Index.MinIO.Bucket)
	v.SetDefault("index.minio.prefix", d.Index.MinIO.Prefix)
	v.SetDefault("index.minio.access_key", d.Index.MinIO.AccessKey)
	v.SetDefault("index.minio.secret_key", d.Index.MinIO.SecretKey)
	v.SetDefault("index.minio.use_ssl", d.Index.MinIO.UseSSL)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.timeout", d.Embedding.Timeout)

	v.SetDefault("ocr.engine", d.OCR.Engine)
	v.SetDefault("ocr.language", d.OCR.Language)
	v.SetDefault("ocr.level", d.OCR.Level)
	v.SetDefault("ocr.tessdata_prefix", d.OCR.TessdataPrefix)

	v.SetDefault("detection.min_confidence", d.Detection.MinConfidence)
	v.SetDefault("detection.merge_threshold", d.Detection.MergeThreshold)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("cache.redis.prefix", d.Cache.Redis.Prefix)

	v.SetDefault("inpaint.strategy", d.Inpaint.Strategy)
	v.SetDefault("inpaint.radius", d.Inpaint.Radius)
	v.SetDefault("inpaint.padding", d.Inpaint.Padding)
	v.SetDefault("inpaint.min_confidence", d.Inpaint.MinConfidence)

	v.SetDefault("font.path", d.Font.Path)
	v.SetDefault("font.measured", d.Font.Measured)

	v.SetDefault("compositor.template_dir", d.Compositor.TemplateDir)
	v.SetDefault("compositor.save_templates", d.Compositor.SaveTemplates)
	v.SetDefault("compositor.template_cache", d.Compositor.TemplateCache)

	v.SetDefault("suggest.enabled", d.Suggest.Enabled)
	v.SetDefault("suggest.base_url", d.Suggest.BaseURL)
	v.SetDefault("suggest.model", d.Suggest.Model)
	v.SetDefault("suggest.api_key", d.Suggest.APIKey)
	v.SetDefault("suggest.timeout", d.Suggest.Timeout)
	v.SetDefault("suggest.requests_per_minute", d.Suggest.RequestsPerMinute)

	v.SetDefault("output.dir", d.Output.Dir)
}
