package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var (
	indexBackends     = []string{"local", "memory", "s3", "minio"}
	cacheBackends     = []string{"memory", "bolt", "badger", "redis", "none"}
	embeddingBackends = []string{"perceptual", "http", "clip"}
	ocrEngines        = []string{"tesseract", "heuristic"}
	logFormats        = []string{"text", "pretty", "json"}
)

// Validate checks enumerated fields and numeric ranges.
func (c *Config) Validate() error {
	var errs []error
	check := func(key, value string, allowed []string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %v)", key, value, allowed))
	}
	check("log.format", c.Log.Format, logFormats)
	check("index.backend", c.Index.Backend, indexBackends)
	check("cache.backend", c.Cache.Backend, cacheBackends)
	check("embedding.provider", c.Embedding.Provider, embeddingBackends)
	check("ocr.engine", c.OCR.Engine, ocrEngines)

	if c.Index.Threshold < -1 || c.Index.Threshold > 1 {
		errs = append(errs, fmt.Errorf("index.threshold: %v is outside [-1, 1]", c.Index.Threshold))
	}
	if c.Index.Backend == "s3" && c.Index.S3.Bucket == "" {
		errs = append(errs, errors.New("index.s3.bucket is required for the s3 backend"))
	}
	if c.Index.Backend == "minio" && (c.Index.MinIO.Endpoint == "" || c.Index.MinIO.Bucket == "") {
		errs = append(errs, errors.New("index.minio.endpoint and index.minio.bucket are required for the minio backend"))
	}
	if c.Detection.MergeThreshold < 0 {
		errs = append(errs, fmt.Errorf("detection.merge_threshold: %v is negative", c.Detection.MergeThreshold))
	}
	if c.Inpaint.Padding < 0 {
		errs = append(errs, fmt.Errorf("inpaint.padding: %d is negative", c.Inpaint.Padding))
	}
	if c.Compositor.TemplateCache < 0 {
		errs = append(errs, fmt.Errorf("compositor.template_cache: %d is negative", c.Compositor.TemplateCache))
	}
	return errors.Join(errs...)
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("cannot encode nil config")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves cfg as TOML at path. An existing file is only replaced when
// overwrite is set.
func Write(cfg *Config, path string, overwrite bool) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Parse decodes TOML data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
