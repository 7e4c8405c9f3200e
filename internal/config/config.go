// Package config loads framekit settings: built-in defaults, then an optional
// TOML file, then FRAMEKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/metrics"
	"github.com/fpang/framekit/internal/photo"
)

// Asset source kinds.
const (
	SourceDir    = "dir"
	SourceS3     = "s3"
	SourceHTTP   = "http"
	SourceBundle = "bundle"
	SourceEmbed  = "embed"
)

// Config is the full framekit configuration.
type Config struct {
	Assets  Assets  `toml:"assets"`
	Server  Server  `toml:"server"`
	Preview Preview `toml:"preview"`
	Metrics Metrics `toml:"metrics"`
}

// Assets selects where frame templates come from.
type Assets struct {
	Source           string `toml:"source"`
	BaseDir          string `toml:"base_dir"`
	FallbackName     string `toml:"fallback_name"`
	Dir              string `toml:"dir"`
	Bucket           string `toml:"bucket"`
	BucketParam      string `toml:"bucket_param"` // SSM parameter holding the bucket name
	Prefix           string `toml:"prefix"`
	BaseURL          string `toml:"base_url"`
	BundlePath       string `toml:"bundle_path"`
	EmbeddedFallback bool   `toml:"embedded_fallback"`
}

// Server holds HTTP settings shared by frame-web and frame-lambda.
type Server struct {
	Port               int    `toml:"port"`
	MaxUploadBytes     int64  `toml:"max_upload_bytes"`
	OriginVerifySecret string `toml:"origin_verify_secret"`
}

// Preview controls rendered previews.
type Preview struct {
	MaxDimension int     `toml:"max_dimension"`
	BorderRatio  float64 `toml:"border_ratio"`
	MaxPixels    int64   `toml:"max_pixels"`
}

// Metrics controls EMF output.
type Metrics struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Assets: Assets{
			Source:           SourceDir,
			BaseDir:          frame.DefaultBaseDir,
			FallbackName:     frame.DefaultFallbackName,
			Dir:              "./assets/frames",
			EmbeddedFallback: true,
		},
		Server: Server{
			Port:           8080,
			MaxUploadBytes: 25 << 20,
		},
		Preview: Preview{
			MaxDimension: 1600,
			BorderRatio:  0.08,
			MaxPixels:    photo.DefaultMaxPixels,
		},
		Metrics: Metrics{
			Namespace: metrics.Namespace,
		},
	}
}

// Load builds the configuration. path names a TOML file; when empty,
// FRAMEKIT_CONFIG is consulted and, if that is unset too, no file is read.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FRAMEKIT_CONFIG")
	}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Assets.Source, "FRAMEKIT_ASSET_SOURCE")
	setString(&c.Assets.BaseDir, "FRAMEKIT_BASE_DIR")
	setString(&c.Assets.FallbackName, "FRAMEKIT_FALLBACK_NAME")
	setString(&c.Assets.Dir, "FRAMEKIT_ASSET_DIR")
	setString(&c.Assets.Bucket, "FRAMEKIT_ASSET_BUCKET")
	setString(&c.Assets.BucketParam, "FRAMEKIT_ASSET_BUCKET_PARAM")
	setString(&c.Assets.Prefix, "FRAMEKIT_ASSET_PREFIX")
	setString(&c.Assets.BaseURL, "FRAMEKIT_ASSET_URL")
	setString(&c.Assets.BundlePath, "FRAMEKIT_BUNDLE_PATH")
	setString(&c.Server.OriginVerifySecret, "FRAMEKIT_ORIGIN_VERIFY_SECRET")
	setString(&c.Metrics.Namespace, "FRAMEKIT_METRICS_NAMESPACE")

	var errs []error
	errs = append(errs,
		setBool(&c.Assets.EmbeddedFallback, "FRAMEKIT_EMBEDDED_FALLBACK"),
		setInt(&c.Server.Port, "FRAMEKIT_PORT"),
		setInt64(&c.Server.MaxUploadBytes, "FRAMEKIT_MAX_UPLOAD_BYTES"),
		setInt(&c.Preview.MaxDimension, "FRAMEKIT_PREVIEW_MAX_DIM"),
		setInt64(&c.Preview.MaxPixels, "FRAMEKIT_PREVIEW_MAX_PIXELS"),
		setBool(&c.Metrics.Enabled, "FRAMEKIT_METRICS"),
	)
	return errors.Join(errs...)
}

func (c *Config) normalize() {
	c.Assets.Source = strings.ToLower(strings.TrimSpace(c.Assets.Source))
	if c.Assets.BaseDir == "" {
		c.Assets.BaseDir = frame.DefaultBaseDir
	}
	if c.Assets.FallbackName == "" {
		c.Assets.FallbackName = frame.DefaultFallbackName
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = metrics.Namespace
	}
}

// Validate reports every setting that cannot work.
func (c *Config) Validate() error {
	var errs []error
	switch c.Assets.Source {
	case SourceDir:
		if c.Assets.Dir == "" {
			errs = append(errs, errors.New("assets.dir is required for the dir source"))
		}
	case SourceS3:
		if c.Assets.Bucket == "" && c.Assets.BucketParam == "" {
			errs = append(errs, errors.New("assets.bucket or assets.bucket_param is required for the s3 source"))
		}
	case SourceHTTP:
		if !strings.HasPrefix(c.Assets.BaseURL, "http://") && !strings.HasPrefix(c.Assets.BaseURL, "https://") {
			errs = append(errs, fmt.Errorf("assets.base_url must be an http(s) URL, got %q", c.Assets.BaseURL))
		}
	case SourceBundle:
		if c.Assets.BundlePath == "" {
			errs = append(errs, errors.New("assets.bundle_path is required for the bundle source"))
		}
	case SourceEmbed:
	default:
		errs = append(errs, fmt.Errorf("unknown assets.source %q (want dir, s3, http, bundle or embed)", c.Assets.Source))
	}

	if strings.Contains(c.Assets.FallbackName, "/") {
		errs = append(errs, fmt.Errorf("assets.fallback_name %q must be a file name", c.Assets.FallbackName))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Preview.BorderRatio < 0 || c.Preview.BorderRatio >= 0.5 {
		errs = append(errs, fmt.Errorf("preview.border_ratio %.3f must be in [0, 0.5)", c.Preview.BorderRatio))
	}
	if c.Preview.MaxPixels <= 0 {
		errs = append(errs, errors.New("preview.max_pixels must be positive"))
	}
	return errors.Join(errs...)
}

// Resolver returns the path resolver for the configured base dir and
// fallback name.
func (c *Config) Resolver() frame.Resolver {
	r := frame.NewResolver(c.Assets.BaseDir)
	r.FallbackName = c.Assets.FallbackName
	return r
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
