package assetsource

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/config"
	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/s3util"
)

// FromConfig builds the loader selected by cfg.Source. s3Client is only used
// by the s3 source and may be nil otherwise. With cfg.EmbeddedFallback the
// selected source is chained in front of the embedded templates.
func FromConfig(cfg config.Assets, s3Client s3util.ObjectGetter) (frame.Loader, error) {
	var primary frame.Loader
	switch cfg.Source {
	case config.SourceDir:
		primary = NewDirSource(cfg.Dir, cfg.BaseDir)
	case config.SourceS3:
		if s3Client == nil {
			return nil, fmt.Errorf("s3 asset source needs an S3 client")
		}
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 asset source needs a bucket")
		}
		primary = NewS3Source(s3Client, cfg.Bucket, cfg.Prefix, cfg.BaseDir)
	case config.SourceHTTP:
		primary = NewHTTPSource(cfg.BaseURL, cfg.BaseDir)
	case config.SourceBundle:
		b, err := OpenBundle(cfg.BundlePath, cfg.BaseDir)
		if err != nil {
			return nil, err
		}
		primary = b
	case config.SourceEmbed:
		return NewEmbeddedSource(cfg.BaseDir), nil
	default:
		return nil, fmt.Errorf("unknown asset source %q", cfg.Source)
	}

	log.Debug().
		Str("source", cfg.Source).
		Bool("embeddedFallback", cfg.EmbeddedFallback).
		Msg("Frame asset loader configured")

	if cfg.EmbeddedFallback {
		return Chain(primary, NewEmbeddedSource(cfg.BaseDir)), nil
	}
	return primary, nil
}
