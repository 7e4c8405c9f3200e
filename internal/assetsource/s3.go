package assetsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/frame"
	"github.com/fpang/framekit/internal/s3util"
)

// S3Source loads frame templates from an S3 bucket. The object key is
// Prefix followed by the asset file name.
type S3Source struct {
	Client  s3util.ObjectGetter
	Bucket  string
	Prefix  string // e.g. "frames/"
	BaseDir string
}

// NewS3Source returns an S3Source reading s3://bucket/prefix.
func NewS3Source(client s3util.ObjectGetter, bucket, prefix, baseDir string) *S3Source {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Source{Client: client, Bucket: bucket, Prefix: prefix, BaseDir: baseDir}
}

// Load implements frame.Loader.
func (s *S3Source) Load(ctx context.Context, path string) (*frame.Asset, error) {
	key, err := assetKey(s.BaseDir, path)
	if err != nil {
		return nil, err
	}
	objectKey := s.Prefix + key

	data, err := s3util.ReadObject(ctx, s.Client, s.Bucket, objectKey, maxAssetSize)
	if err != nil {
		if s3util.IsNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.Bucket, objectKey)
		}
		return nil, err
	}

	log.Debug().
		Str("bucket", s.Bucket).
		Str("key", objectKey).
		Int("size", len(data)).
		Msg("Frame asset downloaded from S3")

	return decodeBytes(path, data)
}
