// Package s3util provides the S3 helpers shared by the frame asset source and
// the publish command.
package s3util

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// ObjectGetter is the subset of *s3.Client used for reads.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ReadObject downloads an S3 object into memory. Objects larger than limit
// bytes are rejected; limit <= 0 means no limit.
func ReadObject(ctx context.Context, client ObjectGetter, bucket, key string, limit int64) ([]byte, error) {
	log.Debug().Str("bucket", bucket).Str("key", key).Msg("Downloading from S3")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket, Key: &key,
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject: %w", err)
	}
	defer result.Body.Close()

	body := io.Reader(result.Body)
	if limit > 0 {
		body = io.LimitReader(result.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("object s3://%s/%s exceeds %d bytes", bucket, key, limit)
	}
	return data, nil
}

// IsNotFound reports whether err means the object or key does not exist.
func IsNotFound(err error) bool {
	var noKey *s3types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *s3types.NotFound
	return errors.As(err, &notFound)
}
