package s3util

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// projectTag is the URL-encoded S3 object tagging string for cost allocation.
const projectTag = "Project=framekit"

// ObjectPutter is the subset of *s3.Client used for writes.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ProjectTagging returns a pointer to the URL-encoded S3 object tagging string.
func ProjectTagging() *string {
	t := projectTag
	return &t
}

// UploadFile uploads a local file to s3://bucket/key with the given content type.
func UploadFile(ctx context.Context, client ObjectPutter, bucket, key, localPath, contentType string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("localPath", localPath).
		Msg("Uploading to S3")

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        f,
		ContentType: &contentType,
		Tagging:     ProjectTagging(),
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s: %w", key, err)
	}
	return nil
}
