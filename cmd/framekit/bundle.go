package main

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/framekit/internal/assetsource"
	"github.com/fpang/framekit/internal/lambdaboot"
	"github.com/fpang/framekit/internal/s3util"
)

var (
	bundleOutputFlag string
	bucketFlag       string
	prefixFlag       string
	dryRunFlag       bool
)

var bundleCmd = &cobra.Command{
	Use:   "bundle <dir>",
	Short: "Pack a directory of frame templates into a .tar.zst bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := os.Create(bundleOutputFlag)
		if err != nil {
			return fmt.Errorf("create bundle: %w", err)
		}
		n, err := assetsource.WriteBundle(out, args[0])
		if err != nil {
			out.Close()
			os.Remove(bundleOutputFlag)
			return err
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close bundle: %w", err)
		}
		log.Info().Int("templates", n).Str("output", bundleOutputFlag).Msg("Bundle written")
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <dir|bundle>",
	Short: "Upload frame templates or a bundle to S3",
	Long: `Upload every template image under a directory to s3://<bucket>/<prefix>,
keeping relative paths, or upload a single bundle file.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	bundleCmd.Flags().StringVarP(&bundleOutputFlag, "output", "o", "frames.tar.zst", "Bundle file to write")

	publishCmd.Flags().StringVar(&bucketFlag, "bucket", "", "Destination S3 bucket")
	publishCmd.Flags().StringVar(&prefixFlag, "prefix", "frames/", "Key prefix inside the bucket")
	publishCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "List the uploads without performing them")
	publishCmd.MarkFlagRequired("bucket")
}

// upload is one local file and its destination key.
type upload struct {
	local       string
	key         string
	contentType string
}

// planUploads lists the files to publish from src, a template directory or a
// single file.
func planUploads(src, prefix string) ([]upload, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []upload{{local: src, key: path.Join(prefix, filepath.Base(src)), contentType: contentTypeFor(src)}}, nil
	}

	var uploads []upload
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTemplateImage(p) {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		uploads = append(uploads, upload{
			local:       p,
			key:         path.Join(prefix, filepath.ToSlash(rel)),
			contentType: contentTypeFor(p),
		})
		return nil
	})
	return uploads, err
}

func isTemplateImage(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	}
	return false
}

func contentTypeFor(p string) string {
	if strings.HasSuffix(p, ".tar.zst") {
		return "application/zstd"
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(p))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func runPublish(cmd *cobra.Command, args []string) error {
	uploads, err := planUploads(args[0], prefixFlag)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return fmt.Errorf("no frame templates found in %s", args[0])
	}

	if dryRunFlag {
		for _, u := range uploads {
			fmt.Printf("%s -> s3://%s/%s (%s)\n", u.local, bucketFlag, u.key, u.contentType)
		}
		return nil
	}

	ctx := cmd.Context()
	clients, err := lambdaboot.InitAWS(ctx)
	if err != nil {
		return err
	}
	for _, u := range uploads {
		if err := s3util.UploadFile(ctx, clients.S3, bucketFlag, u.key, u.local, u.contentType); err != nil {
			return err
		}
	}
	log.Info().Int("files", len(uploads)).Str("bucket", bucketFlag).Str("prefix", prefixFlag).Msg("Frame templates published")
	return nil
}
