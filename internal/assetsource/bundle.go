package assetsource

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/frame"
)

// bundleExts lists the template file types packed into a bundle.
var bundleExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// BundleSource serves frame templates from an in-memory asset bundle: a tar
// archive compressed with Zstandard, as produced by WriteBundle.
type BundleSource struct {
	BaseDir string
	files   map[string][]byte
}

// OpenBundle reads the bundle file at bundlePath.
func OpenBundle(bundlePath, baseDir string) (*BundleSource, error) {
	f, err := os.Open(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	return ReadBundle(f, baseDir)
}

// ReadBundle reads a whole bundle from r.
func ReadBundle(r io.Reader, baseDir string) (*BundleSource, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	files := make(map[string][]byte)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size > maxAssetSize {
			return nil, fmt.Errorf("bundle entry %s exceeds %d bytes", hdr.Name, maxAssetSize)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read bundle entry %s: %w", hdr.Name, err)
		}
		files[path.Clean(hdr.Name)] = data
	}

	log.Info().Int("assets", len(files)).Msg("Frame asset bundle loaded")
	return &BundleSource{BaseDir: baseDir, files: files}, nil
}

// Names returns the bundled file names in sorted order.
func (s *BundleSource) Names() []string {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load implements frame.Loader.
func (s *BundleSource) Load(ctx context.Context, assetPath string) (*frame.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := assetKey(s.BaseDir, assetPath)
	if err != nil {
		return nil, err
	}
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s not in bundle", ErrNotFound, key)
	}
	return decodeBytes(assetPath, data)
}

// WriteBundle packs the template images found under dir into a bundle
// written to w and returns the number of files packed. Entry names are
// slash-separated paths relative to dir.
func WriteBundle(w io.Writer, dir string) (int, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return 0, fmt.Errorf("zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	count := 0
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !bundleExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr := &tar.Header{
			Name:    filepath.ToSlash(rel),
			Mode:    0o644,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		zw.Close()
		return count, fmt.Errorf("pack %s: %w", dir, err)
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return count, fmt.Errorf("close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("close zstd: %w", err)
	}
	return count, nil
}
