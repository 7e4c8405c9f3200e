// Package assetsource provides frame.Loader implementations for the places
// frame templates are kept:
//   - DirSource: a local directory (development, the web server)
//   - S3Source: an S3 bucket (Lambda deployment)
//   - HTTPSource: a CDN or static file host
//   - BundleSource: a .tar.zst bundle built with WriteBundle
//   - FSSource: any fs.FS, including the templates embedded in the binary
//
// Every source receives the resolved asset path, strips the configured base
// directory to get its lookup key, and decodes the bytes with DecodeAsset.
package assetsource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/fpang/framekit/internal/frame"
)

// ErrNotFound is returned when a source has no object for the requested path.
var ErrNotFound = errors.New("frame asset not found")

// maxAssetSize bounds how much of a single asset is read into memory.
const maxAssetSize = 32 << 20 // 32 MB

// DecodeAsset decodes a frame image read from r.
func DecodeAsset(path string, r io.Reader) (*frame.Asset, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("asset %s exceeds %d bytes", path, maxAssetSize)
	}
	return decodeBytes(path, data)
}

func decodeBytes(path string, data []byte) (*frame.Asset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &frame.Asset{Path: path, Format: format, Image: img}, nil
}

// assetKey maps a resolved asset path to the key a source looks up, relative
// to baseDir. Keys that would escape the source root are rejected.
func assetKey(baseDir, path string) (string, error) {
	key := frame.Resolver{BaseDir: baseDir}.Relative(path)
	if key == "" {
		return "", fmt.Errorf("empty asset key for %q", path)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("asset path %q escapes the source root", path)
		}
	}
	return key, nil
}
