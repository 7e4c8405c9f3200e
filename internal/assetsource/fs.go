package assetsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/fpang/framekit/internal/assets"
	"github.com/fpang/framekit/internal/frame"
)

// FSSource loads frame templates from an fs.FS.
type FSSource struct {
	FS      fs.FS
	BaseDir string
}

// NewEmbeddedSource serves the templates compiled into the binary, which
// always include the default frame.
func NewEmbeddedSource(baseDir string) *FSSource {
	return &FSSource{FS: assets.Frames(), BaseDir: baseDir}
}

// Load implements frame.Loader.
func (s *FSSource) Load(ctx context.Context, path string) (*frame.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := assetKey(s.BaseDir, path)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(s.FS, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read embedded frame asset: %w", err)
	}
	return decodeBytes(path, data)
}
