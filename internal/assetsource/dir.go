package assetsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/framekit/internal/frame"
)

// DirSource loads frame templates from a directory on the local filesystem.
type DirSource struct {
	Root    string // directory holding the template files
	BaseDir string // asset base directory stripped from requested paths
}

// NewDirSource returns a DirSource for root serving paths under baseDir.
func NewDirSource(root, baseDir string) *DirSource {
	return &DirSource{Root: root, BaseDir: baseDir}
}

// Load implements frame.Loader.
func (s *DirSource) Load(ctx context.Context, path string) (*frame.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := assetKey(s.BaseDir, path)
	if err != nil {
		return nil, err
	}

	filePath := filepath.Join(s.Root, filepath.FromSlash(key))
	log.Debug().Str("path", path).Str("file", filePath).Msg("Loading frame asset from directory")

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return nil, fmt.Errorf("open frame asset: %w", err)
	}
	defer f.Close()

	return DecodeAsset(path, f)
}
