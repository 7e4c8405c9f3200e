package assetsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/fpang/framekit/internal/frame"
)

// ChainSource tries each source in order and returns the first success.
// A typical chain puts the remote store first and the embedded templates
// last, so the default frame is available even when the store is not.
type ChainSource struct {
	sources []frame.Loader
}

// Chain returns a ChainSource over sources.
func Chain(sources ...frame.Loader) *ChainSource {
	return &ChainSource{sources: sources}
}

// Load implements frame.Loader.
func (c *ChainSource) Load(ctx context.Context, path string) (*frame.Asset, error) {
	if len(c.sources) == 0 {
		return nil, fmt.Errorf("%w: no asset sources configured", ErrNotFound)
	}
	var errs []error
	for _, src := range c.sources {
		asset, err := src.Load(ctx, path)
		if err == nil {
			return asset, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
