package frame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/fpang/framekit/internal/metrics"
)

// Loader fetches and decodes the frame image stored at path.
// Implementations live in the assetsource package.
type Loader interface {
	Load(ctx context.Context, path string) (*Asset, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (*Asset, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string) (*Asset, error) {
	return f(ctx, path)
}

// Outcome tags how a frame asset request was satisfied.
type Outcome string

const (
	// OutcomeLoaded: the requested asset was served.
	OutcomeLoaded Outcome = "loaded"
	// OutcomeFallback: the requested asset failed and the default frame was served.
	OutcomeFallback Outcome = "fallback"
	// OutcomeFailed: neither the requested asset nor the default frame loaded.
	OutcomeFailed Outcome = "failed"
)

// LoadResult is the two-stage resolution of one frame asset request.
type LoadResult struct {
	Outcome       Outcome
	RequestedPath string
	Path          string // path of the asset actually served (or last attempted)
	Asset         *Asset
	Cached        bool // served from the cache without a load
	// Cause is the primary failure for OutcomeFallback and the final
	// failure for OutcomeFailed.
	Cause error
}

// Degraded reports whether the default frame stood in for the requested one.
func (r LoadResult) Degraded() bool {
	return r.Outcome == OutcomeFallback
}

// Err returns the hard failure of the request, or nil if an asset was served.
func (r LoadResult) Err() error {
	if r.Outcome == OutcomeFailed {
		return r.Cause
	}
	return nil
}

// Manager resolves frame configs to loaded assets. It owns an AssetCache and
// collapses concurrent loads of the same uncached path into one loader call.
type Manager struct {
	resolver  Resolver
	loader    Loader
	cache     *AssetCache
	group     singleflight.Group
	namespace string
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolver sets the base directory and fallback asset used for paths.
func WithResolver(r Resolver) Option {
	return func(m *Manager) { m.resolver = r }
}

// WithCache shares an existing cache instead of creating a private one.
func WithCache(c *AssetCache) Option {
	return func(m *Manager) { m.cache = c }
}

// WithMetrics emits one EMF record per request under namespace.
func WithMetrics(namespace string) Option {
	return func(m *Manager) { m.namespace = namespace }
}

// NewManager creates a Manager that loads assets through loader.
func NewManager(loader Loader, opts ...Option) *Manager {
	m := &Manager{
		resolver: NewResolver(DefaultBaseDir),
		loader:   loader,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = NewAssetCache()
	}
	return m
}

// Resolver returns the path resolver used by the manager.
func (m *Manager) Resolver() Resolver {
	return m.resolver
}

// Cache returns the manager's asset cache.
func (m *Manager) Cache() *AssetCache {
	return m.cache
}

// ClearCache drops every cached asset.
func (m *Manager) ClearCache() {
	m.cache.Clear()
}

// Preload returns the frame asset for cfg.
//
// A cached asset is returned without calling the loader. On a miss the asset
// is loaded and cached. If that fails the default frame is served instead
// (OutcomeFallback, with the primary failure in Cause). Only when the default
// frame fails as well does Preload return an error, which matches
// ErrAssetUnavailable.
//
// Cancelling ctx makes Preload return ctx.Err() early, but a load that has
// already started runs to completion and still populates the cache.
func (m *Manager) Preload(ctx context.Context, cfg AssetConfig) (LoadResult, error) {
	start := time.Now()
	res, err := m.resolve(ctx, m.resolver.Path(cfg))
	m.record(res, time.Since(start))
	return res, err
}

// PreloadAsync starts Preload and returns a channel that receives exactly one
// result. A cached asset yields an already-filled channel. The load is
// detached from ctx cancellation.
func (m *Manager) PreloadAsync(ctx context.Context, cfg AssetConfig) <-chan LoadResult {
	ch := make(chan LoadResult, 1)

	path := m.resolver.Path(cfg)
	if asset, ok := m.cache.Get(path); ok {
		ch <- LoadResult{Outcome: OutcomeLoaded, RequestedPath: path, Path: path, Asset: asset, Cached: true}
		close(ch)
		return ch
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(ch)
		res, _ := m.Preload(detached, cfg)
		ch <- res
	}()
	return ch
}

func (m *Manager) resolve(ctx context.Context, requested string) (LoadResult, error) {
	if asset, ok := m.cache.Get(requested); ok {
		log.Debug().Str("path", requested).Msg("Frame asset cache hit")
		return LoadResult{Outcome: OutcomeLoaded, RequestedPath: requested, Path: requested, Asset: asset, Cached: true}, nil
	}

	asset, err := m.load(ctx, requested)
	if err == nil {
		return LoadResult{Outcome: OutcomeLoaded, RequestedPath: requested, Path: requested, Asset: asset}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return LoadResult{Outcome: OutcomeFailed, RequestedPath: requested, Path: requested, Cause: ctxErr}, ctxErr
	}

	primaryErr := &AssetError{Stage: StagePrimary, Path: requested, Err: err}
	fallback := m.resolver.FallbackPath()

	log.Warn().
		Err(err).
		Str("path", requested).
		Str("fallback", fallback).
		Msg("Frame asset failed to load, using default frame")

	if asset, ok := m.cache.Get(fallback); ok {
		return LoadResult{
			Outcome:       OutcomeFallback,
			RequestedPath: requested,
			Path:          fallback,
			Asset:         asset,
			Cached:        true,
			Cause:         primaryErr,
		}, nil
	}

	// The default frame itself was requested and already failed; loading it
	// again would be the same attempt.
	if fallback != requested {
		asset, err = m.load(ctx, fallback)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return LoadResult{Outcome: OutcomeFailed, RequestedPath: requested, Path: fallback, Cause: ctxErr}, ctxErr
		}
		fallbackErr := &AssetError{Stage: StageFallback, Path: fallback, Err: err}
		log.Error().
			Err(err).
			Str("path", requested).
			Str("fallback", fallback).
			Msg("Default frame asset failed to load")
		return LoadResult{Outcome: OutcomeFailed, RequestedPath: requested, Path: fallback, Cause: fallbackErr}, fallbackErr
	}

	return LoadResult{
		Outcome:       OutcomeFallback,
		RequestedPath: requested,
		Path:          fallback,
		Asset:         asset,
		Cause:         primaryErr,
	}, nil
}

// load runs the loader for path at most once per concurrent burst and caches
// the result. The shared load is detached from the callers' contexts.
func (m *Manager) load(ctx context.Context, path string) (*Asset, error) {
	detached := context.WithoutCancel(ctx)
	ch := m.group.DoChan(path, func() (interface{}, error) {
		// A burst that just finished may have filled the cache after the
		// caller's lookup.
		if asset, ok := m.cache.Get(path); ok {
			return asset, nil
		}
		start := time.Now()
		asset, err := m.loader.Load(detached, path)
		if err != nil {
			return nil, err
		}
		if asset == nil || asset.Image == nil {
			return nil, fmt.Errorf("loader returned no image for %s", path)
		}
		if asset.Path == "" {
			asset.Path = path
		}
		m.cache.Put(path, asset)

		log.Debug().
			Str("path", path).
			Str("format", asset.Format).
			Dur("duration", time.Since(start)).
			Msg("Frame asset loaded")
		return asset, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		asset, ok := res.Val.(*Asset)
		if !ok {
			return nil, errors.New("unexpected loader result type")
		}
		return asset, nil
	}
}

func (m *Manager) record(res LoadResult, elapsed time.Duration) {
	if m.namespace == "" {
		return
	}
	metrics.New(m.namespace).
		Dimension("Outcome", string(res.Outcome)).
		Metric("FrameAssetLoadMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("FrameAssetLoad").
		Property("path", res.RequestedPath).
		Property("cached", res.Cached).
		Flush()
}
