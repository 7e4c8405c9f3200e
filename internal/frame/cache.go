package frame

import (
	"image"
	"sort"
	"sync"
)

// Asset is a loaded frame image.
type Asset struct {
	Path   string
	Format string // decoder name reported by image.Decode, e.g. "png"
	Image  image.Image
}

// AssetCache memoizes loaded assets by resolved path. Entries stay until
// Clear; there is no eviction or expiry. It is safe for concurrent use, and
// concurrent Puts for the same path are last-writer-wins.
type AssetCache struct {
	mu     sync.RWMutex
	assets map[string]*Asset
}

// NewAssetCache returns an empty cache.
func NewAssetCache() *AssetCache {
	return &AssetCache{assets: make(map[string]*Asset)}
}

// Get returns the cached asset for path.
func (c *AssetCache) Get(path string) (*Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[path]
	return a, ok
}

// Put stores asset under path.
func (c *AssetCache) Put(path string, asset *Asset) {
	c.mu.Lock()
	c.assets[path] = asset
	c.mu.Unlock()
}

// Len returns the number of cached assets.
func (c *AssetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

// Keys returns the cached paths in sorted order.
func (c *AssetCache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.assets))
	for k := range c.assets {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Clear drops every entry.
func (c *AssetCache) Clear() {
	c.mu.Lock()
	c.assets = make(map[string]*Asset)
	c.mu.Unlock()
}
