package frame

import (
	"strings"
)

const (
	// DefaultBaseDir is where frame templates live in the storefront's asset tree.
	DefaultBaseDir = "/assets/frames"

	// DefaultFallbackName is the frame shown when a requested template is missing.
	DefaultFallbackName = "black_wood_thin_4x3.png"

	assetExt = ".png"
)

// AssetConfig fully determines which physical frame asset to render.
type AssetConfig struct {
	ColorName    string    `json:"colorName"`
	MaterialType string    `json:"materialType"`
	Thickness    string    `json:"thickness"`
	AspectRatio  RatioName `json:"aspectRatio"`
}

// FileName returns the asset file name for cfg, e.g.
// "dark_walnut_wood_thin_4x3.png".
func (cfg AssetConfig) FileName() string {
	return pathToken(cfg.ColorName) + "_" +
		pathToken(cfg.MaterialType) + "_" +
		pathToken(cfg.Thickness) + "_" +
		string(cfg.AspectRatio) + assetExt
}

// ConstructFramePath joins base and the asset file name for cfg.
// It never touches the filesystem.
func ConstructFramePath(base string, cfg AssetConfig) string {
	return joinBase(base, cfg.FileName())
}

// Resolver resolves asset configs to paths under a fixed base directory.
type Resolver struct {
	BaseDir      string
	FallbackName string
}

// NewResolver returns a Resolver for baseDir using the default fallback asset.
// An empty baseDir selects DefaultBaseDir.
func NewResolver(baseDir string) Resolver {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return Resolver{BaseDir: baseDir, FallbackName: DefaultFallbackName}
}

// Path returns the asset path for cfg.
func (r Resolver) Path(cfg AssetConfig) string {
	return ConstructFramePath(r.BaseDir, cfg)
}

// FallbackPath returns the path of the default frame asset.
func (r Resolver) FallbackPath() string {
	name := r.FallbackName
	if name == "" {
		name = DefaultFallbackName
	}
	return joinBase(r.BaseDir, name)
}

// Relative strips the base directory from an asset path, yielding the key
// that asset sources look up (a bare file name for resolver-built paths).
func (r Resolver) Relative(path string) string {
	base := strings.TrimRight(r.BaseDir, "/")
	if base != "" && strings.HasPrefix(path, base+"/") {
		return strings.TrimPrefix(path, base+"/")
	}
	return strings.TrimLeft(path, "/")
}

func joinBase(base, name string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return name
	}
	return base + "/" + name
}

// pathToken lowercases s and collapses whitespace runs into single underscores.
func pathToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
