package frame

import "testing"

func TestConstructFramePath(t *testing.T) {
	tests := []struct {
		name string
		base string
		cfg  AssetConfig
		want string
	}{
		{
			name: "multi-word color",
			base: DefaultBaseDir,
			cfg:  AssetConfig{ColorName: "Dark Walnut", MaterialType: "Wood", Thickness: "Thin", AspectRatio: Ratio4x3},
			want: "/assets/frames/dark_walnut_wood_thin_4x3.png",
		},
		{
			name: "whitespace runs collapse",
			base: "/frames",
			cfg:  AssetConfig{ColorName: "  Matte \t Black ", MaterialType: "Brushed   Metal", Thickness: "Extra Thick", AspectRatio: Ratio16x9},
			want: "/frames/matte_black_brushed_metal_extra_thick_16x9.png",
		},
		{
			name: "trailing slash on base",
			base: "/frames/",
			cfg:  AssetConfig{ColorName: "white", MaterialType: "wood", Thickness: "thin", AspectRatio: Ratio1x1},
			want: "/frames/white_wood_thin_1x1.png",
		},
		{
			name: "relative base",
			base: "static/frames",
			cfg:  AssetConfig{ColorName: "Gold", MaterialType: "Metal", Thickness: "Medium", AspectRatio: Ratio3x1},
			want: "static/frames/gold_metal_medium_3x1.png",
		},
		{
			name: "empty base",
			base: "",
			cfg:  AssetConfig{ColorName: "Oak", MaterialType: "Wood", Thickness: "Thick", AspectRatio: Ratio5x4},
			want: "oak_wood_thick_5x4.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConstructFramePath(tt.base, tt.cfg)
			if got != tt.want {
				t.Errorf("ConstructFramePath() = %q, want %q", got, tt.want)
			}
			if again := ConstructFramePath(tt.base, tt.cfg); again != got {
				t.Errorf("second call returned %q, first %q", again, got)
			}
		})
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver("")
	if r.BaseDir != DefaultBaseDir {
		t.Errorf("BaseDir = %q, want %q", r.BaseDir, DefaultBaseDir)
	}
	if got := r.FallbackPath(); got != "/assets/frames/black_wood_thin_4x3.png" {
		t.Errorf("FallbackPath() = %q", got)
	}

	cfg := AssetConfig{ColorName: "Dark Walnut", MaterialType: "Wood", Thickness: "Thin", AspectRatio: Ratio4x3}
	path := r.Path(cfg)
	if got := r.Relative(path); got != "dark_walnut_wood_thin_4x3.png" {
		t.Errorf("Relative(%q) = %q", path, got)
	}
	if got := r.Relative("/elsewhere/x.png"); got != "elsewhere/x.png" {
		t.Errorf("Relative outside base = %q", got)
	}
}

func TestResolver_CustomFallback(t *testing.T) {
	r := Resolver{BaseDir: "/frames", FallbackName: "white_wood_thin_1x1.png"}
	if got := r.FallbackPath(); got != "/frames/white_wood_thin_1x1.png" {
		t.Errorf("FallbackPath() = %q", got)
	}
}
