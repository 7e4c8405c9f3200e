package frame

import (
	"math"
	"testing"
)

func TestDetectOrientation(t *testing.T) {
	tests := []struct {
		name         string
		dims         PhotoDimensions
		wantType     Orientation
		wantRotation bool
		wantRatio    float64
	}{
		{"square", PhotoDimensions{Width: 1200, Height: 1200}, OrientationSquare, false, 1},
		{"landscape 3:2", PhotoDimensions{Width: 6000, Height: 4000}, OrientationLandscape, false, 1.5},
		{"portrait 2:3", PhotoDimensions{Width: 4000, Height: 6000}, OrientationPortrait, true, 1.5},
		{"portrait 9:16", PhotoDimensions{Width: 1080, Height: 1920}, OrientationPortrait, true, 1920.0 / 1080.0},
		{"one pixel", PhotoDimensions{Width: 1, Height: 1}, OrientationSquare, false, 1},
		{"panorama", PhotoDimensions{Width: 9000, Height: 3000}, OrientationLandscape, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectOrientation(tt.dims)
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.NeedsRotation != tt.wantRotation {
				t.Errorf("NeedsRotation = %v, want %v", got.NeedsRotation, tt.wantRotation)
			}
			if math.Abs(got.AspectRatio-tt.wantRatio) > 1e-9 {
				t.Errorf("AspectRatio = %v, want %v", got.AspectRatio, tt.wantRatio)
			}
		})
	}
}

func TestDetectOrientation_RatioNeverBelowOne(t *testing.T) {
	for w := 1; w <= 40; w++ {
		for h := 1; h <= 40; h++ {
			got := DetectOrientation(PhotoDimensions{Width: w, Height: h})
			if got.AspectRatio < 1 {
				t.Fatalf("DetectOrientation(%dx%d).AspectRatio = %v, want >= 1", w, h, got.AspectRatio)
			}
		}
	}
}

func TestDetectOrientation_SwappedSidesAreReciprocal(t *testing.T) {
	sizes := [][2]int{{4000, 3000}, {1920, 1080}, {500, 499}, {7, 5}, {3, 1}}

	for _, s := range sizes {
		a := DetectOrientation(PhotoDimensions{Width: s[0], Height: s[1]})
		b := DetectOrientation(PhotoDimensions{Width: s[1], Height: s[0]})

		if a.Type != OrientationLandscape || b.Type != OrientationPortrait {
			t.Errorf("%dx%d: got types %q/%q, want landscape/portrait", s[0], s[1], a.Type, b.Type)
		}
		if a.NeedsRotation == b.NeedsRotation {
			t.Errorf("%dx%d: NeedsRotation should differ, both %v", s[0], s[1], a.NeedsRotation)
		}
		if math.Abs(a.AspectRatio-b.AspectRatio) > 1e-12 {
			t.Errorf("%dx%d: normalized ratios differ: %v vs %v", s[0], s[1], a.AspectRatio, b.AspectRatio)
		}
	}
}

func TestPhotoDimensionsValidate(t *testing.T) {
	tests := []struct {
		dims    PhotoDimensions
		wantErr bool
	}{
		{PhotoDimensions{Width: 10, Height: 10}, false},
		{PhotoDimensions{Width: 0, Height: 10}, true},
		{PhotoDimensions{Width: 10, Height: 0}, true},
		{PhotoDimensions{Width: -5, Height: 10}, true},
	}
	for _, tt := range tests {
		err := tt.dims.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.dims, err, tt.wantErr)
		}
	}
}
