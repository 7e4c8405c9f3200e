// Package frame maps customer photos to physical frame templates.
//
// The flow for one customization request is:
//  1. DetectOrientation normalizes the photo's width/height ratio to a
//     landscape-equivalent value (>= 1) and records whether the photo has to
//     be rotated to sit in a landscape template.
//  2. FindClosestAspectRatio picks the nearest entry of the static ratio catalog.
//  3. A Resolver turns color, material, thickness and ratio into the
//     deterministic asset path of the frame image.
//  4. A Manager loads that image through a Loader, memoizing it in an
//     AssetCache and degrading to the default frame when the asset is missing.
package frame

import "fmt"

// Orientation classifies a photo by the relation of its width to its height.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
)

// PhotoDimensions is the raw pixel size of an uploaded photo.
type PhotoDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate returns an error if either side is not positive.
// DetectOrientation assumes a valid value; callers check first.
func (d PhotoDimensions) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("invalid photo dimensions %dx%d: width and height must be positive", d.Width, d.Height)
	}
	return nil
}

// PhotoOrientation is derived from PhotoDimensions.
// AspectRatio is always >= 1: portrait photos store the reciprocal of their
// width/height ratio so they can be compared against the landscape catalog.
type PhotoOrientation struct {
	Type          Orientation `json:"type"`
	NeedsRotation bool        `json:"needsRotation"`
	AspectRatio   float64     `json:"aspectRatio"`
}

// DetectOrientation classifies dims and normalizes its aspect ratio.
func DetectOrientation(dims PhotoDimensions) PhotoOrientation {
	ratio := float64(dims.Width) / float64(dims.Height)

	switch {
	case ratio == 1:
		return PhotoOrientation{Type: OrientationSquare, AspectRatio: 1}
	case ratio > 1:
		return PhotoOrientation{Type: OrientationLandscape, AspectRatio: ratio}
	default:
		return PhotoOrientation{
			Type:          OrientationPortrait,
			NeedsRotation: true,
			AspectRatio:   1 / ratio,
		}
	}
}
