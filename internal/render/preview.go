// Package render composes a framed preview: the photo scaled to fill the
// frame's inner window with the frame template drawn on top.
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/fpang/framekit/internal/photo"
)

// DefaultBorderRatio is the share of the frame's shorter side covered by
// the moulding on each edge.
const DefaultBorderRatio = 0.08

// DefaultMaxDimension bounds the longer side of a preview.
const DefaultMaxDimension = 1600

// Options controls Preview.
type Options struct {
	BorderRatio   float64 // 0 means DefaultBorderRatio
	MaxDimension  int     // 0 means DefaultMaxDimension, negative means unbounded
	NeedsRotation bool    // turn the photo 90 degrees clockwise before placing it
}

func (o Options) borderRatio() float64 {
	if o.BorderRatio <= 0 || o.BorderRatio >= 0.5 {
		return DefaultBorderRatio
	}
	return o.BorderRatio
}

func (o Options) maxDimension() int {
	if o.MaxDimension == 0 {
		return DefaultMaxDimension
	}
	return o.MaxDimension
}

// InnerWindow returns the area of a frame of the given bounds that the photo
// shows through.
func InnerWindow(bounds image.Rectangle, borderRatio float64) image.Rectangle {
	short := min(bounds.Dx(), bounds.Dy())
	inset := int(math.Round(float64(short) * borderRatio))
	return image.Rect(bounds.Min.X+inset, bounds.Min.Y+inset, bounds.Max.X-inset, bounds.Max.Y-inset)
}

// Preview draws img inside frameImg.
func Preview(img, frameImg image.Image, opt Options) *image.RGBA {
	if opt.NeedsRotation {
		img = photo.Rotate90(img)
	}

	fb := frameImg.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, fb.Dx(), fb.Dy()))
	window := InnerWindow(canvas.Bounds(), opt.borderRatio())

	src := coverCrop(img.Bounds(), window.Dx(), window.Dy())
	draw.CatmullRom.Scale(canvas, window, img, src, draw.Src, nil)
	draw.Draw(canvas, canvas.Bounds(), frameImg, fb.Min, draw.Over)

	maxDim := opt.maxDimension()
	if maxDim <= 0 {
		return canvas
	}
	w, h := calculateDimensions(fb.Dx(), fb.Dy(), maxDim)
	if w == fb.Dx() && h == fb.Dy() {
		return canvas
	}

	log.Debug().
		Int("fromWidth", fb.Dx()).
		Int("fromHeight", fb.Dy()).
		Int("toWidth", w).
		Int("toHeight", h).
		Msg("Scaling preview down")

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return out
}

// coverCrop returns the centred part of src with the aspect ratio of a w x h
// window, so scaling it into the window fills it without distortion.
func coverCrop(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if w <= 0 || h <= 0 || sw <= 0 || sh <= 0 {
		return src
	}
	if sw*h > sh*w {
		// Source is wider than the window: trim the sides.
		cw := sh * w / h
		x0 := src.Min.X + (sw-cw)/2
		return image.Rect(x0, src.Min.Y, x0+cw, src.Max.Y)
	}
	ch := sw * h / w
	y0 := src.Min.Y + (sh-ch)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+ch)
}

// calculateDimensions scales width x height down so the longer side is at
// most maxDimension, keeping the aspect ratio.
func calculateDimensions(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		newWidth := maxDimension
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return newWidth, newHeight
	}

	newHeight := maxDimension
	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return newWidth, newHeight
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}
