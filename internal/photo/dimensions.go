// Package photo inspects uploaded photos before they are matched to a frame.
//
// The stored pixel size comes from image.DecodeConfig. Cameras often store
// portrait shots as landscape pixels plus an EXIF orientation tag, so the tag
// is read with evanoberholster/imagemeta and orientations 5-8 (the ones that
// turn the image by 90 degrees) swap width and height. The result is the size
// the viewer actually sees, which is what frame matching needs.
package photo

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/fpang/framekit/internal/frame"
)

// DefaultMaxPixels bounds the stored pixel count Decode will allocate for.
const DefaultMaxPixels = 50_000_000

// ErrTooLarge is returned by Decode when the image header declares more
// pixels than allowed.
var ErrTooLarge = errors.New("photo exceeds pixel limit")

// Info describes an uploaded photo.
type Info struct {
	Format          string                `json:"format"`
	StoredWidth     int                   `json:"storedWidth"`
	StoredHeight    int                   `json:"storedHeight"`
	ExifOrientation int                   `json:"exifOrientation,omitempty"`
	Dimensions      frame.PhotoDimensions `json:"dimensions"`
	CameraMake      string                `json:"cameraMake,omitempty"`
	CameraModel     string                `json:"cameraModel,omitempty"`
}

// Transposed reports whether the EXIF orientation turns the stored pixels by
// 90 degrees.
func (i Info) Transposed() bool {
	return transposes(i.ExifOrientation)
}

// transposes reports whether EXIF orientation o is one of the rotated ones
// (5: transpose, 6: rotate 90 CW, 7: transverse, 8: rotate 90 CCW).
func transposes(o int) bool {
	return o >= 5 && o <= 8
}

// Inspect reads the format, stored size and EXIF orientation of the image in r.
// EXIF problems are not fatal: a photo without readable metadata is treated
// as upright.
func Inspect(r io.ReadSeeker) (Info, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Info{}, fmt.Errorf("read image header: %w", err)
	}
	info := Info{
		Format:       format,
		StoredWidth:  cfg.Width,
		StoredHeight: cfg.Height,
		Dimensions:   frame.PhotoDimensions{Width: cfg.Width, Height: cfg.Height},
	}

	if format == "jpeg" {
		readExif(r, &info)
	}
	if info.Transposed() {
		info.Dimensions = frame.PhotoDimensions{Width: cfg.Height, Height: cfg.Width}
	}

	if err := info.Dimensions.Validate(); err != nil {
		return Info{}, err
	}
	return info, nil
}

func readExif(r io.ReadSeeker, info *Info) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		log.Debug().Err(err).Msg("Cannot rewind photo for EXIF read")
		return
	}
	exifData, err := imagemeta.Decode(r)
	if err != nil {
		log.Debug().Err(err).Msg("No usable EXIF metadata, assuming upright photo")
		return
	}
	info.ExifOrientation = int(exifData.Orientation)
	info.CameraMake = exifData.Make
	info.CameraModel = exifData.Model
}

// ReadDimensions returns the displayed dimensions of the image in r.
func ReadDimensions(r io.ReadSeeker) (frame.PhotoDimensions, error) {
	info, err := Inspect(r)
	if err != nil {
		return frame.PhotoDimensions{}, err
	}
	return info.Dimensions, nil
}

// InspectFile is Inspect for a file on disk.
func InspectFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	info, err := Inspect(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().
		Str("path", path).
		Int("width", info.Dimensions.Width).
		Int("height", info.Dimensions.Height).
		Int("exifOrientation", info.ExifOrientation).
		Msg("Photo inspected")
	return info, nil
}

// ReadDimensionsFile is ReadDimensions for a file on disk.
func ReadDimensionsFile(path string) (frame.PhotoDimensions, error) {
	info, err := InspectFile(path)
	if err != nil {
		return frame.PhotoDimensions{}, err
	}
	return info.Dimensions, nil
}

// Pixels returns the stored pixel count.
func (i Info) Pixels() int64 {
	return int64(i.StoredWidth) * int64(i.StoredHeight)
}

// Decode decodes the full image in r and applies its EXIF orientation so the
// returned image is upright. Images over DefaultMaxPixels are rejected with
// ErrTooLarge.
func Decode(r io.ReadSeeker) (image.Image, Info, error) {
	return DecodeLimit(r, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel limit. The limit is checked
// against the header before any pixel memory is allocated. maxPixels <= 0
// means DefaultMaxPixels.
func DecodeLimit(r io.ReadSeeker, maxPixels int64) (image.Image, Info, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	info, err := Inspect(r)
	if err != nil {
		return nil, Info{}, err
	}
	if info.Pixels() > maxPixels {
		return nil, info, fmt.Errorf("%w: %dx%d is over %d pixels", ErrTooLarge, info.StoredWidth, info.StoredHeight, maxPixels)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, Info{}, fmt.Errorf("rewind photo: %w", err)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode photo: %w", err)
	}
	return ApplyOrientation(img, info.ExifOrientation), info, nil
}
