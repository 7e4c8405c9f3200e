package photo

import (
	"image"

	"golang.org/x/image/draw"
)

// ApplyOrientation returns img transformed according to the EXIF
// orientation tag o (1-8). Unknown values and 1 return img unchanged.
func ApplyOrientation(img image.Image, o int) image.Image {
	switch o {
	case 2:
		return transform(img, false, func(x, y, w, h int) (int, int) { return w - 1 - x, y })
	case 3:
		return transform(img, false, func(x, y, w, h int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4:
		return transform(img, false, func(x, y, w, h int) (int, int) { return x, h - 1 - y })
	case 5:
		return transform(img, true, func(x, y, w, h int) (int, int) { return y, x })
	case 6:
		return transform(img, true, func(x, y, w, h int) (int, int) { return h - 1 - y, x })
	case 7:
		return transform(img, true, func(x, y, w, h int) (int, int) { return h - 1 - y, w - 1 - x })
	case 8:
		return transform(img, true, func(x, y, w, h int) (int, int) { return y, w - 1 - x })
	default:
		return img
	}
}

// Rotate90 turns img a quarter turn clockwise.
func Rotate90(img image.Image) image.Image {
	return ApplyOrientation(img, 6)
}

// transform maps every source pixel (x, y) of a w x h image to a destination
// pixel. swap means the destination is h x w.
func transform(img image.Image, swap bool, to func(x, y, w, h int) (int, int)) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if swap {
		dw, dh = h, w
	}

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := to(x, y, w, h)
			si := src.PixOffset(x, y)
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}
