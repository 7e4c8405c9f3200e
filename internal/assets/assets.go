// Package assets provides embedded static assets for the application.
package assets

import (
	"embed"
	"io/fs"
)

// DefaultFrameName is the file name of the default frame shipped in the binary.
// It matches frame.DefaultFallbackName so the embedded copy can stand in when
// the asset store is unreachable.
const DefaultFrameName = "black_wood_thin_4x3.png"

//go:embed frames/*.png
var frameFiles embed.FS

// Frames returns the embedded frame templates, rooted so that entries are
// bare file names ("black_wood_thin_4x3.png").
func Frames() fs.FS {
	sub, err := fs.Sub(frameFiles, "frames")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
