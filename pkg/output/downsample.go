package output

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample resizes img to width x height with CatmullRom filtering.
// Rendering a supersampled frame and downsampling it to the requested size
// gives an anti-aliased result. Sizes are clamped to at least 1, and an image
// already at the target size is returned unchanged.
func Downsample(img image.Image, width, height int) image.Image {
	width, height = max(1, width), max(1, height)
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}

	// Rendered frames are opaque, so no premultiply pass is needed
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
