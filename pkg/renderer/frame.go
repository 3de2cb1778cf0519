package renderer

import (
	"image"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Frame holds averaged linear pixel colors in row-major order, top row first
type Frame struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the color of pixel (x, y)
func (f *Frame) At(x, y int) core.Vec3 {
	return f.Pixels[y*f.Width+x]
}

// Set stores the color of pixel (x, y)
func (f *Frame) Set(x, y int, c core.Vec3) {
	f.Pixels[y*f.Width+x] = c
}

// Row returns the pixels of scanline y
func (f *Frame) Row(y int) []core.Vec3 {
	return f.Pixels[y*f.Width : (y+1)*f.Width]
}

// MeanLuminance returns the mean linear luminance across the frame
func (f *Frame) MeanLuminance() float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range f.Pixels {
		total += p.Luminance()
	}
	return total / float64(len(f.Pixels))
}

// Image converts the frame to an 8-bit image using the given color profile
func (f *Frame) Image(profile ColorProfile) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x, c := range f.Row(y) {
			img.SetRGBA(x, y, profile.ToRGBA(c))
		}
	}
	return img
}
