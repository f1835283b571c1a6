// Package surface provides reusable off-screen raster buffers and the
// bounded pool that recycles them between composite operations.
package surface

import (
	"image"
	"image/color"
	"image/draw"
)

// Surface is a fixed-size RGBA pixel buffer used as an off-screen drawing
// target. Surfaces are not safe for concurrent use; a surface belongs to
// exactly one live layer at a time.
type Surface struct {
	width  int
	height int
	data   []uint8 // RGBA, 4 bytes per pixel, row-major
}

// New creates a surface with the given dimensions, cleared to transparent.
func New(width, height int) *Surface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Surface{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// FromImage copies an image into a new surface of the same dimensions.
func FromImage(img image.Image) *Surface {
	bounds := img.Bounds()
	s := New(bounds.Dx(), bounds.Dy())
	draw.Draw(s.RGBA(), s.RGBA().Bounds(), img, bounds.Min, draw.Src)
	return s
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Data returns the raw RGBA pixel data.
func (s *Surface) Data() []uint8 { return s.data }

// SizeBytes returns the buffer size in bytes.
func (s *Surface) SizeBytes() int { return len(s.data) }

// Clear resets every pixel to fully transparent black.
func (s *Surface) Clear() {
	clear(s.data)
}

// SetPixel sets the pixel at (x, y). Out-of-bounds writes are ignored.
func (s *Surface) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	i := (y*s.width + x) * 4
	s.data[i+0] = c.R
	s.data[i+1] = c.G
	s.data[i+2] = c.B
	s.data[i+3] = c.A
}

// PixelAt returns the pixel at (x, y), or transparent black out of bounds.
func (s *Surface) PixelAt(x, y int) color.RGBA {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return color.RGBA{}
	}
	i := (y*s.width + x) * 4
	return color.RGBA{R: s.data[i+0], G: s.data[i+1], B: s.data[i+2], A: s.data[i+3]}
}

// RGBA exposes the buffer as an *image.RGBA sharing the same pixels, so the
// standard draw package and third-party image libraries can render into it.
func (s *Surface) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    s.data,
		Stride: s.width * 4,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
}

// Snapshot returns a copy of the surface contents. Modifying the returned
// image does not affect the surface.
func (s *Surface) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.data)
	return img
}

// Clone returns an independent copy of the surface.
func (s *Surface) Clone() *Surface {
	c := New(s.width, s.height)
	copy(c.data, s.data)
	return c
}
