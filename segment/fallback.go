package segment

import (
	"image"
	"math"

	"textbehind/surface"
)

// Fallback mask shape. The subject is assumed to occupy the central region
// of the frame: an elliptical falloff centered on the canvas is modulated
// by how far each pixel's luma sits above the frame mean. The exact shape
// matters less than two properties: the mask is deterministic, and its
// dimensions always equal the source image's.
const (
	fallbackRadiusX = 0.42 // semi-axis as a fraction of width
	fallbackRadiusY = 0.46 // semi-axis as a fraction of height

	// fallbackFeather controls how soft the ellipse edge is: alpha fades
	// from full at distance 1-feather to zero at distance 1.
	fallbackFeather = 0.35

	// lumaWeight blends the brightness term with the geometric term.
	lumaWeight = 0.4
)

// FallbackMask deterministically synthesizes a subject mask for img. Two
// calls with the same image produce identical masks.
func FallbackMask(img image.Image) *surface.Mask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := surface.NewMask(w, h)
	if w == 0 || h == 0 {
		return mask
	}

	luma := make([]float64, w*h)
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Rec. 601 luma over 16-bit channels, normalized to [0, 1].
			l := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
			luma[y*w+x] = l
			sum += l
		}
	}
	mean := sum / float64(w*h)

	cx := float64(w-1) / 2
	cy := float64(h-1) / 2
	rx := fallbackRadiusX * float64(w)
	ry := fallbackRadiusY * float64(h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			dist := math.Sqrt(dx*dx + dy*dy)

			var geom float64
			switch {
			case dist <= 1-fallbackFeather:
				geom = 1
			case dist >= 1:
				geom = 0
			default:
				geom = (1 - dist) / fallbackFeather
			}
			if geom == 0 {
				continue
			}

			// Pixels brighter than the frame mean are more likely to be a
			// lit subject; darker ones are damped but never zeroed, so the
			// geometric prior still dominates.
			bright := 0.5 + (luma[y*w+x]-mean)
			if bright < 0 {
				bright = 0
			}
			if bright > 1 {
				bright = 1
			}
			alpha := geom * ((1 - lumaWeight) + lumaWeight*bright)
			mask.Set(x, y, uint8(math.Round(alpha*255)))
		}
	}
	return mask
}

// applyMask multiplies an image's alpha by a mask, producing the cutout
// layer that the compositor draws as the foreground subject.
func applyMask(img image.Image, mask *surface.Mask) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			ma := uint32(mask.At(x, y))
			i := out.PixOffset(x, y)
			out.Pix[i+0] = uint8(r >> 8)
			out.Pix[i+1] = uint8(g >> 8)
			out.Pix[i+2] = uint8(b >> 8)
			out.Pix[i+3] = uint8((a >> 8) * ma / 255)
		}
	}
	return out
}
