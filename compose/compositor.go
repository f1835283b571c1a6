package compose

import (
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"textbehind/surface"
)

// ErrRenderTargetUnavailable means no drawing surface could be obtained for
// the composite. It is fatal for the current call; there is no retry path.
var ErrRenderTargetUnavailable = errors.New("compose: render target unavailable")

// ErrNoBackground means Composite was called before an image was loaded.
var ErrNoBackground = errors.New("compose: background image required")

// Layers are the three inputs of one composite, drawn in fixed z-order:
// background first, text above it, the subject cutout on top. Text and
// Foreground may be nil while their producers are still working.
type Layers struct {
	// Background is the full source photo.
	Background image.Image

	// Text is the rendered text layer at canvas dimensions.
	Text *surface.Surface

	// Foreground is the subject cutout, same dimensions as Background.
	Foreground image.Image
}

// Result is a finished composite: the final surface and its pixel
// dimensions. It is immutable once produced. Release returns the surface
// to the pool; the caller must not touch the result afterwards.
type Result struct {
	Surface *surface.Surface
	Width   int
	Height  int

	pool *surface.Pool
}

// Release returns the result's surface to the compositor's pool.
func (r *Result) Release() {
	if r == nil || r.Surface == nil {
		return
	}
	r.pool.Release(r.Surface)
	r.Surface = nil
}

// Compositor merges layers into a final raster. It is a pure function of
// its inputs: identical layers and transform produce byte-identical output.
// Working surfaces are borrowed from the pool per call and released before
// the call returns; only the result's surface stays out until Release.
type Compositor struct {
	pool *surface.Pool
}

// New creates a compositor drawing through the given pool.
func New(pool *surface.Pool) *Compositor {
	return &Compositor{pool: pool}
}

// Composite renders the layer sandwich into a container of the given
// dimensions. The background is aspect-fitted into the container; the view
// transform then zooms and pans all layers together about the canvas
// center.
func (c *Compositor) Composite(layers Layers, view ViewTransform, containerW, containerH int) (*Result, error) {
	if layers.Background == nil {
		return nil, ErrNoBackground
	}
	bounds := layers.Background.Bounds()
	fit := AspectFit(float64(bounds.Dx()), float64(bounds.Dy()), float64(containerW), float64(containerH))
	canvasW := int(math.Round(fit.Width))
	canvasH := int(math.Round(fit.Height))
	if canvasW < 1 || canvasH < 1 {
		return nil, ErrRenderTargetUnavailable
	}

	out := c.pool.Acquire(canvasW, canvasH)
	if out == nil {
		return nil, ErrRenderTargetUnavailable
	}
	// The pool may have capped the canvas below the requested size.
	canvasW, canvasH = out.Width(), out.Height()

	matrix := view.Matrix(float64(canvasW), float64(canvasH))
	neutral := view.IsNeutral()

	// Background, scaled to fill the canvas exactly.
	background := imaging.Resize(layers.Background, canvasW, canvasH, imaging.Lanczos)
	c.drawLayer(out, background, matrix, neutral)

	// Text sits above the background and below the subject.
	if layers.Text != nil {
		c.drawLayer(out, layers.Text.RGBA(), matrix, neutral)
	}

	// Subject cutout on top completes the text-behind illusion.
	if layers.Foreground != nil {
		foreground := imaging.Resize(layers.Foreground, canvasW, canvasH, imaging.Lanczos)
		c.drawLayer(out, foreground, matrix, neutral)
	}

	return &Result{Surface: out, Width: canvasW, Height: canvasH, pool: c.pool}, nil
}

// drawLayer draws img over dst, applying the view transform. The transform
// is scale+translate only, so it reduces to resizing the layer to its
// transformed extent and drawing at the transformed origin.
func (c *Compositor) drawLayer(dst *surface.Surface, img image.Image, m Matrix, neutral bool) {
	target := dst.RGBA()
	if neutral {
		draw.Draw(target, target.Bounds(), img, img.Bounds().Min, draw.Over)
		return
	}

	b := img.Bounds()
	x0, y0 := m.Apply(0, 0)
	x1, y1 := m.Apply(float64(b.Dx()), float64(b.Dy()))

	w := int(math.Round(x1 - x0))
	h := int(math.Round(y1 - y0))
	if w < 1 || h < 1 {
		return
	}
	scaled := img
	if w != b.Dx() || h != b.Dy() {
		scaled = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	origin := image.Pt(int(math.Round(x0)), int(math.Round(y0)))
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
	draw.Draw(target, rect, scaled, scaled.Bounds().Min, draw.Over)
}
