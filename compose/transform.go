package compose

// ViewTransform is the interactive zoom/pan state of the preview. It only
// affects on-screen compositing; exports always use the untransformed
// composite.
type ViewTransform struct {
	ZoomPct float64 // >= 100 is zoomed in; values below 1 are treated as 100
	PanX    float64
	PanY    float64
}

// DefaultView is the neutral transform.
func DefaultView() ViewTransform {
	return ViewTransform{ZoomPct: 100}
}

// Matrix builds the affine transform for a canvas of the given dimensions:
// translate to center, scale by zoom, translate back, then apply the pan
// offset. Zoom is applied about the canvas center first so panning offsets
// the already-zoomed view.
func (v ViewTransform) Matrix(width, height float64) Matrix {
	zoom := v.ZoomPct / 100
	if zoom <= 0 {
		zoom = 1
	}
	cx, cy := width/2, height/2

	m := Translate(cx, cy)
	m = m.Multiply(Scale(zoom, zoom))
	m = m.Multiply(Translate(-cx, -cy))
	m = m.Multiply(Translate(v.PanX, v.PanY))
	return m
}

// IsNeutral reports whether the transform leaves the canvas untouched.
func (v ViewTransform) IsNeutral() bool {
	return (v.ZoomPct == 100 || v.ZoomPct == 0) && v.PanX == 0 && v.PanY == 0
}
