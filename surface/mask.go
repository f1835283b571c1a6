package surface

import "image"

// Mask is an 8-bit alpha coverage buffer with the same dimensions as the
// surface it cuts out. 255 is fully opaque (inside the subject), 0 fully
// transparent.
type Mask struct {
	width  int
	height int
	data   []uint8
}

// NewMask creates a fully transparent mask.
func NewMask(width, height int) *Mask {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Mask{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// MaskFromAlpha extracts the alpha channel of img into a new mask.
func MaskFromAlpha(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			m.data[i] = uint8(a >> 8)
			i++
		}
	}
	return m
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// Data returns the underlying coverage values in row-major order.
func (m *Mask) Data() []uint8 { return m.data }

// At returns the coverage at (x, y). Out-of-bounds reads return 0.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set stores coverage a at (x, y). Out-of-bounds writes are ignored.
func (m *Mask) Set(x, y int, a uint8) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.data[y*m.width+x] = a
}

// Fill sets every pixel to coverage a.
func (m *Mask) Fill(a uint8) {
	for i := range m.data {
		m.data[i] = a
	}
}

// Alpha returns an image.Alpha view sharing the mask's pixel data. Writes
// through the view are visible in the mask and vice versa.
func (m *Mask) Alpha() *image.Alpha {
	return &image.Alpha{
		Pix:    m.data,
		Stride: m.width,
		Rect:   image.Rect(0, 0, m.width, m.height),
	}
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := NewMask(m.width, m.height)
	copy(c.data, m.data)
	return c
}
