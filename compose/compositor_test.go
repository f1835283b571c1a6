package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"textbehind/device"
	"textbehind/surface"
)

func testPool() *surface.Pool {
	return surface.NewPool(device.DeviceProfile{Tier: device.TierRegular, MaxSurfaceDim: 4096})
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func TestCompositeRequiresBackground(t *testing.T) {
	c := New(testPool())
	_, err := c.Composite(Layers{}, DefaultView(), 400, 300)
	if !errors.Is(err, ErrNoBackground) {
		t.Fatalf("Composite without background = %v, want ErrNoBackground", err)
	}
}

func TestCompositeCanvasIsAspectFitted(t *testing.T) {
	c := New(testPool())
	res, err := c.Composite(Layers{Background: gradientImage(800, 600)}, DefaultView(), 400, 300)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	defer res.Release()
	if res.Width != 400 || res.Height != 300 {
		t.Errorf("result dims = %dx%d, want 400x300", res.Width, res.Height)
	}
}

func TestCompositeDeterministic(t *testing.T) {
	bg := gradientImage(320, 240)
	text := surface.New(320, 240)
	text.SetPixel(100, 100, color.RGBA{R: 255, A: 255})
	fg := gradientImage(320, 240)
	view := ViewTransform{ZoomPct: 150, PanX: 12, PanY: -7}

	c := New(testPool())
	layers := Layers{Background: bg, Text: text, Foreground: fg}

	first, err := c.Composite(layers, view, 320, 240)
	if err != nil {
		t.Fatalf("first Composite: %v", err)
	}
	snapshot := append([]uint8(nil), first.Surface.Data()...)
	first.Release()

	second, err := c.Composite(layers, view, 320, 240)
	if err != nil {
		t.Fatalf("second Composite: %v", err)
	}
	defer second.Release()

	if !bytes.Equal(snapshot, second.Surface.Data()) {
		t.Error("identical inputs produced different rasters")
	}
}

func TestCompositeZOrder(t *testing.T) {
	// Opaque single-color layers: whatever is on top wins everywhere.
	bg := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := 0; i < len(bg.Pix); i += 4 {
		bg.Pix[i+0] = 255 // red background
		bg.Pix[i+3] = 255
	}
	text := surface.New(40, 40)
	for y := 0; y < 40; y++ {
		text.SetPixel(10, y, color.RGBA{G: 255, A: 255}) // green text stripe
	}
	fg := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		i := fg.PixOffset(10, y)
		fg.Pix[i+2] = 255 // blue subject stripe over the text stripe
		fg.Pix[i+3] = 255
	}

	c := New(testPool())
	res, err := c.Composite(Layers{Background: bg, Text: text, Foreground: fg}, DefaultView(), 40, 40)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	defer res.Release()

	// Where all three overlap, the foreground must win.
	if got := res.Surface.PixelAt(10, 20); got.B != 255 || got.G == 255 {
		t.Errorf("pixel under subject = %+v, want foreground blue on top", got)
	}
	// Away from the stripes, the background shows through.
	if got := res.Surface.PixelAt(30, 20); got.R != 255 {
		t.Errorf("pixel outside stripes = %+v, want background red", got)
	}
}

func TestCompositeTextHiddenBehindOpaqueSubject(t *testing.T) {
	bg := gradientImage(40, 40)
	text := surface.New(40, 40)
	text.SetPixel(20, 20, color.RGBA{G: 255, A: 255})

	// Fully opaque foreground hides the text entirely.
	fg := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := 3; i < len(fg.Pix); i += 4 {
		fg.Pix[i] = 255
	}

	c := New(testPool())
	withText, err := c.Composite(Layers{Background: bg, Text: text, Foreground: fg}, DefaultView(), 40, 40)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	snapshot := append([]uint8(nil), withText.Surface.Data()...)
	withText.Release()

	without, err := c.Composite(Layers{Background: bg, Foreground: fg}, DefaultView(), 40, 40)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	defer without.Release()

	if !bytes.Equal(snapshot, without.Surface.Data()) {
		t.Error("text visible through a fully opaque subject layer")
	}
}

func TestCompositeReleaseReturnsSurfaceToPool(t *testing.T) {
	pool := testPool()
	c := New(pool)
	res, err := c.Composite(Layers{Background: gradientImage(100, 100)}, DefaultView(), 100, 100)
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	held := res.Surface
	res.Release()
	if res.Surface != nil {
		t.Error("Release must clear the surface reference")
	}
	if got := pool.Acquire(100, 100); got != held {
		t.Error("released result surface was not pooled for reuse")
	}
}
