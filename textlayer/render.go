package textlayer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"textbehind/surface"
)

// Depth-effect constants. Each render makes exactly three passes; every
// pass fades by 20%, widens its glow, and shifts down-right by half a
// pixel, which reads as soft depth once the subject cutout covers part of
// the text.
const (
	depthPasses      = 3
	passOpacityStep  = 0.2
	passOffsetStep   = 0.5
	glowRadiusFactor = 3.0

	underlineYFactor     = 0.2 // baseline offset as a fraction of font size
	underlineStrokeRatio = 20  // stroke width = fontSize / ratio, min 1px
)

// Render draws the styled text onto dst, which defines the canvas
// dimensions. The text is anchored centered on the style's percentage
// position. The style must have been validated; Render re-validates and
// refuses to draw anything on a bad style. All compositing state is local
// to the call, so nothing leaks into later draws on the same surface.
func Render(style TextStyle, dst *surface.Surface) error {
	if err := style.Validate(); err != nil {
		return err
	}

	fill, _ := parseHexColor(style.Color) // validated above
	face, err := faceFor(variantFor(style.Bold, style.Italic), style.FontSize)
	if err != nil {
		return err
	}
	textWidth, err := MeasureWidth(style)
	if err != nil {
		return err
	}

	w, h := dst.Width(), dst.Height()
	baseX, baseY := style.PixelPosition(w, h)
	left := baseX - textWidth/2

	target := dst.RGBA()
	for i := 0; i < depthPasses; i++ {
		passOpacity := (style.OpacityPct / 100) * (1 - float64(i)*passOpacityStep)
		if passOpacity <= 0 {
			continue
		}
		glowRadius := (style.Blur + float64(i)) * glowRadiusFactor
		offset := float64(i) * passOffsetStep

		scratch := image.NewNRGBA(image.Rect(0, 0, w, h))
		drawer := font.Drawer{
			Dst:  scratch,
			Src:  image.NewUniform(fill),
			Face: face,
			Dot: fixed.Point26_6{
				X: floatToFixed(left + offset),
				Y: floatToFixed(baseY + offset),
			},
		}
		drawer.DrawString(style.Content)

		// The underline belongs to the base pass only.
		if i == 0 && style.Underline {
			drawUnderline(scratch, style, fill, left, baseY, textWidth)
		}

		if glowRadius > 0 {
			// The glow is the same pass blurred underneath its sharp core.
			// imaging's gaussian sigma is roughly half the visual radius.
			glow := imaging.Blur(scratch, glowRadius/2)
			drawWithOpacity(target, glow, passOpacity)
		}
		drawWithOpacity(target, scratch, passOpacity)
	}
	return nil
}

// drawUnderline fills a horizontal bar centered on the text's measured
// width, below the baseline.
func drawUnderline(dst *image.NRGBA, style TextStyle, fill color.NRGBA, left, baseY, textWidth float64) {
	y := baseY + style.FontSize*underlineYFactor
	stroke := math.Max(1, style.FontSize/underlineStrokeRatio)
	rect := image.Rect(
		int(math.Round(left)),
		int(math.Round(y-stroke/2)),
		int(math.Round(left+textWidth)),
		int(math.Round(y+stroke/2)),
	)
	if rect.Dy() < 1 {
		rect.Max.Y = rect.Min.Y + 1
	}
	draw.Draw(dst, rect, image.NewUniform(fill), image.Point{}, draw.Over)
}

// drawWithOpacity composites src over dst scaled by a global opacity.
func drawWithOpacity(dst *image.RGBA, src image.Image, opacity float64) {
	if opacity >= 1 {
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	draw.DrawMask(dst, dst.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
