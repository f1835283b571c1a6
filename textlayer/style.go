// Package textlayer renders a styled text layer for compositing between a
// photo's background and its extracted subject.
package textlayer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Position is a percentage-based anchor inside the canvas, 0..100 on both
// axes. (50, 50) is the canvas center.
type Position struct {
	X float64
	Y float64
}

// TextStyle describes the text layer. Out-of-range values are rejected by
// Validate before any rendering work starts; values are never clamped silently.
type TextStyle struct {
	Content    string
	FontSize   float64 // pixels, > 0
	FontFamily string
	Color      string // #RRGGBB
	OpacityPct float64 // 0..100
	Pos        Position
	Blur       float64 // >= 0
	Bold       bool
	Italic     bool
	Underline  bool
}

// ValidationError reports a TextStyle field outside its declared range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("textlayer: invalid %s: %s", e.Field, e.Reason)
}

// Validate checks every field against its declared range and returns the
// first violation found.
func (s TextStyle) Validate() error {
	if strings.TrimSpace(s.Content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if s.FontSize <= 0 {
		return &ValidationError{Field: "fontSize", Reason: "must be positive"}
	}
	if s.OpacityPct < 0 || s.OpacityPct > 100 {
		return &ValidationError{Field: "opacity", Reason: "must be in 0..100"}
	}
	if s.Pos.X < 0 || s.Pos.X > 100 {
		return &ValidationError{Field: "position.x", Reason: "must be in 0..100"}
	}
	if s.Pos.Y < 0 || s.Pos.Y > 100 {
		return &ValidationError{Field: "position.y", Reason: "must be in 0..100"}
	}
	if s.Blur < 0 {
		return &ValidationError{Field: "blur", Reason: "must not be negative"}
	}
	if _, err := parseHexColor(s.Color); err != nil {
		return &ValidationError{Field: "color", Reason: err.Error()}
	}
	return nil
}

// FontDescriptor assembles the CSS-style font descriptor: optional "italic",
// then optional "bold", then "{size}px {family}". The order is fixed.
func (s TextStyle) FontDescriptor() string {
	var b strings.Builder
	if s.Italic {
		b.WriteString("italic ")
	}
	if s.Bold {
		b.WriteString("bold ")
	}
	b.WriteString(strconv.FormatFloat(s.FontSize, 'f', -1, 64))
	b.WriteString("px ")
	b.WriteString(s.FontFamily)
	return b.String()
}

// PixelPosition converts the percentage anchor to pixel coordinates on a
// canvas of the given dimensions.
func (s TextStyle) PixelPosition(width, height int) (x, y float64) {
	return s.Pos.X / 100 * float64(width), s.Pos.Y / 100 * float64(height)
}

// parseHexColor parses a #RRGGBB color string.
func parseHexColor(s string) (color.NRGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("want #RRGGBB, got %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("want #RRGGBB, got %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
