package textlayer

import (
	"errors"
	"testing"
)

func validStyle() TextStyle {
	return TextStyle{
		Content:    "behind",
		FontSize:   40,
		FontFamily: "Arial",
		Color:      "#FFFFFF",
		OpacityPct: 100,
		Pos:        Position{X: 50, Y: 50},
	}
}

func TestValidateAcceptsValidStyle(t *testing.T) {
	if err := validStyle().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*TextStyle)
		wantField string
	}{
		{"empty content", func(s *TextStyle) { s.Content = "" }, "content"},
		{"whitespace content", func(s *TextStyle) { s.Content = "   " }, "content"},
		{"zero font size", func(s *TextStyle) { s.FontSize = 0 }, "fontSize"},
		{"negative font size", func(s *TextStyle) { s.FontSize = -12 }, "fontSize"},
		{"negative opacity", func(s *TextStyle) { s.OpacityPct = -1 }, "opacity"},
		{"opacity above 100", func(s *TextStyle) { s.OpacityPct = 101 }, "opacity"},
		{"x below range", func(s *TextStyle) { s.Pos.X = -10 }, "position.x"},
		{"y above range", func(s *TextStyle) { s.Pos.Y = 110 }, "position.y"},
		{"negative blur", func(s *TextStyle) { s.Blur = -1 }, "blur"},
		{"bad color", func(s *TextStyle) { s.Color = "red" }, "color"},
		{"short hex", func(s *TextStyle) { s.Color = "#FFF" }, "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStyle()
			tt.mutate(&s)
			err := s.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestFontDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		style TextStyle
		want  string
	}{
		{
			name:  "italic bold",
			style: TextStyle{Italic: true, Bold: true, FontSize: 20, FontFamily: "Arial"},
			want:  "italic bold 20px Arial",
		},
		{
			name:  "plain",
			style: TextStyle{FontSize: 16, FontFamily: "Georgia"},
			want:  "16px Georgia",
		},
		{
			name:  "bold only",
			style: TextStyle{Bold: true, FontSize: 32, FontFamily: "Inter"},
			want:  "bold 32px Inter",
		},
		{
			name:  "italic only",
			style: TextStyle{Italic: true, FontSize: 14, FontFamily: "Courier"},
			want:  "italic 14px Courier",
		},
		{
			name:  "fractional size",
			style: TextStyle{FontSize: 18.5, FontFamily: "Arial"},
			want:  "18.5px Arial",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.FontDescriptor(); got != tt.want {
				t.Errorf("FontDescriptor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPixelPosition(t *testing.T) {
	s := TextStyle{Pos: Position{X: 25, Y: 75}}
	x, y := s.PixelPosition(400, 300)
	if x != 100 || y != 225 {
		t.Errorf("PixelPosition(400, 300) = (%v, %v), want (100, 225)", x, y)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#1A2B3C")
	if err != nil {
		t.Fatalf("parseHexColor: %v", err)
	}
	if c.R != 0x1A || c.G != 0x2B || c.B != 0x3C || c.A != 255 {
		t.Errorf("parseHexColor(#1A2B3C) = %+v", c)
	}
}
