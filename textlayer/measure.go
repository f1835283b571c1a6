package textlayer

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// measurer computes text advance widths through HarfBuzz shaping, so
// underline extents reflect kerning and ligatures rather than naive
// per-rune advances. Parsed fonts (thread-safe) are cached; shaper
// instances are pooled because they are not.
type measurer struct {
	shaperPool sync.Pool

	mu    sync.Mutex
	fonts map[fontVariant]*font.Font
}

var defaultMeasurer = &measurer{
	shaperPool: sync.Pool{
		New: func() any { return &shaping.HarfbuzzShaper{} },
	},
	fonts: make(map[fontVariant]*font.Font),
}

// MeasureWidth returns the advance width of content in pixels when rendered
// with the style's font variant and size.
func MeasureWidth(style TextStyle) (float64, error) {
	return defaultMeasurer.width(style.Content, variantFor(style.Bold, style.Italic), style.FontSize)
}

func (m *measurer) width(text string, v fontVariant, size float64) (float64, error) {
	if text == "" {
		return 0, nil
	}
	ft, err := m.fontFor(v)
	if err != nil {
		return 0, err
	}

	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(ft),
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	shaper := m.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	m.shaperPool.Put(shaper)

	return float64(output.Advance) / 64.0, nil
}

// detectScript returns the script of the first non-space rune, defaulting
// to Latin for empty or all-space text.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func (m *measurer) fontFor(v fontVariant) (*font.Font, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.fonts[v]; ok {
		return f, nil
	}
	face, err := font.ParseTTF(bytes.NewReader(v.ttf()))
	if err != nil {
		return nil, err
	}
	m.fonts[v] = face.Font
	return face.Font, nil
}
