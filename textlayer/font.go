package textlayer

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// fontVariant selects one of the embedded Go font faces. The engine is
// headless, so bold and italic synthesize onto the matching embedded
// variant rather than resolving the requested family by name; the family
// travels in the descriptor for callers that render elsewhere.
type fontVariant int

const (
	variantRegular fontVariant = iota
	variantBold
	variantItalic
	variantBoldItalic
)

func variantFor(bold, italic bool) fontVariant {
	switch {
	case bold && italic:
		return variantBoldItalic
	case bold:
		return variantBold
	case italic:
		return variantItalic
	default:
		return variantRegular
	}
}

func (v fontVariant) ttf() []byte {
	switch v {
	case variantBold:
		return gobold.TTF
	case variantItalic:
		return goitalic.TTF
	case variantBoldItalic:
		return gobolditalic.TTF
	default:
		return goregular.TTF
	}
}

var (
	parsedMu    sync.Mutex
	parsedFonts = map[fontVariant]*sfnt.Font{}

	faceMu sync.Mutex
	faces  = map[faceKey]font.Face{}
)

type faceKey struct {
	variant fontVariant
	size    float64
}

// parsedFont returns the parsed sfnt for a variant, caching across calls.
func parsedFont(v fontVariant) (*sfnt.Font, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsedFonts[v]; ok {
		return f, nil
	}
	f, err := opentype.Parse(v.ttf())
	if err != nil {
		return nil, fmt.Errorf("textlayer: parse embedded font: %w", err)
	}
	parsedFonts[v] = f
	return f, nil
}

// faceFor returns a rasterizing face for the variant at the given pixel
// size. Faces are cached per (variant, size); font.Face is not safe for
// concurrent use, but the engine draws sequentially.
func faceFor(v fontVariant, size float64) (font.Face, error) {
	faceMu.Lock()
	defer faceMu.Unlock()
	key := faceKey{variant: v, size: size}
	if f, ok := faces[key]; ok {
		return f, nil
	}
	parsed, err := parsedFont(v)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // 1pt == 1px, so Size is in pixels
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("textlayer: build face: %w", err)
	}
	faces[key] = face
	return face, nil
}
