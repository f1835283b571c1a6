// Package export serializes a finished composite to an encoded image blob.
// Exports always use the native-resolution composite: the interactive
// zoom/pan state affects only the on-screen preview, so output quality is
// independent of how the user happened to leave the view.
package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"textbehind/compose"
)

// Format is an output encoding.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// filenamePrefix and preview length for generated download names.
const (
	filenamePrefix   = "text-behind-image"
	previewMaxLength = 20
)

// Export encodes the composite at the requested quality. Quality is in
// (0, 1] and applies to lossy formats only; PNG ignores it. The raster is
// always the full untransformed composite.
func Export(res *compose.Result, format Format, quality float64) ([]byte, error) {
	if res == nil || res.Surface == nil {
		return nil, fmt.Errorf("export: no composite to export")
	}
	if quality <= 0 || quality > 1 {
		return nil, fmt.Errorf("export: quality %v outside (0, 1]", quality)
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG:
		err = imaging.Encode(&buf, res.Surface.RGBA(), imaging.PNG)
	case FormatJPEG:
		err = imaging.Encode(&buf, res.Surface.RGBA(), imaging.JPEG,
			imaging.JPEGQuality(int(math.Round(quality*100))))
	default:
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("export: encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Filename generates the download name for an export:
// text-behind-image_{preview}_{timestamp}.{ext}, where preview is the first
// 20 characters of the text content with every non-alphanumeric character
// replaced by an underscore, and the timestamp is YYYYMMDD_HHMMSS.
func Filename(content string, t time.Time, format Format) string {
	preview := content
	if len(preview) > previewMaxLength {
		preview = preview[:previewMaxLength]
	}
	var b strings.Builder
	for _, r := range preview {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return fmt.Sprintf("%s_%s_%s.%s", filenamePrefix, b.String(), t.Format("20060102_150405"), ext(format))
}

func ext(format Format) string {
	if format == FormatJPEG {
		return "jpg"
	}
	return string(format)
}
