package imgmeta

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func encode(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown encoder %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"png", encode(t, "png", 1, 1), FormatPNG},
		{"jpeg", encode(t, "jpeg", 1, 1), FormatJPEG},
		{"gif", encode(t, "gif", 1, 1), FormatGIF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), FormatWebP},
		{"bmp", []byte{'B', 'M', 0, 0, 0, 0}, FormatBMP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.data)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	if _, err := Detect([]byte("not an image at all")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Detect = %v, want ErrUnknownFormat", err)
	}
	if _, err := Detect(nil); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("Detect(nil) = %v, want ErrUnknownFormat", err)
	}
}

func TestSniffDimensions(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantFormat Format
		wantW      int
		wantH      int
	}{
		{"png", encode(t, "png", 640, 480), FormatPNG, 640, 480},
		{"jpeg", encode(t, "jpeg", 320, 200), FormatJPEG, 320, 200},
		{"gif", encode(t, "gif", 77, 33), FormatGIF, 77, 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Sniff(tt.data)
			if err != nil {
				t.Fatalf("Sniff: %v", err)
			}
			if info.Format != tt.wantFormat {
				t.Errorf("Format = %v, want %v", info.Format, tt.wantFormat)
			}
			if info.Width != tt.wantW || info.Height != tt.wantH {
				t.Errorf("dims = %dx%d, want %dx%d", info.Width, info.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSniffBMP(t *testing.T) {
	// 26-byte synthetic header: "BM", 16 filler bytes, then width 800 and
	// height 600 as little-endian int32 at offsets 18 and 22.
	mk := func(w, h int32) []byte {
		data := make([]byte, 26)
		data[0], data[1] = 'B', 'M'
		for i, v := range []int32{w, h} {
			off := 18 + i*4
			u := uint32(v)
			data[off] = byte(u)
			data[off+1] = byte(u >> 8)
			data[off+2] = byte(u >> 16)
			data[off+3] = byte(u >> 24)
		}
		return data
	}

	info, err := Sniff(mk(800, 600))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if info.Width != 800 || info.Height != 600 {
		t.Errorf("dims = %dx%d, want 800x600", info.Width, info.Height)
	}

	// Top-down bitmaps store a negative height.
	info, err = Sniff(mk(800, -600))
	if err != nil {
		t.Fatalf("Sniff top-down: %v", err)
	}
	if info.Height != 600 {
		t.Errorf("top-down height = %d, want 600", info.Height)
	}
}

func TestSniffWebPReportsFormatOnly(t *testing.T) {
	info, err := Sniff([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if info.Format != FormatWebP {
		t.Errorf("Format = %v, want webp", info.Format)
	}
	if info.Width != 0 || info.Height != 0 {
		t.Errorf("dims = %dx%d, want 0x0 (deferred to decode)", info.Width, info.Height)
	}
}

func TestSniffTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"png header only", encode(t, "png", 4, 4)[:12]},
		{"gif header only", []byte("GIF89a\x10")},
		{"bmp header only", []byte{'B', 'M', 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Sniff(tt.data); !errors.Is(err, ErrTruncated) {
				t.Errorf("Sniff = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestSniffJPEGWithoutFrameMarker(t *testing.T) {
	// A JPEG prefix that never reaches a start-of-frame segment.
	info, err := Sniff([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x04, 0x00, 0x00})
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if info.Width != 0 || info.Height != 0 {
		t.Errorf("dims = %dx%d, want 0x0 when no SOF is present", info.Width, info.Height)
	}
}
