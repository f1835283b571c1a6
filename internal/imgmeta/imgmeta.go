// Package imgmeta sniffs image format and dimensions from header bytes,
// so inputs can be rejected against processing limits before a full decode
// allocates anything.
package imgmeta

import (
	"encoding/binary"
	"errors"
)

// Format identifies a recognized image container format.
type Format string

// Recognized formats.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
)

// ErrUnknownFormat is returned when the header bytes match no known format.
var ErrUnknownFormat = errors.New("imgmeta: unknown image format")

// ErrTruncated is returned when the buffer is too short to carry the
// dimension fields of its detected format.
var ErrTruncated = errors.New("imgmeta: truncated image header")

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Info holds the sniffed format and pixel dimensions of an image.
type Info struct {
	Format Format
	Width  int
	Height int
}

// Detect identifies the format of the image in data by its magic bytes.
func Detect(data []byte) (Format, error) {
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return FormatJPEG, nil
	}
	if len(data) >= 8 && hasPrefix(data, pngSignature) {
		return FormatPNG, nil
	}
	if len(data) >= 6 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F' &&
		data[3] == '8' && (data[4] == '7' || data[4] == '9') && data[5] == 'a' {
		return FormatGIF, nil
	}
	if len(data) >= 12 && data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return FormatWebP, nil
	}
	if len(data) >= 2 && data[0] == 'B' && data[1] == 'M' {
		return FormatBMP, nil
	}
	return "", ErrUnknownFormat
}

// Sniff detects the format and, where the format stores dimensions near the
// header, extracts pixel dimensions without decoding pixel data. JPEG
// dimensions require a frame-marker scan; WebP dimensions depend on the
// chunk variant; for those Sniff reports the format with zero dimensions
// and the caller falls back to bounds from the real decode.
func Sniff(data []byte) (Info, error) {
	format, err := Detect(data)
	if err != nil {
		return Info{}, err
	}
	info := Info{Format: format}

	switch format {
	case FormatPNG:
		// IHDR is always the first chunk: 8-byte signature, 4-byte length,
		// 4-byte "IHDR", then width and height as big-endian uint32.
		if len(data) < 24 {
			return Info{}, ErrTruncated
		}
		info.Width = int(binary.BigEndian.Uint32(data[16:20]))
		info.Height = int(binary.BigEndian.Uint32(data[20:24]))
	case FormatGIF:
		if len(data) < 10 {
			return Info{}, ErrTruncated
		}
		info.Width = int(binary.LittleEndian.Uint16(data[6:8]))
		info.Height = int(binary.LittleEndian.Uint16(data[8:10]))
	case FormatBMP:
		if len(data) < 26 {
			return Info{}, ErrTruncated
		}
		info.Width = int(int32(binary.LittleEndian.Uint32(data[18:22])))
		h := int(int32(binary.LittleEndian.Uint32(data[22:26])))
		if h < 0 { // top-down bitmaps store negative height
			h = -h
		}
		info.Height = h
	case FormatJPEG:
		w, h := jpegDimensions(data)
		info.Width, info.Height = w, h
	}
	return info, nil
}

// jpegDimensions walks the marker stream looking for a start-of-frame
// segment. Returns (0, 0) if none is found before the data runs out.
func jpegDimensions(data []byte) (int, int) {
	i := 2
	for i+9 < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		// SOF0..SOF15, excluding DHT (C4), JPG (C8) and DAC (CC).
		if marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC {
			h := int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			w := int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return w, h
		}
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD9) {
			i += 2
			continue
		}
		if i+4 > len(data) {
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 {
			break
		}
		i += 2 + segLen
	}
	return 0, 0
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if buf[i] != b {
			return false
		}
	}
	return true
}
