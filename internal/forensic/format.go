package forensic

import (
	"bytes"
	"encoding/binary"
	"image"
)

// detectFormat sniffs the container format from its magic bytes. Mirrors
// the byte-signature checks the metadata and quantization scanners below
// rely on to pick a marker/chunk layout.
func detectFormat(data []byte) string {
	if len(data) < 8 {
		return "unknown"
	}

	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg"
	}

	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "png"
	}

	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 {
		if data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
			return "webp"
		}
	}

	if data[0] == 'B' && data[1] == 'M' {
		return "bmp"
	}

	if (data[0] == 'I' && data[1] == 'I' && data[2] == 0x2A && data[3] == 0x00) ||
		(data[0] == 'M' && data[1] == 'M' && data[2] == 0x00 && data[3] == 0x2A) {
		return "tiff"
	}

	return "unknown"
}

// jpegDimensions scans for the SOF0/SOF2 marker and returns width, height.
func jpegDimensions(data []byte) (width, height int, ok bool) {
	for i := 0; i < len(data)-10; i++ {
		if data[i] == 0xFF && (data[i+1] == 0xC0 || data[i+1] == 0xC2) {
			if i+9 >= len(data) {
				return 0, 0, false
			}
			height = int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			width = int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return width, height, true
		}
	}
	return 0, 0, false
}

// pngDimensions reads the IHDR chunk, which always starts at byte 8 in a
// well-formed PNG.
func pngDimensions(data []byte) (width, height int, ok bool) {
	if len(data) < 24 {
		return 0, 0, false
	}
	width = int(binary.BigEndian.Uint32(data[16:20]))
	height = int(binary.BigEndian.Uint32(data[20:24]))
	return width, height, true
}

// dimensions returns the pixel width/height for whichever format was
// sniffed, or false if it couldn't be determined. JPEG and PNG are read
// directly off the marker/chunk layout; anything else falls back to the
// registered stdlib/x-image decoders (see decoders.go).
func dimensions(data []byte, format string) (width, height int, ok bool) {
	switch format {
	case "jpeg":
		return jpegDimensions(data)
	case "png":
		return pngDimensions(data)
	default:
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return 0, 0, false
		}
		return cfg.Width, cfg.Height, true
	}
}
