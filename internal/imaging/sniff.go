package imaging

import "bytes"

// Canonical format names returned by DetectFormat.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWebP = "webp"
	FormatGIF  = "gif"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// DetectFormat sniffs the encoding from magic bytes. The empty string means
// the data matches none of the supported encodings.
func DetectFormat(data []byte) string {
	switch {
	case isJPEG(data):
		return FormatJPEG
	case isPNG(data):
		return FormatPNG
	case isWebP(data):
		return FormatWebP
	case isGIF(data):
		return FormatGIF
	default:
		return ""
	}
}

func isJPEG(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff
}

func isPNG(data []byte) bool {
	return len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature)
}

func isWebP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	return string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

func isGIF(data []byte) bool {
	if len(data) < 6 {
		return false
	}
	sig := string(data[:6])
	return sig == "GIF87a" || sig == "GIF89a"
}
