package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/webp"
)

// ErrUnsupportedFormat reports input that is not a decodable JPEG, PNG, WebP,
// or GIF image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// jpegQuality matches the quality the synthesis backend uses for its own
// output.
const jpegQuality = 95

// Image is an upload normalized to a backend-native encoding.
type Image struct {
	Data   []byte
	Format string // FormatJPEG or FormatPNG
	Ext    string // file extension including the dot
}

// Normalize canonicalizes an uploaded image. JPEG and PNG inputs pass through
// byte-identical; WebP and GIF inputs are decoded and re-encoded as JPEG with
// their pixel dimensions intact. Detection goes by magic bytes only; the
// declared content type appears in error messages as a hint to the caller.
func Normalize(data []byte, declared string) (Image, error) {
	switch DetectFormat(data) {
	case FormatJPEG:
		return Image{Data: data, Format: FormatJPEG, Ext: ".jpg"}, nil
	case FormatPNG:
		return Image{Data: data, Format: FormatPNG, Ext: ".png"}, nil
	case FormatWebP:
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return Image{}, fmt.Errorf("%w: decode webp: %w", ErrUnsupportedFormat, err)
		}
		return encodeJPEG(img)
	case FormatGIF:
		img, err := gif.Decode(bytes.NewReader(data))
		if err != nil {
			return Image{}, fmt.Errorf("%w: decode gif: %w", ErrUnsupportedFormat, err)
		}
		return encodeJPEG(img)
	default:
		if declared != "" {
			return Image{}, fmt.Errorf("%w: declared content type %q", ErrUnsupportedFormat, declared)
		}
		return Image{}, ErrUnsupportedFormat
	}
}

func encodeJPEG(img image.Image) (Image, error) {
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return Image{Data: out.Bytes(), Format: FormatJPEG, Ext: ".jpg"}, nil
}
