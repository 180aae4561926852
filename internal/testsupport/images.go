package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

func imagePattern(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(37 * x), G: uint8(53 * y), B: 0x60, A: 0xff})
		}
	}
	return img
}

// JPEGBytes returns an encoded JPEG test pattern of the given dimensions.
func JPEGBytes(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, imagePattern(width, height), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg fixture: %v", err)
	}
	return buf.Bytes()
}

// PNGBytes returns an encoded PNG test pattern of the given dimensions.
func PNGBytes(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imagePattern(width, height)); err != nil {
		t.Fatalf("encode png fixture: %v", err)
	}
	return buf.Bytes()
}

// GIFBytes returns an encoded GIF test pattern of the given dimensions.
func GIFBytes(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, imagePattern(width, height), nil); err != nil {
		t.Fatalf("encode gif fixture: %v", err)
	}
	return buf.Bytes()
}

// WebPBytes returns an encoded WebP test pattern of the given dimensions.
func WebPBytes(t testing.TB, width, height int) []byte {
	t.Helper()
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, 85)
	if err != nil {
		t.Fatalf("webp encoder options: %v", err)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, imagePattern(width, height), opts); err != nil {
		t.Fatalf("encode webp fixture: %v", err)
	}
	return buf.Bytes()
}
