package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradientImage encodes each pixel's position in its color so geometric
// transforms can be traced.
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func samePixels(a, b *image.NRGBA) bool {
	return a.Rect.Dx() == b.Rect.Dx() && a.Rect.Dy() == b.Rect.Dy() && bytes.Equal(a.Pix, b.Pix)
}

func writeImageFile(t *testing.T, path string, img image.Image, format Format) {
	t.Helper()
	data, err := EncodeBytes(img, format, 95)
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
