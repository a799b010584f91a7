package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// GradientImage returns an opaque image whose red and green channels ramp
// across the width and height.
func GradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: 128, A: 255})
		}
	}
	return img
}

// NoiseImage returns an opaque image of seeded random pixels. Its PNG
// encoding stays close to the raw pixel size.
func NoiseImage(width, height int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// EncodeImage encodes img as "jpeg" or "png".
func EncodeImage(t *testing.T, img image.Image, format string) []byte {
	t.Helper()

	var buf bytes.Buffer
	switch format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			t.Fatalf("failed to encode JPEG: %v", err)
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("failed to encode PNG: %v", err)
		}
	default:
		t.Fatalf("unsupported image format: %s", format)
	}
	return buf.Bytes()
}

// WriteTestImage writes a gradient image of the given size to path,
// creating parent directories.
func WriteTestImage(t *testing.T, path, format string, width, height int) []byte {
	t.Helper()

	data := EncodeImage(t, GradientImage(width, height), format)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return data
}
