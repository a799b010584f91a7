package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// markedImage is transparent apart from one red pixel at (1,0).
func markedImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w > 1 && h > 0 {
		img.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})
	}
	return img
}

func redAt(img image.Image, x, y int) bool {
	r, g, b, a := img.At(x, y).RGBA()
	return r == 0xffff && g == 0 && b == 0 && a == 0xffff
}

func TestOrientationTransform_Bounds(t *testing.T) {
	src := markedImage(3, 2)
	tests := []struct {
		orientation  int
		wantW, wantH int
	}{
		{1, 3, 2},
		{2, 3, 2},
		{3, 3, 2},
		{4, 3, 2},
		{5, 2, 3},
		{6, 2, 3},
		{7, 2, 3},
		{8, 2, 3},
		{42, 3, 2},
	}
	for _, tt := range tests {
		out := orientationTransform(src, tt.orientation)
		if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
			t.Errorf("orientation %d: expected %dx%d, got %dx%d", tt.orientation, tt.wantW, tt.wantH, out.Bounds().Dx(), out.Bounds().Dy())
		}
	}
}

func TestOrientationTransform_Direction(t *testing.T) {
	src := markedImage(3, 2)

	// 6: the camera was turned clockwise, so the pixels rotate 90 CW
	if !redAt(orientationTransform(src, 6), 1, 1) {
		t.Fatalf("orientation 6 should rotate clockwise")
	}
	// 8: rotate 90 CCW
	if !redAt(orientationTransform(src, 8), 0, 1) {
		t.Fatalf("orientation 8 should rotate counter-clockwise")
	}
	// 2: mirrored horizontally
	if !redAt(orientationTransform(src, 2), 1, 0) {
		t.Fatalf("orientation 2 should mirror around the vertical axis")
	}
	// 3: 180
	if !redAt(orientationTransform(src, 3), 1, 1) {
		t.Fatalf("orientation 3 should rotate 180")
	}
}

func TestApplyEXIFOrientation_NonJPEGOrNoEXIF(t *testing.T) {
	buf := &bytes.Buffer{}
	img := markedImage(4, 3)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}

	out, err := ApplyEXIFOrientation(img, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ApplyEXIFOrientation returned error for PNG: %v", err)
	}
	if out.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds unchanged for PNG/no-exif")
	}
}

func TestApplyEXIFOrientation_JPEG_NoEXIF(t *testing.T) {
	buf := &bytes.Buffer{}
	img := markedImage(5, 4)
	if err := jpeg.Encode(buf, img, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	out, err := ApplyEXIFOrientation(img, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ApplyEXIFOrientation returned error for JPEG no-exif: %v", err)
	}
	if out.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds unchanged for JPEG without EXIF")
	}
}

func TestApplyEXIFOrientation_CorruptReader(t *testing.T) {
	img := markedImage(2, 2)
	out, err := ApplyEXIFOrientation(img, bytes.NewReader([]byte("not a valid image")))
	if err != nil {
		t.Fatalf("expected no error for corrupt exif decode: %v", err)
	}
	if out.Bounds() != img.Bounds() {
		t.Fatalf("expected original image returned on error")
	}
}

func TestOrientJPEG_SkipsOtherFormats(t *testing.T) {
	img := markedImage(3, 2)
	if out := orientJPEG(img, FormatPNG, []byte("whatever")); out != image.Image(img) {
		t.Fatalf("expected non-JPEG image to pass through")
	}
	if out := orientJPEG(img, FormatJPEG, nil); out != image.Image(img) {
		t.Fatalf("expected JPEG without raw bytes to pass through")
	}
}
