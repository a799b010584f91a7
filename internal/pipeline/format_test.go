package pipeline

import "testing"

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a/b/photo.JPG": FormatJPEG,
		"x.jpeg":        FormatJPEG,
		"x.png":         FormatPNG,
		"x.tif":         FormatTIFF,
		"x.webp":        FormatWebP,
		"x.avif":        FormatAVIF,
		"x.txt":         FormatUnknown,
		"noext":         FormatUnknown,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestFormatContentType(t *testing.T) {
	if got := FormatJPEG.ContentType(); got != "image/jpeg" {
		t.Errorf("jpeg content type = %q", got)
	}
	if got := FormatWebP.ContentType(); got != "image/webp" {
		t.Errorf("webp content type = %q", got)
	}
	if got := FormatUnknown.ContentType(); got != "application/octet-stream" {
		t.Errorf("unknown content type = %q", got)
	}
	if FormatJPEG.Extension() != "jpg" || FormatPNG.Extension() != "png" {
		t.Error("unexpected extensions")
	}
}
