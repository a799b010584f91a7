package pipeline

import (
	"path/filepath"
	"strings"
)

// Format is the container format an image was decoded from or will be
// encoded to.
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatAVIF    Format = "avif"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
)

// ParseFormat maps a format name or file extension (with or without the
// leading dot) to a Format.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "jpg", "jpeg", "jpe":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWebP
	case "avif":
		return FormatAVIF
	case "bmp":
		return FormatBMP
	case "tif", "tiff":
		return FormatTIFF
	default:
		return FormatUnknown
	}
}

// FormatFromPath infers the format from a file path's extension.
func FormatFromPath(path string) Format {
	return ParseFormat(filepath.Ext(path))
}

// Lossy reports whether the quality hint affects the encoding.
func (f Format) Lossy() bool {
	return f == FormatJPEG || f == FormatWebP || f == FormatAVIF
}

// Extension returns the canonical file extension without dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// ContentType returns the MIME type served for files of this format.
func (f Format) ContentType() string {
	if f == FormatUnknown {
		return "application/octet-stream"
	}
	return "image/" + string(f)
}
