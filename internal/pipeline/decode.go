package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	webp "github.com/chai2010/webp"
	_ "github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DetectFormat reads up to 512 bytes from r and returns the detected MIME type.
// Note: this will consume from r.
func DetectFormat(r io.Reader) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadAtLeast(r, buf, 1)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// ValidateAndDecode reads up to maxBytes from r, decodes it and validates
// dimensions (MaxDimension). The raw bytes are returned so callers can
// persist the upload unchanged.
func ValidateAndDecode(r io.Reader, maxBytes int64) (image.Image, Format, []byte, error) {
	// read up to maxBytes+1 to detect overflow
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, FormatUnknown, nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, FormatUnknown, nil, ErrTooLarge
	}
	img, format, err := DecodeBytes(data)
	if err != nil {
		return nil, format, nil, err
	}
	return img, format, data, nil
}

// DecodeFile decodes the image stored at path. A missing or unreadable
// file yields ErrSourceNotFound; undecodable content yields ErrDecode.
func DecodeFile(path string) (image.Image, Format, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, FormatUnknown, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, FormatUnknown, nil, fmt.Errorf("%w: %s: %v", ErrSourceNotFound, path, err)
	}
	img, format, err := DecodeBytes(data)
	if err != nil {
		return nil, format, nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, format, data, nil
}

// DecodeBytes sniffs the content type and decodes data. Formats without a
// sniffable signature (AVIF, TIFF) go through the image registry. Declared
// dimensions are checked from the header before any pixels are allocated.
func DecodeBytes(data []byte) (image.Image, Format, error) {
	ct := http.DetectContentType(data)

	var format Format
	var decodeConfig func(io.Reader) (image.Config, error)
	var decode func(io.Reader) (image.Image, error)

	switch {
	case strings.HasPrefix(ct, "image/jpeg"):
		format, decodeConfig, decode = FormatJPEG, jpeg.DecodeConfig, jpeg.Decode
	case strings.HasPrefix(ct, "image/png"):
		format, decodeConfig, decode = FormatPNG, png.DecodeConfig, png.Decode
	case strings.HasPrefix(ct, "image/gif"):
		format, decodeConfig, decode = FormatGIF, gif.DecodeConfig, gif.Decode
	case strings.HasPrefix(ct, "image/webp"):
		format, decodeConfig, decode = FormatWebP, webp.DecodeConfig, webp.Decode
	case strings.HasPrefix(ct, "image/bmp"):
		format, decodeConfig, decode = FormatBMP, bmp.DecodeConfig, bmp.Decode
	default:
		_, name, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, FormatUnknown, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		format = ParseFormat(name)
		if format == FormatUnknown {
			return nil, format, fmt.Errorf("%w: unsupported format %q", ErrDecode, name)
		}
		decodeConfig = func(r io.Reader) (image.Config, error) {
			cfg, _, err := image.DecodeConfig(r)
			return cfg, err
		}
		decode = func(r io.Reader) (image.Image, error) {
			img, _, err := image.Decode(r)
			return img, err
		}
	}

	cfg, err := decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !validDimensions(cfg.Width, cfg.Height) {
		return nil, format, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if !validDimensions(b.Dx(), b.Dy()) {
		return nil, format, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Dx(), b.Dy())
	}
	return img, format, nil
}

func validDimensions(w, h int) bool {
	return w > 0 && h > 0 && w <= MaxDimension && h <= MaxDimension
}
