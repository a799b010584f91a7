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
	"log"

	webp "github.com/chai2010/webp"
	"github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultAVIFSpeed is the standard speed used for AVIF encoding.
const DefaultAVIFSpeed = 6

// Encode writes img to w in the given format. quality (0-100) only
// affects lossy formats.
func Encode(img image.Image, w io.Writer, format Format, quality int) error {
	if img == nil {
		return errors.New("nil image")
	}
	if w == nil {
		return errors.New("nil writer")
	}
	quality = clampQuality(quality)

	switch format {
	case FormatJPEG:
		// jpeg.Encode treats quality < 1 as 1
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		return png.Encode(w, img)
	case FormatGIF:
		return gif.Encode(w, img, &gif.Options{NumColors: 256})
	case FormatWebP:
		return EncodeWebP(img, w, quality)
	case FormatAVIF:
		return EncodeAVIF(img, w, quality, DefaultAVIFSpeed)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// EncodeBytes encodes img into memory. Failures are reported as ErrEncode.
func EncodeBytes(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(img, &buf, format, quality); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, format, err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes img to WebP written to w with given quality (0-100).
// It logs the final encoded size. Returns an error from the encoder or writer.
func EncodeWebP(img image.Image, w io.Writer, quality int) error {
	if img == nil {
		return errors.New("nil image")
	}
	if w == nil {
		return errors.New("nil writer")
	}
	quality = clampQuality(quality)

	// counting writer to capture encoded size
	c := &countingWriter{w: w}
	opts := &webp.Options{Quality: float32(quality)}
	if err := webp.Encode(c, img, opts); err != nil {
		return err
	}

	log.Printf("webp encoded size=%d quality=%d", c.n, quality)
	return nil
}

// EncodeAVIF encodes img to AVIF written to w with given quality (0-100) and speed (0-10).
// It logs the final encoded size. Returns an error from the encoder or writer.
func EncodeAVIF(img image.Image, w io.Writer, quality, speed int) error {
	if img == nil {
		return errors.New("nil image")
	}
	if w == nil {
		return errors.New("nil writer")
	}
	if quality <= 0 {
		quality = DefaultQuality
	}
	if quality > 100 {
		quality = 100
	}
	if speed <= 0 {
		speed = DefaultAVIFSpeed
	}
	if speed > 10 {
		speed = 10
	}

	// counting writer to capture encoded size
	c := &countingWriter{w: w}
	if err := avif.Encode(c, img, avif.Options{Quality: quality, QualityAlpha: quality, Speed: speed}); err != nil {
		return err
	}

	log.Printf("avif encoded size=%d quality=%d speed=%d", c.n, quality, speed)
	return nil
}

// countingWriter wraps an io.Writer and counts bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	m, err := c.w.Write(p)
	c.n += int64(m)
	return m, err
}
