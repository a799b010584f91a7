package pipeline

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Channels is the number of samples stored per pixel. Sources with three
// channels are widened to opaque RGBA at decode time.
const Channels = 4

// Buffer is an in-memory grid of non-premultiplied RGBA samples together
// with the format it came from and the quality hint for re-encoding.
type Buffer struct {
	img     *image.NRGBA
	format  Format
	quality int
}

// NewBuffer copies img into a zero-origin NRGBA grid.
func NewBuffer(img image.Image, format Format, quality int) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrDecode)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Buffer{img: imaging.Clone(img), format: format, quality: clampQuality(quality)}, nil
}

func (b *Buffer) Width() int  { return b.img.Rect.Dx() }
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Format returns the source format tag.
func (b *Buffer) Format() Format { return b.format }

// Quality returns the 0..100 quality hint used for lossy encodings.
func (b *Buffer) Quality() int { return b.quality }

// Image exposes the underlying grid. Callers must not retain it across
// mutations.
func (b *Buffer) Image() *image.NRGBA { return b.img }

// Samples returns the raw sample slice, Width*Height*Channels long.
func (b *Buffer) Samples() []uint8 { return b.img.Pix }

// replace installs the result of an operation, normalizing it to a
// zero-origin, tightly packed NRGBA so the sample-count invariant holds.
func (b *Buffer) replace(img *image.NRGBA) {
	if img.Rect.Min != (image.Point{}) || img.Stride != img.Rect.Dx()*Channels {
		img = imaging.Clone(img)
	}
	b.img = img
}

// consistent reports whether the sample count matches the dimensions.
func (b *Buffer) consistent() bool {
	return len(b.img.Pix) == b.Width()*b.Height()*Channels
}
