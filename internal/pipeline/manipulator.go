package pipeline

import (
	"fmt"
	"image"

	"gallery/internal/storage"
)

// Manipulator is a single-owner editing session over one Buffer. Each
// operation method mutates the buffer and returns the Manipulator so calls
// can be chained before one Save. The first geometry error is latched:
// later operations become no-ops and Err and Save report it.
type Manipulator struct {
	buf    *Buffer
	source string
	err    error

	// gen counts applied mutations; the render cache is keyed on it so a
	// Save retried after a write failure does not re-encode.
	gen    int
	render *rendered
}

type rendered struct {
	gen     int
	format  Format
	quality int
	data    []byte
}

// Open loads the image at path. It fails with ErrSourceNotFound when the
// file cannot be read and ErrDecode when it is not a supported raster.
// JPEG EXIF orientation is applied to the pixels.
func Open(path string, quality int) (*Manipulator, error) {
	img, format, raw, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	img = orientJPEG(img, format, raw)
	buf, err := NewBuffer(img, format, quality)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manipulator{buf: buf, source: path}, nil
}

// FromImage starts a session over an in-memory image.
func FromImage(img image.Image, format Format, quality int) (*Manipulator, error) {
	buf, err := NewBuffer(img, format, quality)
	if err != nil {
		return nil, err
	}
	return &Manipulator{buf: buf}, nil
}

// Buffer returns the current pixel buffer.
func (m *Manipulator) Buffer() *Buffer { return m.buf }

// Source returns the path the session was opened from, if any.
func (m *Manipulator) Source() string { return m.source }

func (m *Manipulator) Width() int  { return m.buf.Width() }
func (m *Manipulator) Height() int { return m.buf.Height() }

// Err returns the first error raised by an operation in the chain.
func (m *Manipulator) Err() error { return m.err }

// Apply runs op against the buffer and returns the latched error, if any.
func (m *Manipulator) Apply(op Operation) error {
	op.apply(m)
	return m.err
}

func (m *Manipulator) mutate(fn func(*image.NRGBA) (*image.NRGBA, error)) *Manipulator {
	if m.err != nil {
		return m
	}
	out, err := fn(m.buf.img)
	if err != nil {
		m.err = err
		return m
	}
	m.buf.replace(out)
	m.gen++
	return m
}

func (m *Manipulator) pure(fn func(*image.NRGBA) *image.NRGBA) *Manipulator {
	return m.mutate(func(img *image.NRGBA) (*image.NRGBA, error) { return fn(img), nil })
}

func (m *Manipulator) Resize(width, height int, maintainAspect bool) *Manipulator {
	return m.mutate(func(img *image.NRGBA) (*image.NRGBA, error) {
		return Resize(img, width, height, maintainAspect)
	})
}

// Crop extracts a region; nil x or y centers it on that axis.
func (m *Manipulator) Crop(width, height int, x, y *int) *Manipulator {
	return m.mutate(func(img *image.NRGBA) (*image.NRGBA, error) {
		return Crop(img, width, height, x, y)
	})
}

func (m *Manipulator) Thumbnail(width, height int) *Manipulator {
	return m.mutate(func(img *image.NRGBA) (*image.NRGBA, error) {
		return Thumbnail(img, width, height)
	})
}

func (m *Manipulator) Rotate(degrees float64) *Manipulator {
	return m.pure(func(img *image.NRGBA) *image.NRGBA { return Rotate(img, degrees) })
}

func (m *Manipulator) FlipHorizontal() *Manipulator { return m.pure(FlipHorizontal) }
func (m *Manipulator) FlipVertical() *Manipulator   { return m.pure(FlipVertical) }
func (m *Manipulator) Grayscale() *Manipulator      { return m.pure(Grayscale) }
func (m *Manipulator) Sharpen() *Manipulator        { return m.pure(Sharpen) }

func (m *Manipulator) Brightness(level int) *Manipulator {
	return m.pure(func(img *image.NRGBA) *image.NRGBA { return Brightness(img, level) })
}

func (m *Manipulator) Contrast(level int) *Manipulator {
	return m.pure(func(img *image.NRGBA) *image.NRGBA { return Contrast(img, level) })
}

func (m *Manipulator) Blur(radius int) *Manipulator {
	return m.pure(func(img *image.NRGBA) *image.NRGBA { return Blur(img, radius) })
}

func (m *Manipulator) Sepia(intensity int) *Manipulator {
	return m.pure(func(img *image.NRGBA) *image.NRGBA { return Sepia(img, intensity) })
}

func (m *Manipulator) Vignette(strength int) *Manipulator {
	return m.pure(func(img *image.NRGBA) *image.NRGBA { return Vignette(img, strength) })
}

func (m *Manipulator) ColorOverlay(red, green, blue, opacity int) *Manipulator {
	return m.pure(func(img *image.NRGBA) *image.NRGBA { return ColorOverlay(img, red, green, blue, opacity) })
}

// Render encodes the current buffer. The result is cached until the next
// mutation.
func (m *Manipulator) Render(format Format) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	q := m.buf.quality
	if r := m.render; r != nil && r.gen == m.gen && r.format == format && r.quality == q {
		return r.data, nil
	}
	data, err := EncodeBytes(m.buf.img, format, q)
	if err != nil {
		return nil, err
	}
	m.render = &rendered{gen: m.gen, format: format, quality: q, data: data}
	return data, nil
}

// Save encodes the buffer in the format implied by dst's extension (falling
// back to the source format) and atomically replaces dst. ErrEncode means
// the image could not be rendered; ErrWrite means it could not be
// persisted, and a retry reuses the already rendered bytes.
func (m *Manipulator) Save(dst string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	format := FormatFromPath(dst)
	if format == FormatUnknown {
		format = m.buf.format
	}
	if format == FormatUnknown {
		return false, fmt.Errorf("%w: no output format for %s", ErrEncode, dst)
	}

	data, err := m.Render(format)
	if err != nil {
		return false, err
	}
	if err := storage.AtomicWriteBytes(dst, data); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrWrite, dst, err)
	}
	return true, nil
}
