package pipeline

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "nope.jpg"), 0); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
	text := filepath.Join(dir, "readme.jpg")
	if err := os.WriteFile(text, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(text, 0); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestOpen_NormalizesBuffer(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.jpg")
	writeImageFile(t, src, gradientImage(30, 20), FormatJPEG)

	m, err := Open(src, 70)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	buf := m.Buffer()
	if buf.Width() != 30 || buf.Height() != 20 || buf.Format() != FormatJPEG || buf.Quality() != 70 {
		t.Fatalf("unexpected buffer %dx%d %s q=%d", buf.Width(), buf.Height(), buf.Format(), buf.Quality())
	}
	if len(buf.Samples()) != 30*20*Channels {
		t.Fatalf("expected %d samples, got %d", 30*20*Channels, len(buf.Samples()))
	}
	if m.Source() != src {
		t.Fatalf("unexpected source %q", m.Source())
	}
}

func TestCropSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writeImageFile(t, src, gradientImage(200, 200), FormatPNG)

	m, err := Open(src, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dst := filepath.Join(dir, "out.png")
	ok, err := m.Crop(100, 100, intp(50), intp(50)).Save(dst)
	if err != nil || !ok {
		t.Fatalf("Save: %v %v", ok, err)
	}

	img, format, _, err := DecodeFile(dst)
	if err != nil {
		t.Fatalf("decode saved file: %v", err)
	}
	if format != FormatPNG || img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Fatalf("expected 100x100 png, got %dx%d %s", img.Bounds().Dx(), img.Bounds().Dy(), format)
	}
}

func TestChain_LatchesFirstError(t *testing.T) {
	dir := t.TempDir()
	m, err := FromImage(gradientImage(10, 10), FormatPNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.Crop(0, 0, nil, nil).Grayscale().Rotate(90)
	if !errors.Is(m.Err(), ErrInvalidGeometry) {
		t.Fatalf("expected latched ErrInvalidGeometry, got %v", m.Err())
	}
	if m.Width() != 10 || m.Height() != 10 {
		t.Fatalf("operations after an error must not run")
	}

	dst := filepath.Join(dir, "out.png")
	ok, err := m.Save(dst)
	if ok || !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected Save to report the latched error, got %v %v", ok, err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written after a failed chain")
	}
}

func TestSave_FormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	m, err := FromImage(gradientImage(16, 16), FormatPNG, 0)
	if err != nil {
		t.Fatal(err)
	}

	jpg := filepath.Join(dir, "out.jpg")
	if _, err := m.Save(jpg); err != nil {
		t.Fatalf("Save jpg: %v", err)
	}
	if _, format, _, err := DecodeFile(jpg); err != nil || format != FormatJPEG {
		t.Fatalf("expected jpeg output, got %q %v", format, err)
	}

	// no usable extension falls back to the source format
	bare := filepath.Join(dir, "out.data")
	if _, err := m.Save(bare); err != nil {
		t.Fatalf("Save bare: %v", err)
	}
	if _, format, _, err := DecodeFile(bare); err != nil || format != FormatPNG {
		t.Fatalf("expected png output, got %q %v", format, err)
	}
}

func TestSave_WriteFailureThenRetry(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := FromImage(solidImage(8, 8, color.NRGBA{1, 2, 3, 255}), FormatPNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.Grayscale()

	ok, err := m.Save(filepath.Join(blocker, "out.png"))
	if ok || !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v %v", ok, err)
	}
	cached := m.render
	if cached == nil {
		t.Fatalf("rendered bytes should be kept after a write failure")
	}

	dst := filepath.Join(dir, "out.png")
	if ok, err := m.Save(dst); !ok || err != nil {
		t.Fatalf("retry Save: %v %v", ok, err)
	}
	if m.render != cached {
		t.Fatalf("retry should reuse the rendered bytes")
	}
}

func TestRender_InvalidatedByMutation(t *testing.T) {
	m, err := FromImage(gradientImage(8, 8), FormatPNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	first, err := m.Render(FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	m.FlipHorizontal()
	second, err := m.Render(FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) == string(second) {
		t.Fatalf("render should reflect the mutation")
	}
}

func TestChain_BufferStaysConsistent(t *testing.T) {
	m, err := FromImage(gradientImage(40, 30), FormatPNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.Resize(33, 17, false).Crop(20, 10, intp(3), nil).Rotate(30).Thumbnail(15, 15).Blur(1).Sharpen()
	if m.Err() != nil {
		t.Fatalf("chain failed: %v", m.Err())
	}
	if !m.Buffer().consistent() {
		t.Fatalf("sample count does not match %dx%d", m.Width(), m.Height())
	}
	if m.Width() > 15 || m.Height() > 15 {
		t.Fatalf("thumbnail box exceeded: %dx%d", m.Width(), m.Height())
	}
}
