package pipeline

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// ApplyEXIFOrientation reads EXIF from r (must be an io.ReadSeeker) and applies the
// orientation transform to img. If EXIF is not present or can't be parsed, the
// original img is returned without error.
func ApplyEXIFOrientation(img image.Image, r io.ReadSeeker) (image.Image, error) {
	if r == nil {
		return img, nil
	}

	// Ensure reader is at start
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return img, err
	}

	x, err := exif.Decode(r)
	if err != nil {
		// Not a fatal error for images without EXIF
		return img, nil
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img, nil
	}
	orient, err := tag.Int(0)
	if err != nil {
		return img, nil
	}

	return orientationTransform(img, orient), nil
}

// orientJPEG applies EXIF orientation to a freshly decoded JPEG. Once the
// buffer is re-encoded the EXIF block is gone, so the rotation has to be
// baked into the pixels here.
func orientJPEG(img image.Image, format Format, raw []byte) image.Image {
	if format != FormatJPEG || len(raw) == 0 {
		return img
	}
	out, err := ApplyEXIFOrientation(img, bytes.NewReader(raw))
	if err != nil {
		return img
	}
	return out
}

// orientationTransform applies the necessary flip/rotation for EXIF orientation
// values 1-8. Unknown values return the original image.
func orientationTransform(img image.Image, orientation int) image.Image {
	switch orientation {
	case 1:
		return img
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		// Transpose
		return imaging.Transpose(img)
	case 6:
		// Rotate 90 CW
		return imaging.Rotate270(img)
	case 7:
		// Transverse
		return imaging.Transverse(img)
	case 8:
		// Rotate 90 CCW
		return imaging.Rotate90(img)
	default:
		return img
	}
}
