package pipeline

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Resize scales img to width x height. With keepAspect the source ratio is
// preserved and the result fits inside the requested box; a zero width or
// height then leaves that axis unconstrained.
func Resize(img *image.NRGBA, width, height int, keepAspect bool) (*image.NRGBA, error) {
	srcW, srcH := img.Rect.Dx(), img.Rect.Dy()
	nw, nh, err := resizeDimensions(srcW, srcH, width, height, keepAspect)
	if err != nil {
		return nil, err
	}
	if nw == srcW && nh == srcH {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos), nil
}

func resizeDimensions(srcW, srcH, width, height int, keepAspect bool) (int, int, error) {
	if width < 0 || height < 0 || width > MaxDimension || height > MaxDimension {
		return 0, 0, fmt.Errorf("%w: resize to %dx%d", ErrInvalidGeometry, width, height)
	}
	if !keepAspect {
		if width == 0 || height == 0 {
			return 0, 0, fmt.Errorf("%w: resize to %dx%d", ErrInvalidGeometry, width, height)
		}
		return width, height, nil
	}
	if width == 0 && height == 0 {
		return 0, 0, fmt.Errorf("%w: resize needs width or height", ErrInvalidGeometry)
	}

	var scale float64
	switch {
	case width == 0:
		scale = float64(height) / float64(srcH)
	case height == 0:
		scale = float64(width) / float64(srcW)
	default:
		scale = math.Min(float64(width)/float64(srcW), float64(height)/float64(srcH))
	}
	nw := max(1, int(math.Round(float64(srcW)*scale)))
	nh := max(1, int(math.Round(float64(srcH)*scale)))
	if nw > MaxDimension || nh > MaxDimension {
		return 0, 0, fmt.Errorf("%w: resize to %dx%d", ErrInvalidGeometry, nw, nh)
	}
	return nw, nh, nil
}

// Thumbnail reduces img to fit within maxWidth x maxHeight, preserving
// aspect ratio. Does not upscale smaller images.
func Thumbnail(img *image.NRGBA, maxWidth, maxHeight int) (*image.NRGBA, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("%w: thumbnail box %dx%d", ErrInvalidGeometry, maxWidth, maxHeight)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	nw, nh := calculateDimensions(w, h, maxWidth, maxHeight)
	if nw == w && nh == h {
		return imaging.Clone(img), nil
	}
	// imaging.Resize will perform high-quality resampling; use Lanczos filter.
	return imaging.Resize(img, nw, nh, imaging.Lanczos), nil
}

// calculateDimensions computes new width/height preserving aspect ratio so
// that the result fits the maxWidth x maxHeight box (unless no resize needed).
func calculateDimensions(origWidth, origHeight, maxWidth, maxHeight int) (int, int) {
	if origWidth <= 0 || origHeight <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return origWidth, origHeight
	}
	if origWidth <= maxWidth && origHeight <= maxHeight {
		return origWidth, origHeight
	}
	// width is the binding side when the source is relatively wider than the box
	if origWidth*maxHeight >= origHeight*maxWidth {
		newW := maxWidth
		newH := (origHeight * maxWidth) / origWidth
		if newH < 1 {
			newH = 1
		}
		return newW, newH
	}
	newH := maxHeight
	newW := (origWidth * maxHeight) / origHeight
	if newW < 1 {
		newW = 1
	}
	return newW, newH
}

// Crop extracts a width x height region anchored at (x, y). A nil anchor
// centers the region on that axis. The region is clamped into the image
// rather than failing on overflow; only a zero or negative size is rejected.
func Crop(img *image.NRGBA, width, height int, x, y *int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: crop to %dx%d", ErrInvalidGeometry, width, height)
	}
	srcW, srcH := img.Rect.Dx(), img.Rect.Dy()
	width = min(width, srcW)
	height = min(height, srcH)

	ox := cropOrigin(x, srcW, width)
	oy := cropOrigin(y, srcH, height)
	rect := image.Rect(ox, oy, ox+width, oy+height).Add(img.Rect.Min)
	return imaging.Crop(img, rect), nil
}

func cropOrigin(anchor *int, src, size int) int {
	if anchor == nil {
		return (src - size) / 2
	}
	return min(max(*anchor, 0), src-size)
}
