package pipeline

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Rotate turns img counter-clockwise by degrees. Multiples of 90 are exact
// pixel permutations; any other angle expands the canvas and fills the
// uncovered corners with transparent pixels.
func Rotate(img *image.NRGBA, degrees float64) *image.NRGBA {
	d := normalizeDegrees(degrees)
	switch d {
	case 0:
		return imaging.Clone(img)
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	default:
		return imaging.Rotate(img, d, color.Transparent)
	}
}

// normalizeDegrees maps any angle into [0, 360).
func normalizeDegrees(degrees float64) float64 {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return 0
	}
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// FlipHorizontal mirrors img left to right.
func FlipHorizontal(img *image.NRGBA) *image.NRGBA {
	return imaging.FlipH(img)
}

// FlipVertical mirrors img top to bottom.
func FlipVertical(img *image.NRGBA) *image.NRGBA {
	return imaging.FlipV(img)
}
