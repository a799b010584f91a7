package pipeline

import (
	"image"
	"image/color"
	"math"
	"runtime"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// Parameter ranges for the photometric filters. Values outside are clamped.
const (
	MinLevel     = -100
	MaxLevel     = 100
	MinBlur      = 1
	MaxBlur      = 100
	MaxPercent   = 100
	MaxColorByte = 255
)

// sharpenKernel is a 3x3 Laplacian-based sharpening kernel.
var sharpenKernel = []float32{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Grayscale desaturates img using Rec. 601 luma weights.
func Grayscale(img *image.NRGBA) *image.NRGBA {
	return imaging.Grayscale(img)
}

// Brightness shifts every color channel by level percent of full scale.
func Brightness(img *image.NRGBA, level int) *image.NRGBA {
	level = clampInt(level, MinLevel, MaxLevel)
	if level == 0 {
		return imaging.Clone(img)
	}
	return imaging.AdjustBrightness(img, float64(level))
}

// Contrast scales each channel's distance from mid-gray by (100+level)/100.
func Contrast(img *image.NRGBA, level int) *image.NRGBA {
	level = clampInt(level, MinLevel, MaxLevel)
	if level == 0 {
		return imaging.Clone(img)
	}
	return imaging.AdjustContrast(img, float64(level))
}

// Blur applies a Gaussian blur with sigma equal to radius. Edge pixels are
// extended so the canvas keeps its size.
func Blur(img *image.NRGBA, radius int) *image.NRGBA {
	radius = clampInt(radius, MinBlur, MaxBlur)
	return applyGift(img, gift.GaussianBlur(float32(radius)))
}

// Sharpen convolves img with a fixed sharpening kernel. Alpha is left as is.
func Sharpen(img *image.NRGBA) *image.NRGBA {
	return applyGift(img, gift.Convolution(sharpenKernel, false, false, false, 0))
}

func applyGift(img *image.NRGBA, filters ...gift.Filter) *image.NRGBA {
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// Sepia blends each pixel toward its sepia-toned value by intensity percent.
func Sepia(img *image.NRGBA, intensity int) *image.NRGBA {
	t := float64(clampInt(intensity, 0, MaxPercent)) / 100
	if t == 0 {
		return imaging.Clone(img)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		sr := math.Min(255, 0.393*r+0.769*g+0.189*b)
		sg := math.Min(255, 0.349*r+0.686*g+0.168*b)
		sb := math.Min(255, 0.272*r+0.534*g+0.131*b)
		return color.NRGBA{R: mix(r, sr, t), G: mix(g, sg, t), B: mix(b, sb, t), A: c.A}
	})
}

// ColorOverlay alpha-blends a solid color over every pixel at opacity
// percent. The alpha channel of the source is preserved.
func ColorOverlay(img *image.NRGBA, red, green, blue, opacity int) *image.NRGBA {
	t := float64(clampInt(opacity, 0, MaxPercent)) / 100
	if t == 0 {
		return imaging.Clone(img)
	}
	or := float64(clampInt(red, 0, MaxColorByte))
	og := float64(clampInt(green, 0, MaxColorByte))
	ob := float64(clampInt(blue, 0, MaxColorByte))
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: mix(float64(c.R), or, t),
			G: mix(float64(c.G), og, t),
			B: mix(float64(c.B), ob, t),
			A: c.A,
		}
	})
}

// Vignette darkens pixels by a factor that grows with the squared distance
// from the image center, reaching 1-strength/100 at the corners.
func Vignette(img *image.NRGBA, strength int) *image.NRGBA {
	s := float64(clampInt(strength, 0, MaxPercent)) / 100
	dst := imaging.Clone(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	cx := float64(w-1) / 2
	cy := float64(h-1) / 2
	maxD2 := cx*cx + cy*cy
	if s == 0 || maxD2 == 0 {
		return dst
	}

	parallelRows(h, func(y int) {
		dy := float64(y) - cy
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*Channels]
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			f := 1 - s*(dx*dx+dy*dy)/maxD2
			i := x * Channels
			row[i] = clamp8(float64(row[i]) * f)
			row[i+1] = clamp8(float64(row[i+1]) * f)
			row[i+2] = clamp8(float64(row[i+2]) * f)
		}
	})
	return dst
}

// parallelRows runs fn for every row index, spread over GOMAXPROCS workers.
// Rows must be independent.
func parallelRows(h int, fn func(y int)) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < h; y++ {
		g.Go(func() error {
			fn(y)
			return nil
		})
	}
	_ = g.Wait()
}

// mix linearly interpolates from a toward b by t in [0,1].
func mix(a, b, t float64) uint8 {
	return clamp8(a + (b-a)*t)
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
