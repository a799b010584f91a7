package pipeline

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrInvalidParameter is returned when a parameter cannot be converted to
// the type its operation expects.
var ErrInvalidParameter = errors.New("invalid operation parameter")

// Kind enumerates the operations a Manipulator understands.
type Kind int

const (
	KindResize Kind = iota + 1
	KindCrop
	KindThumbnail
	KindRotate
	KindFlipHorizontal
	KindFlipVertical
	KindGrayscale
	KindBrightness
	KindContrast
	KindBlur
	KindSharpen
	KindSepia
	KindVignette
	KindColorOverlay
)

var kindNames = map[Kind]string{
	KindResize:         "resize",
	KindCrop:           "crop",
	KindThumbnail:      "thumbnail",
	KindRotate:         "rotate",
	KindFlipHorizontal: "flip_horizontal",
	KindFlipVertical:   "flip_vertical",
	KindGrayscale:      "grayscale",
	KindBrightness:     "brightness",
	KindContrast:       "contrast",
	KindBlur:           "blur",
	KindSharpen:        "sharpen",
	KindSepia:          "sepia",
	KindVignette:       "vignette",
	KindColorOverlay:   "color_overlay",
}

// kindsByKey is keyed by normalizeKey(name).
var kindsByKey = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[normalizeKey(name)] = k
	}
	return m
}()

// Kinds returns every operation kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindResize; k <= KindColorOverlay; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves an operation name. Matching ignores case, underscores
// and dashes, so "flipHorizontal" and "flip_horizontal" are the same.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindsByKey[normalizeKey(name)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "").Replace(s)
}

// Operation is one named, parameterized transform. The set of
// implementations is closed to this package.
type Operation interface {
	Kind() Kind
	// Params returns the parameters as recorded in history.
	Params() map[string]any
	apply(m *Manipulator)
}

type ResizeOp struct {
	Width          int
	Height         int
	MaintainAspect bool
}

type CropOp struct {
	Width  int
	Height int
	X      *int
	Y      *int
}

type ThumbnailOp struct {
	Width  int
	Height int
}

type RotateOp struct {
	Degrees float64
}

type FlipHorizontalOp struct{}

type FlipVerticalOp struct{}

type GrayscaleOp struct{}

type BrightnessOp struct {
	Level int
}

type ContrastOp struct {
	Level int
}

type BlurOp struct {
	Radius int
}

type SharpenOp struct{}

type SepiaOp struct {
	Intensity int
}

type VignetteOp struct {
	Strength int
}

type ColorOverlayOp struct {
	Red     int
	Green   int
	Blue    int
	Opacity int
}

func (ResizeOp) Kind() Kind         { return KindResize }
func (CropOp) Kind() Kind           { return KindCrop }
func (ThumbnailOp) Kind() Kind      { return KindThumbnail }
func (RotateOp) Kind() Kind         { return KindRotate }
func (FlipHorizontalOp) Kind() Kind { return KindFlipHorizontal }
func (FlipVerticalOp) Kind() Kind   { return KindFlipVertical }
func (GrayscaleOp) Kind() Kind      { return KindGrayscale }
func (BrightnessOp) Kind() Kind     { return KindBrightness }
func (ContrastOp) Kind() Kind       { return KindContrast }
func (BlurOp) Kind() Kind           { return KindBlur }
func (SharpenOp) Kind() Kind        { return KindSharpen }
func (SepiaOp) Kind() Kind          { return KindSepia }
func (VignetteOp) Kind() Kind       { return KindVignette }
func (ColorOverlayOp) Kind() Kind   { return KindColorOverlay }

func (o ResizeOp) Params() map[string]any {
	return map[string]any{"width": o.Width, "height": o.Height, "maintain_aspect": o.MaintainAspect}
}

func (o CropOp) Params() map[string]any {
	p := map[string]any{"width": o.Width, "height": o.Height}
	if o.X != nil {
		p["x"] = *o.X
	}
	if o.Y != nil {
		p["y"] = *o.Y
	}
	return p
}

func (o ThumbnailOp) Params() map[string]any {
	return map[string]any{"width": o.Width, "height": o.Height}
}

func (o RotateOp) Params() map[string]any { return map[string]any{"degrees": o.Degrees} }

func (FlipHorizontalOp) Params() map[string]any { return map[string]any{} }
func (FlipVerticalOp) Params() map[string]any   { return map[string]any{} }
func (GrayscaleOp) Params() map[string]any      { return map[string]any{} }
func (SharpenOp) Params() map[string]any        { return map[string]any{} }

func (o BrightnessOp) Params() map[string]any {
	return map[string]any{"level": clampInt(o.Level, MinLevel, MaxLevel)}
}

func (o ContrastOp) Params() map[string]any {
	return map[string]any{"level": clampInt(o.Level, MinLevel, MaxLevel)}
}

func (o BlurOp) Params() map[string]any {
	return map[string]any{"radius": clampInt(o.Radius, MinBlur, MaxBlur)}
}

func (o SepiaOp) Params() map[string]any {
	return map[string]any{"intensity": clampInt(o.Intensity, 0, MaxPercent)}
}

func (o VignetteOp) Params() map[string]any {
	return map[string]any{"strength": clampInt(o.Strength, 0, MaxPercent)}
}

func (o ColorOverlayOp) Params() map[string]any {
	return map[string]any{
		"red":     clampInt(o.Red, 0, MaxColorByte),
		"green":   clampInt(o.Green, 0, MaxColorByte),
		"blue":    clampInt(o.Blue, 0, MaxColorByte),
		"opacity": clampInt(o.Opacity, 0, MaxPercent),
	}
}

func (o ResizeOp) apply(m *Manipulator)       { m.Resize(o.Width, o.Height, o.MaintainAspect) }
func (o CropOp) apply(m *Manipulator)         { m.Crop(o.Width, o.Height, o.X, o.Y) }
func (o ThumbnailOp) apply(m *Manipulator)    { m.Thumbnail(o.Width, o.Height) }
func (o RotateOp) apply(m *Manipulator)       { m.Rotate(o.Degrees) }
func (FlipHorizontalOp) apply(m *Manipulator) { m.FlipHorizontal() }
func (FlipVerticalOp) apply(m *Manipulator)   { m.FlipVertical() }
func (GrayscaleOp) apply(m *Manipulator)      { m.Grayscale() }
func (o BrightnessOp) apply(m *Manipulator)   { m.Brightness(o.Level) }
func (o ContrastOp) apply(m *Manipulator)     { m.Contrast(o.Level) }
func (o BlurOp) apply(m *Manipulator)         { m.Blur(o.Radius) }
func (SharpenOp) apply(m *Manipulator)        { m.Sharpen() }
func (o SepiaOp) apply(m *Manipulator)        { m.Sepia(o.Intensity) }
func (o VignetteOp) apply(m *Manipulator)     { m.Vignette(o.Strength) }
func (o ColorOverlayOp) apply(m *Manipulator) { m.ColorOverlay(o.Red, o.Green, o.Blue, o.Opacity) }

// newOperation returns a zero operation of kind k with its defaults set.
func newOperation(k Kind) (Operation, error) {
	switch k {
	case KindResize:
		return &ResizeOp{}, nil
	case KindCrop:
		return &CropOp{}, nil
	case KindThumbnail:
		return &ThumbnailOp{}, nil
	case KindRotate:
		return &RotateOp{}, nil
	case KindFlipHorizontal:
		return &FlipHorizontalOp{}, nil
	case KindFlipVertical:
		return &FlipVerticalOp{}, nil
	case KindGrayscale:
		return &GrayscaleOp{}, nil
	case KindBrightness:
		return &BrightnessOp{}, nil
	case KindContrast:
		return &ContrastOp{}, nil
	case KindBlur:
		return &BlurOp{Radius: MinBlur}, nil
	case KindSharpen:
		return &SharpenOp{}, nil
	case KindSepia:
		return &SepiaOp{Intensity: MaxPercent}, nil
	case KindVignette:
		return &VignetteOp{Strength: 50}, nil
	case KindColorOverlay:
		return &ColorOverlayOp{Opacity: 50}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, k)
	}
}

// ParseOperation builds an Operation from a request name and a loosely
// typed parameter map (JSON numbers, form strings). Parameter keys follow
// the same matching rules as names. Unrecognized keys are ignored.
func ParseOperation(name string, params map[string]any) (Operation, error) {
	k, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	op, err := newOperation(k)
	if err != nil {
		return nil, err
	}

	normalized := make(map[string]any, len(params))
	for key, v := range params {
		normalized[normalizeKey(key)] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       saturateIntHook,
		Result:           op,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(normalized); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, k, err)
	}
	return derefOperation(op), nil
}

// saturateIntHook converts numbers bound for int fields without wrapping.
// Values beyond the int range stick to the nearest end.
func saturateIntHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if _, err := strconv.ParseInt(s, 0, 0); err == nil {
			return data, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return data, nil
		}
		f = parsed
	default:
		return data, nil
	}
	switch {
	case math.IsNaN(f):
		return nil, fmt.Errorf("%w: NaN", ErrInvalidParameter)
	case f >= math.MaxInt:
		return math.MaxInt, nil
	case f <= math.MinInt:
		return math.MinInt, nil
	}
	return int(f), nil
}

// derefOperation turns the decode target back into a value so recorded
// operations cannot be mutated through a shared pointer.
func derefOperation(op Operation) Operation {
	switch o := op.(type) {
	case *ResizeOp:
		return *o
	case *CropOp:
		return *o
	case *ThumbnailOp:
		return *o
	case *RotateOp:
		return *o
	case *FlipHorizontalOp:
		return *o
	case *FlipVerticalOp:
		return *o
	case *GrayscaleOp:
		return *o
	case *BrightnessOp:
		return *o
	case *ContrastOp:
		return *o
	case *BlurOp:
		return *o
	case *SharpenOp:
		return *o
	case *SepiaOp:
		return *o
	case *VignetteOp:
		return *o
	case *ColorOverlayOp:
		return *o
	default:
		return op
	}
}
