package pipeline

import "errors"

var (
	ErrSourceNotFound    = errors.New("source image not found")
	ErrDecode            = errors.New("file is not a decodable image")
	ErrEncode            = errors.New("could not encode image")
	ErrWrite             = errors.New("could not write image")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrInvalidDimensions = errors.New("image dimensions out of range")
)

// MaxDimension caps decoded width and height.
const MaxDimension = 12000

// DefaultQuality is the encoder quality used when callers pass none.
const DefaultQuality = 85

// clampQuality keeps quality inside 1..100. Zero or negative selects
// DefaultQuality.
func clampQuality(q int) int {
	if q <= 0 {
		return DefaultQuality
	}
	if q > 100 {
		return 100
	}
	return q
}

// ErrTooLarge is returned when an upload exceeds its byte limit.
var ErrTooLarge = errors.New("image exceeds size limit")
