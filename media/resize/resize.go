// Package resize turns stored image dimensions and query parameters into
// target dimensions.
package resize

import (
	"fmt"
	"strings"
)

// Request holds the optional resize query parameters. A nil field means the
// parameter was not supplied.
type Request struct {
	Size    *int `query:"size" validate:"omitempty,gt=0"`
	Width   *int `query:"width" validate:"omitempty,gt=0"`
	Height  *int `query:"height" validate:"omitempty,gt=0"`
	MaxSide *int `query:"max_side" validate:"omitempty,gt=0"`
}

// Empty reports whether no parameter was supplied.
func (r Request) Empty() bool {
	return r.Size == nil && r.Width == nil && r.Height == nil && r.MaxSide == nil
}

// String renders the supplied parameters for logs.
func (r Request) String() string {
	var parts []string
	add := func(name string, v *int) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", name, *v))
		}
	}
	add("size", r.Size)
	add("max_side", r.MaxSide)
	add("width", r.Width)
	add("height", r.Height)
	return "{" + strings.Join(parts, " ") + "}"
}

// Target is the size an image is transcoded to.
type Target struct {
	Width  int
	Height int
}

// Resolve picks target dimensions for a width x height image. The first
// matching rule wins:
//
//	size               square of min(size, shorter side)
//	max_side           longer side clamped, aspect kept
//	width and height   each axis clamped independently
//	width              width clamped, height follows the ratio
//	height             height clamped, width follows the ratio
//
// ok is false when no parameter applies. Results never exceed the original
// on either axis and are never smaller than one pixel.
func Resolve(width, height int, req Request) (Target, bool) {
	var w, h int

	switch {
	case req.Size != nil:
		side := min(*req.Size, min(width, height))
		w, h = side, side

	case req.MaxSide != nil:
		if width <= height {
			h = min(height, *req.MaxSide)
			w = scale(width, h, height)
		} else {
			w = min(width, *req.MaxSide)
			h = scale(height, w, width)
		}

	case req.Width != nil && req.Height != nil:
		w = min(width, *req.Width)
		h = min(height, *req.Height)

	case req.Width != nil:
		w = min(width, *req.Width)
		h = scale(height, w, width)

	case req.Height != nil:
		h = min(height, *req.Height)
		w = scale(width, h, height)

	default:
		return Target{}, false
	}

	return Target{Width: max(w, 1), Height: max(h, 1)}, true
}

// scale returns side * num / den truncated toward zero, computed exactly.
func scale(side, num, den int) int {
	return int(int64(side) * int64(num) / int64(den))
}
