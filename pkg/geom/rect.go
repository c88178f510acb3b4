// Package geom provides the coordinate model shared by extraction and
// reconstruction: absolute rectangles in one global (document) coordinate
// space, rectangles relative to a parent, and 2-D affine transforms.
//
// Every canonical node carries exactly one [AbsoluteRect]. It is computed
// the same way for every node kind by accumulating ancestor offsets,
// scroll positions and ancestor transforms ([Accumulated]); there is no
// second coordinate system to fall back to. [RelativeRect] values are
// always derived from two absolute rects and never stored as truth.
package geom

import (
	"fmt"
	"math"
)

// Point is a 2-D point or vector.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// AbsoluteRect is a rectangle in the global coordinate space.
// Invariant: Width == Right-Left, Height == Bottom-Top, both >= 0.
type AbsoluteRect struct {
	Left   float64 `json:"left" bson:"left"`
	Top    float64 `json:"top" bson:"top"`
	Right  float64 `json:"right" bson:"right"`
	Bottom float64 `json:"bottom" bson:"bottom"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// NewRect builds an AbsoluteRect from an origin and a size. Negative sizes
// are clamped to zero. Width and Height are recomputed from the edges so
// the invariant holds exactly for fractional coordinates.
func NewRect(left, top, width, height float64) AbsoluteRect {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return FromEdges(left, top, left+width, top+height)
}

// FromEdges builds an AbsoluteRect from its four edges. Inverted edges are
// normalized so that Left <= Right and Top <= Bottom.
func FromEdges(left, top, right, bottom float64) AbsoluteRect {
	if right < left {
		left, right = right, left
	}
	if bottom < top {
		top, bottom = bottom, top
	}
	return AbsoluteRect{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
		Width:  right - left,
		Height: bottom - top,
	}
}

// Degenerate reports whether the rect has zero width or height. Degenerate
// rects are retained and flagged, never dropped.
func (r AbsoluteRect) Degenerate() bool {
	return r.Width == 0 || r.Height == 0
}

// Origin returns the top-left corner.
func (r AbsoluteRect) Origin() Point { return Point{X: r.Left, Y: r.Top} }

// Size returns the rect's size.
func (r AbsoluteRect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Translate returns the rect moved by (dx, dy).
func (r AbsoluteRect) Translate(dx, dy float64) AbsoluteRect {
	return NewRect(r.Left+dx, r.Top+dy, r.Width, r.Height)
}

// Validate checks the rect invariant. Every field must be finite.
func (r AbsoluteRect) Validate() error {
	for _, v := range [...]float64{r.Left, r.Top, r.Right, r.Bottom, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite rect %v", r)
		}
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("negative size %gx%g", r.Width, r.Height)
	}
	if r.Width != r.Right-r.Left {
		return fmt.Errorf("width %g != right-left %g", r.Width, r.Right-r.Left)
	}
	if r.Height != r.Bottom-r.Top {
		return fmt.Errorf("height %g != bottom-top %g", r.Height, r.Bottom-r.Top)
	}
	return nil
}
