// Package paint models fills, strokes, effects and corner radii of a
// canonical node, and parses the computed-style syntax they come from.
//
// Paint lists are kept in CSS declaration order: the first entry is the
// top-most layer and a background color, when present, is the last entry.
// A consumer whose paint stack is bottom-to-top reverses the list.
package paint

import (
	"fmt"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/geom"
)

// Type tags the Paint variant.
type Type string

// Paint variants.
const (
	TypeSolid    Type = "solid"
	TypeGradient Type = "gradient"
	TypeImage    Type = "image"
)

// Paint is a tagged variant: exactly one of Color, Gradient or Image is set,
// matching Type.
type Paint struct {
	Type     Type      `json:"type" bson:"type"`
	Color    *Color    `json:"color,omitempty" bson:"color,omitempty"`
	Gradient *Gradient `json:"gradient,omitempty" bson:"gradient,omitempty"`
	Image    *Image    `json:"image,omitempty" bson:"image,omitempty"`
}

// Solid returns a solid paint.
func Solid(c Color) Paint { return Paint{Type: TypeSolid, Color: &c} }

// Validate checks that the variant tag matches the populated field.
func (p Paint) Validate() error {
	set := 0
	if p.Color != nil {
		set++
	}
	if p.Gradient != nil {
		set++
	}
	if p.Image != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("paint %q must carry exactly one variant, has %d", p.Type, set)
	}
	switch {
	case p.Type == TypeSolid && p.Color != nil:
	case p.Type == TypeGradient && p.Gradient != nil:
		if len(p.Gradient.Stops) == 0 {
			return fmt.Errorf("gradient without stops")
		}
	case p.Type == TypeImage && p.Image != nil:
	default:
		return fmt.Errorf("paint type %q does not match its variant", p.Type)
	}
	return nil
}

// Fit is the source-side image fit mode.
type Fit string

// Fit modes, named after object-fit.
const (
	FitFill      Fit = "fill"
	FitContain   Fit = "contain"
	FitCover     Fit = "cover"
	FitNone      Fit = "none"
	FitScaleDown Fit = "scaleDown"
)

// ParseFit maps an object-fit value; unknown values are treated as fill,
// the CSS initial value.
func ParseFit(s string) Fit {
	switch s {
	case "contain":
		return FitContain
	case "cover":
		return FitCover
	case "none":
		return FitNone
	case "scale-down", "scaleDown":
		return FitScaleDown
	}
	return FitFill
}

// Image is an image paint. Transform maps the image's unit square into the
// node's unit square (normalized placement); its translation may fall
// outside 0..1, which encodes cropping and is never clamped.
type Image struct {
	Asset     assets.Ref  `json:"asset" bson:"asset"`
	Fit       Fit         `json:"fit" bson:"fit"`
	Transform geom.Matrix `json:"positionTransform" bson:"position_transform"`
	Tiled     bool        `json:"tiled,omitempty" bson:"tiled,omitempty"`
}

// EffectKind tags a shadow effect.
type EffectKind string

// Effect kinds.
const (
	DropShadow  EffectKind = "dropShadow"
	InnerShadow EffectKind = "innerShadow"
)

// Effect is one shadow. A node's effects keep declaration order.
type Effect struct {
	Kind   EffectKind `json:"kind" bson:"kind"`
	Offset geom.Point `json:"offset" bson:"offset"`
	Blur   float64    `json:"blurRadius" bson:"blur_radius"`
	Spread float64    `json:"spreadRadius" bson:"spread_radius"`
	Color  Color      `json:"color" bson:"color"`
}

// Corners holds per-corner radii.
type Corners struct {
	TopLeft     float64 `json:"topLeft" bson:"top_left"`
	TopRight    float64 `json:"topRight" bson:"top_right"`
	BottomRight float64 `json:"bottomRight" bson:"bottom_right"`
	BottomLeft  float64 `json:"bottomLeft" bson:"bottom_left"`
}

// Uniform reports whether all corners share one radius.
func (c Corners) Uniform() bool {
	return c.TopLeft == c.TopRight && c.TopRight == c.BottomRight && c.BottomRight == c.BottomLeft
}

// IsZero reports whether no corner is rounded.
func (c Corners) IsZero() bool { return c == Corners{} }

// Validate rejects negative radii.
func (c Corners) Validate() error {
	if c.TopLeft < 0 || c.TopRight < 0 || c.BottomRight < 0 || c.BottomLeft < 0 {
		return fmt.Errorf("negative corner radius %+v", c)
	}
	return nil
}

// Clamp limits each radius to half the shorter side of size, as renderers do.
func (c Corners) Clamp(size geom.Size) Corners {
	limit := min(size.Width, size.Height) / 2
	f := func(v float64) float64 { return max(0, min(v, limit)) }
	return Corners{f(c.TopLeft), f(c.TopRight), f(c.BottomRight), f(c.BottomLeft)}
}
