package reconstruct

import (
	"context"

	"github.com/matzehuels/pageprint/pkg/fonts"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
)

// Handle is the builder's reference to a node it created. The empty
// Handle is the target document's top level.
type Handle string

// SceneBuilder is the target scene graph. Reconstruction issues an ordered
// sequence of calls against it and never inspects the resulting nodes.
//
// Setters may be called in any order after creation; a builder that
// cannot apply a value returns an error and the node is replaced by an
// empty frame.
type SceneBuilder interface {
	CreateFrame(ctx context.Context, parent Handle, name string) (Handle, error)
	CreateText(ctx context.Context, parent Handle, name string) (Handle, error)
	CreateVector(ctx context.Context, parent Handle, name string) (Handle, error)
	CreateRectangle(ctx context.Context, parent Handle, name string) (Handle, error)

	SetRect(h Handle, p Placement) error
	SetTransform(h Handle, t Transform) error
	SetAutoLayout(h Handle, l AutoLayout) error
	SetPaints(h Handle, fills []Paint) error
	SetStrokes(h Handle, strokes []Paint, weights geom.Edges) error
	SetCornerRadius(h Handle, r CornerRadius) error
	SetEffects(h Handle, effects []Effect) error
	SetOpacity(h Handle, opacity float64) error
	SetClipsContent(h Handle, clips bool) error
	SetText(h Handle, t Text) error

	// Remove deletes a node and its subtree.
	Remove(h Handle) error

	// FontStyles reports which styles of family the target can use. An
	// unavailable family yields no styles and no error.
	FontStyles(ctx context.Context, family string) ([]fonts.Style, error)
}

// Placement positions a node inside its parent. When Positioned is false
// the parent's auto-layout computes the position and only the size
// applies. X and Y are measured from the parent's content box when the
// parent lays out its children, else from its border box.
type Placement struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Positioned bool    `json:"positioned"`
	// Absolute opts the node out of its parent's auto-layout.
	Absolute bool `json:"absolute,omitempty"`
}

// Transform is applied about the node's top-left corner after placement.
// Rotation is counter-clockwise in degrees, as design tools display it.
type Transform struct {
	Rotation float64 `json:"rotation"`
}

// LayoutMode is the target's auto-layout mode.
type LayoutMode string

// Layout modes.
const (
	LayoutNone       LayoutMode = "NONE"
	LayoutHorizontal LayoutMode = "HORIZONTAL"
	LayoutVertical   LayoutMode = "VERTICAL"
)

// AxisAlign is an auto-layout alignment value.
type AxisAlign string

// Axis alignment values.
const (
	AlignMin          AxisAlign = "MIN"
	AlignCenter       AxisAlign = "CENTER"
	AlignMax          AxisAlign = "MAX"
	AlignSpaceBetween AxisAlign = "SPACE_BETWEEN"
	AlignStretch      AxisAlign = "STRETCH"
)

// AutoLayout configures a frame's automatic child layout.
type AutoLayout struct {
	Mode    LayoutMode `json:"mode"`
	Primary AxisAlign  `json:"primaryAxisAlign,omitempty"`
	Counter AxisAlign  `json:"counterAxisAlign,omitempty"`
	Gap     float64    `json:"itemSpacing"`
	Padding geom.Edges `json:"padding"`
}

// PaintType tags a target paint.
type PaintType string

// Target paint types.
const (
	PaintSolid          PaintType = "SOLID"
	PaintLinearGradient PaintType = "GRADIENT_LINEAR"
	PaintRadialGradient PaintType = "GRADIENT_RADIAL"
	PaintImage          PaintType = "IMAGE"
)

// ScaleMode is the target's image fit.
type ScaleMode string

// Scale modes.
const (
	ScaleFill ScaleMode = "FILL"
	ScaleFit  ScaleMode = "FIT"
	ScaleCrop ScaleMode = "CROP"
	ScaleTile ScaleMode = "TILE"
)

// Paint is a target fill or stroke. Color carries RGB with Opacity split
// out, the way design tools store it.
type Paint struct {
	Type    PaintType    `json:"type"`
	Color   *paint.Color `json:"color,omitempty"`
	Opacity float64      `json:"opacity"`

	// Gradients: handle positions in the node's unit square (start, end,
	// width) and the stops.
	Handles []geom.Point `json:"gradientHandlePositions,omitempty"`
	Stops   []paint.Stop `json:"gradientStops,omitempty"`

	// Images.
	ImageHash string    `json:"imageHash,omitempty"`
	ScaleMode ScaleMode `json:"scaleMode,omitempty"`
	// ImageTransform maps the node's unit square to the image's unit
	// square (CROP only).
	ImageTransform *geom.Matrix `json:"imageTransform,omitempty"`
	// ScalingFactor is the tile scale (TILE only).
	ScalingFactor float64 `json:"scalingFactor,omitempty"`

	// Placeholder marks a fill standing in for an asset that could not be
	// resolved.
	Placeholder bool `json:"placeholder,omitempty"`
}

// CornerRadius is either one uniform radius or four per-corner radii.
type CornerRadius struct {
	Mixed       bool    `json:"mixed"`
	Radius      float64 `json:"radius,omitempty"`
	TopLeft     float64 `json:"topLeft,omitempty"`
	TopRight    float64 `json:"topRight,omitempty"`
	BottomRight float64 `json:"bottomRight,omitempty"`
	BottomLeft  float64 `json:"bottomLeft,omitempty"`
}

// EffectType tags a target effect.
type EffectType string

// Effect types.
const (
	EffectDropShadow  EffectType = "DROP_SHADOW"
	EffectInnerShadow EffectType = "INNER_SHADOW"
)

// Effect is one shadow.
type Effect struct {
	Type   EffectType  `json:"type"`
	Color  paint.Color `json:"color"`
	Offset geom.Point  `json:"offset"`
	Radius float64     `json:"radius"`
	Spread float64     `json:"spread"`
}

// FontName selects one face.
type FontName struct {
	Family string `json:"family"`
	Style  string `json:"style"`
}

// Unit of a line height or letter spacing.
type Unit string

// Units.
const (
	UnitAuto    Unit = "AUTO"
	UnitPixels  Unit = "PIXELS"
	UnitPercent Unit = "PERCENT"
)

// Measure is a value with a unit.
type Measure struct {
	Value float64 `json:"value,omitempty"`
	Unit  Unit    `json:"unit"`
}

// Text holds the content and style of a text node.
type Text struct {
	Characters    string   `json:"characters"`
	Font          FontName `json:"fontName"`
	Size          float64  `json:"fontSize"`
	LineHeight    Measure  `json:"lineHeight"`
	LetterSpacing Measure  `json:"letterSpacing"`
	Decoration    string   `json:"textDecoration"`
	AlignH        string   `json:"textAlignHorizontal"`
	AlignV        string   `json:"textAlignVertical"`
	Fills         []Paint  `json:"fills"`
}
