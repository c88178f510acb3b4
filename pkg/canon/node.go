// Package canon defines the canonical layout schema: the normalized,
// portable node hierarchy produced by extraction and state merge and
// consumed by reconstruction.
//
// A tree is a single root [Node] whose Children are ordered by ascending
// z-index with ties broken by source document order. Every node carries
// exactly one absolute rectangle in the document coordinate space. Binary
// assets live outside the tree in an [assets.Registry] and are referenced
// by content hash; [Document] bundles both for the wire.
package canon

import (
	"cmp"
	"slices"

	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
)

// Kind classifies a node.
type Kind string

// Node kinds.
const (
	KindFrame  Kind = "frame"
	KindText   Kind = "text"
	KindImage  Kind = "image"
	KindVector Kind = "vector"
)

// Positioning records whether a node takes part in its parent's flow
// layout or is positioned out of flow (absolute, fixed, sticky).
type Positioning string

// Positioning modes.
const (
	PositionFlow     Positioning = "flow"
	PositionAbsolute Positioning = "absolute"
)

// Direction is the main axis of an auto-layout hint.
type Direction string

// Layout directions. Grid is carried for completeness; reconstruction falls
// back to absolute positioning for it.
const (
	DirectionNone   Direction = "none"
	DirectionRow    Direction = "row"
	DirectionColumn Direction = "column"
	DirectionGrid   Direction = "grid"
)

// Justify is main-axis distribution.
type Justify string

// Main-axis values.
const (
	JustifyStart        Justify = "start"
	JustifyCenter       Justify = "center"
	JustifyEnd          Justify = "end"
	JustifySpaceBetween Justify = "space-between"
)

// Align is cross-axis alignment.
type Align string

// Cross-axis values.
const (
	AlignStart   Align = "start"
	AlignCenter  Align = "center"
	AlignEnd     Align = "end"
	AlignStretch Align = "stretch"
)

// AutoLayout is the layout hint carried from the source's layout mode.
type AutoLayout struct {
	Direction Direction  `json:"direction" bson:"direction"`
	Justify   Justify    `json:"justify,omitempty" bson:"justify,omitempty"`
	Align     Align      `json:"align,omitempty" bson:"align,omitempty"`
	Gap       float64    `json:"gap" bson:"gap"`
	CrossGap  float64    `json:"crossGap,omitempty" bson:"cross_gap,omitempty"`
	Padding   geom.Edges `json:"padding" bson:"padding"`
	Wrap      bool       `json:"wrap,omitempty" bson:"wrap,omitempty"`
	Reverse   bool       `json:"reverse,omitempty" bson:"reverse,omitempty"`
	// Tracks holds grid column sizes in px when Direction is grid.
	Tracks []float64 `json:"tracks,omitempty" bson:"tracks,omitempty"`
}

// Active reports whether the hint asks for automatic child layout.
func (a *AutoLayout) Active() bool {
	return a != nil && a.Direction != DirectionNone && a.Direction != ""
}

// TextStyle describes a text run.
type TextStyle struct {
	// Families is the full declared stack, most preferred first.
	Families []string `json:"families" bson:"families"`
	Weight   int      `json:"weight" bson:"weight"`
	Italic   bool     `json:"italic,omitempty" bson:"italic,omitempty"`
	Size     float64  `json:"size" bson:"size"`
	// LineHeight is resolved to px; LineHeightUnit keeps the declared unit
	// ("px", "normal", "" for unitless multipliers, "%", "em").
	LineHeight     float64     `json:"lineHeight" bson:"line_height"`
	LineHeightUnit string      `json:"lineHeightUnit,omitempty" bson:"line_height_unit,omitempty"`
	LetterSpacing  float64     `json:"letterSpacing" bson:"letter_spacing"`
	Decoration     string      `json:"decoration,omitempty" bson:"decoration,omitempty"`
	Transform      string      `json:"transform,omitempty" bson:"transform,omitempty"`
	AlignH         string      `json:"alignHorizontal,omitempty" bson:"align_h,omitempty"`
	AlignV         string      `json:"alignVertical,omitempty" bson:"align_v,omitempty"`
	Color          paint.Color `json:"color" bson:"color"`
}

// Node is one canonical node.
type Node struct {
	ID          string            `json:"id" bson:"id"`
	ParentID    string            `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	Kind        Kind              `json:"kind" bson:"kind"`
	Name        string            `json:"name" bson:"name"`
	Rect        geom.AbsoluteRect `json:"rect" bson:"rect"`
	ZIndex      int               `json:"zIndex" bson:"z_index"`
	DocOrder    int               `json:"docOrder" bson:"doc_order"`
	Opacity     float64           `json:"opacity" bson:"opacity"`
	Positioning Positioning       `json:"positioning,omitempty" bson:"positioning,omitempty"`
	Clips       bool              `json:"clipsContent,omitempty" bson:"clips,omitempty"`
	Degenerate  bool              `json:"degenerate,omitempty" bson:"degenerate,omitempty"`

	Corners       paint.Corners  `json:"cornerRadius" bson:"corner_radius"`
	Paints        []paint.Paint  `json:"paints,omitempty" bson:"paints,omitempty"`
	Strokes       []paint.Paint  `json:"strokes,omitempty" bson:"strokes,omitempty"`
	StrokeWeights *geom.Edges    `json:"strokeWeights,omitempty" bson:"stroke_weights,omitempty"`
	Effects       []paint.Effect `json:"effects,omitempty" bson:"effects,omitempty"`

	TextStyle  *TextStyle  `json:"textStyle,omitempty" bson:"text_style,omitempty"`
	Characters string      `json:"characters,omitempty" bson:"characters,omitempty"`
	AutoLayout *AutoLayout `json:"autoLayoutHint,omitempty" bson:"auto_layout,omitempty"`
	// Transform is the node's own 2-D transform, applied about
	// TransformOrigin (relative to the rect's top-left).
	Transform       *geom.Matrix `json:"transform,omitempty" bson:"transform,omitempty"`
	TransformOrigin *geom.Point  `json:"transformOrigin,omitempty" bson:"transform_origin,omitempty"`
	// Layout is the untransformed box when Transform is set; Rect is then
	// the transformed bounding box.
	Layout *geom.AbsoluteRect `json:"layoutRect,omitempty" bson:"layout_rect,omitempty"`

	// ExtractionError is set on placeholder frames that stand in for a
	// node whose source could not be read.
	ExtractionError string `json:"extractionError,omitempty" bson:"extraction_error,omitempty"`
	// Debug holds source metadata (selector, tag) that compaction strips.
	Debug map[string]string `json:"debug,omitempty" bson:"debug,omitempty"`

	Children         []*Node  `json:"children" bson:"children"`
	ObservedInStates []string `json:"observedInStates" bson:"observed_in_states"`
}

// Walk visits n and its descendants depth-first in child order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) bool { count++; return true })
	return count
}

// Depth returns the depth of the deepest descendant (a leaf has depth 0).
func (n *Node) Depth() int {
	deepest := 0
	n.Walk(func(_ *Node, d int) bool { deepest = max(deepest, d); return true })
	return deepest
}

// Index maps every node id in the subtree to its node.
func (n *Node) Index() map[string]*Node {
	idx := make(map[string]*Node)
	n.Walk(func(node *Node, _ int) bool { idx[node.ID] = node; return true })
	return idx
}

// Find returns the node with id, or nil.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// HasState reports whether state is among the node's observation tags.
func (n *Node) HasState(state string) bool {
	return slices.Contains(n.ObservedInStates, state)
}

// AddState appends state to ObservedInStates unless already present.
func (n *Node) AddState(state string) {
	if !n.HasState(state) {
		n.ObservedInStates = append(n.ObservedInStates, state)
	}
}

// SortChildren orders children by ascending z-index, ties broken by
// document order. The sort is stable.
func (n *Node) SortChildren() {
	slices.SortStableFunc(n.Children, compareStacking)
}

func compareStacking(a, b *Node) int {
	if c := cmp.Compare(a.ZIndex, b.ZIndex); c != 0 {
		return c
	}
	return cmp.Compare(a.DocOrder, b.DocOrder)
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Paints = slices.Clone(n.Paints)
	for i, p := range c.Paints {
		c.Paints[i] = clonePaint(p)
	}
	c.Strokes = slices.Clone(n.Strokes)
	for i, p := range c.Strokes {
		c.Strokes[i] = clonePaint(p)
	}
	c.Effects = slices.Clone(n.Effects)
	c.ObservedInStates = slices.Clone(n.ObservedInStates)
	if n.StrokeWeights != nil {
		w := *n.StrokeWeights
		c.StrokeWeights = &w
	}
	if n.TextStyle != nil {
		ts := *n.TextStyle
		ts.Families = slices.Clone(n.TextStyle.Families)
		c.TextStyle = &ts
	}
	if n.AutoLayout != nil {
		al := *n.AutoLayout
		al.Tracks = slices.Clone(n.AutoLayout.Tracks)
		c.AutoLayout = &al
	}
	if n.Transform != nil {
		m := *n.Transform
		c.Transform = &m
	}
	if n.TransformOrigin != nil {
		p := *n.TransformOrigin
		c.TransformOrigin = &p
	}
	if n.Layout != nil {
		r := *n.Layout
		c.Layout = &r
	}
	if n.Debug != nil {
		c.Debug = make(map[string]string, len(n.Debug))
		for k, v := range n.Debug {
			c.Debug[k] = v
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

func clonePaint(p paint.Paint) paint.Paint {
	if p.Color != nil {
		col := *p.Color
		p.Color = &col
	}
	if p.Gradient != nil {
		g := *p.Gradient
		g.Stops = slices.Clone(p.Gradient.Stops)
		p.Gradient = &g
	}
	if p.Image != nil {
		img := *p.Image
		p.Image = &img
	}
	return p
}

// ImagePaints returns pointers to every image paint of the node, fills
// and strokes alike.
func (n *Node) ImagePaints() []*paint.Image {
	var out []*paint.Image
	for _, list := range [][]paint.Paint{n.Paints, n.Strokes} {
		for i := range list {
			if list[i].Image != nil {
				out = append(out, list[i].Image)
			}
		}
	}
	return out
}
