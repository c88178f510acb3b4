package reconstruct

import (
	"math"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
)

// minSize is the smallest width or height a target node accepts.
const minSize = 0.01

// geometry is the resolved placement of one node.
type geometry struct {
	placement Placement
	transform *Transform
	// box is the node's untransformed size; image placements and gradient
	// handles are normalized against it.
	box geom.Size
	// resized is set when an unscaled image forced the node to the
	// image's intrinsic size.
	resized bool
}

// place computes where n goes inside its parent.
func (r *run) place(n *canon.Node, parent parentInfo) geometry {
	box := n.Rect
	if n.Transform != nil && n.Layout != nil {
		box = *n.Layout
	}
	g := geometry{box: box.Size()}
	g.placement = r.placeRect(box, n.Positioning, parent)

	if n.Transform != nil && !n.Transform.IsIdentity() {
		if parent.layout != nil {
			g.placement.Positioned = true
			g.placement.Absolute = true
		}
		r.applyTransform(n, &g)
	}

	if size, ok := unscaledImage(n); ok {
		g.placement.Width, g.placement.Height = size.Width, size.Height
		g.resized = true
	}

	g.placement.Width = max(g.placement.Width, minSize)
	g.placement.Height = max(g.placement.Height, minSize)
	return g
}

// placeRect positions rect relative to the parent. Children of an
// auto-layout parent are measured from its content box; flow children
// leave their position to the parent.
func (r *run) placeRect(rect geom.AbsoluteRect, pos canon.Positioning, parent parentInfo) Placement {
	var padding *geom.Edges
	if parent.layout != nil {
		padding = &parent.layout.Padding
	}
	rel := geom.Relative(rect, parent.rect, padding)
	p := Placement{X: rel.X, Y: rel.Y, Width: rel.Width, Height: rel.Height, Positioned: true}
	if parent.layout != nil {
		if pos == canon.PositionAbsolute {
			p.Absolute = true
		} else {
			p.Positioned = false
		}
	}
	p.Width = max(p.Width, minSize)
	p.Height = max(p.Height, minSize)
	return p
}

// applyTransform folds n's transform into g: translation and the
// transform-origin pivot move the position, scale resizes the node and
// rotation becomes the node's rotation about its top-left corner.
func (r *run) applyTransform(n *canon.Node, g *geometry) {
	m := *n.Transform
	origin := geom.Point{X: g.box.Width / 2, Y: g.box.Height / 2}
	if n.TransformOrigin != nil {
		origin = *n.TransformOrigin
	}
	lin := geom.Matrix{A: m.A, B: m.B, C: m.C, D: m.D}
	pivot := lin.Apply(origin)
	g.placement.X += m.E + origin.X - pivot.X
	g.placement.Y += m.F + origin.Y - pivot.Y

	d := m.Decompose()
	if d.ScaleX < 0 || d.ScaleY < 0 {
		r.report.Addf(diag.LayoutFallback, phase, n.ID, "mirrored transform cannot be expressed; flip dropped")
	}
	if d.Skew != 0 {
		r.report.Addf(diag.LayoutFallback, phase, n.ID, "skew of %.2f degrees cannot be expressed; dropped", d.Skew)
	}
	g.placement.Width *= math.Abs(d.ScaleX)
	g.placement.Height *= math.Abs(d.ScaleY)
	if d.Rotation != 0 {
		g.transform = &Transform{Rotation: -d.Rotation}
	}
}

// unscaledImage reports the intrinsic size of an image node drawn with
// fit none.
func unscaledImage(n *canon.Node) (geom.Size, bool) {
	if n.Kind != canon.KindImage || len(n.Paints) == 0 {
		return geom.Size{}, false
	}
	img := n.Paints[0].Image
	if img == nil || img.Fit != paint.FitNone || img.Asset.Width <= 0 || img.Asset.Height <= 0 {
		return geom.Size{}, false
	}
	return geom.Size{Width: float64(img.Asset.Width), Height: float64(img.Asset.Height)}, true
}
