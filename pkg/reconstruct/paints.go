package reconstruct

import (
	"math"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
)

// scaleModes is the fixed fit table.
var scaleModes = map[paint.Fit]ScaleMode{
	paint.FitFill:      ScaleFill,
	paint.FitContain:   ScaleFit,
	paint.FitCover:     ScaleCrop,
	paint.FitScaleDown: ScaleFit,
	paint.FitNone:      ScaleCrop,
}

// applyPaints sets fills and strokes. Canonical paint lists are top-most
// first; the target stacks bottom to top, so both are reversed.
func (r *run) applyPaints(n *canon.Node, h Handle, g geometry) error {
	if len(n.Paints) > 0 {
		if err := r.b.SetPaints(h, r.paints(n, n.Paints, g)); err != nil {
			return err
		}
	}
	if len(n.Strokes) > 0 {
		weights := geom.Edges{Top: 1, Right: 1, Bottom: 1, Left: 1}
		if n.StrokeWeights != nil {
			weights = *n.StrokeWeights
		}
		if err := r.b.SetStrokes(h, r.paints(n, n.Strokes, g), weights); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) paints(n *canon.Node, list []paint.Paint, g geometry) []Paint {
	out := make([]Paint, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, r.paint(n, list[i], g))
	}
	return out
}

func (r *run) paint(n *canon.Node, p paint.Paint, g geometry) Paint {
	switch {
	case p.Color != nil:
		return solid(*p.Color)
	case p.Gradient != nil:
		return gradient(*p.Gradient, g.box)
	case p.Image != nil:
		return r.image(n, p.Image, g)
	}
	return solid(paint.Transparent)
}

// solid splits alpha out of the color.
func solid(c paint.Color) Paint {
	rgb := paint.Color{R: c.R, G: c.G, B: c.B, A: 1}
	return Paint{Type: PaintSolid, Color: &rgb, Opacity: c.A}
}

// gradient converts a normalized gradient to handle positions in the
// node's unit square. A linear gradient line runs through the center at
// the CSS angle and is long enough that the corners reach 0 and 1, as in
// CSS.
func gradient(gr paint.Gradient, box geom.Size) Paint {
	tp := Paint{Opacity: 1, Stops: gr.Stops}
	if gr.Kind == paint.Radial {
		tp.Type = PaintRadialGradient
		f := gr.Focus
		tp.Handles = []geom.Point{f, {X: f.X + 0.5, Y: f.Y}, {X: f.X, Y: f.Y + 0.5}}
		return tp
	}

	tp.Type = PaintLinearGradient
	rad := gr.Angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	w, h := max(box.Width, minSize), max(box.Height, minSize)
	half := (math.Abs(w*sin) + math.Abs(h*cos)) / 2
	dx, dy := sin*half/w, -cos*half/h
	start := geom.Point{X: 0.5 - dx, Y: 0.5 - dy}
	end := geom.Point{X: 0.5 + dx, Y: 0.5 + dy}
	// The width handle is perpendicular to the line in pixel space.
	width := geom.Point{X: start.X - dy*h/w, Y: start.Y + dx*w/h}
	tp.Handles = []geom.Point{start, end, width}
	return tp
}

// image maps an image paint through the fit table. An asset that is not
// in the registry becomes a placeholder fill and a diagnostic.
func (r *run) image(n *canon.Node, img *paint.Image, g geometry) Paint {
	asset, ok := r.reg.Lookup(img.Asset.Hash)
	if !img.Asset.Resolved() || !ok {
		reason := "asset missing from registry"
		if !img.Asset.Resolved() {
			reason = "asset was never resolved"
		}
		r.report.Add(diag.Entry{
			Kind:   diag.AssetResolutionError,
			Phase:  phase,
			NodeID: n.ID,
			Reason: reason,
			Detail: map[string]string{"hash": img.Asset.Hash, "source": img.Asset.Source},
		})
		r.logger.Warn("asset placeholder", "node", n.ID, "reason", reason, "hash", img.Asset.Hash)
		tp := solid(paint.Placeholder)
		tp.Placeholder = true
		return tp
	}

	mode, ok := scaleModes[img.Fit]
	if !ok {
		mode = ScaleFill
	}
	tp := Paint{Type: PaintImage, Opacity: 1, ImageHash: asset.Hash, ScaleMode: mode}

	switch {
	case img.Tiled:
		tp.ScaleMode = ScaleTile
		tp.ScalingFactor = 1
		if asset.Width > 0 {
			tp.ScalingFactor = img.Transform.A * g.box.Width / float64(asset.Width)
		}
	case mode == ScaleCrop && img.Fit == paint.FitNone && g.resized:
		// The node already has the image's size.
		id := geom.Identity()
		tp.ImageTransform = &id
	case mode == ScaleCrop:
		if inv, err := img.Transform.Inverse(); err == nil {
			tp.ImageTransform = &inv
		}
	}
	return tp
}
