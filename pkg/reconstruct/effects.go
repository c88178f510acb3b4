package reconstruct

import (
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/paint"
)

var effectTypes = map[paint.EffectKind]EffectType{
	paint.DropShadow:  EffectDropShadow,
	paint.InnerShadow: EffectInnerShadow,
}

// applyEffects sets corners, shadows, opacity and clipping.
func (r *run) applyEffects(n *canon.Node, h Handle, g geometry) error {
	if n.Kind != canon.KindText && !n.Corners.IsZero() {
		if err := r.b.SetCornerRadius(h, cornerRadius(n.Corners.Clamp(g.box))); err != nil {
			return err
		}
	}
	if len(n.Effects) > 0 {
		if err := r.b.SetEffects(h, effects(n.Effects)); err != nil {
			return err
		}
	}
	if n.Opacity < 1 {
		if err := r.b.SetOpacity(h, n.Opacity); err != nil {
			return err
		}
	}
	if n.Kind == canon.KindFrame && n.Clips {
		if err := r.b.SetClipsContent(h, true); err != nil {
			return err
		}
	}
	return nil
}

// cornerRadius emits one radius when all corners agree.
func cornerRadius(c paint.Corners) CornerRadius {
	if c.Uniform() {
		return CornerRadius{Radius: c.TopLeft}
	}
	return CornerRadius{
		Mixed:       true,
		TopLeft:     c.TopLeft,
		TopRight:    c.TopRight,
		BottomRight: c.BottomRight,
		BottomLeft:  c.BottomLeft,
	}
}

// effects keeps declaration order; the target draws every shadow.
func effects(list []paint.Effect) []Effect {
	out := make([]Effect, 0, len(list))
	for _, e := range list {
		typ, ok := effectTypes[e.Kind]
		if !ok {
			typ = EffectDropShadow
		}
		out = append(out, Effect{Type: typ, Color: e.Color, Offset: e.Offset, Radius: e.Blur, Spread: e.Spread})
	}
	return out
}
