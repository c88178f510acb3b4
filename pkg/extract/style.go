package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/css"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
	"github.com/matzehuels/pageprint/pkg/source"
)

// describe fills in the kind and every style-derived field of node.
func (w *walker) describe(node *canon.Node, n, styled *source.Node, fontSize float64) error {
	if n.IsText() {
		node.Kind = canon.KindText
		return w.describeText(node, n.Text, styled, fontSize)
	}

	if err := readBox(node, n); err != nil {
		return err
	}
	painted, err := w.readPaint(node, n, fontSize)
	if err != nil {
		return err
	}

	switch node.Kind = classify(n, painted); node.Kind {
	case canon.KindText:
		return w.describeText(node, n.Text, n, fontSize)
	case canon.KindImage:
		return w.describeImage(node, n)
	case canon.KindVector:
		if n.SVG != "" {
			return w.describeSVG(node, n)
		}
	case canon.KindFrame:
		hint, err := readAutoLayout(n, fontSize)
		if err != nil {
			return err
		}
		node.AutoLayout = hint
	}
	return nil
}

// classify picks the node kind. painted reports visible box paint
// (background, border or shadow).
func classify(n *source.Node, painted bool) canon.Kind {
	switch {
	case n.IsText():
		return canon.KindText
	case n.SVG != "":
		return canon.KindVector
	case n.Replaced && n.ImageURL != "":
		return canon.KindImage
	case len(n.Children) > 0:
		return canon.KindFrame
	case n.Text != "":
		if painted {
			return canon.KindFrame
		}
		return canon.KindText
	case painted:
		return canon.KindVector
	}
	return canon.KindFrame
}

// readBox reads the properties every element kind carries.
func readBox(node *canon.Node, n *source.Node) error {
	if v := n.Get("opacity"); v != "" {
		o, err := css.Number(v)
		if err != nil {
			return fmt.Errorf("opacity: %w", err)
		}
		node.Opacity = min(max(o, 0), 1)
	}
	if n.Get("visibility") == "hidden" || n.Get("visibility") == "collapse" {
		node.Opacity = 0
	}
	if z := n.Get("z-index"); z != "" && z != "auto" {
		v, err := strconv.Atoi(z)
		if err != nil {
			return fmt.Errorf("z-index: %w", err)
		}
		node.ZIndex = v
	}
	switch n.Get("position") {
	case "absolute", "fixed":
		node.Positioning = canon.PositionAbsolute
	}
	for _, p := range []string{"overflow-x", "overflow-y"} {
		if v := n.Get(p); v != "" && v != "visible" {
			node.Clips = true
		}
	}
	return nil
}

// readPaint reads backgrounds, borders, shadows and corner radii. Paints
// are stored top-most first with the background color last.
func (w *walker) readPaint(node *canon.Node, n *source.Node, fontSize float64) (bool, error) {
	box := n.Size

	layers := paint.ParseLayers(n.Get("background-image"), n.Get("background-size"),
		n.Get("background-position"), n.Get("background-repeat"))
	for _, l := range layers {
		p, ok, err := w.backgroundLayer(node, l, box)
		if err != nil {
			return false, err
		}
		if ok {
			node.Paints = append(node.Paints, p)
		}
	}
	if v := n.Get("background-color"); v != "" {
		c, err := paint.ParseColor(v)
		if err != nil {
			return false, fmt.Errorf("background-color: %w", err)
		}
		if !c.IsTransparent() {
			node.Paints = append(node.Paints, paint.Solid(c))
		}
	}

	if err := readBorders(node, n); err != nil {
		return false, err
	}

	if v := n.Get("box-shadow"); v != "" && v != "none" {
		effects, err := paint.ParseShadows(v)
		if err != nil {
			return false, fmt.Errorf("box-shadow: %w", err)
		}
		node.Effects = effects
	}

	corners, err := readCorners(n, fontSize)
	if err != nil {
		return false, err
	}
	node.Corners = corners

	return len(node.Paints) > 0 || len(node.Strokes) > 0 || len(node.Effects) > 0, nil
}

func (w *walker) backgroundLayer(node *canon.Node, l paint.Layer, box geom.Size) (paint.Paint, bool, error) {
	if paint.IsGradient(l.Image) {
		g, err := paint.ParseGradient(l.Image, box)
		if err != nil {
			w.logger.Debug("gradient skipped", "node", node.ID, "err", err)
			return paint.Paint{}, false, nil
		}
		return paint.Paint{Type: paint.TypeGradient, Gradient: &g}, true, nil
	}
	url, ok := paint.URL(l.Image)
	if !ok {
		w.logger.Debug("background layer skipped", "node", node.ID, "value", l.Image)
		return paint.Paint{}, false, nil
	}
	ref, err := w.resolve(node.ID, url)
	if err != nil {
		return paint.Paint{}, false, err
	}
	intrinsic := geom.Size{Width: float64(ref.Width), Height: float64(ref.Height)}
	fit, m, tiled := paint.BackgroundPlacement(l, box, intrinsic)
	return paint.Paint{Type: paint.TypeImage, Image: &paint.Image{
		Asset: ref, Fit: fit, Transform: m, Tiled: tiled,
	}}, true, nil
}

var sides = [4]string{"top", "right", "bottom", "left"}

// readBorders turns visible borders into one stroke paint plus per-side
// weights. When sides disagree on color the first visible side wins.
func readBorders(node *canon.Node, n *source.Node) error {
	var widths [4]float64
	var color *paint.Color
	for i, side := range sides {
		style := n.Get("border-" + side + "-style")
		if style == "" || style == "none" || style == "hidden" {
			continue
		}
		wv := css.Px(n.Get("border-" + side + "-width"))
		if wv <= 0 {
			continue
		}
		c, err := paint.ParseColor(n.Get("border-" + side + "-color"))
		if err != nil {
			return fmt.Errorf("border-%s-color: %w", side, err)
		}
		if c.IsTransparent() {
			continue
		}
		widths[i] = wv
		if color == nil {
			color = &c
		}
	}
	if color == nil {
		return nil
	}
	node.Strokes = []paint.Paint{paint.Solid(*color)}
	node.StrokeWeights = &geom.Edges{Top: widths[0], Right: widths[1], Bottom: widths[2], Left: widths[3]}
	return nil
}

func readCorners(n *source.Node, fontSize float64) (paint.Corners, error) {
	props := [4]string{"border-top-left-radius", "border-top-right-radius", "border-bottom-right-radius", "border-bottom-left-radius"}
	var r [4]float64
	for i, p := range props {
		v := n.Get(p)
		if v == "" {
			continue
		}
		// Elliptical radii ("10px 20px") keep the horizontal component.
		parts := css.Fields(v)
		if len(parts) == 0 {
			continue
		}
		px, _, err := css.Length(parts[0], css.Context{FontSize: fontSize, Reference: n.Size.Width})
		if err != nil {
			return paint.Corners{}, fmt.Errorf("%s: %w", p, err)
		}
		r[i] = max(px, 0)
	}
	c := paint.Corners{TopLeft: r[0], TopRight: r[1], BottomRight: r[2], BottomLeft: r[3]}
	return c.Clamp(n.Size), nil
}

func fontSizeOf(n *source.Node) float64 {
	if n == nil {
		return css.RootFontSize
	}
	if v := css.Px(n.Get("font-size")); v > 0 {
		return v
	}
	return css.RootFontSize
}

// splitFamilies parses a font-family list into unquoted names.
func splitFamilies(v string) []string {
	var out []string
	for _, f := range css.SplitTopLevel(v, ',') {
		if f = strings.TrimSpace(css.Unquote(strings.TrimSpace(f))); f != "" {
			out = append(out, f)
		}
	}
	return out
}
