// Package tokens derives design tokens from a canonical tree: the solid
// colors, text styles and spacings it uses, ranked by usage.
package tokens

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/paint"
)

// Collect walks the tree and counts every solid fill and stroke color,
// text color, text style, auto-layout gap and padding side. Lists are
// ordered by descending count, ties by value.
func Collect(root *canon.Node) *canon.Tokens {
	colors := make(map[string]int)
	types := make(map[canon.TypeToken]int)
	spacing := make(map[float64]int)

	root.Walk(func(n *canon.Node, _ int) bool {
		for _, list := range [][]paint.Paint{n.Paints, n.Strokes} {
			for _, p := range list {
				if p.Color != nil && !p.Color.IsTransparent() {
					colors[p.Color.Hex()]++
				}
			}
		}
		if ts := n.TextStyle; ts != nil {
			if !ts.Color.IsTransparent() {
				colors[ts.Color.Hex()]++
			}
			family := ""
			if len(ts.Families) > 0 {
				family = ts.Families[0]
			}
			types[canon.TypeToken{Family: family, Weight: ts.Weight, Size: ts.Size, LineHeight: round(ts.LineHeight)}]++
		}
		if al := n.AutoLayout; al != nil {
			for _, v := range []float64{al.Gap, al.CrossGap, al.Padding.Top, al.Padding.Right, al.Padding.Bottom, al.Padding.Left} {
				if v > 0 {
					spacing[round(v)]++
				}
			}
		}
		return true
	})

	t := &canon.Tokens{}
	for hex, n := range colors {
		t.Colors = append(t.Colors, canon.ColorToken{Hex: hex, Count: n})
	}
	slices.SortFunc(t.Colors, func(a, b canon.ColorToken) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Hex, b.Hex))
	})

	for tt, n := range types {
		tt.Count = n
		t.Typography = append(t.Typography, tt)
	}
	slices.SortFunc(t.Typography, func(a, b canon.TypeToken) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Family, b.Family),
			cmp.Compare(a.Size, b.Size),
			cmp.Compare(a.Weight, b.Weight),
			cmp.Compare(a.LineHeight, b.LineHeight),
		)
	})

	for v, n := range spacing {
		t.Spacing = append(t.Spacing, canon.SpacingToken{Value: v, Count: n})
	}
	slices.SortFunc(t.Spacing, func(a, b canon.SpacingToken) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Value, b.Value))
	})
	return t
}

// round keeps two decimals so sub-pixel noise does not split tokens.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
