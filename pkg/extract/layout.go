package extract

import (
	"fmt"
	"strings"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/css"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/source"
)

// readAutoLayout derives the layout hint from the element's layout mode.
// Elements that are neither flex nor grid containers get direction none;
// their padding is still recorded.
func readAutoLayout(n *source.Node, fontSize float64) (*canon.AutoLayout, error) {
	hint := &canon.AutoLayout{Direction: canon.DirectionNone}

	var pad [4]float64
	for i, side := range sides {
		v, _, err := css.Length(n.Get("padding-"+side), css.Context{FontSize: fontSize, Reference: n.Size.Width})
		if err != nil {
			return nil, fmt.Errorf("padding-%s: %w", side, err)
		}
		pad[i] = v
	}
	hint.Padding = geom.Edges{Top: pad[0], Right: pad[1], Bottom: pad[2], Left: pad[3]}

	rowGap := gapPx(n.Get("row-gap"), n.Size.Height, fontSize)
	colGap := gapPx(n.Get("column-gap"), n.Size.Width, fontSize)

	switch n.Get("display") {
	case "flex", "inline-flex":
		dir := n.Get("flex-direction")
		hint.Reverse = strings.HasSuffix(dir, "-reverse")
		if strings.HasPrefix(dir, "column") {
			hint.Direction = canon.DirectionColumn
			hint.Gap, hint.CrossGap = rowGap, colGap
		} else {
			hint.Direction = canon.DirectionRow
			hint.Gap, hint.CrossGap = colGap, rowGap
		}
		hint.Wrap = strings.HasPrefix(n.Get("flex-wrap"), "wrap")
		hint.Justify = justify(n.Get("justify-content"))
		hint.Align = align(n.Get("align-items"))
	case "grid", "inline-grid":
		hint.Direction = canon.DirectionGrid
		hint.Gap, hint.CrossGap = colGap, rowGap
		for _, t := range css.Fields(n.Get("grid-template-columns")) {
			if v, unit, err := css.SplitNumber(t); err == nil && unit == css.UnitPx {
				hint.Tracks = append(hint.Tracks, v)
			}
		}
		hint.Justify = justify(n.Get("justify-content"))
		hint.Align = align(n.Get("align-items"))
	}
	return hint, nil
}

func gapPx(v string, ref, fontSize float64) float64 {
	if v == "" || v == "normal" {
		return 0
	}
	px, _, err := css.Length(v, css.Context{FontSize: fontSize, Reference: ref})
	if err != nil {
		return 0
	}
	return px
}

func justify(v string) canon.Justify {
	switch strings.TrimPrefix(v, "safe ") {
	case "center":
		return canon.JustifyCenter
	case "flex-end", "end", "right":
		return canon.JustifyEnd
	case "space-between", "space-around", "space-evenly":
		return canon.JustifySpaceBetween
	}
	return canon.JustifyStart
}

func align(v string) canon.Align {
	switch strings.TrimPrefix(v, "safe ") {
	case "center":
		return canon.AlignCenter
	case "flex-end", "end", "self-end":
		return canon.AlignEnd
	case "flex-start", "start", "self-start", "baseline", "first baseline", "last baseline":
		return canon.AlignStart
	}
	return canon.AlignStretch
}
