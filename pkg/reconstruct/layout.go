package reconstruct

import "github.com/matzehuels/pageprint/pkg/canon"

var layoutModes = map[canon.Direction]LayoutMode{
	canon.DirectionNone:   LayoutNone,
	"":                    LayoutNone,
	canon.DirectionRow:    LayoutHorizontal,
	canon.DirectionColumn: LayoutVertical,
}

var primaryAlign = map[canon.Justify]AxisAlign{
	canon.JustifyStart:        AlignMin,
	canon.JustifyCenter:       AlignCenter,
	canon.JustifyEnd:          AlignMax,
	canon.JustifySpaceBetween: AlignSpaceBetween,
}

var counterAlign = map[canon.Align]AxisAlign{
	canon.AlignStart:   AlignMin,
	canon.AlignCenter:  AlignCenter,
	canon.AlignEnd:     AlignMax,
	canon.AlignStretch: AlignStretch,
}

// mapAutoLayout translates a layout hint into the target's auto-layout.
// A hint the target cannot express maps to LayoutNone and the returned
// string names the reason.
func mapAutoLayout(h *canon.AutoLayout) (AutoLayout, string) {
	mode, ok := layoutModes[h.Direction]
	switch {
	case !ok:
		return AutoLayout{Mode: LayoutNone}, string(h.Direction)
	case mode == LayoutNone:
		return AutoLayout{Mode: LayoutNone}, ""
	case h.Wrap:
		return AutoLayout{Mode: LayoutNone}, "wrapping"
	case h.Reverse:
		return AutoLayout{Mode: LayoutNone}, "reversed"
	}

	al := AutoLayout{
		Mode:    mode,
		Primary: AlignMin,
		Counter: AlignMin,
		Gap:     h.Gap,
		Padding: h.Padding,
	}
	if v, ok := primaryAlign[h.Justify]; ok {
		al.Primary = v
	}
	if v, ok := counterAlign[h.Align]; ok {
		al.Counter = v
	}
	return al, ""
}
