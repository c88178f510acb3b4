package reconstruct

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/fonts"
)

var (
	alignH = map[string]string{"left": "LEFT", "center": "CENTER", "right": "RIGHT", "justified": "JUSTIFIED"}
	alignV = map[string]string{"top": "TOP", "center": "CENTER", "bottom": "BOTTOM"}
)

// text resolves a text node's font and style. Target fonts cannot apply
// CSS text-transform, so it is baked into the characters.
func (r *run) text(n *canon.Node) (Text, error) {
	ts := n.TextStyle
	if ts == nil {
		return Text{}, errors.New(errors.ErrCodeSchemaInvalid, "text node without text style")
	}

	res, err := r.fonts.Resolve(r.ctx, ts.Families, ts.Weight, ts.Italic)
	if err != nil {
		return Text{}, err
	}
	if res.Degraded(ts.Families) {
		r.report.Add(diag.Entry{
			Kind:   diag.FontFallback,
			Phase:  phase,
			NodeID: n.ID,
			Reason: "declared font unavailable; using " + res.Family + " " + res.Style.Name,
			Detail: map[string]string{
				"declared": strings.Join(ts.Families, ", "),
				"family":   res.Family,
				"style":    res.Style.Name,
				"via":      string(res.Via),
			},
		})
		r.logger.Debug("font fallback", "node", n.ID, "declared", ts.Families, "family", res.Family, "via", res.Via)
	}

	t := Text{
		Characters:    transformText(n.Characters, ts.Transform),
		Font:          FontName{Family: res.Family, Style: res.Style.Name},
		Size:          ts.Size,
		LineHeight:    lineHeight(ts),
		LetterSpacing: Measure{Value: ts.LetterSpacing, Unit: UnitPixels},
		Decoration:    decoration(ts.Decoration),
		AlignH:        "LEFT",
		AlignV:        "TOP",
		Fills:         []Paint{solid(ts.Color)},
	}
	if v, ok := alignH[ts.AlignH]; ok {
		t.AlignH = v
	}
	if v, ok := alignV[ts.AlignV]; ok {
		t.AlignV = v
	}
	return t, nil
}

func lineHeight(ts *canon.TextStyle) Measure {
	switch {
	case ts.LineHeightUnit == "normal" || ts.LineHeight <= 0:
		return Measure{Unit: UnitAuto}
	case (ts.LineHeightUnit == "" || ts.LineHeightUnit == "%") && ts.Size > 0:
		return Measure{Value: ts.LineHeight / ts.Size * 100, Unit: UnitPercent}
	}
	return Measure{Value: ts.LineHeight, Unit: UnitPixels}
}

func decoration(v string) string {
	switch {
	case strings.Contains(v, "line-through"):
		return "STRIKETHROUGH"
	case strings.Contains(v, "underline"):
		return "UNDERLINE"
	}
	return "NONE"
}

func transformText(s, transform string) string {
	switch transform {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(s)
	}
	return s
}

var _ fonts.Catalog = builderCatalog{}
