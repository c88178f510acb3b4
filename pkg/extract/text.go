package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/css"
	"github.com/matzehuels/pageprint/pkg/paint"
	"github.com/matzehuels/pageprint/pkg/source"
)

// normalLineHeight is the multiplier used for line-height: normal.
const normalLineHeight = 1.2

// describeText sets the text style and characters of a text node. styled
// is the element whose computed style applies to the run.
func (w *walker) describeText(node *canon.Node, text string, styled *source.Node, fontSize float64) error {
	ts, err := readTextStyle(styled, fontSize)
	if err != nil {
		return err
	}
	node.TextStyle = ts
	node.Characters = text
	return nil
}

func readTextStyle(n *source.Node, size float64) (*canon.TextStyle, error) {
	ts := &canon.TextStyle{
		Families: splitFamilies(n.Get("font-family")),
		Weight:   400,
		Size:     size,
		Italic:   strings.HasPrefix(n.Get("font-style"), "italic") || strings.HasPrefix(n.Get("font-style"), "oblique"),
		Color:    paint.Black,
	}
	if len(ts.Families) == 0 {
		ts.Families = []string{"serif"}
	}

	weight, err := fontWeight(n.Get("font-weight"))
	if err != nil {
		return nil, err
	}
	ts.Weight = weight

	ts.LineHeight, ts.LineHeightUnit, err = lineHeight(n.Get("line-height"), size)
	if err != nil {
		return nil, err
	}

	if v := n.Get("letter-spacing"); v != "" && v != "normal" {
		px, _, err := css.Length(v, css.Context{FontSize: size, Reference: size})
		if err != nil {
			return nil, fmt.Errorf("letter-spacing: %w", err)
		}
		ts.LetterSpacing = px
	}

	if v := n.Get("text-decoration-line"); v != "" && v != "none" {
		ts.Decoration = v
	}
	if v := n.Get("text-transform"); v != "" && v != "none" {
		ts.Transform = v
	}
	ts.AlignH = textAlign(n.Get("text-align"))
	ts.AlignV = verticalAlign(n.Get("vertical-align"))

	if v := n.Get("color"); v != "" {
		c, err := paint.ParseColor(v)
		if err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		ts.Color = c
	}
	return ts, nil
}

func fontWeight(v string) (int, error) {
	switch v {
	case "", "normal":
		return 400, nil
	case "bold":
		return 700, nil
	case "lighter":
		return 300, nil
	case "bolder":
		return 700, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("font-weight: %w", err)
	}
	return min(max(int(f+0.5), 1), 1000), nil
}

// lineHeight resolves line-height to px and reports the declared unit.
// Computed values are "normal", px, or a unitless multiplier.
func lineHeight(v string, size float64) (float64, string, error) {
	if v == "" || v == "normal" {
		return size * normalLineHeight, "normal", nil
	}
	num, unit, err := css.SplitNumber(v)
	if err != nil {
		return 0, "", fmt.Errorf("line-height: %w", err)
	}
	switch unit {
	case css.UnitNone:
		return num * size, "", nil
	case css.UnitPercent:
		return num / 100 * size, "%", nil
	}
	px, _, err := css.Length(v, css.Context{FontSize: size})
	if err != nil {
		return 0, "", fmt.Errorf("line-height: %w", err)
	}
	return px, string(unit), nil
}

func textAlign(v string) string {
	switch v {
	case "center", "-webkit-center":
		return "center"
	case "right", "end", "-webkit-right":
		return "right"
	case "justify":
		return "justified"
	}
	return "left"
}

func verticalAlign(v string) string {
	switch v {
	case "middle":
		return "center"
	case "bottom", "text-bottom":
		return "bottom"
	}
	return "top"
}
