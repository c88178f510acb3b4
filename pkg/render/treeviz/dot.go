package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-graphviz"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/paint"
)

// maxTextLabel caps the characters shown for text nodes.
const maxTextLabel = 24

// Options configures tree diagram rendering.
type Options struct {
	// Detailed includes the rect, stacking values and states in labels.
	// When false, only the name and kind are shown.
	Detailed bool
	// MaxDepth hides nodes deeper than this. Zero shows the whole tree.
	MaxDepth int
	// States lists every state of the document. Nodes observed in fewer
	// states are outlined with dashes.
	States []string
}

// ToDOT converts a canonical tree to Graphviz DOT format. The resulting
// DOT string can be rendered using [RenderSVG].
func ToDOT(root *canon.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	var edges [][2]string
	root.Walk(func(n *canon.Node, depth int) bool {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label, len(opts.States))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			if len(n.Children) > 0 {
				more := n.ID + "+"
				fmt.Fprintf(&buf, "  %q [label=%q, shape=plaintext, style=\"\"];\n", more, fmt.Sprintf("%d more", n.Count()-1))
				edges = append(edges, [2]string{n.ID, more})
			}
			return false
		}
		for _, c := range n.Children {
			edges = append(edges, [2]string{n.ID, c.ID})
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *canon.Node, detailed bool) string {
	name := n.Name
	if name == "" {
		name = n.ID
	}
	head := fmt.Sprintf("%s (%s)", name, n.Kind)
	if n.Kind == canon.KindText && n.Characters != "" {
		head += "\n\"" + truncate(n.Characters, maxTextLabel) + "\""
	}
	if !detailed {
		return head
	}

	parts := []string{
		"id: " + n.ID,
		"rect: " + n.Rect.String(),
		fmt.Sprintf("z: %d  order: %d", n.ZIndex, n.DocOrder),
	}
	if n.AutoLayout.Active() {
		parts = append(parts, "layout: "+string(n.AutoLayout.Direction))
	}
	if len(n.ObservedInStates) > 0 {
		parts = append(parts, "states: "+strings.Join(n.ObservedInStates, ","))
	}
	if n.ExtractionError != "" {
		parts = append(parts, "error: "+truncate(n.ExtractionError, 40))
	}
	return head + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *canon.Node, label string, states int) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	style := "rounded,filled"
	if states > 0 && len(n.ObservedInStates) < states {
		style += ",dashed"
	}
	switch {
	case n.ExtractionError != "":
		attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=\"#c0392b\"", "fontcolor=\"#c0392b\"")
	case n.Degenerate:
		attrs = append(attrs, "fillcolor=lightgrey")
	default:
		if c, ok := fill(n); ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c.Hex()))
			if dark(c) {
				attrs = append(attrs, "fontcolor=white")
			}
		}
	}
	if n.Kind == canon.KindText {
		style = strings.Replace(style, "rounded", "rounded,bold", 1)
	}
	return append(attrs, fmt.Sprintf("style=%q", style))
}

// fill returns the node's top-most opaque solid paint.
func fill(n *canon.Node) (paint.Color, bool) {
	for _, p := range n.Paints {
		if p.Color != nil && !p.Color.IsTransparent() {
			return paint.Color{R: p.Color.R, G: p.Color.G, B: p.Color.B, A: 1}, true
		}
	}
	return paint.Color{}, false
}

func dark(c paint.Color) bool {
	l, _, _ := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Lab()
	return l < 0.55
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
