// Package treeviz renders canonical trees as node-link diagrams for
// debugging.
//
// # Usage
//
// Convert a tree to DOT, then render to SVG:
//
//	dot := treeviz.ToDOT(doc.Tree, treeviz.Options{States: doc.States})
//	svg, err := treeviz.RenderSVG(dot)
//
// # Options
//
//   - Detailed: labels carry the rect, stacking values and observed states
//   - MaxDepth: prunes the diagram below a depth (0 shows everything)
//   - States: the document's states; nodes missing from some of them are
//     drawn with a dashed outline
//
// Nodes are filled with their top-most solid paint. Placeholder frames
// left by failed extraction are drawn in red.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package treeviz
