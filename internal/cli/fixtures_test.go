package cli

import (
	"io"
	"testing"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
	"github.com/matzehuels/pageprint/pkg/source"
)

// swapOut redirects status output for the duration of the test.
func swapOut(t *testing.T, w io.Writer) {
	t.Helper()
	prev := out
	out = w
	t.Cleanup(func() { out = prev })
}

func frame(id, parent string, order int, l, t, w, h float64, state string, children ...*canon.Node) *canon.Node {
	return &canon.Node{
		ID: id, ParentID: parent, Kind: canon.KindFrame, Name: id,
		Rect: geom.NewRect(l, t, w, h), Opacity: 1, DocOrder: order,
		Children: children, ObservedInStates: []string{state},
	}
}

// stateDocument is a single-state document: a root with a header holding
// a logo, and optionally a menu.
func stateDocument(state string, withMenu bool) *canon.Document {
	root := frame("root", "", 0, 0, 0, 800, 600, state,
		frame("header", "root", 1, 0, 0, 800, 60, state,
			frame("logo", "header", 2, 16, 12, 64, 36, state)))
	root.Paints = []paint.Paint{paint.Solid(paint.White)}
	if withMenu {
		root.Children = append(root.Children, frame("menu", "root", 3, 600, 60, 200, 300, state))
	}
	doc := canon.NewDocument(root, assets.NewRegistry())
	doc.Source.URL = "https://example.com/"
	doc.States, doc.BaseState = []string{state}, state
	return doc
}

func el(tag string, x, y, w, h float64, style map[string]string, children ...*source.Node) *source.Node {
	return &source.Node{
		Tag: tag, Offset: geom.Point{X: x, Y: y}, Size: geom.Size{Width: w, Height: h},
		Style: style, Children: children,
	}
}

// snapshot is a small captured page; the menu state reveals a nav.
func snapshot(state string, menu bool) *source.Snapshot {
	children := []*source.Node{
		el("header", 0, 0, 800, 60, map[string]string{"background-color": "rgb(17, 17, 17)"}),
	}
	if menu {
		children = append(children, el("nav", 600, 60, 200, 300, map[string]string{"background-color": "rgb(0, 0, 0)"}))
	}
	root := el("body", 0, 0, 800, 600, map[string]string{"background-color": "rgb(255, 255, 255)"}, children...)
	return &source.Snapshot{
		URL: "https://example.com/", State: state,
		Viewport: geom.Size{Width: 800, Height: 600}, Ready: true, Root: root,
	}
}
