package merge

import (
	"reflect"
	"testing"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/geom"
)

func node(id, parent string, order int, l, t, w, h float64, state string, children ...*canon.Node) *canon.Node {
	return &canon.Node{
		ID: id, ParentID: parent, Kind: canon.KindFrame, Name: id,
		Rect: geom.NewRect(l, t, w, h), Opacity: 1, DocOrder: order,
		Children: children, ObservedInStates: []string{state},
	}
}

// page builds root > [header > [logo], body]; withMenu adds a menu under
// the root that only the hovered state reveals.
func page(state string, withMenu bool, headerTop float64) *canon.Node {
	root := node("root", "", 0, 0, 0, 800, 600, state,
		node("header", "root", 1, 0, headerTop, 800, 60, state,
			node("logo", "header", 2, 10, headerTop+10, 40, 40, state)),
		node("body", "root", 3, 0, 60, 800, 540, state),
	)
	if withMenu {
		menu := node("X", "root", 4, 50, 50, 20, 20, state,
			node("item", "X", 5, 50, 50, 20, 10, state))
		root.Children = append(root.Children, menu)
	}
	return root
}

func TestMergeIdempotent(t *testing.T) {
	tree := page("default", false, 0)
	one, err := Merge([]Input{{"default", tree}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	two, err := Merge([]Input{{"default", tree}, {"default", tree}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(one.Tree, two.Tree) {
		t.Error("Merge([T]) != Merge([T, T])")
	}
	if !reflect.DeepEqual(one.Tree, tree) {
		t.Error("Merge([T]) should equal T")
	}
	if one.Tree == tree || one.Tree.Children[0] == tree.Children[0] {
		t.Error("Merge must not alias its input")
	}
	if two.Tree.Count() != tree.Count() {
		t.Errorf("node count = %d, want %d", two.Tree.Count(), tree.Count())
	}
}

func TestMergeRevealedNode(t *testing.T) {
	res, err := Merge([]Input{
		{"default", page("default", false, 0)},
		{"hovered", page("hovered", true, 0)},
	}, Options{Base: "default"})
	if err != nil {
		t.Fatal(err)
	}
	root := res.Tree
	last := root.Children[len(root.Children)-1]
	if last.ID != "X" {
		t.Fatalf("last child = %s, want X", last.ID)
	}
	if last.Rect != geom.NewRect(50, 50, 20, 20) {
		t.Errorf("X rect = %v", last.Rect)
	}
	if !reflect.DeepEqual(last.ObservedInStates, []string{"hovered"}) {
		t.Errorf("X states = %v, want [hovered]", last.ObservedInStates)
	}
	if len(last.Children) != 1 || last.Children[0].ID != "item" {
		t.Errorf("X children = %v", last.Children)
	}
	if !reflect.DeepEqual(root.ObservedInStates, []string{"default", "hovered"}) {
		t.Errorf("root states = %v", root.ObservedInStates)
	}
	if !reflect.DeepEqual(res.States, []string{"default", "hovered"}) {
		t.Errorf("States = %v", res.States)
	}
	if err := canon.Validate(root); err != nil {
		t.Errorf("merged tree invalid: %v", err)
	}
}

func TestMergeConflictKeepsBase(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []Input
		base    string
		wantTop float64
	}{
		{
			name:    "base first",
			inputs:  []Input{{"default", page("default", false, 0)}, {"scrolled", page("scrolled", false, 40)}},
			wantTop: 0,
		},
		{
			name:    "base named later",
			inputs:  []Input{{"scrolled", page("scrolled", false, 40)}, {"default", page("default", false, 0)}},
			base:    "default",
			wantTop: 0,
		},
		{
			name:    "earliest wins without base",
			inputs:  []Input{{"scrolled", page("scrolled", false, 40)}, {"default", page("default", false, 0)}},
			wantTop: 40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Merge(tt.inputs, Options{Base: tt.base})
			if err != nil {
				t.Fatal(err)
			}
			header := res.Tree.Find("header")
			if header.Rect.Top != tt.wantTop {
				t.Errorf("header top = %v, want %v", header.Rect.Top, tt.wantTop)
			}
			if res.Conflicts != 2 || res.Report.Count(diag.MergeConflictWarning) != 2 {
				t.Errorf("conflicts = %d, want 2 (header and logo)", res.Conflicts)
			}
		})
	}
}

func TestMergeTolerance(t *testing.T) {
	inputs := []Input{{"default", page("default", false, 0)}, {"jitter", page("jitter", false, 0.5)}}
	res, err := Merge(inputs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Conflicts != 0 {
		t.Errorf("sub-pixel jitter produced %d conflicts", res.Conflicts)
	}
	res, _ = Merge(inputs, Options{Tolerance: 0.25})
	if res.Conflicts != 2 {
		t.Errorf("tight tolerance conflicts = %d, want 2", res.Conflicts)
	}
}

func TestMergeExactTolerance(t *testing.T) {
	tests := []struct {
		name string
		set  float64
		want int
	}{
		{"zero", 0, 2},
		{"negative", -1, 2},
		{"loose", 1, 0},
	}
	inputs := []Input{{"default", page("default", false, 0)}, {"jitter", page("jitter", false, 0.5)}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts Options
			opts.SetTolerance(tt.set)
			res, err := Merge(inputs, opts)
			if err != nil {
				t.Fatal(err)
			}
			if res.Conflicts != tt.want {
				t.Errorf("conflicts = %d, want %d", res.Conflicts, tt.want)
			}
		})
	}

	res, err := Merge(inputs, Options{Exact: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Conflicts != 2 {
		t.Errorf("Exact conflicts = %d, want 2", res.Conflicts)
	}
}

func TestMergeRejects(t *testing.T) {
	if _, err := Merge(nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Merge(nil) = %v, want INVALID_INPUT", err)
	}
	bad := page("default", false, 0)
	bad.Children[1].ID = "header"
	if _, err := Merge([]Input{{"default", bad}}, Options{}); !errors.Is(err, errors.ErrCodeSchemaInvalid) {
		t.Errorf("Merge(duplicate ids) = %v, want SCHEMA_INVALID", err)
	}
	if _, err := Merge([]Input{{"default", page("default", false, 0)}}, Options{Base: "menu"}); err == nil {
		t.Error("unknown base state should fail")
	}
}

func TestDocuments(t *testing.T) {
	regA, regB := assets.NewRegistry(), assets.NewRegistry()
	regA.Register([]byte("shared"), "image/png")
	regB.Register([]byte("shared"), "image/png")
	regB.Register([]byte("menu icon"), "image/png")

	a := canon.NewDocument(page("default", false, 0), regA)
	a.States, a.BaseState = []string{"default"}, "default"
	b := canon.NewDocument(page("hovered", true, 0), regB)
	b.States, b.BaseState = []string{"hovered"}, "hovered"
	b.Diagnostics = []diag.Entry{{Kind: diag.AssetResolutionError, Phase: "extract", NodeID: "item"}}

	doc, _, err := Documents([]*canon.Document{a, b}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Assets.Len() != 2 {
		t.Errorf("asset union = %d entries, want 2", doc.Assets.Len())
	}
	if doc.BaseState != "default" || len(doc.Diagnostics) != 1 {
		t.Errorf("base = %s diagnostics = %d", doc.BaseState, len(doc.Diagnostics))
	}

	// Re-merging a merged document keeps every state tag.
	again, _, err := Documents([]*canon.Document{doc}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again.States, []string{"default", "hovered"}) {
		t.Errorf("re-merged states = %v", again.States)
	}
}
