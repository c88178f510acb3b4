package tokens

import (
	"testing"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
)

var (
	red  = paint.Color{R: 1, A: 1}
	blue = paint.Color{B: 1, A: 1}
)

func textNode(id string, size float64, color paint.Color) *canon.Node {
	return &canon.Node{ID: id, Kind: canon.KindText, TextStyle: &canon.TextStyle{
		Families: []string{"Inter", "sans-serif"}, Weight: 400, Size: size, LineHeight: size * 1.5, Color: color,
	}}
}

func sampleTree() *canon.Node {
	return &canon.Node{
		ID: "root", Kind: canon.KindFrame,
		Paints:  []paint.Paint{paint.Solid(paint.White)},
		Strokes: []paint.Paint{paint.Solid(red)},
		AutoLayout: &canon.AutoLayout{
			Direction: canon.DirectionColumn, Gap: 16,
			Padding: geom.Edges{Top: 16, Right: 24, Bottom: 16, Left: 24},
		},
		Children: []*canon.Node{
			{ID: "card", Kind: canon.KindFrame, Paints: []paint.Paint{paint.Solid(red), paint.Solid(paint.Transparent)}},
			textNode("t1", 16, blue),
			textNode("t2", 16, blue),
			textNode("t3", 24, red),
		},
	}
}

func TestCollectColors(t *testing.T) {
	tok := Collect(sampleTree())
	want := []canon.ColorToken{{Hex: "#ff0000", Count: 3}, {Hex: "#0000ff", Count: 2}, {Hex: "#ffffff", Count: 1}}
	if len(tok.Colors) != len(want) {
		t.Fatalf("Colors = %v, want %v", tok.Colors, want)
	}
	for i := range want {
		if tok.Colors[i] != want[i] {
			t.Errorf("Colors[%d] = %v, want %v", i, tok.Colors[i], want[i])
		}
	}
}

func TestCollectTypography(t *testing.T) {
	tok := Collect(sampleTree())
	if len(tok.Typography) != 2 {
		t.Fatalf("Typography = %v, want 2 entries", tok.Typography)
	}
	first := tok.Typography[0]
	if first.Family != "Inter" || first.Size != 16 || first.LineHeight != 24 || first.Count != 2 {
		t.Errorf("Typography[0] = %+v, want Inter 16/24 used twice", first)
	}
	if tok.Typography[1].Size != 24 {
		t.Errorf("Typography[1].Size = %v, want 24", tok.Typography[1].Size)
	}
}

func TestCollectSpacing(t *testing.T) {
	tok := Collect(sampleTree())
	want := []canon.SpacingToken{{Value: 16, Count: 3}, {Value: 24, Count: 2}}
	if len(tok.Spacing) != len(want) {
		t.Fatalf("Spacing = %v, want %v", tok.Spacing, want)
	}
	for i := range want {
		if tok.Spacing[i] != want[i] {
			t.Errorf("Spacing[%d] = %v, want %v", i, tok.Spacing[i], want[i])
		}
	}
}

func TestCollectEmpty(t *testing.T) {
	tok := Collect(&canon.Node{ID: "root", Kind: canon.KindFrame})
	if len(tok.Colors)+len(tok.Typography)+len(tok.Spacing) != 0 {
		t.Errorf("Collect(empty) = %+v, want no tokens", tok)
	}
}
