package paint

import (
	"math"
	"testing"

	"github.com/matzehuels/pageprint/pkg/geom"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rgb(255, 0, 0)", "#ff0000"},
		{"rgba(0, 0, 0, 0.5)", "#00000080"},
		{"rgb(0 128 255 / 50%)", "#0080ff80"},
		{"#abc", "#aabbcc"},
		{"#11223380", "#11223380"},
		{"hsl(120, 100%, 50%)", "#00ff00"},
		{"white", "#ffffff"},
		{"transparent", "#00000000"},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q) error: %v", tt.in, err)
			continue
		}
		if got := c.Hex(); got != tt.want {
			t.Errorf("ParseColor(%q).Hex() = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "notacolor", "rgb(1)", "#zzzzzz"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}
}

func TestParseGradientLinear(t *testing.T) {
	box := geom.Size{Width: 100, Height: 100}
	tests := []struct {
		in    string
		angle float64
		stops []float64
	}{
		{"linear-gradient(rgb(255, 0, 0), rgb(0, 0, 255))", 180, []float64{0, 1}},
		{"linear-gradient(90deg, red, blue)", 90, []float64{0, 1}},
		{"linear-gradient(0.25turn, red 10%, blue)", 90, []float64{0.1, 1}},
		{"linear-gradient(to right, red, lime, blue)", 90, []float64{0, 0.5, 1}},
		{"linear-gradient(to top right, red, blue)", 45, []float64{0, 1}},
		{"linear-gradient(to bottom, red 20px, blue 80px)", 180, []float64{0.2, 0.8}},
		{"linear-gradient(red 60%, blue 30%)", 180, []float64{0.6, 0.6}},
	}
	for _, tt := range tests {
		g, err := ParseGradient(tt.in, box)
		if err != nil {
			t.Errorf("ParseGradient(%q) error: %v", tt.in, err)
			continue
		}
		if g.Kind != Linear || !near(g.Angle, tt.angle) {
			t.Errorf("ParseGradient(%q) = %s %v, want linear %v", tt.in, g.Kind, g.Angle, tt.angle)
		}
		if len(g.Stops) != len(tt.stops) {
			t.Errorf("ParseGradient(%q) has %d stops, want %d", tt.in, len(g.Stops), len(tt.stops))
			continue
		}
		for i, off := range tt.stops {
			if !near(g.Stops[i].Offset, off) {
				t.Errorf("ParseGradient(%q) stop %d = %v, want %v", tt.in, i, g.Stops[i].Offset, off)
			}
		}
	}
}

func TestParseGradientRadial(t *testing.T) {
	g, err := ParseGradient("repeating-radial-gradient(circle at 25% 75%, red, blue)", geom.Size{Width: 200, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	if g.Kind != Radial || !g.Repeating {
		t.Errorf("kind = %s repeating = %v", g.Kind, g.Repeating)
	}
	if !near(g.Focus.X, 0.25) || !near(g.Focus.Y, 0.75) {
		t.Errorf("focus = %+v, want 0.25,0.75", g.Focus)
	}
}

func TestParseShadows(t *testing.T) {
	effects, err := ParseShadows("rgba(0, 0, 0, 0.5) 0px 2px 4px 0px, rgb(255, 0, 0) 1px 1px 0px 2px inset")
	if err != nil {
		t.Fatal(err)
	}
	if len(effects) != 2 {
		t.Fatalf("got %d effects, want 2", len(effects))
	}
	if effects[0].Kind != DropShadow || effects[0].Offset.Y != 2 || effects[0].Blur != 4 {
		t.Errorf("effects[0] = %+v", effects[0])
	}
	if effects[1].Kind != InnerShadow || effects[1].Spread != 2 || effects[1].Color.Hex() != "#ff0000" {
		t.Errorf("effects[1] = %+v", effects[1])
	}

	if got, _ := ParseShadows("none"); got != nil {
		t.Errorf("ParseShadows(none) = %v, want nil", got)
	}
	if _, err := ParseShadows("red 1px"); err == nil {
		t.Error("a shadow with one length should fail")
	}
}

func TestPlacement(t *testing.T) {
	box := geom.Size{Width: 200, Height: 100}
	img := geom.Size{Width: 100, Height: 100}

	tests := []struct {
		fit  Fit
		pos  string
		want geom.Matrix
	}{
		{FitFill, "", geom.Matrix{A: 1, D: 1}},
		// cover scales to 200x200 and centers vertically: y = -50px.
		{FitCover, "50% 50%", geom.Matrix{A: 1, D: 2, F: -0.5}},
		// contain scales to 100x100 and centers horizontally.
		{FitContain, "50% 50%", geom.Matrix{A: 0.5, D: 1, E: 0.25}},
		{FitNone, "left top", geom.Matrix{A: 0.5, D: 1}},
		{FitScaleDown, "right top", geom.Matrix{A: 0.5, D: 1, E: 0.5}},
	}
	for _, tt := range tests {
		got := Placement(tt.fit, box, img, tt.pos)
		if !near(got.A, tt.want.A) || !near(got.D, tt.want.D) || !near(got.E, tt.want.E) || !near(got.F, tt.want.F) {
			t.Errorf("Placement(%s, %q) = %+v, want %+v", tt.fit, tt.pos, got, tt.want)
		}
	}
}

func TestBackgroundPlacementKeepsOutOfBoxPositions(t *testing.T) {
	box := geom.Size{Width: 100, Height: 100}
	l := Layer{Image: `url("a.png")`, Size: "50px 50px", Position: "-20px 120px", Repeat: "no-repeat"}
	fit, m, tiled := BackgroundPlacement(l, box, geom.Size{Width: 10, Height: 10})
	if fit != FitNone || tiled {
		t.Errorf("fit = %s tiled = %v", fit, tiled)
	}
	if !near(m.E, -0.2) || !near(m.F, 1.2) || !near(m.A, 0.5) {
		t.Errorf("transform = %+v, want translation -0.2,1.2 scale 0.5", m)
	}

	l.Repeat = "repeat"
	if _, _, tiled := BackgroundPlacement(l, box, geom.Size{}); !tiled {
		t.Error("a repeating layer smaller than its box should tile")
	}
}

func TestParseLayers(t *testing.T) {
	layers := ParseLayers(`url("a.png"), linear-gradient(red, blue), none`, "cover", "0% 0%, 50% 50%", "no-repeat")
	if len(layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(layers))
	}
	if layers[1].Size != "cover" || layers[1].Position != "50% 50%" {
		t.Errorf("layers[1] = %+v", layers[1])
	}
	if u, ok := URL(layers[0].Image); !ok || u != "a.png" {
		t.Errorf("URL() = %q, %v", u, ok)
	}
	if !IsGradient(layers[1].Image) {
		t.Error("second layer should be a gradient")
	}
}

func TestCorners(t *testing.T) {
	c := Corners{TopLeft: 80, TopRight: 4, BottomRight: 4, BottomLeft: 4}
	if c.Uniform() {
		t.Error("corners should not be uniform")
	}
	clamped := c.Clamp(geom.Size{Width: 100, Height: 50})
	if clamped.TopLeft != 25 {
		t.Errorf("Clamp().TopLeft = %v, want 25", clamped.TopLeft)
	}
	if err := (Corners{TopLeft: -1}).Validate(); err == nil {
		t.Error("negative radius should fail validation")
	}
}

func TestPaintValidate(t *testing.T) {
	if err := Solid(White).Validate(); err != nil {
		t.Errorf("Solid().Validate() = %v", err)
	}
	bad := Paint{Type: TypeImage, Color: &White}
	if err := bad.Validate(); err == nil {
		t.Error("mismatched variant should fail")
	}
}
