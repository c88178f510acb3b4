package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestNewRect(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	if r.Right != 40 || r.Bottom != 60 {
		t.Errorf("NewRect edges = %v,%v, want 40,60", r.Right, r.Bottom)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	neg := NewRect(0, 0, -5, 10)
	if neg.Width != 0 || !neg.Degenerate() {
		t.Errorf("negative width should clamp to a degenerate rect, got %v", neg)
	}
	if err := neg.Validate(); err != nil {
		t.Errorf("clamped rect should validate: %v", err)
	}
}

func TestFromEdgesNormalizes(t *testing.T) {
	r := FromEdges(50, 50, 10, 20)
	if r.Left != 10 || r.Top != 20 || r.Width != 40 || r.Height != 30 {
		t.Errorf("FromEdges = %v", r)
	}
}

func TestValidateRejectsInconsistentRect(t *testing.T) {
	r := AbsoluteRect{Left: 0, Top: 0, Right: 10, Bottom: 10, Width: 12, Height: 10}
	if err := r.Validate(); err == nil {
		t.Error("Validate() should reject width != right-left")
	}
}

func TestNewRectFractionalInvariant(t *testing.T) {
	for i := 0; i < 1000; i++ {
		r := NewRect(float64(i)*0.1, float64(i)*0.07, 33.3, 10.01)
		if r.Width != r.Right-r.Left || r.Height != r.Bottom-r.Top {
			t.Fatalf("NewRect(%v, ...) = %v, want width == right-left", float64(i)*0.1, r)
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("Validate(%v) = %v", r, err)
		}
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		r    AbsoluteRect
	}{
		{"nan width", NewRect(0, 0, math.NaN(), 10)},
		{"nan height", NewRect(0, 0, 10, math.NaN())},
		{"inf width", NewRect(0, 0, math.Inf(1), 10)},
		{"nan origin", NewRect(math.NaN(), 0, 10, 10)},
		{"nan literal", AbsoluteRect{Width: math.NaN(), Right: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.r.Validate(); err == nil {
				t.Errorf("Validate(%v) = nil, want error", tt.r)
			}
		})
	}
}

func TestRelative(t *testing.T) {
	parent := NewRect(100, 100, 200, 100)
	child := NewRect(110, 120, 50, 20)

	rel := Relative(child, parent, nil)
	if rel.X != 10 || rel.Y != 20 || rel.Width != 50 || rel.Height != 20 {
		t.Errorf("Relative() = %+v", rel)
	}

	pad := &Edges{Top: 8, Left: 4}
	rel = Relative(child, parent, pad)
	if rel.X != 6 || rel.Y != 12 {
		t.Errorf("Relative() with padding = %+v, want 6,12", rel)
	}
}

func TestDistance(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(0.5, 0, 10, 12)
	if got := a.Distance(b); got != 2 {
		t.Errorf("Distance() = %v, want 2", got)
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Translate(10, 5).Multiply(Rotate(30)).Multiply(Scale(2, 3))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	if !m.Multiply(inv).IsIdentity() {
		t.Errorf("m * inv(m) = %+v, want identity", m.Multiply(inv))
	}
	if _, err := Scale(0, 1).Inverse(); err == nil {
		t.Error("singular matrix should not invert")
	}
}

func TestParseTransform(t *testing.T) {
	box := Size{Width: 200, Height: 100}
	tests := []struct {
		in   string
		want Point // image of (0,0)
	}{
		{"none", Point{0, 0}},
		{"translate(10px, 20px)", Point{10, 20}},
		{"translateX(50%)", Point{100, 0}},
		{"translate(10px) translateY(1em)", Point{10, 16}},
		{"matrix(1, 0, 0, 1, 7, 9)", Point{7, 9}},
	}

	for _, tt := range tests {
		m, err := ParseTransform(tt.in, box, 16)
		if err != nil {
			t.Errorf("ParseTransform(%q) error: %v", tt.in, err)
			continue
		}
		got := m.Apply(Point{})
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("ParseTransform(%q) maps origin to %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseTransform("perspective(100px)", box, 16); err == nil {
		t.Error("unsupported function should fail")
	}
}

func TestDecompose(t *testing.T) {
	m := Translate(5, 6).Multiply(Rotate(90)).Multiply(Scale(2, 3))
	d := m.Decompose()
	if !near(d.Rotation, 90) || !near(d.ScaleX, 2) || !near(d.ScaleY, 3) {
		t.Errorf("Decompose() = %+v", d)
	}
	if !near(d.TranslateX, 5) || !near(d.TranslateY, 6) || d.Skew != 0 {
		t.Errorf("Decompose() translation/skew = %+v", d)
	}

	sk := Skew(30, 0).Decompose()
	if !near(sk.Skew, 30) {
		t.Errorf("Skew(30).Decompose().Skew = %v, want 30", sk.Skew)
	}
}

func TestParseOrigin(t *testing.T) {
	box := Size{Width: 200, Height: 100}
	tests := []struct {
		in   string
		want Point
	}{
		{"", Point{100, 50}},
		{"50% 50%", Point{100, 50}},
		{"left top", Point{0, 0}},
		{"right bottom", Point{200, 100}},
		{"10px 20px", Point{10, 20}},
		{"bottom", Point{100, 100}},
	}
	for _, tt := range tests {
		if got := ParseOrigin(tt.in, box); got != tt.want {
			t.Errorf("ParseOrigin(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAccumulatedScrollAndTransform(t *testing.T) {
	root := Root(Point{})
	// A scroll container at (0, 100) scrolled down by 40.
	container := root.Child(Point{0, 100}, Point{0, 40}, Identity(), Point{})
	r := container.Place(Point{10, 50}, Size{20, 20})
	if r.Left != 10 || r.Top != 110 {
		t.Errorf("scrolled child rect = %v, want 10,110", r)
	}

	// A container translated by 5,5 shifts its descendants.
	moved := root.Child(Point{0, 0}, Point{}, Translate(5, 5), Point{})
	r = moved.Place(Point{10, 10}, Size{10, 10})
	if r.Left != 15 || r.Top != 15 || r.Width != 10 {
		t.Errorf("transformed child rect = %v, want 15,15 10x10", r)
	}

	// A container scaled 2x about its top-left doubles the child's box.
	scaled := root.Child(Point{0, 0}, Point{}, Scale(2, 2), Point{})
	r = scaled.Place(Point{10, 10}, Size{10, 10})
	if r.Left != 20 || r.Width != 20 {
		t.Errorf("scaled child rect = %v, want 20,20 20x20", r)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("accumulated rect invalid: %v", err)
	}
}
