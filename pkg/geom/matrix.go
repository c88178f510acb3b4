package geom

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/pageprint/pkg/css"
)

// Matrix is a 2-D affine transform.
//
//	[ a c e ]
//	[ b d f ]
//	[ 0 0 1 ]
type Matrix struct {
	A float64 `json:"a" bson:"a"`
	B float64 `json:"b" bson:"b"`
	C float64 `json:"c" bson:"c"`
	D float64 `json:"d" bson:"d"`
	E float64 `json:"e" bson:"e"`
	F float64 `json:"f" bson:"f"`
}

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{A: 1, D: 1} }

// IsIdentity reports whether m is (numerically) the identity.
func (m Matrix) IsIdentity() bool {
	const eps = 1e-9
	return math.Abs(m.A-1) < eps && math.Abs(m.B) < eps && math.Abs(m.C) < eps &&
		math.Abs(m.D-1) < eps && math.Abs(m.E) < eps && math.Abs(m.F) < eps
}

// IsTranslation reports whether m only translates.
func (m Matrix) IsTranslation() bool {
	return Matrix{A: m.A, B: m.B, C: m.C, D: m.D, E: 0, F: 0}.IsIdentity()
}

// Multiply returns m*n: n is applied first, then m.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms a point.
func (m Matrix) Apply(p Point) Point {
	return Point{X: m.A*p.X + m.C*p.Y + m.E, Y: m.B*p.X + m.D*p.Y + m.F}
}

// Inverse returns the inverse transform, or an error when m is singular.
func (m Matrix) Inverse() (Matrix, error) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Matrix{}, fmt.Errorf("matrix is not invertible")
	}
	inv := 1 / det
	return Matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, nil
}

// Translate creates a translation.
func Translate(tx, ty float64) Matrix { return Matrix{A: 1, D: 1, E: tx, F: ty} }

// Scale creates a scale.
func Scale(sx, sy float64) Matrix { return Matrix{A: sx, D: sy} }

// Rotate creates a rotation; degrees are clockwise in a y-down space.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Skew creates a skew; angles in degrees.
func Skew(axDeg, ayDeg float64) Matrix {
	return Matrix{A: 1, B: math.Tan(ayDeg * math.Pi / 180), C: math.Tan(axDeg * math.Pi / 180), D: 1}
}

// About returns m applied about the pivot point (transform-origin).
func (m Matrix) About(pivot Point) Matrix {
	return Translate(pivot.X, pivot.Y).Multiply(m).Multiply(Translate(-pivot.X, -pivot.Y))
}

// Bounds returns the axis-aligned bounding box of r after applying m.
func (m Matrix) Bounds(r AbsoluteRect) AbsoluteRect {
	if m.IsTranslation() {
		return r.Translate(m.E, m.F)
	}
	corners := [4]Point{
		m.Apply(Point{r.Left, r.Top}),
		m.Apply(Point{r.Right, r.Top}),
		m.Apply(Point{r.Right, r.Bottom}),
		m.Apply(Point{r.Left, r.Bottom}),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX, maxX = min(minX, c.X), max(maxX, c.X)
		minY, maxY = min(minY, c.Y), max(maxY, c.Y)
	}
	return FromEdges(minX, minY, maxX, maxY)
}

// Decomposed is an affine transform split into the parts a scene graph
// without general matrices can express.
type Decomposed struct {
	Rotation   float64 // degrees, clockwise in y-down space
	ScaleX     float64
	ScaleY     float64
	Skew       float64 // residual shear, degrees; non-zero cannot be expressed
	TranslateX float64
	TranslateY float64
}

// Decompose splits m into translate * rotate * shear * scale (QR style).
func (m Matrix) Decompose() Decomposed {
	sx := math.Hypot(m.A, m.B)
	d := Decomposed{TranslateX: m.E, TranslateY: m.F, ScaleX: sx}
	if sx == 0 {
		d.ScaleY = math.Hypot(m.C, m.D)
		return d
	}
	d.Rotation = math.Atan2(m.B, m.A) * 180 / math.Pi
	det := m.A*m.D - m.B*m.C
	d.ScaleY = det / sx
	shear := (m.A*m.C + m.B*m.D) / (sx * sx)
	if math.Abs(shear) > 1e-9 {
		d.Skew = math.Atan(shear) * 180 / math.Pi
	}
	return d
}

// ParseTransform parses a computed `transform` value. Lengths in
// translate functions resolve against box (percentages) and fontSize (em).
// "none" and "" yield the identity.
func ParseTransform(value string, box Size, fontSize float64) (Matrix, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" {
		return Identity(), nil
	}

	out := Identity()
	for _, fn := range css.Fields(value) {
		name, args, ok := css.Function(fn)
		if !ok {
			return Identity(), fmt.Errorf("malformed transform function %q", fn)
		}
		parts := css.SplitTopLevel(strings.ReplaceAll(args, ",", " "), ' ')
		m, err := transformFunc(name, parts, box, fontSize)
		if err != nil {
			return Identity(), err
		}
		out = out.Multiply(m)
	}
	return out, nil
}

func transformFunc(name string, args []string, box Size, fontSize float64) (Matrix, error) {
	num := func(i int, def float64) (float64, error) {
		if i >= len(args) {
			return def, nil
		}
		v, _, err := css.SplitNumber(args[i])
		return v, err
	}
	lenX := func(i int) (float64, error) {
		if i >= len(args) {
			return 0, nil
		}
		v, _, err := css.Length(args[i], css.Context{FontSize: fontSize, Reference: box.Width})
		return v, err
	}
	lenY := func(i int) (float64, error) {
		if i >= len(args) {
			return 0, nil
		}
		v, _, err := css.Length(args[i], css.Context{FontSize: fontSize, Reference: box.Height})
		return v, err
	}
	angle := func(i int) (float64, error) {
		if i >= len(args) {
			return 0, nil
		}
		return css.Angle(args[i])
	}

	switch name {
	case "matrix":
		if len(args) != 6 {
			return Identity(), fmt.Errorf("matrix() needs 6 arguments, got %d", len(args))
		}
		var v [6]float64
		for i := range v {
			f, err := num(i, 0)
			if err != nil {
				return Identity(), err
			}
			v[i] = f
		}
		return Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}, nil
	case "translate":
		tx, err := lenX(0)
		if err != nil {
			return Identity(), err
		}
		ty, err := lenY(1)
		return Translate(tx, ty), err
	case "translatex":
		tx, err := lenX(0)
		return Translate(tx, 0), err
	case "translatey":
		ty, err := lenY(0)
		return Translate(0, ty), err
	case "scale":
		sx, err := num(0, 1)
		if err != nil {
			return Identity(), err
		}
		sy, err := num(1, sx)
		return Scale(sx, sy), err
	case "scalex":
		sx, err := num(0, 1)
		return Scale(sx, 1), err
	case "scaley":
		sy, err := num(0, 1)
		return Scale(1, sy), err
	case "rotate", "rotatez":
		a, err := angle(0)
		return Rotate(a), err
	case "skew":
		ax, err := angle(0)
		if err != nil {
			return Identity(), err
		}
		ay, err := angle(1)
		return Skew(ax, ay), err
	case "skewx":
		a, err := angle(0)
		return Skew(a, 0), err
	case "skewy":
		a, err := angle(0)
		return Skew(0, a), err
	}
	return Identity(), fmt.Errorf("unsupported transform function %q", name)
}

// ParseOrigin parses a computed `transform-origin` into a point relative to
// the box's top-left corner. Missing components default to 50%.
func ParseOrigin(value string, box Size) Point {
	keyword := map[string]string{
		"left": "0%", "center": "50%", "right": "100%",
		"top": "0%", "bottom": "100%",
	}
	parts := css.Fields(value)
	xs, ys := "50%", "50%"
	if len(parts) >= 1 {
		xs = parts[0]
	}
	if len(parts) >= 2 {
		ys = parts[1]
	}
	// A single vertical keyword applies to the y axis.
	if len(parts) == 1 && (xs == "top" || xs == "bottom") {
		xs, ys = "50%", parts[0]
	}
	if p, ok := keyword[xs]; ok {
		xs = p
	}
	if p, ok := keyword[ys]; ok {
		ys = p
	}
	x, _, _ := css.Length(xs, css.Context{Reference: box.Width})
	y, _, _ := css.Length(ys, css.Context{Reference: box.Height})
	return Point{X: x, Y: y}
}
