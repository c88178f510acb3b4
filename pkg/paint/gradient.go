package paint

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/pageprint/pkg/css"
	"github.com/matzehuels/pageprint/pkg/geom"
)

// GradientKind distinguishes linear from radial gradients.
type GradientKind string

// Gradient kinds.
const (
	Linear GradientKind = "linear"
	Radial GradientKind = "radial"
)

// Stop is a color stop; Offset is a fraction of the gradient line.
type Stop struct {
	Offset float64 `json:"offset" bson:"offset"`
	Color  Color   `json:"color" bson:"color"`
}

// Gradient is the normalized form every gradient syntax collapses to.
// Angle is in CSS degrees (0 points up, clockwise) and only meaningful for
// linear gradients. Focus is the normalized center of a radial gradient.
type Gradient struct {
	Kind      GradientKind `json:"kind" bson:"kind"`
	Angle     float64      `json:"angle" bson:"angle"`
	Focus     geom.Point   `json:"focus" bson:"focus"`
	Stops     []Stop       `json:"stops" bson:"stops"`
	Repeating bool         `json:"repeating,omitempty" bson:"repeating,omitempty"`
}

// IsGradient reports whether value is a gradient function.
func IsGradient(value string) bool {
	name, _, ok := css.Function(value)
	return ok && strings.HasSuffix(name, "-gradient")
}

// ParseGradient normalizes a linear-gradient()/radial-gradient() value
// (including repeating variants) painted on a box of the given size.
func ParseGradient(value string, box geom.Size) (Gradient, error) {
	name, args, ok := css.Function(value)
	if !ok {
		return Gradient{}, fmt.Errorf("not a gradient: %q", value)
	}
	var g Gradient
	if strings.HasPrefix(name, "repeating-") {
		g.Repeating = true
		name = strings.TrimPrefix(name, "repeating-")
	}
	parts := css.SplitTopLevel(args, ',')
	if len(parts) == 0 {
		return Gradient{}, fmt.Errorf("empty gradient %q", value)
	}

	// The first part is configuration unless it already parses as a stop.
	config := ""
	if _, err := parseStop(parts[0]); err != nil {
		config, parts = parts[0], parts[1:]
	}

	var length float64
	switch name {
	case "linear-gradient":
		g.Kind = Linear
		angle, err := linearAngle(config, box)
		if err != nil {
			return Gradient{}, err
		}
		g.Angle = angle
		rad := angle * math.Pi / 180
		length = math.Abs(box.Width*math.Sin(rad)) + math.Abs(box.Height*math.Cos(rad))
	case "radial-gradient":
		g.Kind = Radial
		g.Focus = radialFocus(config, box)
		cx, cy := g.Focus.X*box.Width, g.Focus.Y*box.Height
		length = max(
			math.Hypot(cx, cy),
			math.Hypot(box.Width-cx, cy),
			math.Hypot(cx, box.Height-cy),
			math.Hypot(box.Width-cx, box.Height-cy),
		)
	default:
		return Gradient{}, fmt.Errorf("unsupported gradient %q", name)
	}

	stops, err := parseStops(parts, length)
	if err != nil {
		return Gradient{}, err
	}
	if len(stops) == 0 {
		return Gradient{}, fmt.Errorf("gradient without color stops: %q", value)
	}
	g.Stops = stops
	return g, nil
}

// linearAngle resolves the direction argument into CSS degrees.
func linearAngle(config string, box geom.Size) (float64, error) {
	config = strings.TrimSpace(strings.ToLower(config))
	if config == "" {
		return 180, nil
	}
	if !strings.HasPrefix(config, "to ") {
		return css.Angle(config)
	}
	var up, down, left, right bool
	for _, f := range strings.Fields(config)[1:] {
		switch f {
		case "top":
			up = true
		case "bottom":
			down = true
		case "left":
			left = true
		case "right":
			right = true
		default:
			return 0, fmt.Errorf("bad gradient direction %q", config)
		}
	}
	// Corner directions depend on the box aspect ratio: the 50% line runs
	// through the two other corners.
	diag := 45.0
	if box.Width > 0 || box.Height > 0 {
		diag = math.Atan2(box.Height, box.Width) * 180 / math.Pi
	}
	switch {
	case up && right:
		return diag, nil
	case down && right:
		return 180 - diag, nil
	case down && left:
		return 180 + diag, nil
	case up && left:
		return 360 - diag, nil
	case up:
		return 0, nil
	case right:
		return 90, nil
	case left:
		return 270, nil
	}
	return 180, nil
}

// radialFocus extracts the "at <position>" part of a radial configuration.
func radialFocus(config string, box geom.Size) geom.Point {
	focus := geom.Point{X: 0.5, Y: 0.5}
	i := strings.Index(config, "at ")
	if i < 0 {
		return focus
	}
	p := geom.ParseOrigin(config[i+3:], box)
	if box.Width > 0 {
		focus.X = p.X / box.Width
	}
	if box.Height > 0 {
		focus.Y = p.Y / box.Height
	}
	return focus
}

type rawStop struct {
	color     Color
	positions []string
}

func parseStop(s string) (rawStop, error) {
	fields := css.Fields(s)
	if len(fields) == 0 {
		return rawStop{}, fmt.Errorf("empty stop")
	}
	c, err := ParseColor(fields[0])
	if err != nil {
		return rawStop{}, err
	}
	return rawStop{color: c, positions: fields[1:]}, nil
}

// parseStops resolves stop positions to fractions of length. Stops without
// a position are spread evenly between their positioned neighbours, and
// positions never decrease.
func parseStops(parts []string, length float64) ([]Stop, error) {
	var stops []Stop
	var known []bool
	for _, part := range parts {
		raw, err := parseStop(part)
		if err != nil {
			// Color hints ("50%") between stops are not expressible; skip them.
			if _, _, herr := css.SplitNumber(part); herr == nil {
				continue
			}
			return nil, fmt.Errorf("bad color stop %q: %w", part, err)
		}
		if len(raw.positions) == 0 {
			stops = append(stops, Stop{Color: raw.color})
			known = append(known, false)
			continue
		}
		for _, pos := range raw.positions {
			off, err := stopOffset(pos, length)
			if err != nil {
				return nil, err
			}
			stops = append(stops, Stop{Offset: off, Color: raw.color})
			known = append(known, true)
		}
	}
	if len(stops) == 0 {
		return nil, nil
	}
	if !known[0] {
		stops[0].Offset, known[0] = 0, true
	}
	if last := len(stops) - 1; !known[last] {
		stops[last].Offset, known[last] = 1, true
	}
	for i := 1; i < len(stops); i++ {
		if known[i] {
			stops[i].Offset = max(stops[i].Offset, stops[i-1].Offset)
			continue
		}
		j := i
		for !known[j] {
			j++
		}
		from, to := stops[i-1].Offset, max(stops[j].Offset, stops[i-1].Offset)
		n := float64(j - i + 1)
		for k := i; k < j; k++ {
			stops[k].Offset = from + (to-from)*float64(k-i+1)/n
			known[k] = true
		}
	}
	return stops, nil
}

func stopOffset(pos string, length float64) (float64, error) {
	v, unit, err := css.SplitNumber(pos)
	if err != nil {
		return 0, err
	}
	switch unit {
	case css.UnitPercent:
		return v / 100, nil
	case css.UnitNone:
		if v == 0 {
			return 0, nil
		}
	}
	px, _, err := css.Length(pos, css.Context{Reference: length})
	if err != nil {
		return 0, err
	}
	if length == 0 {
		return 0, nil
	}
	return px / length, nil
}
