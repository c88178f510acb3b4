package paint

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/pageprint/pkg/css"
)

// Color is a straight-alpha RGBA color with components in [0,1].
type Color struct {
	R float64 `json:"r" bson:"r"`
	G float64 `json:"g" bson:"g"`
	B float64 `json:"b" bson:"b"`
	A float64 `json:"a" bson:"a"`
}

// Common colors.
var (
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Transparent = Color{}
	// Placeholder is the fill used where an asset could not be resolved.
	// It is deliberately loud so a missing image is never mistaken for
	// intentional transparency.
	Placeholder = Color{R: 1, G: 0, B: 1, A: 1}
)

var named = map[string]Color{
	"transparent": Transparent,
	"black":       Black,
	"white":       White,
	"red":         {R: 1, A: 1},
	"lime":        {G: 1, A: 1},
	"green":       {G: 128.0 / 255, A: 1},
	"blue":        {B: 1, A: 1},
	"yellow":      {R: 1, G: 1, A: 1},
	"cyan":        {G: 1, B: 1, A: 1},
	"magenta":     {R: 1, B: 1, A: 1},
	"gray":        {R: 128.0 / 255, G: 128.0 / 255, B: 128.0 / 255, A: 1},
	"grey":        {R: 128.0 / 255, G: 128.0 / 255, B: 128.0 / 255, A: 1},
	"silver":      {R: 192.0 / 255, G: 192.0 / 255, B: 192.0 / 255, A: 1},
	"orange":      {R: 1, G: 165.0 / 255, A: 1},
	"purple":      {R: 128.0 / 255, B: 128.0 / 255, A: 1},
}

// ParseColor parses a computed color value: rgb()/rgba(), hsl()/hsla(),
// #rgb, #rgba, #rrggbb, #rrggbbaa and a handful of keywords.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}
	name, args, ok := css.Function(s)
	if !ok {
		return Color{}, fmt.Errorf("unrecognized color %q", s)
	}
	parts := colorArgs(args)
	switch name {
	case "rgb", "rgba":
		if len(parts) < 3 {
			return Color{}, fmt.Errorf("malformed %s(): %q", name, s)
		}
		var ch [3]float64
		for i := range ch {
			v, unit, err := css.SplitNumber(parts[i])
			if err != nil {
				return Color{}, err
			}
			if unit == css.UnitPercent {
				v = v / 100 * 255
			}
			ch[i] = clamp01(v / 255)
		}
		a, err := alpha(parts, 3)
		if err != nil {
			return Color{}, err
		}
		return Color{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
	case "hsl", "hsla":
		if len(parts) < 3 {
			return Color{}, fmt.Errorf("malformed %s(): %q", name, s)
		}
		h, err := css.Angle(parts[0])
		if err != nil {
			return Color{}, err
		}
		sat, err := css.Number(parts[1])
		if err != nil {
			return Color{}, err
		}
		light, err := css.Number(parts[2])
		if err != nil {
			return Color{}, err
		}
		a, err := alpha(parts, 3)
		if err != nil {
			return Color{}, err
		}
		c := colorful.Hsl(math.Mod(h+360, 360), clamp01(sat), clamp01(light)).Clamped()
		return Color{R: c.R, G: c.G, B: c.B, A: a}, nil
	}
	return Color{}, fmt.Errorf("unsupported color function %q", name)
}

// colorArgs splits both the legacy comma syntax and the modern
// space/slash syntax ("rgb(1 2 3 / 50%)").
func colorArgs(args string) []string {
	args = strings.ReplaceAll(args, "/", " ")
	args = strings.ReplaceAll(args, ",", " ")
	return strings.Fields(args)
}

func alpha(parts []string, i int) (float64, error) {
	if len(parts) <= i {
		return 1, nil
	}
	a, err := css.Number(parts[i])
	if err != nil {
		return 0, err
	}
	return clamp01(a), nil
}

func parseHex(s string) (Color, error) {
	h := s[1:]
	var a = 1.0
	switch len(h) {
	case 4:
		v, err := strconv.ParseUint(h[3:4], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("malformed hex color %q", s)
		}
		a = float64(v*17) / 255
		h = h[:3]
	case 8:
		v, err := strconv.ParseUint(h[6:8], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("malformed hex color %q", s)
		}
		a = float64(v) / 255
		h = h[:6]
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return Color{}, fmt.Errorf("malformed hex color %q: %w", s, err)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: a}, nil
}

// IsTransparent reports whether the color has zero alpha.
func (c Color) IsTransparent() bool { return c.A <= 0 }

// Hex formats the color as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) Hex() string {
	hex := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
	if c.A >= 1 {
		return hex
	}
	return fmt.Sprintf("%s%02x", hex, uint8(math.Round(clamp01(c.A)*255)))
}

// Distance returns the perceptual distance between two opaque colors.
func (c Color) Distance(o Color) float64 {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.DistanceCIEDE2000(colorful.Color{R: o.R, G: o.G, B: o.B})
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(1, v))
}
