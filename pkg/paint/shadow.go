package paint

import (
	"fmt"
	"strings"

	"github.com/matzehuels/pageprint/pkg/css"
	"github.com/matzehuels/pageprint/pkg/geom"
)

// ParseShadows parses a computed box-shadow list. Every shadow is kept in
// declaration order and the inset flag selects InnerShadow.
func ParseShadows(value string) ([]Effect, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" {
		return nil, nil
	}
	var out []Effect
	for _, part := range css.SplitTopLevel(value, ',') {
		e, err := parseShadow(part)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseShadow(s string) (Effect, error) {
	e := Effect{Kind: DropShadow, Color: Black}
	var lengths []float64
	for _, f := range css.Fields(s) {
		if strings.EqualFold(f, "inset") {
			e.Kind = InnerShadow
			continue
		}
		if v, _, err := css.Length(f, css.Context{}); err == nil {
			lengths = append(lengths, v)
			continue
		}
		c, err := ParseColor(f)
		if err != nil {
			return Effect{}, fmt.Errorf("bad shadow component %q in %q", f, s)
		}
		e.Color = c
	}
	if len(lengths) < 2 || len(lengths) > 4 {
		return Effect{}, fmt.Errorf("shadow needs 2-4 lengths, got %d in %q", len(lengths), s)
	}
	e.Offset = geom.Point{X: lengths[0], Y: lengths[1]}
	if len(lengths) > 2 {
		e.Blur = max(lengths[2], 0)
	}
	if len(lengths) > 3 {
		e.Spread = lengths[3]
	}
	return e, nil
}
