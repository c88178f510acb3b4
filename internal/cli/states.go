package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/source"
)

// parseState parses a --state flag value:
//
//	name[:action=value[;action=value...]]
//
// Actions are click=<selector>, hover=<selector>, scroll=<x>,<y> and
// settle=<duration>. Selectors may contain commas, so actions are
// separated by semicolons.
func parseState(s string) (source.StateSpec, error) {
	name, actions, _ := strings.Cut(s, ":")
	spec := source.StateSpec{Name: strings.TrimSpace(name)}
	if err := errors.ValidateStateName(spec.Name); err != nil {
		return spec, err
	}
	if strings.TrimSpace(actions) == "" {
		return spec, nil
	}

	for _, part := range strings.Split(actions, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || value == "" {
			return spec, errors.New(errors.ErrCodeInvalidInput, "state %s: %q is not action=value", spec.Name, part)
		}
		switch key {
		case "click":
			spec.Click = value
		case "hover":
			spec.Hover = value
		case "scroll":
			x, y, err := parseScroll(value)
			if err != nil {
				return spec, errors.Wrap(errors.ErrCodeInvalidInput, err, "state %s", spec.Name)
			}
			spec.ScrollX, spec.ScrollY = x, y
		case "settle":
			d, err := time.ParseDuration(value)
			if err != nil || d < 0 {
				return spec, errors.New(errors.ErrCodeInvalidInput, "state %s: bad settle %q", spec.Name, value)
			}
			spec.Settle = d
		default:
			return spec, errors.New(errors.ErrCodeInvalidInput, "state %s: unknown action %q (use click, hover, scroll, settle)", spec.Name, key)
		}
	}
	return spec, nil
}

// parseScroll reads "y" or "x,y".
func parseScroll(v string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		xs, ys = "0", v
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad scroll %q", v)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad scroll %q", v)
	}
	return x, y, nil
}

// parseStates parses every --state flag. No flags keeps fallback.
func parseStates(flags []string, fallback []source.StateSpec) ([]source.StateSpec, error) {
	if len(flags) == 0 {
		return fallback, nil
	}
	specs := make([]source.StateSpec, 0, len(flags))
	for _, f := range flags {
		spec, err := parseState(f)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
