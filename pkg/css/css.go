// Package css parses the computed-style value syntax reported by a
// rendered source: lengths, angles, numbers and comma/space separated
// lists that may contain nested functions and quoted strings.
//
// Only computed values are handled. Computed styles are already resolved
// by the source's style engine (colors become rgb()/rgba(), lengths become
// px for most properties), so the grammar needed here is small.
package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is a CSS length or angle unit.
type Unit string

// Supported units.
const (
	UnitNone    Unit = ""
	UnitPx      Unit = "px"
	UnitPercent Unit = "%"
	UnitEm      Unit = "em"
	UnitRem     Unit = "rem"
	UnitVw      Unit = "vw"
	UnitVh      Unit = "vh"
	UnitPt      Unit = "pt"
	UnitDeg     Unit = "deg"
	UnitRad     Unit = "rad"
	UnitGrad    Unit = "grad"
	UnitTurn    Unit = "turn"
	UnitNormal  Unit = "normal"
)

// RootFontSize is the root em size assumed when resolving rem units.
const RootFontSize = 16.0

// Context supplies the reference values needed to resolve relative lengths.
type Context struct {
	FontSize  float64 // em reference
	Reference float64 // percentage reference (containing box dimension)
	Viewport  struct{ Width, Height float64 }
}

// SplitTopLevel splits s on sep, ignoring separators inside parentheses or
// quotes. Parts are trimmed; empty parts are dropped.
func SplitTopLevel(s string, sep rune) []string {
	var parts []string
	var b strings.Builder
	depth := 0
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth = max(depth-1, 0)
		case depth == 0 && (r == sep || (sep == ' ' && isSpace(r))):
			if p := strings.TrimSpace(b.String()); p != "" {
				parts = append(parts, p)
			}
			b.Reset()
			continue
		}
		b.WriteRune(r)
	}
	if p := strings.TrimSpace(b.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// Fields splits s on top-level whitespace.
func Fields(s string) []string { return SplitTopLevel(s, ' ') }

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

// Function splits "name(args)" into its lowercase name and argument string.
// ok is false when s is not a function call.
func Function(s string) (name, args string, ok bool) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(s[:open])), s[open+1 : len(s)-1], true
}

// Unquote strips one level of matching single or double quotes.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// SplitNumber separates a numeric prefix from its unit suffix.
func SplitNumber(s string) (float64, Unit, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, UnitNone, fmt.Errorf("empty value")
	}
	if s == "normal" {
		return 0, UnitNormal, nil
	}
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	// Exponent forms like "1e-05px" keep the "e-05" with the number.
	num, unit := s[:i], s[i:]
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, UnitNone, fmt.Errorf("malformed number %q: %w", s, err)
	}
	return v, Unit(unit), nil
}

// Length resolves a length to px against ctx. "auto" and "none" resolve
// to zero. The original unit is returned alongside for diagnostics.
func Length(s string, ctx Context) (float64, Unit, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "auto", "none", "0":
		return 0, UnitPx, nil
	}
	v, unit, err := SplitNumber(s)
	if err != nil {
		return 0, UnitNone, err
	}
	switch unit {
	case UnitPx, UnitNone:
		return v, unit, nil
	case UnitPercent:
		return v / 100 * ctx.Reference, unit, nil
	case UnitEm:
		return v * ctx.FontSize, unit, nil
	case UnitRem:
		return v * RootFontSize, unit, nil
	case UnitVw:
		return v / 100 * ctx.Viewport.Width, unit, nil
	case UnitVh:
		return v / 100 * ctx.Viewport.Height, unit, nil
	case UnitPt:
		return v * 4 / 3, unit, nil
	case UnitNormal:
		return 0, unit, nil
	}
	return 0, unit, fmt.Errorf("unsupported length unit %q", unit)
}

// Px resolves a px (or unitless) length and returns 0 for anything that
// does not parse. It is the common case for computed styles.
func Px(s string) float64 {
	v, _, err := Length(s, Context{})
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// Angle parses an angle and returns it in degrees, the canonical unit.
// Bare numbers are treated as degrees.
func Angle(s string) (float64, error) {
	v, unit, err := SplitNumber(s)
	if err != nil {
		return 0, err
	}
	switch unit {
	case UnitDeg, UnitNone:
		return v, nil
	case UnitRad:
		return v * 180 / math.Pi, nil
	case UnitGrad:
		return v * 0.9, nil
	case UnitTurn:
		return v * 360, nil
	}
	return 0, fmt.Errorf("unsupported angle unit %q", unit)
}

// Number parses a plain number, also accepting a trailing percent which is
// converted to a fraction (50% -> 0.5).
func Number(s string) (float64, error) {
	v, unit, err := SplitNumber(s)
	if err != nil {
		return 0, err
	}
	switch unit {
	case UnitNone:
		return v, nil
	case UnitPercent:
		return v / 100, nil
	}
	return 0, fmt.Errorf("unexpected unit %q", unit)
}
