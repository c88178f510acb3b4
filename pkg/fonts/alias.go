package fonts

import "strings"

// DefaultAliases maps proprietary or platform families to visually close
// substitutes, most metric-compatible first. Keys are lower case.
var DefaultAliases = map[string][]string{
	"arial":              {"Arimo", "Liberation Sans", "Helvetica"},
	"helvetica":          {"Arimo", "Liberation Sans", "Arial"},
	"helvetica neue":     {"Inter", "Arimo", "Helvetica", "Arial"},
	"times new roman":    {"Tinos", "Liberation Serif", "Times"},
	"times":              {"Tinos", "Liberation Serif", "Times New Roman"},
	"courier new":        {"Cousine", "Liberation Mono", "Courier"},
	"courier":            {"Cousine", "Liberation Mono", "Courier New"},
	"calibri":            {"Carlito"},
	"cambria":            {"Caladea"},
	"georgia":            {"Gelasio"},
	"verdana":            {"DejaVu Sans"},
	"tahoma":             {"DejaVu Sans"},
	"segoe ui":           {"Inter", "Roboto", "Open Sans"},
	"system-ui":          {"Inter", "Roboto"},
	"-apple-system":      {"Inter", "Roboto"},
	"blinkmacsystemfont": {"Inter", "Roboto"},
	"sf pro":             {"Inter", "Roboto"},
	"sf pro display":     {"Inter", "Roboto"},
	"sf pro text":        {"Inter", "Roboto"},
	"menlo":              {"Roboto Mono", "DejaVu Sans Mono"},
	"monaco":             {"Roboto Mono", "DejaVu Sans Mono"},
	"consolas":           {"Roboto Mono", "Inconsolata"},
	"sf mono":            {"Roboto Mono"},
	"ui-monospace":       {"Roboto Mono"},
	"ui-sans-serif":      {"Inter", "Roboto"},
	"ui-serif":           {"Noto Serif"},
}

// Generic families and their candidates.
const (
	GenericSerif = "serif"
	GenericSans  = "sans-serif"
	GenericMono  = "monospace"
)

var genericCandidates = map[string][]string{
	GenericSerif: {"Noto Serif", "Tinos", "Times New Roman", "Georgia"},
	GenericSans:  {"Inter", "Roboto", "Arimo", "Arial", "Helvetica"},
	GenericMono:  {"Roboto Mono", "Cousine", "Courier New"},
}

// genericOf maps CSS generic keywords to the three generic classes.
var genericOf = map[string]string{
	"serif":         GenericSerif,
	"sans-serif":    GenericSans,
	"monospace":     GenericMono,
	"system-ui":     GenericSans,
	"ui-sans-serif": GenericSans,
	"ui-serif":      GenericSerif,
	"ui-monospace":  GenericMono,
	"cursive":       GenericSans,
	"fantasy":       GenericSans,
	"math":          GenericSerif,
	"emoji":         GenericSans,
}

// Generic classifies a family as serif, sans-serif or monospace: generic
// keywords map directly, other names by a name heuristic.
func Generic(family string) string {
	f := strings.ToLower(strings.TrimSpace(family))
	if g, ok := genericOf[f]; ok {
		return g
	}
	switch {
	case strings.Contains(f, "mono") || strings.Contains(f, "courier") || strings.Contains(f, "code") || f == "menlo" || f == "consolas":
		return GenericMono
	case strings.Contains(f, "sans") || strings.Contains(f, "grotesk") || strings.Contains(f, "helvetica") || strings.Contains(f, "arial"):
		return GenericSans
	case strings.Contains(f, "serif") || strings.Contains(f, "times") || strings.Contains(f, "georgia") || strings.Contains(f, "garamond"):
		return GenericSerif
	}
	return ""
}

// IsGenericKeyword reports whether family is a CSS generic keyword.
func IsGenericKeyword(family string) bool {
	_, ok := genericOf[strings.ToLower(strings.TrimSpace(family))]
	return ok
}
