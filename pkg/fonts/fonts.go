// Package fonts resolves declared font-family stacks against the fonts a
// target actually has.
//
// A [Catalog] answers which styles of a family are available. [Resolver]
// walks a declared stack entry by entry, trying an exact match, then a
// fixed alias table of metric-compatible substitutes, and finally a generic
// family; numeric weights map through a nine-bucket table to the nearest
// available style of the selected family.
package fonts

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Style is one available face of a family.
type Style struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Italic bool   `json:"italic,omitempty"`
}

// Catalog reports available font styles. A family that is not available
// yields no styles and no error.
type Catalog interface {
	Styles(ctx context.Context, family string) ([]Style, error)
}

// Static is an in-memory catalog keyed by family name (case-insensitive).
type Static struct {
	mu       sync.RWMutex
	families map[string][]Style
	names    map[string]string
}

// NewStatic builds a catalog from family → style names, e.g.
// {"Inter": {"Regular", "Bold"}}.
func NewStatic(families map[string][]string) *Static {
	s := &Static{families: make(map[string][]Style), names: make(map[string]string)}
	for fam, styles := range families {
		for _, name := range styles {
			s.Add(fam, ParseStyleName(name))
		}
	}
	return s
}

// Add registers a style.
func (s *Static) Add(family string, st Style) {
	key := strings.ToLower(family)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.families == nil {
		s.families = make(map[string][]Style)
		s.names = make(map[string]string)
	}
	if slices.ContainsFunc(s.families[key], func(o Style) bool { return o.Name == st.Name }) {
		return
	}
	s.families[key] = append(s.families[key], st)
	if _, ok := s.names[key]; !ok {
		s.names[key] = family
	}
}

// Styles returns the styles of family.
func (s *Static) Styles(ctx context.Context, family string) ([]Style, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.families[strings.ToLower(family)]), nil
}

// Families lists the catalog's family names, sorted.
func (s *Static) Families() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Union queries catalogs in order and returns the first non-empty answer.
type Union []Catalog

// Styles implements [Catalog].
func (u Union) Styles(ctx context.Context, family string) ([]Style, error) {
	for _, c := range u {
		styles, err := c.Styles(ctx, family)
		if err != nil {
			return nil, err
		}
		if len(styles) > 0 {
			return styles, nil
		}
	}
	return nil, nil
}

// Permissive claims every family exists in all nine weights, upright and
// italic. It suits targets that load fonts themselves.
type Permissive struct{}

// Styles implements [Catalog].
func (Permissive) Styles(ctx context.Context, family string) ([]Style, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Style, 0, 2*len(weightNames))
	for i := range weightNames {
		w := (i + 1) * 100
		out = append(out, Style{Name: StyleName(w, false), Weight: w}, Style{Name: StyleName(w, true), Weight: w, Italic: true})
	}
	return out, nil
}
