package fonts

import (
	"context"
	"maps"
	"strings"

	"github.com/matzehuels/pageprint/pkg/errors"
)

// Via records how a family was selected.
type Via string

// Resolution steps, in the order they are tried.
const (
	ViaExact    Via = "exact"
	ViaAlias    Via = "alias"
	ViaGeneric  Via = "generic"
	ViaFallback Via = "fallback"
)

// Resolution is the outcome of resolving a family stack.
type Resolution struct {
	Family string `json:"family"`
	Style  Style  `json:"style"`
	Via    Via    `json:"via"`
	// Declared is the stack entry that led to Family.
	Declared string `json:"declared"`
}

// Degraded reports whether the result is not the first declared family.
func (r Resolution) Degraded(stack []string) bool {
	return r.Via != ViaExact || len(stack) == 0 || !strings.EqualFold(r.Declared, stack[0])
}

// Resolver resolves family stacks against a catalog. Catalog answers are
// memoized per family. A Resolver is not safe for concurrent use.
type Resolver struct {
	catalog Catalog
	aliases map[string][]string
	cache   map[string][]Style
}

// NewResolver returns a resolver using DefaultAliases extended (and
// overridden) by extra.
func NewResolver(c Catalog, extra map[string][]string) *Resolver {
	aliases := maps.Clone(DefaultAliases)
	for k, v := range extra {
		aliases[strings.ToLower(k)] = v
	}
	return &Resolver{catalog: c, aliases: aliases, cache: make(map[string][]Style)}
}

func (r *Resolver) styles(ctx context.Context, family string) ([]Style, error) {
	key := strings.ToLower(family)
	if s, ok := r.cache[key]; ok {
		return s, nil
	}
	s, err := r.catalog.Styles(ctx, family)
	if err != nil {
		return nil, err
	}
	r.cache[key] = s
	return s, nil
}

// Resolve walks stack and returns the first available family with the
// style nearest to weight. For each entry it tries an exact match, then
// the entry's aliases (or, for a generic keyword, its candidates). When no
// entry resolves, the generic class of the stack is tried, then sans-serif.
// Only catalog errors (including cancellation) are returned.
func (r *Resolver) Resolve(ctx context.Context, stack []string, weight int, italic bool) (Resolution, error) {
	try := func(family, declared string, via Via) (Resolution, bool, error) {
		styles, err := r.styles(ctx, family)
		if err != nil {
			return Resolution{}, false, err
		}
		st, ok := Nearest(styles, weight, italic)
		if !ok {
			return Resolution{}, false, nil
		}
		return Resolution{Family: family, Style: st, Via: via, Declared: declared}, true, nil
	}

	generic := ""
	for _, entry := range stack {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if generic == "" {
			generic = Generic(entry)
		}
		if IsGenericKeyword(entry) {
			for _, cand := range genericCandidates[genericOf[strings.ToLower(entry)]] {
				if res, ok, err := try(cand, entry, ViaGeneric); err != nil || ok {
					return res, err
				}
			}
			continue
		}
		if res, ok, err := try(entry, entry, ViaExact); err != nil || ok {
			return res, err
		}
		for _, alias := range r.aliases[strings.ToLower(entry)] {
			if res, ok, err := try(alias, entry, ViaAlias); err != nil || ok {
				return res, err
			}
		}
	}

	classes := []string{GenericSans}
	if generic != "" && generic != GenericSans {
		classes = []string{generic, GenericSans}
	}
	for _, class := range classes {
		for _, cand := range genericCandidates[class] {
			if res, ok, err := try(cand, class, ViaFallback); err != nil || ok {
				return res, err
			}
		}
	}
	return Resolution{}, errors.New(errors.ErrCodeNotFound, "no font available for %v", stack)
}
