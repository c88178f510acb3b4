package canon

// Tokens are design tokens derived from a tree: the colors, text styles
// and spacings it uses, each with a usage count.
type Tokens struct {
	Colors     []ColorToken   `json:"colors,omitempty" bson:"colors,omitempty"`
	Typography []TypeToken    `json:"typography,omitempty" bson:"typography,omitempty"`
	Spacing    []SpacingToken `json:"spacing,omitempty" bson:"spacing,omitempty"`
}

// ColorToken is a color in #rrggbb[aa] form.
type ColorToken struct {
	Hex   string `json:"hex" bson:"hex"`
	Count int    `json:"count" bson:"count"`
}

// TypeToken is a distinct text style.
type TypeToken struct {
	Family     string  `json:"family" bson:"family"`
	Weight     int     `json:"weight" bson:"weight"`
	Size       float64 `json:"size" bson:"size"`
	LineHeight float64 `json:"lineHeight" bson:"line_height"`
	Count      int     `json:"count" bson:"count"`
}

// SpacingToken is a gap or padding value in px.
type SpacingToken struct {
	Value float64 `json:"value" bson:"value"`
	Count int     `json:"count" bson:"count"`
}

// Top returns a copy keeping at most the first n entries of each list
// (lists are ordered by descending usage). Negative limits keep everything.
func (t *Tokens) Top(colors, typography, spacing int) *Tokens {
	if t == nil {
		return nil
	}
	limit := func(n, keep int) int {
		if keep < 0 || n < keep {
			return n
		}
		return keep
	}
	return &Tokens{
		Colors:     append([]ColorToken(nil), t.Colors[:limit(len(t.Colors), colors)]...),
		Typography: append([]TypeToken(nil), t.Typography[:limit(len(t.Typography), typography)]...),
		Spacing:    append([]SpacingToken(nil), t.Spacing[:limit(len(t.Spacing), spacing)]...),
	}
}
