package fonts

import (
	"strconv"
	"strings"
)

// weightNames is the nine-bucket weight table.
var weightNames = [9]string{"Thin", "ExtraLight", "Light", "Regular", "Medium", "SemiBold", "Bold", "ExtraBold", "Black"}

// spellings maps normalized style-name words to weights.
var spellings = map[string]int{
	"thin": 100, "hairline": 100,
	"extralight": 200, "ultralight": 200,
	"light":   300,
	"regular": 400, "normal": 400, "book": 400, "roman": 400,
	"medium":   500,
	"semibold": 600, "demibold": 600,
	"bold":      700,
	"extrabold": 800, "ultrabold": 800,
	"black": 900, "heavy": 900,
}

// Bucket rounds a numeric weight to its 100-step bucket (100..900).
func Bucket(weight int) int {
	b := (weight + 50) / 100 * 100
	return min(max(b, 100), 900)
}

// WeightName returns the style name of a weight bucket: 400 → "Regular",
// 700 → "Bold", 500 → "Medium".
func WeightName(weight int) string {
	return weightNames[Bucket(weight)/100-1]
}

// StyleName composes a style name such as "Bold Italic". Regular italic
// is just "Italic".
func StyleName(weight int, italic bool) string {
	name := WeightName(weight)
	if !italic {
		return name
	}
	if name == "Regular" {
		return "Italic"
	}
	return name + " Italic"
}

// ParseStyleName reads a style name ("SemiBold Italic", "Bold", "700")
// into a Style.
func ParseStyleName(name string) Style {
	st := Style{Name: name, Weight: 400}
	norm := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name))
	if strings.Contains(norm, "italic") || strings.Contains(norm, "oblique") {
		st.Italic = true
		norm = strings.NewReplacer("italic", "", "oblique", "").Replace(norm)
	}
	if w, err := strconv.Atoi(norm); err == nil {
		st.Weight = Bucket(w)
		return st
	}
	// Longest spelling first so "extrabold" is not read as "bold".
	best := ""
	for word := range spellings {
		if strings.Contains(norm, word) && len(word) > len(best) {
			best = word
		}
	}
	if best != "" {
		st.Weight = spellings[best]
	}
	return st
}

// Nearest picks the style closest to weight, preferring the requested
// slant. Ties follow the CSS matching order: heavier first for 400 and
// above 500, lighter first otherwise.
func Nearest(styles []Style, weight int, italic bool) (Style, bool) {
	if len(styles) == 0 {
		return Style{}, false
	}
	heavier := weight == 400 || weight > 500
	score := func(s Style) int {
		d := s.Weight - weight
		if d < 0 {
			d = -d
		}
		d *= 2
		if s.Weight != weight && (s.Weight > weight) != heavier {
			d++
		}
		if s.Italic != italic {
			d += 10000
		}
		return d
	}
	best := styles[0]
	for _, s := range styles[1:] {
		if score(s) < score(best) {
			best = s
		}
	}
	return best, true
}
