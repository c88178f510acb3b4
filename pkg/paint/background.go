package paint

import (
	"strings"

	"github.com/matzehuels/pageprint/pkg/css"
	"github.com/matzehuels/pageprint/pkg/geom"
)

// Layer is one declared background layer with its per-layer properties.
type Layer struct {
	Image    string // url(...) or a gradient function
	Size     string
	Position string
	Repeat   string
}

// ParseLayers splits the comma-separated background-* properties into
// layers. Shorter lists repeat cyclically, as CSS specifies. Layers whose
// image is "none" are dropped.
func ParseLayers(image, size, position, repeat string) []Layer {
	images := css.SplitTopLevel(image, ',')
	sizes := css.SplitTopLevel(size, ',')
	positions := css.SplitTopLevel(position, ',')
	repeats := css.SplitTopLevel(repeat, ',')
	pick := func(list []string, i int, def string) string {
		if len(list) == 0 {
			return def
		}
		return list[i%len(list)]
	}
	var out []Layer
	for i, img := range images {
		if img == "none" {
			continue
		}
		out = append(out, Layer{
			Image:    img,
			Size:     pick(sizes, i, "auto"),
			Position: pick(positions, i, "0% 0%"),
			Repeat:   pick(repeats, i, "repeat"),
		})
	}
	return out
}

// URL extracts the address from a url(...) value.
func URL(value string) (string, bool) {
	name, args, ok := css.Function(value)
	if !ok || name != "url" {
		return "", false
	}
	return css.Unquote(args), true
}

// Placement computes the normalized transform that draws an image of the
// given intrinsic size into box according to fit and an object-position
// value. An unknown intrinsic size degrades to fill.
func Placement(fit Fit, box, intrinsic geom.Size, position string) geom.Matrix {
	if box.Width <= 0 || box.Height <= 0 {
		return geom.Identity()
	}
	drawn := box
	if intrinsic.Width > 0 && intrinsic.Height > 0 {
		sx, sy := box.Width/intrinsic.Width, box.Height/intrinsic.Height
		switch fit {
		case FitContain:
			s := min(sx, sy)
			drawn = geom.Size{Width: intrinsic.Width * s, Height: intrinsic.Height * s}
		case FitCover:
			s := max(sx, sy)
			drawn = geom.Size{Width: intrinsic.Width * s, Height: intrinsic.Height * s}
		case FitNone:
			drawn = intrinsic
		case FitScaleDown:
			s := min(sx, sy, 1)
			drawn = geom.Size{Width: intrinsic.Width * s, Height: intrinsic.Height * s}
		}
	}
	return normalize(box, drawn, position)
}

// BackgroundPlacement resolves a background layer's size and position into
// a fit and a normalized transform. cover/contain map to their fit modes;
// auto and explicit sizes draw at that size with FitNone, and tile when the
// layer repeats and the drawn image is smaller than the box.
func BackgroundPlacement(l Layer, box, intrinsic geom.Size) (Fit, geom.Matrix, bool) {
	switch strings.TrimSpace(l.Size) {
	case "cover":
		return FitCover, Placement(FitCover, box, intrinsic, l.Position), false
	case "contain":
		return FitContain, Placement(FitContain, box, intrinsic, l.Position), false
	}
	if box.Width <= 0 || box.Height <= 0 {
		return FitNone, geom.Identity(), false
	}

	drawn := intrinsic
	parts := css.Fields(l.Size)
	if len(parts) > 0 {
		w, h := parts[0], "auto"
		if len(parts) > 1 {
			h = parts[1]
		}
		dw, wAuto := bgLength(w, box.Width)
		dh, hAuto := bgLength(h, box.Height)
		switch {
		case wAuto && hAuto:
		case hAuto:
			drawn = geom.Size{Width: dw, Height: scaleOther(dw, intrinsic.Width, intrinsic.Height)}
		case wAuto:
			drawn = geom.Size{Width: scaleOther(dh, intrinsic.Height, intrinsic.Width), Height: dh}
		default:
			drawn = geom.Size{Width: dw, Height: dh}
		}
	}
	if drawn.Width <= 0 || drawn.Height <= 0 {
		drawn = box
	}
	repeat := l.Repeat != "" && !strings.HasPrefix(l.Repeat, "no-repeat")
	tiled := repeat && (drawn.Width < box.Width || drawn.Height < box.Height)
	return FitNone, normalize(box, drawn, l.Position), tiled
}

func bgLength(s string, ref float64) (float64, bool) {
	if s == "auto" {
		return 0, true
	}
	v, _, err := css.Length(s, css.Context{Reference: ref})
	if err != nil {
		return 0, true
	}
	return v, false
}

func scaleOther(v, along, other float64) float64 {
	if along <= 0 {
		return v
	}
	return v * other / along
}

// normalize places drawn inside box at position (percentages resolve
// against the free space, as for object-position and background-position)
// and expresses the result in unit-square coordinates.
func normalize(box, drawn geom.Size, position string) geom.Matrix {
	free := geom.Size{Width: box.Width - drawn.Width, Height: box.Height - drawn.Height}
	at := geom.ParseOrigin(position, free)
	return geom.Matrix{
		A: drawn.Width / box.Width,
		D: drawn.Height / box.Height,
		E: at.X / box.Width,
		F: at.Y / box.Height,
	}
}
