package assets

import (
	"bytes"
	"encoding/xml"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MIME types with special handling.
const (
	MIMESVG = "image/svg+xml"
)

// DetectMIME sniffs the content type of data. SVG documents, which the
// standard sniffer reports as text, are recognized explicitly.
func DetectMIME(data []byte) string {
	if isSVG(data) {
		return MIMESVG
	}
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mime
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}

// IntrinsicSize returns the natural pixel size of an image, or zeros when it
// cannot be determined. Raster formats are read from their headers; SVG
// sizes come from the width/height attributes or the viewBox.
func IntrinsicSize(data []byte, mime string) (int, int) {
	if mime == MIMESVG || isSVG(data) {
		return svgSize(data)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func svgSize(data []byte) (int, int) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, 0
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "svg" {
			continue
		}
		var w, h float64
		var viewBox string
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				w = svgLength(a.Value)
			case "height":
				h = svgLength(a.Value)
			case "viewBox":
				viewBox = a.Value
			}
		}
		if (w == 0 || h == 0) && viewBox != "" {
			f := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ' ' || r == ',' })
			if len(f) == 4 {
				vw, _ := strconv.ParseFloat(f[2], 64)
				vh, _ := strconv.ParseFloat(f[3], 64)
				switch {
				case w == 0 && h == 0:
					w, h = vw, vh
				case w == 0 && vh > 0:
					w = h * vw / vh
				case h == 0 && vw > 0:
					h = w * vh / vw
				}
			}
		}
		return int(w + 0.5), int(h + 0.5)
	}
}

func svgLength(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if strings.HasSuffix(s, "%") {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
