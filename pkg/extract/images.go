package extract

import (
	"strings"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
	"github.com/matzehuels/pageprint/pkg/source"
)

// describeImage puts the replaced element's content on top of its
// background paints.
func (w *walker) describeImage(node *canon.Node, n *source.Node) error {
	ref, err := w.resolve(node.ID, n.ImageURL)
	if err != nil {
		return err
	}
	intrinsic := n.Intrinsic
	if ref.Width > 0 && ref.Height > 0 {
		intrinsic = geom.Size{Width: float64(ref.Width), Height: float64(ref.Height)}
	} else if intrinsic.Width > 0 && intrinsic.Height > 0 {
		ref.Width, ref.Height = int(intrinsic.Width), int(intrinsic.Height)
	}

	fit := paint.ParseFit(n.Get("object-fit"))
	position := n.Get("object-position")
	if position == "" {
		position = "50% 50%"
	}
	img := paint.Paint{Type: paint.TypeImage, Image: &paint.Image{
		Asset:     ref,
		Fit:       fit,
		Transform: paint.Placement(fit, n.Size, intrinsic, position),
	}}
	node.Paints = append([]paint.Paint{img}, node.Paints...)
	return nil
}

// describeSVG registers inline markup as an SVG asset.
func (w *walker) describeSVG(node *canon.Node, n *source.Node) error {
	ref := w.reg.Register([]byte(n.SVG), assets.MIMESVG)
	node.Paints = append([]paint.Paint{{Type: paint.TypeImage, Image: &paint.Image{
		Asset: ref, Fit: paint.FitFill, Transform: geom.Identity(),
	}}}, node.Paints...)
	return nil
}

// resolve fetches url and registers its bytes. A failed fetch is not an
// error: the ref comes back unresolved and the failure is reported. Only
// cancellation is returned.
func (w *walker) resolve(nodeID, url string) (assets.Ref, error) {
	res, err := w.opts.Fetcher.Fetch(w.ctx, url)
	if err != nil {
		if w.ctx.Err() != nil {
			return assets.Ref{}, w.ctx.Err()
		}
		w.report.Add(diag.Entry{
			Kind:   diag.AssetResolutionError,
			Phase:  phase,
			NodeID: nodeID,
			Reason: err.Error(),
			Detail: map[string]string{"url": shorten(url)},
		})
		w.logger.Warn("asset unresolved", "node", nodeID, "url", shorten(url), "reason", err)
		return assets.Ref{Source: shorten(url)}, nil
	}
	ref := w.reg.Register(res.Data, res.MIME)
	ref.Source = shorten(url)
	return ref, nil
}

// shorten keeps data: URLs out of the tree.
func shorten(url string) string {
	if len(url) > 5 && strings.EqualFold(url[:5], "data:") {
		head, _, _ := strings.Cut(url, ",")
		return head + ",…"
	}
	return url
}

// URLs lists every asset URL a snapshot references, in walk order and
// without duplicates, for prefetching.
func URLs(snap *source.Snapshot) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	var walk func(*source.Node)
	walk = func(n *source.Node) {
		if n.Replaced {
			add(n.ImageURL)
		}
		for _, l := range paint.ParseLayers(n.Get("background-image"), "", "", "") {
			if u, ok := paint.URL(l.Image); ok {
				add(u)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if snap != nil && snap.Root != nil {
		walk(snap.Root)
	}
	return out
}
