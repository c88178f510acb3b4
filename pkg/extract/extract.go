// Package extract implements the Extraction Transform: one source
// snapshot in, one canonical tree out.
//
// The walk is single-threaded and visits the snapshot depth-first. For
// every node it accumulates geometry (origin, scroll and ancestor
// transforms), classifies the node, reads its paints, effects, layout hint
// and text style, registers image bytes in the job's asset registry and
// derives a stable NodeId. Per-node problems produce placeholder frames and
// diagnostics; only cancellation aborts the walk, and then no tree is
// returned.
package extract

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/fetch"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
	"github.com/matzehuels/pageprint/pkg/source"
)

const phase = string(errors.PhaseExtract)

// Options configures an extraction run.
type Options struct {
	// Fetcher resolves asset URLs. Nil means every non-data: asset is
	// reported as unresolved.
	Fetcher fetch.Fetcher
	// IdentityAttrs and SemanticAttrs override the NodeId derivation
	// attribute lists (nil uses the canon defaults).
	IdentityAttrs []string
	SemanticAttrs []string
	// AllowUnready accepts snapshots whose provider did not signal a
	// stable layout.
	AllowUnready bool
	// KeepDebug records source metadata (tag, selector) on each node.
	KeepDebug bool
	Logger    *log.Logger
}

// Result is a successful extraction.
type Result struct {
	Tree   *canon.Node
	State  string
	Report *diag.Report
}

// Extract converts snap into a canonical tree, registering every image it
// references in reg. The returned error is either an input error (nil or
// unready snapshot) or a *errors.JobError for cancellation and timeout; in
// both cases no tree is returned.
func Extract(ctx context.Context, snap *source.Snapshot, reg *assets.Registry, opts Options) (*Result, error) {
	start := time.Now()
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if !snap.Ready && !opts.AllowUnready {
		return nil, errors.New(errors.ErrCodeInvalidInput, "snapshot of state %q was taken before layout settled", snap.State)
	}
	if reg == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "extraction needs an asset registry")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.Func(func(ctx context.Context, url string) (fetch.Resource, error) {
			if fetch.IsDataURL(url) {
				return fetch.DecodeDataURL(url)
			}
			return fetch.Resource{}, errors.New(errors.ErrCodeNotFound, "no fetcher configured")
		})
	}

	w := &walker{
		ctx:      ctx,
		opts:     opts,
		reg:      reg,
		ident:    canon.NewIdentity(opts.IdentityAttrs, opts.SemanticAttrs),
		report:   &diag.Report{},
		logger:   opts.Logger.With("state", snap.State),
		state:    snap.State,
		viewport: snap.Viewport,
	}
	root, err := w.visit(snap.Root, visitParent{acc: geom.Root(geom.Point{})}, 0)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.FromContext(errors.PhaseExtract, start, ctx.Err())
		}
		return nil, errors.NewJobError(errors.PhaseExtract, start, err)
	}
	w.logger.Debug("extracted", "nodes", root.Count(), "diagnostics", w.report.Len(), "elapsed", time.Since(start))
	return &Result{Tree: root, State: snap.State, Report: w.report}, nil
}

type walker struct {
	ctx      context.Context
	opts     Options
	reg      *assets.Registry
	ident    *canon.Identity
	report   *diag.Report
	logger   *log.Logger
	state    string
	viewport geom.Size
	docOrder int
}

// visitParent is what a node needs to know about its parent.
type visitParent struct {
	id    string
	acc   geom.Accumulated
	style *source.Node // nearest element, for text-run styling
}

func (w *walker) visit(n *source.Node, parent visitParent, tagIndex int) (*canon.Node, error) {
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}

	text := n.Text
	id, src, col := w.ident.Derive(canon.Element{
		ParentID: parent.id,
		Tag:      n.Tag,
		TagIndex: tagIndex,
		Attrs:    n.Attrs,
		Text:     text,
	})
	if col != nil && col.Source == canon.IDExplicit {
		w.report.Addf(diag.IdentityCollision, phase, id, "identity attribute %s is not unique; fell back to %s id", col.Key, src)
	}

	styled := n
	if n.IsText() && parent.style != nil {
		styled = parent.style
	}
	fontSize := fontSizeOf(styled)

	own, origin := geom.Identity(), geom.Point{}
	transformErr := ""
	if !n.IsText() {
		if tv := n.Get("transform"); tv != "" && tv != "none" {
			m, err := geom.ParseTransform(tv, n.Size, fontSize)
			if err != nil {
				transformErr = err.Error()
			} else {
				own = m
				origin = geom.ParseOrigin(n.Get("transform-origin"), n.Size)
			}
		}
	}

	childAcc := parent.acc.Child(n.Offset, n.Scroll, own, origin)
	layoutRect := parent.acc.Place(n.Offset, n.Size)
	pos := parent.acc.Layout(n.Offset)
	rect := childAcc.Transform.Bounds(geom.NewRect(pos.X, pos.Y, n.Size.Width, n.Size.Height))

	node := &canon.Node{
		ID:               id,
		ParentID:         parent.id,
		Name:             nodeName(n),
		Rect:             rect,
		DocOrder:         w.docOrder,
		Opacity:          1,
		Positioning:      canon.PositionFlow,
		Degenerate:       rect.Degenerate(),
		ObservedInStates: []string{w.state},
	}
	w.docOrder++
	if !own.IsIdentity() {
		m := own
		node.Transform = &m
		node.TransformOrigin = &origin
		node.Layout = &layoutRect
	}
	if w.opts.KeepDebug {
		node.Debug = map[string]string{"tag": n.Tag, "idSource": string(src)}
		if sel := selector(n); sel != "" {
			node.Debug["selector"] = sel
		}
	}

	if n.Error != "" {
		w.placeholder(node, n.Error)
	} else if err := w.describe(node, n, styled, fontSize); err != nil {
		if w.ctx.Err() != nil {
			return nil, w.ctx.Err()
		}
		w.placeholder(node, err.Error())
	} else if transformErr != "" {
		w.report.Addf(diag.NodeExtractionError, phase, id, "transform ignored: %s", transformErr)
	}

	next := visitParent{id: id, acc: childAcc, style: n}
	if node.Kind == canon.KindFrame && n.Text != "" && len(n.Children) == 0 {
		// A painted box with its own text: the text becomes a child run.
		run := &source.Node{Tag: source.TextTag, Text: n.Text, Size: n.Size}
		child, err := w.visit(run, next, 0)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	tagCount := make(map[string]int)
	for _, c := range n.Children {
		idx := tagCount[c.Tag]
		tagCount[c.Tag]++
		child, err := w.visit(c, next, idx)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	node.SortChildren()
	return node, nil
}

// placeholder turns node into a flagged frame that keeps its rect.
func (w *walker) placeholder(node *canon.Node, reason string) {
	node.Kind = canon.KindFrame
	node.ExtractionError = reason
	node.Paints, node.Strokes, node.StrokeWeights, node.Effects = nil, nil, nil, nil
	node.TextStyle, node.Characters = nil, ""
	node.Corners = paint.Corners{}
	node.AutoLayout = &canon.AutoLayout{Direction: canon.DirectionNone}
	w.report.Addf(diag.NodeExtractionError, phase, node.ID, "%s", reason)
	w.logger.Warn("node extraction failed", "node", node.ID, "reason", reason)
}

func nodeName(n *source.Node) string {
	if n.IsText() || (n.Text != "" && len(n.Children) == 0) {
		return truncate(strings.TrimSpace(n.Text), 40)
	}
	if v := n.Attrs["aria-label"]; v != "" {
		return truncate(v, 40)
	}
	if v := n.Attrs["id"]; v != "" {
		return n.Tag + "#" + v
	}
	if cls := strings.Fields(n.Attrs["class"]); len(cls) > 0 {
		return n.Tag + "." + cls[0]
	}
	return n.Tag
}

func selector(n *source.Node) string {
	if n.IsText() {
		return ""
	}
	s := n.Tag
	if v := n.Attrs["id"]; v != "" {
		s += "#" + v
	}
	for _, c := range strings.Fields(n.Attrs["class"]) {
		s += "." + c
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
