// Package reconstruct implements the Reconstruction Transform: a merged
// canonical document in, an ordered sequence of [SceneBuilder] calls out.
//
// The tree is walked depth-first in child order (ascending z-index), so
// siblings are appended bottom to top. Each node goes through four steps:
// positioning relative to its parent, auto-layout mapping, paint and font
// resolution, and effect, corner and transform application.
//
// A node that fails is removed and replaced by an empty frame at the same
// rect; its children are still built inside the replacement so the tree
// keeps its shape. The run as a whole fails only on cancellation or on a
// document that violates the schema, and a cancelled run removes what it
// had built.
package reconstruct

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/fonts"
	"github.com/matzehuels/pageprint/pkg/geom"
)

const phase = string(errors.PhaseReconstruct)

// Options configures a reconstruction run.
type Options struct {
	// FontAliases extends and overrides the built-in alias table, keyed by
	// declared family.
	FontAliases map[string][]string
	Logger      *log.Logger
}

// Result is a successful reconstruction.
type Result struct {
	// Root is the handle of the top-level node.
	Root Handle
	// Nodes counts created nodes, replacements included.
	Nodes int
	// Failures counts nodes replaced by empty frames or skipped.
	Failures int
	Report   *diag.Report
}

// Reconstruct builds doc into b. The returned error is a *errors.JobError
// for a schema violation, cancellation or timeout; per-node problems are
// reported in Result.Report.
func Reconstruct(ctx context.Context, doc *canon.Document, b SceneBuilder, opts Options) (*Result, error) {
	start := time.Now()
	if doc == nil || doc.Tree == nil {
		return nil, errors.NewJobError(errors.PhaseReconstruct, start,
			errors.New(errors.ErrCodeSchemaInvalid, "document has no tree"))
	}
	if err := doc.Validate(); err != nil {
		return nil, errors.NewJobError(errors.PhaseReconstruct, start, err)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	reg := doc.Assets
	if reg == nil {
		reg = assets.NewRegistry()
	}

	r := &run{
		ctx:    ctx,
		b:      b,
		reg:    reg,
		fonts:  fonts.NewResolver(builderCatalog{b}, opts.FontAliases),
		report: &diag.Report{},
		logger: opts.Logger,
	}
	if err := r.visit(doc.Tree, parentInfo{}); err != nil {
		if r.root != "" {
			_ = b.Remove(r.root)
		}
		if ctx.Err() != nil {
			return nil, errors.FromContext(errors.PhaseReconstruct, start, ctx.Err())
		}
		return nil, errors.NewJobError(errors.PhaseReconstruct, start, err)
	}
	r.logger.Debug("reconstructed", "nodes", r.nodes, "failures", r.failures, "elapsed", time.Since(start))
	return &Result{Root: r.root, Nodes: r.nodes, Failures: r.failures, Report: r.report}, nil
}

// builderCatalog answers font queries through the builder.
type builderCatalog struct{ b SceneBuilder }

func (c builderCatalog) Styles(ctx context.Context, family string) ([]fonts.Style, error) {
	return c.b.FontStyles(ctx, family)
}

type run struct {
	ctx    context.Context
	b      SceneBuilder
	reg    *assets.Registry
	fonts  *fonts.Resolver
	report *diag.Report
	logger *log.Logger

	root     Handle
	nodes    int
	failures int
}

// parentInfo is what a node needs to know about its built parent.
type parentInfo struct {
	handle Handle
	rect   geom.AbsoluteRect
	// layout is the parent's hint when the parent was built with automatic
	// child layout, else nil.
	layout *canon.AutoLayout
}

// visit builds n and its subtree. It returns only fatal errors.
func (r *run) visit(n *canon.Node, parent parentInfo) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	g := r.place(n, parent)
	h, layout, err := r.build(n, parent.handle, g)
	if err != nil {
		if r.ctx.Err() != nil {
			return r.ctx.Err()
		}
		h, err = r.replace(n, parent, h, err)
		if err != nil {
			return r.ctx.Err()
		}
		layout = nil
	}

	next := parentInfo{handle: h, rect: n.Rect, layout: layout}
	for _, c := range n.Children {
		if err := r.visit(c, next); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) create(n *canon.Node, parent Handle) (Handle, error) {
	var (
		h   Handle
		err error
	)
	switch n.Kind {
	case canon.KindText:
		h, err = r.b.CreateText(r.ctx, parent, n.Name)
	case canon.KindImage:
		h, err = r.b.CreateRectangle(r.ctx, parent, n.Name)
	case canon.KindVector:
		if hasSVG(n) {
			h, err = r.b.CreateVector(r.ctx, parent, n.Name)
		} else {
			h, err = r.b.CreateRectangle(r.ctx, parent, n.Name)
		}
	default:
		h, err = r.b.CreateFrame(r.ctx, parent, n.Name)
	}
	if err != nil {
		return "", err
	}
	r.nodes++
	if parent == "" && r.root == "" {
		r.root = h
	}
	return h, nil
}

// build creates n and applies its properties. On error the partially
// built handle (possibly empty) is returned with the error.
func (r *run) build(n *canon.Node, parent Handle, g geometry) (Handle, *canon.AutoLayout, error) {
	h, err := r.create(n, parent)
	if err != nil {
		return "", nil, err
	}
	if err := r.b.SetRect(h, g.placement); err != nil {
		return h, nil, err
	}
	if g.transform != nil {
		if err := r.b.SetTransform(h, *g.transform); err != nil {
			return h, nil, err
		}
	}

	var active *canon.AutoLayout
	if n.Kind == canon.KindFrame && n.AutoLayout != nil {
		al, fallback := mapAutoLayout(n.AutoLayout)
		if fallback != "" {
			r.report.Addf(diag.LayoutFallback, phase, n.ID, "%s layout cannot be expressed; children positioned absolutely", fallback)
		}
		if err := r.b.SetAutoLayout(h, al); err != nil {
			return h, nil, err
		}
		if al.Mode != LayoutNone {
			active = n.AutoLayout
		}
	}

	if n.Kind == canon.KindText {
		t, err := r.text(n)
		if err != nil {
			return h, nil, err
		}
		if err := r.b.SetText(h, t); err != nil {
			return h, nil, err
		}
	} else if err := r.applyPaints(n, h, g); err != nil {
		return h, nil, err
	}

	if err := r.applyEffects(n, h, g); err != nil {
		return h, nil, err
	}
	return h, active, nil
}

// replace swaps a failed node for an empty frame at its rect.
func (r *run) replace(n *canon.Node, parent parentInfo, failed Handle, cause error) (Handle, error) {
	if failed != "" {
		if err := r.b.Remove(failed); err == nil {
			r.nodes--
		}
		if failed == r.root {
			r.root = ""
		}
	}
	r.failures++
	r.report.Add(diag.Entry{
		Kind:   diag.ReconstructionError,
		Phase:  phase,
		NodeID: n.ID,
		Reason: cause.Error(),
		Detail: map[string]string{"rect": n.Rect.String(), "kind": string(n.Kind)},
	})
	r.logger.Warn("node replaced by empty frame", "node", n.ID, "reason", cause)

	h, err := r.b.CreateFrame(r.ctx, parent.handle, n.Name)
	if err != nil {
		r.logger.Warn("replacement frame failed; subtree skipped", "node", n.ID, "reason", err)
		return "", err
	}
	r.nodes++
	if parent.handle == "" && r.root == "" {
		r.root = h
	}
	if err := r.b.SetRect(h, r.placeRect(n.Rect, n.Positioning, parent)); err != nil {
		_ = r.b.Remove(h)
		r.nodes--
		r.logger.Warn("replacement frame failed; subtree skipped", "node", n.ID, "reason", err)
		return "", err
	}
	return h, nil
}

func hasSVG(n *canon.Node) bool {
	for _, img := range n.ImagePaints() {
		if img.Asset.MIME == assets.MIMESVG {
			return true
		}
	}
	return false
}
