// Package compact shrinks a canonical document for transport to a target
// application with payload limits.
//
// Compaction is lossy. Oversized assets are dropped from the asset table
// (their refs then reconstruct as placeholders with a diagnostic), source
// debug metadata is stripped, design tokens are trimmed to the most used
// entries and, when asked, deep subtrees are cut.
package compact

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
)

const phase = "compact"

// Options controls what compaction removes. Zero limits fall back to the
// standard (or aggressive) preset; MaxDepth 0 never truncates the tree.
type Options struct {
	MaxImageBytes int64
	MaxSVGBytes   int64
	// MaxDepth cuts the children of nodes at this depth (root is 0).
	MaxDepth   int
	StripDebug bool
	Aggressive bool

	MaxColors     int
	MaxTypography int
	MaxSpacing    int

	Logger *log.Logger
}

// Preset limits.
const (
	StandardImageBytes   = 75 * 1024
	StandardSVGBytes     = 30 * 1024
	AggressiveImageBytes = 25 * 1024
	AggressiveSVGBytes   = 10 * 1024
)

// ValidateAndSetDefaults fills unset limits from the selected preset.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxImageBytes < 0 || o.MaxSVGBytes < 0 || o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "compaction limits must not be negative")
	}
	images, svgs, colors, typography, spacing := int64(StandardImageBytes), int64(StandardSVGBytes), 30, 20, 25
	if o.Aggressive {
		images, svgs, colors, typography, spacing = AggressiveImageBytes, AggressiveSVGBytes, 15, 10, 10
	}
	if o.MaxImageBytes == 0 {
		o.MaxImageBytes = images
	}
	if o.MaxSVGBytes == 0 {
		o.MaxSVGBytes = svgs
	}
	if o.MaxColors == 0 {
		o.MaxColors = colors
	}
	if o.MaxTypography == 0 {
		o.MaxTypography = typography
	}
	if o.MaxSpacing == 0 {
		o.MaxSpacing = spacing
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return nil
}

// Stats summarizes one compaction.
type Stats struct {
	BytesBefore    int `json:"bytesBefore"`
	BytesAfter     int `json:"bytesAfter"`
	ImagesRemoved  int `json:"imagesRemoved"`
	SVGsRemoved    int `json:"svgsRemoved"`
	NodesTruncated int `json:"nodesTruncated"`
	DebugStripped  int `json:"debugStripped"`
}

// Ratio returns BytesAfter/BytesBefore, or 1 for an empty input.
func (s Stats) Ratio() float64 {
	if s.BytesBefore == 0 {
		return 1
	}
	return float64(s.BytesAfter) / float64(s.BytesBefore)
}

// Compact returns a compacted copy of doc; doc itself is not modified.
// Every dropped asset is recorded as an AssetResolutionError diagnostic on
// the copy.
func Compact(doc *canon.Document, opts Options) (*canon.Document, Stats, error) {
	var stats Stats
	if doc == nil || doc.Tree == nil {
		return nil, stats, errors.New(errors.ErrCodeInvalidInput, "nothing to compact")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}
	before, err := canon.Marshal(doc)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeInternal, err, "measure document")
	}
	stats.BytesBefore = len(before)

	out := *doc
	out.Tree = doc.Tree.Clone()
	out.Assets = assets.NewRegistry()
	out.Assets.Absorb(doc.Assets)
	out.Diagnostics = append([]diag.Entry(nil), doc.Diagnostics...)
	out.States = append([]string(nil), doc.States...)

	for _, hash := range out.Assets.Hashes() {
		a, _ := out.Assets.Lookup(hash)
		limit, svg := opts.MaxImageBytes, a.MIME == assets.MIMESVG
		if svg {
			limit = opts.MaxSVGBytes
		}
		if int64(len(a.Data)) <= limit {
			continue
		}
		out.Assets.Remove(hash)
		if svg {
			stats.SVGsRemoved++
		} else {
			stats.ImagesRemoved++
		}
		out.Diagnostics = append(out.Diagnostics, diag.Entry{
			Kind:   diag.AssetResolutionError,
			Phase:  phase,
			Reason: "asset dropped by compaction",
			Detail: map[string]string{"hash": hash, "mime": a.MIME},
		})
		opts.Logger.Debug("dropped asset", "hash", hash, "bytes", len(a.Data), "limit", limit)
	}

	out.Tree.Walk(func(n *canon.Node, depth int) bool {
		if opts.StripDebug && n.Debug != nil {
			n.Debug = nil
			stats.DebugStripped++
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth && len(n.Children) > 0 {
			for _, c := range n.Children {
				stats.NodesTruncated += c.Count()
			}
			n.Children = nil
		}
		return true
	})
	if stats.NodesTruncated > 0 {
		out.Diagnostics = append(out.Diagnostics, diag.Entry{
			Kind:   diag.LayoutFallback,
			Phase:  phase,
			Reason: "tree truncated by compaction",
		})
		opts.Logger.Info("truncated tree", "depth", opts.MaxDepth, "nodes", stats.NodesTruncated)
	}

	out.Tokens = doc.Tokens.Top(opts.MaxColors, opts.MaxTypography, opts.MaxSpacing)

	after, err := canon.Marshal(&out)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeInternal, err, "measure document")
	}
	stats.BytesAfter = len(after)
	return &out, stats, nil
}
