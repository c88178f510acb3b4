// Package source defines the Source Tree Provider contract: an immutable
// snapshot of a rendered page (geometry, computed style and asset
// locations per element) for one observation state.
//
// Providers live in subpackages ([github.com/matzehuels/pageprint/pkg/source/browser]
// drives a headless Chrome). Snapshots can also be written to and read
// from JSON files, which lets extraction run offline and makes fixtures
// easy to build.
package source

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/geom"
)

// DefaultState is the name of the unmodified observation state.
const DefaultState = "default"

// TextTag marks a text-run node.
const TextTag = "#text"

// Node is one element (or text run) of a snapshot.
//
// Offset is relative to the parent's border-box origin before the parent's
// own scroll is applied; for the root it is the document position. Size is
// the untransformed border-box size. Style holds computed values keyed by
// CSS property name.
type Node struct {
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Offset   geom.Point        `json:"offset"`
	Size     geom.Size         `json:"size"`
	Scroll   geom.Point        `json:"scroll,omitzero"`
	Style    map[string]string `json:"style,omitempty"`
	Children []*Node           `json:"children,omitempty"`

	// Replaced is set for replaced elements (img, picture, video, canvas,
	// input[type=image]). ImageURL is the source actually displayed and
	// Intrinsic its natural size.
	Replaced  bool      `json:"replaced,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Intrinsic geom.Size `json:"intrinsic,omitzero"`
	// SVG is the serialized markup of an inline <svg> element.
	SVG string `json:"svg,omitempty"`
	// Error is set when the provider could not read the node (for example a
	// cross-origin frame); its geometry is still valid.
	Error string `json:"error,omitempty"`
}

// Get returns a computed style value, or "" when absent.
func (n *Node) Get(prop string) string {
	if n.Style == nil {
		return ""
	}
	return n.Style[prop]
}

// IsText reports whether n is a text run.
func (n *Node) IsText() bool { return n.Tag == TextTag }

// Snapshot is one observation of the source.
type Snapshot struct {
	URL        string     `json:"url"`
	State      string     `json:"state"`
	Viewport   geom.Size  `json:"viewport"`
	Scroll     geom.Point `json:"scroll"`
	CapturedAt time.Time  `json:"capturedAt"`
	// Ready is the provider's readiness signal: layout was stable when the
	// snapshot was taken.
	Ready bool  `json:"ready"`
	Root  *Node `json:"root"`
}

// Validate checks that the snapshot can be extracted.
func (s *Snapshot) Validate() error {
	if s == nil || s.Root == nil {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot has no root")
	}
	if s.State != "" {
		if err := errors.ValidateStateName(s.State); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes in the snapshot.
func (s *Snapshot) Count() int {
	var count func(*Node) int
	count = func(n *Node) int {
		c := 1
		for _, ch := range n.Children {
			c += count(ch)
		}
		return c
	}
	if s.Root == nil {
		return 0
	}
	return count(s.Root)
}

// StateSpec describes how to reach an observation state from a freshly
// loaded page.
type StateSpec struct {
	Name    string        `json:"name" yaml:"name" toml:"name"`
	ScrollX float64       `json:"scrollX,omitempty" yaml:"scroll_x" toml:"scroll_x"`
	ScrollY float64       `json:"scrollY,omitempty" yaml:"scroll_y" toml:"scroll_y"`
	Hover   string        `json:"hover,omitempty" yaml:"hover" toml:"hover"`
	Click   string        `json:"click,omitempty" yaml:"click" toml:"click"`
	Settle  time.Duration `json:"settle,omitempty" yaml:"settle" toml:"settle"`
}

// Provider produces snapshots.
type Provider interface {
	// Snapshot brings the source into spec's state, waits for the layout to
	// settle and returns an immutable snapshot. It must honor ctx.
	Snapshot(ctx context.Context, spec StateSpec) (*Snapshot, error)
}

// Static serves pre-captured snapshots by state name. It is used for
// offline runs and tests.
type Static map[string]*Snapshot

// Snapshot returns the stored snapshot for spec.Name.
func (s Static) Snapshot(ctx context.Context, spec StateSpec) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := spec.Name
	if name == "" {
		name = DefaultState
	}
	snap, ok := s[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no snapshot for state %q", name)
	}
	return snap, nil
}

// Decode reads a snapshot from JSON.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if s.State == "" {
		s.State = DefaultState
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadFile loads a snapshot file.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile writes a snapshot as indented JSON.
func WriteFile(path string, s *Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
