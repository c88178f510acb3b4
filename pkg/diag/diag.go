// Package diag collects non-fatal problems encountered while extracting,
// merging and reconstructing a canonical tree.
//
// Every non-fatal error is accumulated into a [Report] that travels
// alongside the successful result. Nothing in this package is ever
// returned as an error: a job either succeeds with a (possibly non-empty)
// report or fails with a single fatal error from pkg/errors.
package diag

import (
	"fmt"
	"slices"
	"sync"
)

// Kind classifies a diagnostic entry.
type Kind string

// Diagnostic kinds.
const (
	// NodeExtractionError: the node became a flagged placeholder frame.
	NodeExtractionError Kind = "NodeExtractionError"
	// AssetResolutionError: the paint became a diagnostic placeholder fill.
	AssetResolutionError Kind = "AssetResolutionError"
	// MergeConflictWarning: geometry disagreed between states and was
	// resolved by the base/earliest-state rule.
	MergeConflictWarning Kind = "MergeConflictWarning"
	// ReconstructionError: the node became an empty frame at the same rect.
	ReconstructionError Kind = "ReconstructionError"
	// FontFallback: the declared family stack did not resolve exactly.
	FontFallback Kind = "FontFallback"
	// LayoutFallback: an auto-layout hint could not be expressed and the
	// node was positioned absolutely instead.
	LayoutFallback Kind = "LayoutFallback"
	// IdentityCollision: an explicit identity attribute was not unique.
	IdentityCollision Kind = "IdentityCollision"
)

// Entry is a single diagnostic.
type Entry struct {
	Kind   Kind              `json:"kind" bson:"kind"`
	Phase  string            `json:"phase" bson:"phase"`
	NodeID string            `json:"nodeId,omitempty" bson:"node_id,omitempty"`
	Reason string            `json:"reason" bson:"reason"`
	Detail map[string]string `json:"detail,omitempty" bson:"detail,omitempty"`
}

// String formats the entry for logs.
func (e Entry) String() string {
	if e.NodeID == "" {
		return fmt.Sprintf("%s [%s] %s", e.Kind, e.Phase, e.Reason)
	}
	return fmt.Sprintf("%s [%s] %s: %s", e.Kind, e.Phase, e.NodeID, e.Reason)
}

// Report accumulates diagnostics. The zero value is ready to use and a
// Report is safe for concurrent use.
type Report struct {
	mu      sync.Mutex
	entries []Entry
}

// Add appends an entry.
func (r *Report) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Addf appends an entry built from a format string.
func (r *Report) Addf(kind Kind, phase, nodeID, format string, args ...any) {
	r.Add(Entry{Kind: kind, Phase: phase, NodeID: nodeID, Reason: fmt.Sprintf(format, args...)})
}

// Merge appends all entries of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	entries := other.Entries()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

// Entries returns a copy of the accumulated entries in insertion order.
func (r *Report) Entries() []Entry {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Len returns the number of entries.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Count returns the number of entries of the given kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// ForNode returns the entries recorded against nodeID.
func (r *Report) ForNode(nodeID string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.NodeID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Summary returns entry counts keyed by kind.
func (r *Report) Summary() map[Kind]int {
	out := make(map[Kind]int)
	for _, e := range r.Entries() {
		out[e.Kind]++
	}
	return out
}
