// Package pipeline runs capture jobs end to end.
//
// A job has four phases:
//
//  1. Capture: bring the source into each observation state and snapshot it
//  2. Extract: convert every snapshot into a canonical tree
//  3. Merge: reconcile the per-state trees into one document
//  4. Reconstruct: issue the target scene-graph operations
//
// Each phase can be run on its own. One asset registry is created per job
// and threaded through extraction into the merged document. A job either
// succeeds, possibly with diagnostics, or fails with exactly one
// *errors.JobError naming the phase and the elapsed time.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Fetcher = fetch.NewHTTP(fetch.HTTPOptions{Cache: cache})
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    URL:      "https://example.com",
//	    Provider: provider,
//	    States:   []source.StateSpec{{Name: "default"}, {Name: "hover", Hover: "nav a"}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	payload := result.Ops
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/compact"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/merge"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
	"github.com/matzehuels/pageprint/pkg/source"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultViewportWidth and DefaultViewportHeight size the capture
	// viewport.
	DefaultViewportWidth  = 1440.0
	DefaultViewportHeight = 900.0

	// DefaultFetchConcurrency bounds concurrent asset prefetches.
	DefaultFetchConcurrency = 8

	// DefaultTimeout bounds a whole job.
	DefaultTimeout = 2 * time.Minute

	// TTLSnapshot is how long captured snapshots stay cached.
	TTLSnapshot = time.Hour
)

// =============================================================================
// Options
// =============================================================================

// Options configures a job. It supports JSON for API requests.
type Options struct {
	// Capture
	URL      string             `json:"url"`
	States   []source.StateSpec `json:"states,omitempty"`
	Viewport geom.Size          `json:"viewport,omitzero"`
	Refresh  bool               `json:"refresh,omitempty"`
	Timeout  time.Duration      `json:"timeout,omitempty"`

	// Extract
	IdentityAttrs    []string `json:"identityAttrs,omitempty"`
	SemanticAttrs    []string `json:"semanticAttrs,omitempty"`
	FetchConcurrency int      `json:"fetchConcurrency,omitempty"`
	AllowUnready     bool     `json:"allowUnready,omitempty"`
	KeepDebug        bool     `json:"keepDebug,omitempty"`

	// Merge
	BaseState string `json:"baseState,omitempty"`
	// Tolerance in px; 0 makes the merge exact. Nil means
	// merge.DefaultTolerance.
	Tolerance *float64 `json:"tolerance,omitempty"`

	// Document
	SkipTokens bool             `json:"skipTokens,omitempty"`
	Compact    *compact.Options `json:"compact,omitempty"`

	// Reconstruct
	FontAliases     map[string][]string `json:"fontAliases,omitempty"`
	SkipReconstruct bool                `json:"skipReconstruct,omitempty"`

	// Runtime options (not serialized)
	Provider source.Provider          `json:"-"`
	Builder  reconstruct.SceneBuilder `json:"-"`
	Logger   *log.Logger              `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCapture(); err != nil {
		return err
	}
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = DefaultFetchConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Tolerance == nil {
		tol := merge.DefaultTolerance
		o.Tolerance = &tol
	}
	if o.BaseState == "" {
		o.BaseState = o.States[0].Name
	}
	if !o.hasState(o.BaseState) {
		return errors.New(errors.ErrCodeInvalidInput, "base state %q is not captured", o.BaseState)
	}
	o.validated = true
	return nil
}

// ValidateForCapture checks the capture fields and fills their defaults.
func (o *Options) ValidateForCapture() error {
	if err := errors.ValidateURL(o.URL); err != nil {
		return err
	}
	if len(o.States) == 0 {
		o.States = []source.StateSpec{{Name: source.DefaultState}}
	}
	seen := make(map[string]bool, len(o.States))
	for _, s := range o.States {
		if err := errors.ValidateStateName(s.Name); err != nil {
			return err
		}
		if seen[s.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "state %q listed twice", s.Name)
		}
		seen[s.Name] = true
	}
	if o.Viewport.Width <= 0 {
		o.Viewport.Width = DefaultViewportWidth
	}
	if o.Viewport.Height <= 0 {
		o.Viewport.Height = DefaultViewportHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

func (o *Options) hasState(name string) bool {
	for _, s := range o.States {
		if s.Name == name {
			return true
		}
	}
	return false
}

// SnapshotKeyOpts returns the cache key options for one state.
func (o *Options) SnapshotKeyOpts(spec source.StateSpec) cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		ViewportWidth:  int(o.Viewport.Width),
		ViewportHeight: int(o.Viewport.Height),
		ScrollX:        int(spec.ScrollX),
		ScrollY:        int(spec.ScrollY),
		Hover:          spec.Hover,
		Click:          spec.Click,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result is the output of a job.
type Result struct {
	JobID string

	// Document is the merged canonical document, compacted when requested.
	Document *canon.Document

	// Reconstruction and Ops are nil when reconstruction was skipped. Ops
	// is set when the job recorded operations itself.
	Reconstruction *reconstruct.Result
	Ops            *reconstruct.Payload

	// Report holds the diagnostics of every phase, in phase order.
	Report *diag.Report

	Stats        Stats
	CompactStats *compact.Stats
	CacheInfo    CacheInfo
}

// Stats contains job statistics.
type Stats struct {
	States          int
	Nodes           int
	Assets          int
	Conflicts       int
	Failures        int
	CaptureTime     time.Duration
	ExtractTime     time.Duration
	MergeTime       time.Duration
	ReconstructTime time.Duration
}

// CacheInfo tracks snapshot cache hits.
type CacheInfo struct {
	SnapshotHits int
}

func newJobID() string { return uuid.NewString() }
