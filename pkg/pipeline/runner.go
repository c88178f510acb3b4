package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/buildinfo"
	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/compact"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/extract"
	"github.com/matzehuels/pageprint/pkg/fetch"
	"github.com/matzehuels/pageprint/pkg/merge"
	"github.com/matzehuels/pageprint/pkg/observability"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
	"github.com/matzehuels/pageprint/pkg/source"
	"github.com/matzehuels/pageprint/pkg/tokens"
)

// Runner executes jobs with snapshot caching and asset fetching.
//
// The Runner keeps no job state. Multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Cache cache.Cache
	Keyer cache.Keyer
	// Fetcher resolves asset URLs during extraction. Nil resolves only
	// data: URLs.
	Fetcher fetch.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs capture → extract → merge → reconstruct.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Provider == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no source provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	result := &Result{JobID: newJobID(), Report: &diag.Report{}}
	logger := opts.Logger.With("job", result.JobID)
	opts.Logger = logger

	// Phase 1: Capture
	captureStart := time.Now()
	snaps, hits, err := r.CaptureWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.CaptureTime = time.Since(captureStart)
	result.Stats.States = len(snaps)
	result.CacheInfo.SnapshotHits = hits
	logger.Info("captured states", "states", len(snaps), "cached", hits, "duration", result.Stats.CaptureTime)

	// Phase 2: Extract
	extractStart := time.Now()
	reg := assets.NewRegistry()
	extracted, err := r.Extract(ctx, snaps, reg, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ExtractTime = time.Since(extractStart)
	for _, ex := range extracted {
		result.Report.Merge(ex.Report)
	}
	logger.Info("extracted trees", "assets", reg.Len(), "diagnostics", result.Report.Len(), "duration", result.Stats.ExtractTime)

	// Phase 3: Merge
	mergeStart := time.Now()
	merged, err := r.Merge(ctx, extracted, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.MergeTime = time.Since(mergeStart)
	result.Stats.Nodes = merged.Tree.Count()
	result.Stats.Conflicts = merged.Conflicts
	result.Report.Merge(merged.Report)
	logger.Info("merged states", "nodes", result.Stats.Nodes, "conflicts", merged.Conflicts, "duration", result.Stats.MergeTime)

	doc := canon.NewDocument(merged.Tree, reg)
	doc.Source = canon.Source{
		URL:        opts.URL,
		Viewport:   opts.Viewport,
		CapturedAt: snaps[0].CapturedAt,
		Generator:  buildinfo.Short(),
	}
	doc.States = merged.States
	doc.BaseState = merged.Base
	doc.Diagnostics = result.Report.Entries()
	if !opts.SkipTokens {
		doc.Tokens = tokens.Collect(doc.Tree)
	}
	if opts.Compact != nil {
		copts := *opts.Compact
		if copts.Logger == nil {
			copts.Logger = logger
		}
		compacted, stats, err := compact.Compact(doc, copts)
		if err != nil {
			return nil, err
		}
		doc = compacted
		result.CompactStats = &stats
		logger.Info("compacted document", "before", stats.BytesBefore, "after", stats.BytesAfter)
	}
	result.Document = doc
	result.Stats.Assets = doc.Assets.Len()

	if opts.SkipReconstruct {
		return result, nil
	}

	// Phase 4: Reconstruct
	builder := opts.Builder
	var rec *reconstruct.Recorder
	if builder == nil {
		rec = reconstruct.NewRecorder(nil)
		builder = rec
	}
	reconstructStart := time.Now()
	rres, err := r.Reconstruct(ctx, doc, builder, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ReconstructTime = time.Since(reconstructStart)
	result.Stats.Failures = rres.Failures
	result.Reconstruction = rres
	result.Report.Merge(rres.Report)
	if rec != nil {
		payload := rec.Payload()
		result.Ops = &payload
	}
	logger.Info("reconstructed", "nodes", rres.Nodes, "failures", rres.Failures, "duration", result.Stats.ReconstructTime)

	return result, nil
}

// CaptureWithCacheInfo snapshots every state in order and returns how many
// came from the cache. States are captured one at a time because they
// share one page.
func (r *Runner) CaptureWithCacheInfo(ctx context.Context, opts Options) ([]*source.Snapshot, int, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := opts.ValidateForCapture(); err != nil {
		return nil, 0, err
	}
	if opts.Provider == nil {
		return nil, 0, errors.New(errors.ErrCodeInvalidInput, "no source provider configured")
	}

	snaps := make([]*source.Snapshot, 0, len(opts.States))
	hits := 0
	useCache := !cache.Disabled(r.Cache)
	for _, spec := range opts.States {
		if err := ctx.Err(); err != nil {
			return nil, 0, errors.FromContext(errors.PhaseCapture, start, err)
		}
		key := r.Keyer.SnapshotKey(opts.URL, spec.Name, opts.SnapshotKeyOpts(spec))
		if useCache && !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				if snap, err := source.Decode(bytes.NewReader(data)); err == nil {
					snaps = append(snaps, snap)
					hits++
					continue
				}
			}
		}

		stateStart := time.Now()
		observability.Pipeline().OnCaptureStart(ctx, opts.URL, spec.Name)
		snap, err := opts.Provider.Snapshot(ctx, spec)
		observability.Pipeline().OnCaptureComplete(ctx, opts.URL, spec.Name, time.Since(stateStart), err)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, errors.FromContext(errors.PhaseCapture, start, ctx.Err())
			}
			return nil, 0, errors.NewJobError(errors.PhaseCapture, start, err)
		}
		if snap.State == "" {
			snap.State = spec.Name
		}
		opts.Logger.Debug("captured state", "state", spec.Name, "nodes", snap.Count(), "duration", time.Since(stateStart))

		if useCache {
			if data, err := json.Marshal(snap); err == nil {
				_ = r.Cache.Set(ctx, key, data, TTLSnapshot)
			}
		}
		snaps = append(snaps, snap)
	}
	return snaps, hits, nil
}

// Capture is a convenience wrapper that discards the cache hit count.
func (r *Runner) Capture(ctx context.Context, opts Options) ([]*source.Snapshot, error) {
	snaps, _, err := r.CaptureWithCacheInfo(ctx, opts)
	return snaps, err
}

// Extract converts snapshots into canonical trees, registering assets in
// reg. Asset URLs of all snapshots are prefetched together first; the
// snapshots are then extracted concurrently.
func (r *Runner) Extract(ctx context.Context, snaps []*source.Snapshot, reg *assets.Registry, opts Options) ([]*extract.Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = DefaultFetchConcurrency
	}

	var fetcher fetch.Fetcher
	if r.Fetcher != nil {
		var urls []string
		for _, s := range snaps {
			urls = append(urls, extract.URLs(s)...)
		}
		memo, err := fetch.Prefetch(ctx, r.Fetcher, urls, opts.FetchConcurrency)
		if err != nil {
			return nil, errors.FromContext(errors.PhaseExtract, start, err)
		}
		if n := memo.Failed(); n > 0 {
			opts.Logger.Warn("assets unavailable", "count", n)
		}
		fetcher = memo
	}

	results := make([]*extract.Result, len(snaps))
	g, gctx := errgroup.WithContext(ctx)
	for i, snap := range snaps {
		g.Go(func() error {
			state := snap.State
			stateStart := time.Now()
			observability.Pipeline().OnExtractStart(gctx, state)
			res, err := extract.Extract(gctx, snap, reg, extract.Options{
				Fetcher:       fetcher,
				IdentityAttrs: opts.IdentityAttrs,
				SemanticAttrs: opts.SemanticAttrs,
				AllowUnready:  opts.AllowUnready,
				KeepDebug:     opts.KeepDebug,
				Logger:        opts.Logger,
			})
			nodes := 0
			if res != nil {
				nodes = res.Tree.Count()
			}
			observability.Pipeline().OnExtractComplete(gctx, state, nodes, time.Since(stateStart), err)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.FromContext(errors.PhaseExtract, start, ctx.Err())
		}
		return nil, errors.NewJobError(errors.PhaseExtract, start, err)
	}
	return results, nil
}

// Merge reconciles extracted trees, base state first.
func (r *Runner) Merge(ctx context.Context, extracted []*extract.Result, opts Options) (*merge.Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	if err := ctx.Err(); err != nil {
		return nil, errors.FromContext(errors.PhaseMerge, start, err)
	}
	inputs := make([]merge.Input, 0, len(extracted))
	for _, ex := range extracted {
		inputs = append(inputs, merge.Input{State: ex.State, Tree: ex.Tree})
	}

	observability.Pipeline().OnMergeStart(ctx, len(inputs))
	mopts := merge.Options{Base: opts.BaseState, Logger: opts.Logger}
	if opts.Tolerance != nil {
		mopts.SetTolerance(*opts.Tolerance)
	}
	res, err := merge.Merge(inputs, mopts)
	if err != nil {
		return nil, errors.NewJobError(errors.PhaseMerge, start, err)
	}
	observability.Pipeline().OnMergeComplete(ctx, res.Tree.Count(), res.Conflicts, time.Since(start))
	return res, nil
}

// Reconstruct builds doc into b.
func (r *Runner) Reconstruct(ctx context.Context, doc *canon.Document, b reconstruct.SceneBuilder, opts Options) (*reconstruct.Result, error) {
	start := time.Now()
	r.applyLogger(&opts)
	nodes := 0
	if doc != nil {
		nodes = doc.Tree.Count()
	}
	observability.Pipeline().OnReconstructStart(ctx, nodes)
	res, err := reconstruct.Reconstruct(ctx, doc, b, reconstruct.Options{FontAliases: opts.FontAliases, Logger: opts.Logger})
	created, failures := 0, 0
	if res != nil {
		created, failures = res.Nodes, res.Failures
	}
	observability.Pipeline().OnReconstructComplete(ctx, created, failures, time.Since(start), err)
	return res, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
