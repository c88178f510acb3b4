package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/compact"
	"github.com/matzehuels/pageprint/pkg/fetch"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/observability"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
	"github.com/matzehuels/pageprint/pkg/source"
	"github.com/matzehuels/pageprint/pkg/source/browser"
)

// captureOpts holds the command-line flags for the capture command.
type captureOpts struct {
	output     string   // document path
	ops        string   // op payload path; empty skips reconstruction output
	states     []string // --state flags
	base       string   // base state
	width      float64  // viewport width
	height     float64  // viewport height
	timeout    time.Duration
	compact    bool
	aggressive bool
	noCache    bool
	refresh    bool
	headful    bool
	stealth    bool
	controlURL string
	fontDir    string
	snapshots  string // directory for raw snapshots
}

// captureCommand creates the capture command: the full job against a live page.
func (c *CLI) captureCommand() *cobra.Command {
	var opts captureOpts

	cmd := &cobra.Command{
		Use:   "capture <url>",
		Short: "Capture a live page into a canonical document",
		Long: `Capture loads the page in Chrome, snapshots every state, extracts and merges
the trees and writes the canonical document. With --ops it also writes the
design-tool operations that rebuild it.

States are given as name[:action=value;...], e.g.

  --state default --state menu:click=#menu-toggle;settle=300ms --state footer:scroll=0,2400`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCapture(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "document path (default derived from the URL, - for stdout)")
	cmd.Flags().StringVar(&opts.ops, "ops", "", "also write reconstruction ops to this path")
	cmd.Flags().StringArrayVarP(&opts.states, "state", "s", nil, "observation state (repeatable)")
	cmd.Flags().StringVar(&opts.base, "base", "", "base state (default: first state)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "job timeout")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "drop oversized assets from the document")
	cmd.Flags().BoolVar(&opts.aggressive, "aggressive", false, "use the aggressive compaction preset")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-capture even when snapshots are cached")
	cmd.Flags().BoolVar(&opts.headful, "headful", false, "show the browser window")
	cmd.Flags().BoolVar(&opts.stealth, "stealth", false, "mask automation fingerprints")
	cmd.Flags().StringVar(&opts.controlURL, "control-url", "", "connect to a running Chrome (ws://...)")
	cmd.Flags().StringVar(&opts.fontDir, "font-dir", "", "font directory for reconstruction (\"system\" scans system fonts)")
	cmd.Flags().StringVar(&opts.snapshots, "snapshots", "", "also save raw snapshots to this directory")

	return cmd
}

func (c *CLI) runCapture(ctx context.Context, url string, opts captureOpts) error {
	cfg := c.config()
	popts := cfg.PipelineOptions(url)
	states, err := parseStates(opts.states, popts.States)
	if err != nil {
		return err
	}
	popts.States = states
	popts.Refresh = opts.refresh || opts.snapshots != ""
	popts.Logger = c.Logger
	if opts.base != "" {
		popts.BaseState = opts.base
	}
	if opts.width > 0 {
		popts.Viewport.Width = opts.width
	}
	if opts.height > 0 {
		popts.Viewport.Height = opts.height
	}
	if opts.timeout > 0 {
		popts.Timeout = opts.timeout
	}
	if opts.compact || opts.aggressive {
		popts.Compact = &compact.Options{Aggressive: opts.aggressive}
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Launching browser")
	spinner.Start()
	defer spinner.Stop()

	provider, err := browser.New(ctx, browser.Options{
		URL:             url,
		ControlURL:      firstNonEmpty(opts.controlURL, cfg.Capture.ControlURL),
		Headful:         opts.headful || cfg.Capture.Headful,
		Stealth:         opts.stealth || cfg.Capture.Stealth,
		Viewport:        geom.Size{Width: popts.Viewport.Width, Height: popts.Viewport.Height},
		NavigateTimeout: cfg.Capture.NavigateTimeout,
		Settle:          cfg.Capture.Settle,
		Logger:          c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Could not start the browser")
		return err
	}
	defer provider.Close()

	popts.Provider = provider
	if opts.snapshots != "" {
		if err := os.MkdirAll(opts.snapshots, 0o755); err != nil {
			return err
		}
		popts.Provider = &savingProvider{Provider: provider, dir: opts.snapshots}
	}
	runner.Fetcher = provider.Fetcher(fetch.NewHTTP(cfg.FetchOptions(runner.Cache, c.Logger)))
	rec := reconstruct.NewRecorder(c.fontCatalog(opts.fontDir))
	popts.Builder = rec
	popts.SkipReconstruct = opts.ops == ""

	if c.Logger.GetLevel() > LogDebug {
		observability.SetPipelineHooks(&spinnerHooks{spinner: spinner})
		defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})
	}

	p := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Capture failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Captured %s (%s)", url, p.elapsed()))

	output := firstNonEmpty(opts.output, documentName(url))
	if err := writeDocument(output, result.Document); err != nil {
		return err
	}
	printStats(result.Stats.States, result.Stats.Nodes, result.Stats.Assets, result.CacheInfo.SnapshotHits == result.Stats.States)
	if result.CompactStats != nil {
		printDetail("compacted %d → %d bytes (%d images, %d svgs dropped)",
			result.CompactStats.BytesBefore, result.CompactStats.BytesAfter,
			result.CompactStats.ImagesRemoved, result.CompactStats.SVGsRemoved)
	}
	printFile(output)
	if opts.ops != "" {
		if err := writeJSON(opts.ops, rec.Payload()); err != nil {
			return err
		}
		printFile(opts.ops)
	}
	printDiagnostics(result.Report.Entries())
	if opts.ops == "" && output != "-" {
		printNextStep("Build design ops", "pageprint reconstruct "+output)
	}
	return nil
}

// savingProvider writes every snapshot it produces to dir.
type savingProvider struct {
	source.Provider
	dir string
}

func (p *savingProvider) Snapshot(ctx context.Context, spec source.StateSpec) (*source.Snapshot, error) {
	snap, err := p.Provider.Snapshot(ctx, spec)
	if err != nil {
		return nil, err
	}
	if err := source.WriteFile(filepath.Join(p.dir, spec.Name+".json"), snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// spinnerHooks shows the current phase on the spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

func (h *spinnerHooks) OnCaptureStart(_ context.Context, _, state string) {
	h.spinner.SetMessage("Capturing state " + state)
}

func (h *spinnerHooks) OnExtractStart(_ context.Context, state string) {
	h.spinner.SetMessage("Extracting " + state)
}

func (h *spinnerHooks) OnMergeStart(_ context.Context, states int) {
	h.spinner.SetMessage(fmt.Sprintf("Merging %d states", states))
}

func (h *spinnerHooks) OnReconstructStart(_ context.Context, nodes int) {
	h.spinner.SetMessage(fmt.Sprintf("Reconstructing %d nodes", nodes))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
