package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/compact"
	"github.com/matzehuels/pageprint/pkg/fetch"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
	"github.com/matzehuels/pageprint/pkg/source"
)

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	output  string
	ops     string
	base    string
	compact bool
	offline bool
	fontDir string
}

// extractCommand creates the extract command: the job run against saved
// snapshots instead of a live page.
func (c *CLI) extractCommand() *cobra.Command {
	var opts extractOpts

	cmd := &cobra.Command{
		Use:   "extract <snapshot.json>...",
		Short: "Extract and merge saved snapshots into a canonical document",
		Long: `Extract reads snapshots written by "capture --snapshots", one per state,
and runs extraction and merge on them. The first file is the base state
unless --base names another.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "document path (default derived from the first snapshot)")
	cmd.Flags().StringVar(&opts.ops, "ops", "", "also write reconstruction ops to this path")
	cmd.Flags().StringVar(&opts.base, "base", "", "base state")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "drop oversized assets from the document")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "resolve only data: URLs")
	cmd.Flags().StringVar(&opts.fontDir, "font-dir", "", "font directory for reconstruction")

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, paths []string, opts extractOpts) error {
	p := newProgress(c.Logger)
	snaps := make(source.Static, len(paths))
	var states []source.StateSpec
	var url string
	for _, path := range paths {
		snap, err := source.ReadFile(path)
		if err != nil {
			return err
		}
		if _, dup := snaps[snap.State]; dup {
			return errorf("state %q appears in more than one snapshot", snap.State)
		}
		snaps[snap.State] = snap
		states = append(states, source.StateSpec{Name: snap.State})
		if url == "" {
			url = snap.URL
		}
	}
	if url == "" {
		abs, err := filepath.Abs(paths[0])
		if err != nil {
			return err
		}
		url = "file://" + filepath.ToSlash(abs)
	}

	cfg := c.config()
	popts := cfg.PipelineOptions(url)
	popts.States = states
	popts.BaseState = opts.base
	popts.Refresh = true
	popts.Provider = snaps
	popts.Logger = c.Logger
	popts.SkipReconstruct = opts.ops == ""
	if opts.compact {
		popts.Compact = &compact.Options{}
	}
	rec := reconstruct.NewRecorder(c.fontCatalog(opts.fontDir))
	popts.Builder = rec

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()
	if !opts.offline {
		assetCache, err := c.newCache(ctx, false)
		if err != nil {
			return err
		}
		defer assetCache.Close()
		runner.Fetcher = fetch.NewHTTP(cfg.FetchOptions(assetCache, c.Logger))
	}

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	p.done("Extracted snapshots", "states", result.Stats.States, "nodes", result.Stats.Nodes)

	output := firstNonEmpty(opts.output, derivedPath(paths[0], ".doc.json"))
	if err := writeDocument(output, result.Document); err != nil {
		return err
	}
	printSuccess("Merged %d states", result.Stats.States)
	printStats(result.Stats.States, result.Stats.Nodes, result.Stats.Assets, false)
	printFile(output)
	if opts.ops != "" {
		if err := writeJSON(opts.ops, rec.Payload()); err != nil {
			return err
		}
		printFile(opts.ops)
	}
	printDiagnostics(result.Report.Entries())
	return nil
}
