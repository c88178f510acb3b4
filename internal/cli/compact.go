package cli

import (
	"cmp"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/compact"
)

// compactCommand creates the compact command for shrinking documents.
func (c *CLI) compactCommand() *cobra.Command {
	var (
		output string
		opts   compact.Options
	)

	cmd := &cobra.Command{
		Use:   "compact <doc.json>",
		Short: "Shrink a document by dropping oversized assets and debug data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := canon.ReadFile(args[0])
			if err != nil {
				return err
			}
			if cfg := c.config().CompactOptions(); cfg != nil {
				opts.Aggressive = opts.Aggressive || cfg.Aggressive
				opts.StripDebug = opts.StripDebug || cfg.StripDebug
				opts.MaxDepth = cmp.Or(opts.MaxDepth, cfg.MaxDepth)
				opts.MaxImageBytes = cmp.Or(opts.MaxImageBytes, cfg.MaxImageBytes)
				opts.MaxSVGBytes = cmp.Or(opts.MaxSVGBytes, cfg.MaxSVGBytes)
			}
			opts.Logger = c.Logger

			small, stats, err := compact.Compact(doc, opts)
			if err != nil {
				return err
			}

			output = firstNonEmpty(output, derivedPath(args[0], ".min.json"))
			if err := writeDocument(output, small); err != nil {
				return err
			}
			printSuccess("Compacted %d → %d bytes (%.0f%%)", stats.BytesBefore, stats.BytesAfter, 100*stats.Ratio())
			printDetail("%d images and %d svgs dropped, %d subtrees truncated, %d debug maps stripped",
				stats.ImagesRemoved, stats.SVGsRemoved, stats.NodesTruncated, stats.DebugStripped)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <doc>.min.json)")
	cmd.Flags().BoolVar(&opts.Aggressive, "aggressive", false, "use the aggressive size limits")
	cmd.Flags().BoolVar(&opts.StripDebug, "strip-debug", false, "remove source debug metadata")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "truncate the tree below this depth (0 keeps all)")
	cmd.Flags().Int64Var(&opts.MaxImageBytes, "max-image-bytes", 0, "drop raster assets larger than this")
	cmd.Flags().Int64Var(&opts.MaxSVGBytes, "max-svg-bytes", 0, "drop SVG assets larger than this")

	return cmd
}
