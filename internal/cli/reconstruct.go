package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
)

// reconstructCommand creates the reconstruct command, which records the
// design-tool operations for a document.
func (c *CLI) reconstructCommand() *cobra.Command {
	var (
		output  string
		fontDir string
	)

	cmd := &cobra.Command{
		Use:   "reconstruct <doc.json>",
		Short: "Write the design-tool operations that rebuild a document",
		Long: `Reconstruct replays a canonical document against a recording scene builder
and writes the ordered operation list a design-tool plugin applies.

Fonts are resolved against --font-dir ("system" scans the system font
directories); without one every declared family is assumed available.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProgress(c.Logger)
			doc, err := canon.ReadFile(args[0])
			if err != nil {
				return err
			}

			rec := reconstruct.NewRecorder(c.fontCatalog(fontDir))
			res, err := reconstruct.Reconstruct(cmd.Context(), doc, rec, reconstruct.Options{
				FontAliases: c.config().Reconstruct.FontAliases,
				Logger:      c.Logger,
			})
			if err != nil {
				return err
			}
			p.done("Reconstructed document", "ops", len(rec.Ops()), "failures", res.Failures)

			output = firstNonEmpty(output, derivedPath(args[0], ".ops.json"))
			if err := writeJSON(output, rec.Payload()); err != nil {
				return err
			}
			printSuccess("Recorded %d ops for %d nodes", len(rec.Ops()), res.Nodes)
			if res.Failures > 0 {
				printWarning("%d nodes replaced by empty frames", res.Failures)
			}
			printFile(output)
			printDiagnostics(res.Report.Entries())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "ops path (default: <doc>.ops.json, - for stdout)")
	cmd.Flags().StringVar(&fontDir, "font-dir", "", "font directory (\"system\" scans system fonts)")

	return cmd
}
