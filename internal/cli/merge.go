package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/merge"
)

// mergeCommand creates the merge command for combining per-state documents.
func (c *CLI) mergeCommand() *cobra.Command {
	var (
		output    string
		base      string
		tolerance float64
	)

	cmd := &cobra.Command{
		Use:   "merge <doc.json>...",
		Short: "Merge canonical documents of different states into one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProgress(c.Logger)
			docs := make([]*canon.Document, 0, len(args))
			for _, path := range args {
				doc, err := canon.ReadFile(path)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			mopts := c.config().Merge.Options()
			mopts.Logger = c.Logger
			if cmd.Flags().Changed("tolerance") {
				mopts.SetTolerance(tolerance)
			}
			if base != "" {
				mopts.Base = base
			}

			merged, report, err := merge.Documents(docs, mopts)
			if err != nil {
				return err
			}
			p.done("Merged documents", "states", len(merged.States), "nodes", merged.Tree.Count())

			output = firstNonEmpty(output, derivedPath(args[0], ".merged.json"))
			if err := writeDocument(output, merged); err != nil {
				return err
			}
			printSuccess("Merged %d states into %d nodes", len(merged.States), merged.Tree.Count())
			if n := report.Count(diag.MergeConflictWarning); n > 0 {
				printWarning("%d nodes disagree across states", n)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <first>.merged.json)")
	cmd.Flags().StringVar(&base, "base", "", "base state (default: first document's)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "position tolerance in px before a conflict is reported (0 = exact)")

	return cmd
}
