package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/render/treeviz"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	dot         string
	svg         string
	detailed    bool
	maxDepth    int
	interactive bool
}

// inspectCommand creates the inspect command for looking inside documents.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <doc.json>",
		Short: "Summarize a document, draw its tree or browse it interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := canon.ReadFile(args[0])
			if err != nil {
				return err
			}
			if opts.interactive {
				_, err := tea.NewProgram(newTreeModel(doc), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			}

			printSummary(doc)
			if opts.dot == "" && opts.svg == "" {
				return nil
			}
			dot := treeviz.ToDOT(doc.Tree, treeviz.Options{Detailed: opts.detailed, MaxDepth: opts.maxDepth, States: doc.States})
			if opts.dot != "" {
				if err := os.WriteFile(opts.dot, []byte(dot), 0o644); err != nil {
					return err
				}
				printFile(opts.dot)
			}
			if opts.svg != "" {
				c.Logger.Debug("rendering tree svg", "nodes", doc.Tree.Count())
				svg, err := treeviz.RenderSVG(dot)
				if err != nil {
					return err
				}
				if err := os.WriteFile(opts.svg, svg, 0o644); err != nil {
					return err
				}
				printFile(opts.svg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the tree as Graphviz DOT")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "render the tree to SVG")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include rects and states in tree labels")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "hide nodes below this depth in the drawing")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the tree in the terminal")

	return cmd
}

// printSummary prints the document header, per-kind counts and tokens.
func printSummary(doc *canon.Document) {
	fmt.Fprintln(out, StyleTitle.Render("Document"))
	if doc.Source.URL != "" {
		printKeyValue("Source", StyleLink.Render(doc.Source.URL))
	}
	if doc.Source.Viewport.Width > 0 {
		printKeyValue("Viewport", fmt.Sprintf("%gx%g", doc.Source.Viewport.Width, doc.Source.Viewport.Height))
	}
	printKeyValue("States", strings.Join(doc.States, ", "))
	if doc.BaseState != "" {
		printKeyValue("Base", doc.BaseState)
	}
	printKeyValue("Nodes", StyleNumber.Render(strconv.Itoa(doc.Tree.Count())))
	printKeyValue("Depth", StyleNumber.Render(strconv.Itoa(doc.Tree.Depth())))
	printKeyValue("Assets", StyleNumber.Render(strconv.Itoa(doc.Assets.Len())))
	if missing := doc.MissingAssets(); len(missing) > 0 {
		printWarning("%d referenced assets are not embedded", len(missing))
	}

	kinds := map[canon.Kind]int{}
	partial, failed := 0, 0
	doc.Tree.Walk(func(n *canon.Node, _ int) bool {
		kinds[n.Kind]++
		if len(doc.States) > 0 && len(n.ObservedInStates) < len(doc.States) {
			partial++
		}
		if n.ExtractionError != "" {
			failed++
		}
		return true
	})
	rows := make([][]string, 0, len(kinds)+2)
	for _, k := range slices.Sorted(maps.Keys(kinds)) {
		rows = append(rows, []string{string(k), strconv.Itoa(kinds[k])})
	}
	rows = append(rows, []string{"state-specific", strconv.Itoa(partial)}, []string{"extraction errors", strconv.Itoa(failed)})
	fmt.Fprintln(out, renderTable([]string{"Nodes", "Count"}, rows))

	if t := doc.Tokens; t != nil && len(t.Colors)+len(t.Typography)+len(t.Spacing) > 0 {
		top := t.Top(5, 3, 5)
		var trows [][]string
		for _, c := range top.Colors {
			trows = append(trows, []string{"color", c.Hex, strconv.Itoa(c.Count)})
		}
		for _, ty := range top.Typography {
			trows = append(trows, []string{"type", fmt.Sprintf("%s %d %g/%g", ty.Family, ty.Weight, ty.Size, ty.LineHeight), strconv.Itoa(ty.Count)})
		}
		for _, s := range top.Spacing {
			trows = append(trows, []string{"spacing", fmt.Sprintf("%gpx", s.Value), strconv.Itoa(s.Count)})
		}
		fmt.Fprintln(out, renderTable([]string{"Token", "Value", "Uses"}, trows))
	}
	printDiagnostics(doc.Diagnostics)
}
