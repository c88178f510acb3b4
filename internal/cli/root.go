package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/buildinfo"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
)

// versionCommand creates the version command. Unlike --version it also
// prints the document and op payload format versions.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and format information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(out, buildinfo.String())
			printKeyValue("go", runtime.Version())
			printKeyValue("document", fmt.Sprintf("v%d", canon.FormatVersion))
			printKeyValue("ops payload", fmt.Sprintf("v%d", reconstruct.PayloadVersion))
			return nil
		},
	}
}
