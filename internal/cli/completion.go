package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pageprint.

Bash:
  $ source <(pageprint completion bash)

Zsh:
  $ pageprint completion zsh > "${fpath[1]}/_pageprint"

Fish:
  $ pageprint completion fish > ~/.config/fish/completions/pageprint.fish

PowerShell:
  PS> pageprint completion powershell | Out-String | Invoke-Expression

Document arguments complete to .json files, --config to .toml and .yaml
files, and capture's --state to the states named in the config.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerCompletions attaches argument and flag completions to the
// commands under root.
func (c *CLI) registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("config", fileExt("toml", "yaml", "yml"))
	for _, cmd := range root.Commands() {
		switch cmd.Name() {
		case "merge", "reconstruct", "compact", "inspect", "extract":
			cmd.ValidArgsFunction = fileExt("json")
		case "capture":
			_ = cmd.RegisterFlagCompletionFunc("state", c.completeStates)
			_ = cmd.RegisterFlagCompletionFunc("base", c.completeStates)
		}
	}
}

func fileExt(exts ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeStates offers the configured state names. Completion runs
// without the persistent pre-run, so the config is loaded here.
func (c *CLI) completeStates(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	if err := c.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, s := range c.config().Capture.States {
		names = append(names, s.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
