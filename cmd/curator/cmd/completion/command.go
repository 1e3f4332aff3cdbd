// Package completion implements the shell completion command.
package completion

import (
	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/pkg/errors"
)

// Supported shells.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// NewCommand creates the completion command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for curator on stdout.

Bash:

  $ source <(curator completion bash)

Zsh:

  $ curator completion zsh > "${fpath[1]}/_curator"

Fish:

  $ curator completion fish > ~/.config/fish/completions/curator.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case ShellBash:
				return root.GenBashCompletionV2(out, true)
			case ShellZsh:
				return root.GenZshCompletion(out)
			case ShellFish:
				return root.GenFishCompletion(out, true)
			case ShellPowerShell:
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return errors.NewValidationError("shell", args[0], "unsupported shell")
		},
	}
}
