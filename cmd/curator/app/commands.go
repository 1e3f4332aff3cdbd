package app

import (
	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/curator/cmd/cleanup"
	"github.com/workshopdir/curator/cmd/curator/cmd/completion"
	"github.com/workshopdir/curator/cmd/curator/cmd/enrich"
	"github.com/workshopdir/curator/cmd/curator/cmd/export"
	"github.com/workshopdir/curator/cmd/curator/cmd/identity"
	"github.com/workshopdir/curator/cmd/curator/cmd/ingest"
	"github.com/workshopdir/curator/cmd/curator/cmd/mappings"
	"github.com/workshopdir/curator/cmd/curator/cmd/share"
	"github.com/workshopdir/curator/cmd/curator/cmd/updates"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(ingest.NewCommand(a))
	rootCmd.AddCommand(identity.NewCommand(a))
	rootCmd.AddCommand(mappings.NewCommand(a))
	rootCmd.AddCommand(enrich.NewCommand(a))
	rootCmd.AddCommand(updates.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(cleanup.NewCommand(a))
	rootCmd.AddCommand(share.NewCommand(a))
	rootCmd.AddCommand(export.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(completion.NewCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("curator %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
