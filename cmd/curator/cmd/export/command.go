// Package export implements the export commands that hand the curated
// directory to the dashboard.
package export

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/export"
	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
)

// NewCommand creates the export command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "management",
		Short:   "Export the directory for other tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSQLiteCommand(app))
	cmd.AddCommand(newIDsCommand(app))
	return cmd
}

func newSQLiteCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "sqlite <db>",
		Short: "Write faculty, participations, enrichment and mappings to SQLite",
		Long: `SQLite replaces the curator tables in the database file with the current
data files, in a single transaction. Other tables are left alone.`,
		Example: `  curator export sqlite dashboard/directory.db`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithOperation(cmd.Context(), "export")
			ws, err := app.Workspace(ctx)
			if err != nil {
				return err
			}
			dir, err := ws.LoadDirectory()
			if err != nil {
				return err
			}
			e, err := ws.LoadEnrichment()
			if err != nil {
				return err
			}
			m, err := ws.LoadMappings()
			if err != nil {
				return err
			}

			summary, err := export.WriteSQLite(ctx, args[0], export.Dataset{
				Faculty:        dir.List(),
				Participations: dir.Participations(),
				Enrichment:     e.Table,
				Mappings:       m.Table,
			})
			if err != nil {
				return err
			}
			p := cmdutil.NewPrinter(cmd, app.OutputFormat())
			if err := p.Print(summary); err != nil {
				return err
			}
			p.Alert(alerts.Success("Exported %d faculty to %s", summary.Faculty, summary.Path))
			return nil
		},
	}
}

func newIDsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "ids [file]",
		Short: "Write every faculty id, one per line",
		Long:  `Ids writes the sorted faculty ids to file, or to stdout when file is omitted or "-".`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.Workspace(cmd.Context())
			if err != nil {
				return err
			}
			dir, err := ws.LoadDirectory()
			if err != nil {
				return err
			}
			faculty := dir.List()
			ids := make([]string, 0, len(faculty))
			for _, f := range faculty {
				ids = append(ids, f.ID)
			}

			if len(args) == 0 || args[0] == "-" {
				return export.WriteIDs(cmd.OutOrStdout(), ids)
			}
			f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePermissions)
			if err != nil {
				return errors.WrapIO("create", args[0], err)
			}
			if err := export.WriteIDs(f, ids); err != nil {
				_ = f.Close()
				return errors.WrapIO("write", args[0], err)
			}
			if err := f.Close(); err != nil {
				return errors.WrapIO("close", args[0], err)
			}
			cmdutil.NewPrinter(cmd, app.OutputFormat()).Alert(alerts.Success("Wrote %d ids to %s", len(ids), args[0]))
			return nil
		},
	}
}
