// Package cleanup implements the orphan cleanup command.
package cleanup

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/internal/export"
	"github.com/workshopdir/curator/pkg/constants"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
)

// Actions.
const (
	ActionCleanup = "cleanup"
	ActionExport  = "export"
	ActionAbort   = "abort"
)

// Report lists the orphans found and what was done about them.
type Report struct {
	Action            string            `json:"action"`
	Orphans           directory.Orphans `json:"orphans"`
	RemovedFaculty    int               `json:"removedFaculty"`
	RemovedEnrichment int               `json:"removedEnrichment"`
	ExportedTo        string            `json:"exportedTo,omitempty"`
	DryRun            bool              `json:"dryRun,omitempty"`
}

// Table implements output.Tabular.
func (r *Report) Table() output.Data {
	d := output.Data{Headers: []string{"ID", "Orphaned In"}}
	for _, id := range r.Orphans.Faculty {
		d.Append(id, "faculty (no participations)")
	}
	for _, id := range r.Orphans.Enrichment {
		d.Append(id, "enrichment (no faculty)")
	}
	return d
}

// NewCommand creates the cleanup command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		action string
		out    string
	)
	cmd := &cobra.Command{
		Use:     "cleanup",
		GroupID: "management",
		Short:   "Find and remove orphaned records",
		Long: `Cleanup finds faculty with no workshop participations and enrichment
records whose faculty id no longer exists, then acts on them:

  abort    list the orphans and change nothing (default)
  export   write the orphaned ids one per line (--out, or stdout)
  cleanup  remove the orphans from the faculty and enrichment files`,
		Example: `  curator cleanup
  curator cleanup --action export --out orphans.txt
  curator cleanup --action cleanup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch action {
			case ActionCleanup, ActionExport, ActionAbort:
			default:
				return errors.NewValidationError("action", action, "must be one of cleanup, export, abort")
			}

			ctx := logging.WithOperation(cmd.Context(), "cleanup")
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

			report := &Report{
				Action:  action,
				Orphans: directory.FindOrphans(dir.Set, e.Table.IDs()),
				DryRun:  ws.DryRun(),
			}
			p := cmdutil.NewPrinter(cmd, app.OutputFormat())
			if report.Orphans.Empty() {
				if err := p.Print(report); err != nil {
					return err
				}
				p.Alert(alerts.Success("No orphans found"))
				return nil
			}

			switch action {
			case ActionExport:
				ids := report.Orphans.IDs()
				if out == "" {
					// The id list is the output.
					return export.WriteIDs(cmd.OutOrStdout(), ids)
				}
				if err := writeIDs(out, ids); err != nil {
					return err
				}
				report.ExportedTo = out
			case ActionCleanup:
				for _, id := range report.Orphans.Faculty {
					if dir.Delete(id) {
						report.RemovedFaculty++
					}
				}
				report.RemovedEnrichment = e.Table.Remove(report.Orphans.IDs()...)
				if report.RemovedFaculty > 0 {
					if err := ws.SaveDirectory(ctx, dir); err != nil {
						return err
					}
				}
				if report.RemovedEnrichment > 0 {
					if err := ws.SaveEnrichment(ctx, e); err != nil {
						return err
					}
				}
			}

			if err := p.Print(report); err != nil {
				return err
			}
			n := strconv.Itoa(len(report.Orphans.IDs()))
			switch {
			case action == ActionAbort:
				p.Alert(alerts.Info("Found %s orphaned ids; nothing changed", n))
			case action == ActionExport:
				p.Alert(alerts.Success("Exported %s orphaned ids to %s", n, out))
			case ws.DryRun():
				p.Alert(alerts.Info("Dry run: would remove %d faculty and %d enrichment records", report.RemovedFaculty, report.RemovedEnrichment))
			default:
				p.Alert(alerts.Success("Removed %d faculty and %d enrichment records", report.RemovedFaculty, report.RemovedEnrichment))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", ActionAbort, "what to do with orphans (cleanup, export, abort)")
	cmd.Flags().StringVar(&out, "out", "", "file for --action export (default stdout)")
	return cmd
}

func writeIDs(path string, ids []string) (retErr error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = errors.WrapIO("close", path, err)
		}
	}()
	return errors.WrapIO("write", path, export.WriteIDs(f, ids))
}
