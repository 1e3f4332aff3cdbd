// Package enrich implements the enrichment commands: hand-authored and
// ORCID update batches, pending record seeding, coverage statistics and
// paced research runs.
package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/logging"
)

// NewCommand creates the enrich command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "enrich",
		GroupID: "core",
		Short:   "Update faculty enrichment records",
		Long: `Enrichment records hold affiliation, ORCID, research areas and a short
biography for each faculty member. Every command that changes them prints
the recomputed coverage afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newApplyCommand(app))
	cmd.AddCommand(newORCIDCommand(app))
	cmd.AddCommand(newSeedCommand(app))
	cmd.AddCommand(newStatsCommand(app))
	cmd.AddCommand(newResearchCommand(app))
	return cmd
}

// Result is what the updating commands report.
type Result struct {
	Updated int                `json:"updated"`
	Skipped int                `json:"skipped"`
	Entries []enrichment.Entry `json:"entries"`
	Created []string           `json:"created,omitempty"`
	Stats   enrichment.Stats   `json:"stats"`
	DryRun  bool               `json:"dryRun,omitempty"`
}

// Table implements output.Tabular.
func (r *Result) Table() output.Data {
	d := output.Data{Headers: []string{"ID", "Status", "Fields", "Confidence", "Note"}}
	for _, e := range r.Entries {
		confidence := string(e.ConfidenceTo)
		if e.ConfidenceFrom != e.ConfidenceTo && e.ConfidenceFrom != "" {
			confidence = string(e.ConfidenceFrom) + " -> " + confidence
		}
		d.Append(e.ID, string(e.Status), strings.Join(e.Fields, ", "), confidence, e.Reason)
	}
	for _, id := range r.Created {
		d.Append(id, "created", "", string(enrichment.ConfidencePending), "")
	}
	return d
}

func newApplyCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <batch.json>",
		Short: "Apply a hand-authored update batch",
		Long: `Apply reads a JSON object of faculty id to update. Given fields are set,
research areas are added (lowercased, without duplicates) and confidence
is only ever raised. Ids without an enrichment record are reported and
skipped.`,
		Example: `  curator enrich apply updates/2024-spring.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cmdutil.ReadFile(args[0])
			if err != nil {
				return err
			}
			batch, err := enrichment.ParseBatch(data, args[0])
			if err != nil {
				return err
			}
			return applyBatch(cmd, app, batch)
		},
	}
}

func newORCIDCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "orcid <batch.json>",
		Short: "Apply a batch of ORCID identifiers",
		Long: `Orcid reads a JSON object of faculty id to {orcid, confidence, source}.
Identifiers are normalized (URL prefix stripped) and must have the
0000-0000-0000-000X shape.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cmdutil.ReadFile(args[0])
			if err != nil {
				return err
			}
			batch, err := enrichment.ParseORCIDBatch(data, args[0])
			if err != nil {
				return err
			}
			return applyBatch(cmd, app, batch.Batch())
		},
	}
}

// applyBatch applies batch to the enrichment file and prints the outcome.
func applyBatch(cmd *cobra.Command, app application.Application, batch enrichment.Batch) error {
	ctx := logging.WithOperation(cmd.Context(), "enrich")
	ws, err := app.Workspace(ctx)
	if err != nil {
		return err
	}
	e, err := ws.LoadEnrichment()
	if err != nil {
		return err
	}

	report := enrichment.Apply(e.Table, batch, time.Now())
	result := &Result{
		Updated: report.Updated,
		Skipped: report.Skipped,
		Entries: report.Entries,
		DryRun:  ws.DryRun(),
	}
	if report.Updated > 0 {
		if err := ws.SaveEnrichment(ctx, e); err != nil {
			return err
		}
	}
	return finish(ctx, cmd, app, ws, e, result)
}

// finish recomputes coverage, refreshes the metrics file and prints result.
func finish(ctx context.Context, cmd *cobra.Command, app application.Application, ws *workspace.Workspace, e *workspace.Enrichment, result *Result) error {
	result.Stats = enrichment.ComputeStats(e.Table)
	if path := app.MetricsFile(); path != "" && !ws.DryRun() {
		if err := enrichment.WriteMetrics(path, result.Stats); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("path", path).Msg("Could not write metrics file")
		}
	}

	p := cmdutil.NewPrinter(cmd, app.OutputFormat())
	if err := p.Print(result); err != nil {
		return err
	}
	if p.Format == output.FormatTable {
		if err := p.Print(statsTable(result.Stats)); err != nil {
			return err
		}
	}

	if result.Skipped > 0 {
		var ids []string
		for _, entry := range result.Entries {
			if entry.Status == enrichment.StatusSkipped {
				ids = append(ids, entry.ID)
			}
		}
		p.Alert(alerts.Warning("%d ids have no enrichment record", result.Skipped).WithDetails(ids...))
	}
	if ws.DryRun() {
		p.Alert(alerts.Info("Dry run: enrichment file not written"))
		return nil
	}
	p.Alert(alerts.Success("Updated %d records", result.Updated+len(result.Created)))
	return nil
}

func newSeedCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create pending records for faculty without one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithOperation(cmd.Context(), "enrich-seed")
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

			result := &Result{DryRun: ws.DryRun()}
			result.Created = enrichment.Seed(e.Table, dir.List(), time.Now())
			if len(result.Created) > 0 {
				if err := ws.SaveEnrichment(ctx, e); err != nil {
					return err
				}
			}
			return finish(ctx, cmd, app, ws, e, result)
		},
	}
}
