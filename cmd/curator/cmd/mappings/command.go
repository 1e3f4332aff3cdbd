// Package mappings implements the mappings commands.
package mappings

import (
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
	"github.com/workshopdir/curator/pkg/mappings"
)

// NewCommand creates the mappings command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mappings",
		GroupID: "core",
		Short:   "Maintain the term-mapping table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newMergeCommand(app))
	cmd.AddCommand(newValidateCommand(app))
	return cmd
}

// MergeReport summarizes one merge run.
type MergeReport struct {
	PreviousVersion string                    `json:"previousVersion"`
	Version         string                    `json:"version"`
	TotalMappings   int                       `json:"totalMappings"`
	Confidence      mappings.ConfidenceCounts `json:"confidence"`
	Added           map[string]int            `json:"added"`
	Conflicts       []mappings.Conflict       `json:"conflicts,omitempty"`
	DryRun          bool                      `json:"dryRun,omitempty"`
}

// Table implements output.Tabular.
func (r *MergeReport) Table() output.Data {
	d := output.Data{Headers: []string{"Source", "Added"}}
	for _, name := range slices.Sorted(maps.Keys(r.Added)) {
		d.Append(name, strconv.Itoa(r.Added[name]))
	}
	d.Append("total", strconv.Itoa(r.TotalMappings))
	return d
}

func newMergeCommand(app application.Application) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "merge <additions.json>...",
		Short: "Merge addition files into the mapping table",
		Long: `Merge unions the addition files into the canonical mapping table, in the
order given. A term that is already mapped keeps its existing value; the
redefinition is listed as a conflict. Totals are recomputed, the minor
version is bumped and the previous table is backed up before it is replaced.
With --strict, a conflicting redefinition fails the merge and nothing is
written.`,
		Example: `  curator mappings merge additions/genomics.json additions/ecology.json
  curator mappings merge --strict additions/genomics.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithOperation(cmd.Context(), "mappings-merge")
			ws, err := app.Workspace(ctx)
			if err != nil {
				return err
			}
			current, err := ws.LoadMappings()
			if err != nil {
				return err
			}

			sources := make([]mappings.Source, 0, len(args))
			for _, path := range args {
				data, err := cmdutil.ReadFile(path)
				if err != nil {
					return err
				}
				src, err := mappings.ParseSource(data, path)
				if err != nil {
					return err
				}
				sources = append(sources, src)
			}

			result := mappings.Merge(current.Table, sources...)
			if strict {
				if err := result.ConflictErr(); err != nil {
					return err
				}
			}
			if err := ws.SaveMappings(ctx, current, result.Table, result.PreviousVersion); err != nil {
				return err
			}

			report := &MergeReport{
				PreviousVersion: result.PreviousVersion,
				Version:         result.Table.Metadata.Version,
				TotalMappings:   result.Table.Metadata.TotalMappings,
				Confidence:      result.Table.Metadata.Confidence,
				Added:           result.Added,
				Conflicts:       result.Conflicts,
				DryRun:          ws.DryRun(),
			}
			p := cmdutil.NewPrinter(cmd, app.OutputFormat())
			if err := p.Print(report); err != nil {
				return err
			}

			var details []string
			for _, c := range result.Conflicts {
				if !c.Identical() {
					details = append(details, c.Term+": kept "+c.Kept.StandardizedID+", dropped "+c.Dropped.StandardizedID+" ("+c.Source+")")
				}
			}
			if len(details) > 0 {
				p.Alert(alerts.Warning("%d conflicting terms kept their existing mapping", len(details)).WithDetails(details...))
			}
			if ws.DryRun() {
				p.Alert(alerts.Info("Dry run: mapping table not written"))
				return nil
			}
			p.Alert(alerts.Success("Merged %d new mappings (v%s -> v%s)", result.TotalAdded(), report.PreviousVersion, report.Version))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of keeping existing values on conflict")
	return cmd
}

func newValidateCommand(app application.Application) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report mapped ids missing from the taxonomy",
		Long: `Validate lists every standardized id the mapping table references that the
taxonomy does not define, with the terms pointing at it and a guessed
branch. The report is advisory; use --strict to fail when ids are missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.Workspace(cmd.Context())
			if err != nil {
				return err
			}
			current, err := ws.LoadMappings()
			if err != nil {
				return err
			}
			tx, err := ws.LoadTaxonomy()
			if err != nil {
				return err
			}
			branches, err := app.KeywordBranches()
			if err != nil {
				return err
			}

			report := mappings.Validate(current.Table, tx, branches)
			p := cmdutil.NewPrinter(cmd, app.OutputFormat())
			if p.Format == output.FormatTable {
				d := output.Data{Headers: []string{"Missing ID", "Guessed Branch", "Terms"}}
				for _, m := range report.Missing {
					d.Append(m.ID, m.GuessedBranch, strconv.Itoa(len(m.Terms)))
				}
				if err := p.Print(d); err != nil {
					return err
				}
			} else if err := p.Print(report); err != nil {
				return err
			}

			if len(report.InvalidConfidence) > 0 {
				p.Alert(alerts.Warning("%d mappings have an unknown confidence", len(report.InvalidConfidence)).WithDetails(report.InvalidConfidence...))
			}
			if report.OK() {
				p.Alert(alerts.Success("All %d referenced ids are defined", report.Referenced))
				return nil
			}
			p.Alert(alerts.Warning("%d of %d referenced ids are missing from the taxonomy", len(report.Missing), report.Referenced))
			if strict {
				return errors.NewValidationError("mappings", len(report.Missing), "referenced ids are missing from the taxonomy")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when ids are missing")
	return cmd
}
