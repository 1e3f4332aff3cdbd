// Package identity implements the identity commands: duplicate merges and
// the advisory accent-collision report.
package identity

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/internal/workspace"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/identity"
	"github.com/workshopdir/curator/pkg/logging"
)

// NewCommand creates the identity command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "identity",
		GroupID: "core",
		Short:   "Fix faculty identity keys",
		Long: `Identity fixups keep faculty ids stable when rosters spell a name
differently, typically when an accented character was stripped.

  merge     fold one obsolete id into a canonical id
  apply     run every merge listed in the identity overrides
  suspects  list ids whose names only differ by accents`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newMergeCommand(app))
	cmd.AddCommand(newApplyCommand(app))
	cmd.AddCommand(newSuspectsCommand(app))
	return cmd
}

// Result is what merge and apply report.
type Result struct {
	Merges  []identity.MergeReport `json:"merges"`
	Rekeyed []string               `json:"rekeyed,omitempty"`
	DryRun  bool                   `json:"dryRun,omitempty"`
}

// Table implements output.Tabular.
func (r *Result) Table() output.Data {
	rekeyed := make(map[string]bool, len(r.Rekeyed))
	for _, id := range r.Rekeyed {
		rekeyed[id] = true
	}
	d := output.Data{Headers: []string{"Canonical", "Obsolete", "Repointed", "Duplicates", "Removed", "Enrichment", "Status"}}
	for _, m := range r.Merges {
		status := "merged"
		if m.Skipped {
			status = "skipped"
		}
		d.Append(m.CanonicalID, m.ObsoleteID, itoa(m.Repointed), itoa(m.DuplicatesDropped),
			yesNo(m.ObsoleteRemoved), yesNo(rekeyed[m.CanonicalID]), status)
	}
	return d
}

func newMergeCommand(app application.Application) *cobra.Command {
	var fix identity.Fix
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge an obsolete faculty id into a canonical one",
		Long: `Merge rewrites the canonical record's name, repoints every participation
of the obsolete id, deletes the obsolete record and deduplicates. When only
the obsolete id exists it is renamed. The enrichment record follows the id.`,
		Example: `  curator identity merge --canonical fernandez-rosa --obsolete fernndez-rosa --first Rosa --last Fernández`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFixes(cmd, app, []identity.Fix{fix}, true)
		},
	}
	cmd.Flags().StringVar(&fix.CanonicalID, "canonical", "", "id to keep (required)")
	cmd.Flags().StringVar(&fix.ObsoleteID, "obsolete", "", "id to fold in (required)")
	cmd.Flags().StringVar(&fix.FirstName, "first", "", "corrected first name")
	cmd.Flags().StringVar(&fix.LastName, "last", "", "corrected last name")
	_ = cmd.MarkFlagRequired("canonical")
	_ = cmd.MarkFlagRequired("obsolete")
	return cmd
}

func newApplyCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply every merge from the identity overrides",
		Long: `Apply runs the merges listed in the identity overrides file (or the
built-in defaults). Merges whose ids are both absent are reported as skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := app.Overrides()
			if err != nil {
				return err
			}
			return runFixes(cmd, app, overrides.Merges, false)
		},
	}
}

// runFixes applies fixes to the directory and carries enrichment records
// along. With strict set, a fix whose ids are both missing is an error.
func runFixes(cmd *cobra.Command, app application.Application, fixes []identity.Fix, strict bool) error {
	ctx := logging.WithOperation(cmd.Context(), "identity")
	ws, err := app.Workspace(ctx)
	if err != nil {
		return err
	}
	dir, err := ws.LoadDirectory()
	if err != nil {
		return err
	}

	result := &Result{DryRun: ws.DryRun()}
	if strict {
		for _, fix := range fixes {
			report, err := identity.MergeDuplicate(dir.Set, fix)
			if err != nil {
				return err
			}
			result.Merges = append(result.Merges, *report)
		}
	} else {
		if result.Merges, err = identity.Apply(dir.Set, fixes); err != nil {
			return err
		}
	}

	if err := ws.SaveDirectory(ctx, dir); err != nil {
		return err
	}
	if result.Rekeyed, err = rekey(ctx, app, ws, fixes, result.Merges); err != nil {
		return err
	}

	p := cmdutil.NewPrinter(cmd, app.OutputFormat())
	if err := p.Print(result); err != nil {
		return err
	}
	applied := 0
	for _, m := range result.Merges {
		if !m.Skipped {
			applied++
		}
	}
	p.Alert(alerts.Success("Applied %d of %d merges", applied, len(result.Merges)))
	return nil
}

// rekey moves enrichment records from obsolete ids to canonical ids.
func rekey(ctx context.Context, app application.Application, ws *workspace.Workspace, fixes []identity.Fix, merges []identity.MergeReport) ([]string, error) {
	e, err := ws.LoadEnrichment()
	if err != nil {
		return nil, err
	}
	var rekeyed []string
	for i, fix := range fixes {
		if i < len(merges) && merges[i].Skipped {
			continue
		}
		name := strings.TrimSpace(fix.FirstName + " " + fix.LastName)
		if enrichment.Rekey(e.Table, fix.ObsoleteID, fix.CanonicalID, name) {
			app.Logger().Info().
				Str("obsolete", fix.ObsoleteID).
				Str("canonical", fix.CanonicalID).
				Msg("Moved enrichment record")
			rekeyed = append(rekeyed, fix.CanonicalID)
		}
	}
	if len(rekeyed) == 0 {
		return nil, nil
	}
	return rekeyed, ws.SaveEnrichment(ctx, e)
}

func newSuspectsCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "suspects",
		Short: "List faculty ids that collide once accents are folded",
		Long: `Suspects groups faculty whose names are equal after removing accents but
whose ids differ. The list is advisory; nothing is changed. Confirmed pairs
belong in the merges section of the identity overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.Workspace(cmd.Context())
			if err != nil {
				return err
			}
			dir, err := ws.LoadDirectory()
			if err != nil {
				return err
			}
			groups := identity.Suspects(dir.List())
			if groups == nil {
				groups = []identity.SuspectGroup{}
			}

			p := cmdutil.NewPrinter(cmd, app.OutputFormat())
			if p.Format == output.FormatTable {
				d := output.Data{Headers: []string{"Folded ID", "IDs", "Names"}}
				for _, g := range groups {
					d.Append(g.FoldedID, strings.Join(g.IDs, ", "), strings.Join(g.Names, ", "))
				}
				if err := p.Print(d); err != nil {
					return err
				}
			} else if err := p.Print(groups); err != nil {
				return err
			}
			if len(groups) == 0 {
				p.Alert(alerts.Success("No accent collisions"))
			} else {
				p.Alert(alerts.Warning("%d suspect groups; review before adding merges", len(groups)))
			}
			return nil
		},
	}
}
