// Package updates implements the command that processes the spreadsheet
// of self-submitted faculty profile updates.
package updates

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
	"github.com/workshopdir/curator/pkg/updates"
)

// NewCommand creates the updates command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "updates",
		GroupID: "core",
		Short:   "Process self-submitted profile updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newProcessCommand(app))
	return cmd
}

// Report is the outcome of processing one spreadsheet.
type Report struct {
	Submissions int                 `json:"submissions"`
	Matched     map[string]string   `json:"matched"`
	Unmatched   []updates.Unmatched `json:"unmatched,omitempty"`
	Invalid     []string            `json:"invalid,omitempty"`
	Seeded      []string            `json:"seeded,omitempty"`
	Entries     []enrichment.Entry  `json:"entries"`
	DryRun      bool                `json:"dryRun,omitempty"`
}

// Table implements output.Tabular.
func (r *Report) Table() output.Data {
	d := output.Data{Headers: []string{"Submitted Name", "Faculty ID", "Fields"}}
	fields := make(map[string][]string, len(r.Entries))
	for _, e := range r.Entries {
		fields[e.ID] = e.Fields
	}
	for _, e := range r.Entries {
		d.Append(r.Matched[e.ID], e.ID, strings.Join(fields[e.ID], ", "))
	}
	for _, u := range r.Unmatched {
		d.Append(u.FullName, "(row "+strconv.Itoa(u.Row)+" unmatched)", "")
	}
	return d
}

func newProcessCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "process <updates.csv>",
		Short: "Apply a spreadsheet of faculty-submitted updates",
		Long: `Process reads a CSV export with the columns Full Name, Title, Affiliation,
Department, Lab Website, ORCID, Research Areas and Bio (any order, any
case). Each name is matched to a faculty id; matched rows are applied as
high-confidence, faculty-submitted updates. Unmatched names are listed.`,
		Example: `  curator updates process "Faculty Updates (Responses).csv"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.WithOperation(cmd.Context(), "updates")
			data, err := cmdutil.ReadFile(args[0])
			if err != nil {
				return err
			}
			subs, err := updates.Parse(bytes.NewReader(data))
			if err != nil {
				var pe *errors.ParseError
				if errors.As(err, &pe) && pe.File == "" {
					pe.File = args[0]
				}
				return err
			}

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

			res := updates.Resolve(subs, dir.List())

			// Matched faculty may not have been seeded yet.
			var missing []directory.Faculty
			for _, id := range res.MatchedIDs() {
				if _, ok := e.Table[id]; !ok {
					if f, ok := dir.Get(id); ok {
						missing = append(missing, f)
					}
				}
			}
			now := time.Now()
			seeded := enrichment.Seed(e.Table, missing, now)
			applied := enrichment.Apply(e.Table, res.Batch, now)

			report := &Report{
				Submissions: len(subs),
				Matched:     res.Matched,
				Unmatched:   res.Unmatched,
				Invalid:     res.Invalid,
				Seeded:      seeded,
				Entries:     applied.Entries,
				DryRun:      ws.DryRun(),
			}
			if applied.Updated > 0 || len(seeded) > 0 {
				if err := ws.SaveEnrichment(ctx, e); err != nil {
					return err
				}
			}

			p := cmdutil.NewPrinter(cmd, app.OutputFormat())
			if err := p.Print(report); err != nil {
				return err
			}
			if len(res.Unmatched) > 0 {
				names := make([]string, 0, len(res.Unmatched))
				for _, u := range res.Unmatched {
					names = append(names, u.FullName)
				}
				p.Alert(alerts.Warning("%d submissions matched no faculty", len(res.Unmatched)).WithDetails(names...))
			}
			if len(res.Invalid) > 0 {
				p.Alert(alerts.Warning("Ignored %d malformed ORCID ids", len(res.Invalid)).WithDetails(res.Invalid...))
			}
			if ws.DryRun() {
				p.Alert(alerts.Info("Dry run: enrichment file not written"))
				return nil
			}
			p.Alert(alerts.Success("Applied %d of %d submissions", applied.Updated, len(subs)))
			return nil
		},
	}
}
