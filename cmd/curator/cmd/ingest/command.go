// Package ingest implements the ingest command: parse attendance rosters,
// union them by identity key and write the faculty and participation files.
package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/pkg/attendance"
	"github.com/workshopdir/curator/pkg/directory"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/identity"
	"github.com/workshopdir/curator/pkg/logging"
)

type options struct {
	workshops []string
	merge     bool
	noFixes   bool
}

// NewCommand creates the ingest command.
func NewCommand(app application.Application) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:     "ingest",
		GroupID: "core",
		Short:   "Build faculty and participations from attendance rosters",
		Long: `Ingest parses workshop attendance rosters (CSV, one row per person, one
column per year with "x" marking attendance) and writes the faculty and
participation files.

Rosters come from --workshop id=path flags, or from the workshops configured
with a roster path. Rows without a name are skipped. Spelling corrections
from the identity overrides are applied before ids are derived, and the
configured duplicate merges are applied afterwards.

By default the files are rebuilt from the rosters; --merge unions the
rosters into the existing files instead.`,
		Example: `  curator ingest --workshop wog=rosters/wog.csv --workshop wpsg=rosters/wpsg.csv
  curator ingest --merge --workshop wog=rosters/wog-2024.csv
  curator ingest --dry-run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.workshops, "workshop", "w", nil, "roster as workshop-id=path (repeatable)")
	cmd.Flags().BoolVar(&opts.merge, "merge", false, "union into the existing files instead of rebuilding them")
	cmd.Flags().BoolVar(&opts.noFixes, "no-fixes", false, "skip the configured duplicate merges")
	return cmd
}

// Source is one roster to ingest.
type Source struct {
	WorkshopID string
	Path       string
}

// ParseSources resolves --workshop flags, falling back to the registry.
func ParseSources(flags []string, registry directory.Workshops) ([]Source, error) {
	var sources []Source
	for _, f := range flags {
		id, path, ok := strings.Cut(f, "=")
		id, path = strings.TrimSpace(id), strings.TrimSpace(path)
		if !ok || id == "" || path == "" {
			return nil, errors.NewValidationError("workshop", f, "expected workshop-id=path")
		}
		sources = append(sources, Source{WorkshopID: id, Path: path})
	}
	if len(sources) > 0 {
		return sources, nil
	}
	for _, w := range registry {
		if w.Roster != "" {
			sources = append(sources, Source{WorkshopID: w.ID, Path: w.Roster})
		}
	}
	if len(sources) == 0 {
		return nil, errors.NewValidationError("workshop", nil, "no rosters given and none configured")
	}
	return sources, nil
}

// Report summarizes an ingest run.
type Report struct {
	Rosters        []RosterSummary            `json:"rosters"`
	Faculty        int                        `json:"faculty"`
	Participations int                        `json:"participations"`
	Skipped        int                        `json:"skipped"`
	Conflicts      []attendance.FieldConflict `json:"conflicts,omitempty"`
	Merges         []identity.MergeReport     `json:"merges,omitempty"`
	DryRun         bool                       `json:"dryRun,omitempty"`
}

// RosterSummary describes one parsed roster.
type RosterSummary struct {
	WorkshopID     string `json:"workshopId"`
	Source         string `json:"source"`
	Encoding       string `json:"encoding"`
	Years          []int  `json:"years"`
	Faculty        int    `json:"faculty"`
	Participations int    `json:"participations"`
	Skipped        int    `json:"skipped"`
	Corrected      int    `json:"corrected"`
}

// Table implements output.Tabular.
func (r *Report) Table() output.Data {
	d := output.Data{
		Headers:         []string{"Workshop", "Source", "Encoding", "Years", "Faculty", "Participations", "Skipped"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight},
	}
	for _, s := range r.Rosters {
		years := "-"
		if len(s.Years) > 0 {
			years = fmt.Sprintf("%d-%d", slices.Min(s.Years), slices.Max(s.Years))
		}
		d.Append(s.WorkshopID, s.Source, s.Encoding, years,
			strconv.Itoa(s.Faculty), strconv.Itoa(s.Participations), strconv.Itoa(s.Skipped))
	}
	d.Append("total", "", "", "", strconv.Itoa(r.Faculty), strconv.Itoa(r.Participations), strconv.Itoa(r.Skipped))
	return d
}

func run(cmd *cobra.Command, app application.Application, opts *options) error {
	ctx := logging.WithOperation(cmd.Context(), "ingest")

	sources, err := ParseSources(opts.workshops, app.Workshops())
	if err != nil {
		return err
	}
	overrides, err := app.Overrides()
	if err != nil {
		return err
	}
	ws, err := app.Workspace(ctx)
	if err != nil {
		return err
	}

	report := &Report{DryRun: ws.DryRun()}
	rosters := make([]*attendance.Roster, 0, len(sources))
	for _, src := range sources {
		data, err := cmdutil.ReadFile(src.Path)
		if err != nil {
			return err
		}
		roster, err := attendance.ParseRoster(bytes.NewReader(data), src.WorkshopID,
			attendance.WithCorrections(overrides.Corrections),
			attendance.WithSource(filepath.Base(src.Path)))
		if err != nil {
			return errors.WrapResource("parse", "roster", src.WorkshopID, err)
		}
		rosterCtx := logging.WithFile(logging.WithWorkshop(ctx, src.WorkshopID), src.Path)
		logging.FromContext(rosterCtx).Info().
			Str("encoding", roster.Encoding).
			Int("faculty", len(roster.Faculty)).
			Int("skipped", len(roster.Skipped)).
			Msg("Parsed roster")
		rosters = append(rosters, roster)
		report.Rosters = append(report.Rosters, RosterSummary{
			WorkshopID:     roster.WorkshopID,
			Source:         roster.Source,
			Encoding:       roster.Encoding,
			Years:          roster.Years,
			Faculty:        len(roster.Faculty),
			Participations: len(roster.Participations),
			Skipped:        len(roster.Skipped),
			Corrected:      roster.Corrected,
		})
	}

	result := attendance.Combine(rosters...)
	report.Conflicts = result.Conflicts
	report.Skipped = result.Skipped

	dir, err := ws.LoadDirectory()
	if err != nil {
		return err
	}
	if !opts.merge {
		for _, f := range dir.List() {
			dir.Delete(f.ID)
		}
		dir.RemoveParticipationsFor(idsOf(dir.Participations())...)
	}
	for _, f := range result.Faculty {
		if err := dir.Put(f); err != nil {
			return err
		}
	}
	dir.AddParticipations(result.Participations...)

	if !opts.noFixes && len(overrides.Merges) > 0 {
		merges, err := identity.Apply(dir.Set, overrides.Merges)
		if err != nil {
			return err
		}
		report.Merges = merges
	}

	if err := ws.SaveDirectory(ctx, dir); err != nil {
		return err
	}
	report.Faculty = dir.Len()
	report.Participations = len(dir.Participations())

	p := cmdutil.NewPrinter(cmd, app.OutputFormat())
	if err := p.Print(report); err != nil {
		return err
	}
	if len(report.Conflicts) > 0 {
		a := alerts.Warning("%d name conflicts between rosters; the later roster won", len(report.Conflicts))
		for _, c := range report.Conflicts {
			a.WithDetails(fmt.Sprintf("%s %s: kept %q, replaced %q (%s)", c.FacultyID, c.Field, c.Kept, c.Replaced, c.Source))
		}
		p.Alert(a)
	}
	if report.DryRun {
		p.Alert(alerts.Info("Dry run: no files were written"))
	} else {
		p.Alert(alerts.Success("Wrote %d faculty and %d participations", report.Faculty, report.Participations))
	}
	return nil
}

func idsOf(ps []directory.Participation) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.FacultyID)
	}
	return ids
}
