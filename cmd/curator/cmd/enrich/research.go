package enrich

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/store"
	"github.com/workshopdir/curator/pkg/enrichment"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/logging"
	"github.com/workshopdir/curator/pkg/research"
)

// Research backends.
const (
	BackendGemini = "gemini"
	BackendStatic = "static"
)

type researchFlags struct {
	backend  string
	results  string
	max      int
	batchOut string
}

func newResearchCommand(app application.Application) *cobra.Command {
	var flags researchFlags
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Research pending and low-confidence records in paced batches",
		Long: `Research looks up every pending or low-confidence record, a few at a time
with a fixed pause between batches. Failures are logged and skipped. The
gemini backend asks the configured model; its answers are capped at medium
confidence. The static backend serves results gathered by hand (--results).`,
		Example: `  curator enrich research --max 20
  curator enrich research --backend static --results research/manual.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResearch(cmd, app, flags)
		},
	}
	cmd.Flags().StringVar(&flags.backend, "backend", BackendGemini, "research backend (gemini, static)")
	cmd.Flags().StringVar(&flags.results, "results", "", "hand-authored results for the static backend")
	cmd.Flags().IntVar(&flags.max, "max", 0, "research at most this many records (0 = all)")
	cmd.Flags().StringVar(&flags.batchOut, "batch-out", "", "also write the found updates as a batch file for review")
	return cmd
}

func newResearcher(cmd *cobra.Command, app application.Application, flags researchFlags) (research.Researcher, error) {
	switch flags.backend {
	case BackendGemini:
		return app.Researcher(cmd.Context())
	case BackendStatic:
		if flags.results == "" {
			return nil, errors.NewValidationError("results", "", "the static backend needs --results")
		}
		data, err := cmdutil.ReadFile(flags.results)
		if err != nil {
			return nil, err
		}
		batch, err := enrichment.ParseBatch(data, flags.results)
		if err != nil {
			return nil, err
		}
		return research.NewStaticResearcher(batch), nil
	default:
		return nil, errors.NewValidationError("backend", flags.backend, "must be one of gemini, static")
	}
}

func runResearch(cmd *cobra.Command, app application.Application, flags researchFlags) error {
	ctx := logging.WithOperation(cmd.Context(), "research")
	researcher, err := newResearcher(cmd, app, flags)
	if err != nil {
		return err
	}
	ws, err := app.Workspace(ctx)
	if err != nil {
		return err
	}
	e, err := ws.LoadEnrichment()
	if err != nil {
		return err
	}

	subjects := research.Candidates(e.Table, flags.max)
	if len(subjects) == 0 {
		p := cmdutil.NewPrinter(cmd, app.OutputFormat())
		p.Alert(alerts.Info("No pending or low-confidence records to research"))
		return finish(ctx, cmd, app, ws, e, &Result{DryRun: ws.DryRun()})
	}

	found, runErr := research.RunBatches(ctx, researcher, subjects, app.ResearchOptions())
	if found == nil {
		return runErr
	}
	if runErr != nil {
		// Keep what was found before the interruption.
		logging.FromContext(ctx).Warn().Err(runErr).Int("found", len(found.Batch)).Msg("Research interrupted")
	}

	if flags.batchOut != "" {
		if err := store.Save(flags.batchOut, found.Batch, store.WithDryRun(ws.DryRun())); err != nil {
			return err
		}
	}

	report := enrichment.Apply(e.Table, found.Batch, time.Now())
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
	if err := finish(ctx, cmd, app, ws, e, result); err != nil {
		return err
	}

	if len(found.Failures) > 0 {
		details := make([]string, 0, len(found.Failures))
		for _, f := range found.Failures {
			details = append(details, f.ID+": "+f.Error)
		}
		p := cmdutil.NewPrinter(cmd, app.OutputFormat())
		p.Alert(alerts.Warning("%d of %d lookups failed", len(found.Failures), len(subjects)).WithDetails(details...))
	}
	return runErr
}
