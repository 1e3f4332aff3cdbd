package enrich

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/alerts"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/pkg/enrichment"
)

func newStatsCommand(app application.Application) *cobra.Command {
	var metricsFile string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show enrichment coverage",
		Long: `Stats counts how many records have an ORCID, an affiliation, research
areas and a biography, and how many sit at each confidence level. With
--metrics-file the numbers are also written as Prometheus gauges for a
node exporter textfile collector.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := app.Workspace(cmd.Context())
			if err != nil {
				return err
			}
			e, err := ws.LoadEnrichment()
			if err != nil {
				return err
			}
			stats := enrichment.ComputeStats(e.Table)

			p := cmdutil.NewPrinter(cmd, app.OutputFormat())
			if p.Format == output.FormatTable {
				err = p.Print(statsTable(stats))
			} else {
				err = p.Print(stats)
			}
			if err != nil {
				return err
			}

			if metricsFile == "" {
				metricsFile = app.MetricsFile()
			}
			if metricsFile != "" {
				if err := enrichment.WriteMetrics(metricsFile, stats); err != nil {
					return err
				}
				p.Alert(alerts.Info("Wrote metrics to %s", metricsFile))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "also write Prometheus text-format gauges to this file")
	return cmd
}

// statsTable lays coverage out one metric per row.
func statsTable(s enrichment.Stats) output.Data {
	d := output.Data{Headers: []string{"Metric", "Count", "Coverage"}}
	d.Append("records", strconv.Itoa(s.Total), "")
	for _, f := range s.Fields() {
		d.Append(f.Field, strconv.Itoa(f.Count), fmt.Sprintf("%.1f%%", f.Ratio*100))
	}
	for _, level := range enrichment.Levels {
		n := s.Confidence[level]
		d.Append("confidence "+string(level), strconv.Itoa(n), fmt.Sprintf("%.1f%%", s.Coverage(n)*100))
	}
	return d
}
