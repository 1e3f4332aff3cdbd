// Package share implements the command that builds shareable dashboard
// links.
package share

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/workshopdir/curator/cmd/application"
	"github.com/workshopdir/curator/internal/cmd/cmdutil"
	"github.com/workshopdir/curator/internal/cmd/output"
	"github.com/workshopdir/curator/pkg/errors"
	"github.com/workshopdir/curator/pkg/urlstate"
)

// Link is a shareable dashboard URL and the state it encodes.
type Link struct {
	URL   string         `json:"url"`
	State urlstate.State `json:"state"`
}

// Table implements output.Tabular.
func (l *Link) Table() output.Data {
	year := ""
	if l.State.Year != 0 {
		year = strconv.Itoa(l.State.Year)
	}
	return output.KeyValue(
		"url", l.URL,
		urlstate.ParamMap, strconv.FormatBool(l.State.Map),
		urlstate.ParamTimeline, strconv.FormatBool(l.State.Timeline),
		urlstate.ParamComparisons, strconv.FormatBool(l.State.Comparisons),
		urlstate.ParamAnalytics, strconv.FormatBool(l.State.Analytics),
		urlstate.ParamHistorical, strconv.FormatBool(l.State.Historical),
		urlstate.ParamWorkshop, l.State.Workshop,
		urlstate.ParamYear, year,
	)
}

// NewCommand creates the share command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		base     string
		from     string
		panels   = map[string]*bool{}
		workshop string
		year     int
	)
	cmd := &cobra.Command{
		Use:     "share",
		GroupID: "management",
		Short:   "Build a shareable dashboard link",
		Long: `Share encodes dashboard view flags as query parameters on the dashboard
URL. Only what differs from a fresh dashboard is written. Start from an
existing link with --from and change individual flags on top of it.`,
		Example: `  curator share --map --workshop wog --year 2023
  curator share --from "https://dash.example.org/?map=true" --timeline --map=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if base == "" {
				base = app.DashboardURL()
			}
			if _, err := url.Parse(base); err != nil {
				return errors.WrapValidation("base", err)
			}

			query := ""
			if from != "" {
				u, err := url.Parse(from)
				if err != nil {
					return errors.WrapValidation("from", err)
				}
				query = u.RawQuery
			}
			ctl := urlstate.NewController(query, nil)
			state := ctl.Update(func(s *urlstate.State) {
				for name, dst := range map[string]*bool{
					urlstate.ParamMap:         &s.Map,
					urlstate.ParamTimeline:    &s.Timeline,
					urlstate.ParamComparisons: &s.Comparisons,
					urlstate.ParamAnalytics:   &s.Analytics,
					urlstate.ParamHistorical:  &s.Historical,
				} {
					if cmd.Flags().Changed(name) {
						*dst = *panels[name]
					}
				}
				if cmd.Flags().Changed(urlstate.ParamWorkshop) {
					s.Workshop = workshop
				}
				if cmd.Flags().Changed(urlstate.ParamYear) {
					s.Year = year
				}
			})

			link, err := ctl.ShareURL(base)
			if err != nil {
				return errors.WrapValidation("base", err)
			}
			return cmdutil.NewPrinter(cmd, app.OutputFormat()).Print(&Link{URL: link, State: state})
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "dashboard URL (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "existing link to start from")
	for _, name := range []string{urlstate.ParamMap, urlstate.ParamTimeline, urlstate.ParamComparisons, urlstate.ParamAnalytics, urlstate.ParamHistorical} {
		panels[name] = cmd.Flags().Bool(name, false, "show the "+name+" panel")
	}
	cmd.Flags().StringVar(&workshop, urlstate.ParamWorkshop, "", "filter to one workshop id")
	cmd.Flags().IntVar(&year, urlstate.ParamYear, 0, "filter to one year")
	return cmd
}
