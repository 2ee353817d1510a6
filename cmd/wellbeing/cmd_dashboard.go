package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"wellbeing/internal/model"

	"github.com/spf13/cobra"
)

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the statistics summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := c.app.History.Stats(cmd.Context())
			dash := c.app.Dashboard.Dashboard(cmd.Context())

			w := out(cmd)
			fmt.Fprintf(w, "Total assessments:   %d\n", stats.TotalCount)
			fmt.Fprintf(w, "Recent assessments:  %d (last %d days)\n", dash.RecentCount, c.app.Engine.Options().RecentDays)
			fmt.Fprintf(w, "Average happiness:   %.1f\n", stats.AverageHappiness)
			fmt.Fprintf(w, "Average stress:      %.1f\n", stats.AverageStress)
			fmt.Fprintf(w, "Most common persona: %s\n", stats.MostCommonPersona)
			fmt.Fprintf(w, "Happiness trend:     %s\n", trendText(stats.Trend.Happiness))
			fmt.Fprintf(w, "Stress trend:        %s\n", trendText(stats.Trend.Stress))

			if len(stats.PersonaDistribution) > 0 {
				fmt.Fprintln(w)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PERSONA\tCOUNT\tSHARE")
				for _, share := range stats.PersonaDistribution {
					fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", share.Persona, share.Count, share.Percentage)
				}
				return tw.Flush()
			}
			return nil
		},
	}
}

func newChartCmd(c *cli) *cobra.Command {
	var (
		points   int
		personas bool
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the score chart series, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)

			if personas {
				fmt.Fprintln(tw, "PERSONA\tCOUNT\tSHARE\t")
				for _, s := range c.app.Dashboard.PersonaChart(cmd.Context()) {
					fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%s\n", s.Label, s.Count, s.Percentage,
						strings.Repeat("#", int(s.Percentage/5+0.5)))
				}
				return tw.Flush()
			}

			if points <= 0 {
				points = c.app.Engine.Options().ChartPoints
			}
			fmt.Fprintln(tw, "WHEN\tHAPPINESS\tSTRESS")
			for _, p := range c.app.Dashboard.ScoreChart(cmd.Context(), points) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Timestamp, pointText(p.Happiness), pointText(p.Stress))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&points, "points", 0, "target number of points (default from config)")
	cmd.Flags().BoolVar(&personas, "personas", false, "show the persona chart instead")
	return cmd
}

func newTrendsCmd(c *cli) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Compare the older and newer half of a recent window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				days = c.app.Engine.Options().TrendDays
			}
			trends := c.app.Dashboard.Trends(cmd.Context(), days)
			fmt.Fprintf(out(cmd), "Last %d days\n", days)
			fmt.Fprintf(out(cmd), "Happiness: %s\n", trendText(trends.Happiness))
			fmt.Fprintf(out(cmd), "Stress:    %s\n", trendText(trends.Stress))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "window length in days (default from config)")
	return cmd
}

func trendText(t model.Trend) string {
	return fmt.Sprintf("%s (%+.1f)", t.Direction, t.Change)
}

func pointText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
