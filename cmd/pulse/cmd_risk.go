package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTrendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trend <entity> <kpi>",
		Short: "Fit a trend line to an entity's KPI history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.service.Trend(cmd.Context(), args[0], args[1])
			if err != nil {
				return classify(err)
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			rows := [][]string{
				{"direction", trendText(result.Direction)},
				{"percent change", formatFloat(result.PercentChange)},
				{"slope", formatFloat(result.Slope)},
				{"confidence", formatFloat(result.Confidence)},
				{"points", fmt.Sprint(result.AnalyzedWindow.Points)},
			}
			renderTable(cmd.OutOrStdout(), fmt.Sprintf("Trend %s %s", args[0], args[1]), []string{"", ""}, rows)
			return nil
		},
	}
}

func newRiskCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "risk <entity> <kpi>",
		Short: "Assess the risk of an entity missing a KPI target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.service.Assess(cmd.Context(), args[0], args[1])
			if err != nil {
				return classify(err)
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), a)
			}

			rows := make([][]string, 0, 3)
			for _, r := range []struct {
				name string
				tier string
				risk float64
				proj float64
				meet bool
				rec  string
			}{
				{"momentum", riskTierText(a.Momentum.Tier), a.Momentum.RiskScore, a.Momentum.ProjectedValue, a.Momentum.WillMeetTarget, a.Momentum.Recommendation},
				{"forecast", riskTierText(a.Forecast.Tier), a.Forecast.RiskScore, a.Forecast.ProjectedValue, a.Forecast.WillMeetTarget, a.Forecast.Recommendation},
				{"projection", riskTierText(a.Projection.Tier), a.Projection.RiskScore, a.Projection.ProjectedValue, a.Projection.WillMeetTarget, a.Projection.Recommendation},
			} {
				rows = append(rows, []string{r.name, r.tier, formatFloat(r.risk), formatFloat(r.proj), fmt.Sprint(r.meet), r.rec})
			}

			title := fmt.Sprintf("Risk %s %s: current %s, target %s, trend %s",
				a.EntityID, a.KPIID, formatFloat(a.Current), formatFloat(a.Target), trendText(a.Trend.Direction))
			renderTable(cmd.OutOrStdout(), title, []string{"STRATEGY", "TIER", "RISK", "PROJECTED", "MEETS TARGET", "RECOMMENDATION"}, rows)
			return nil
		},
	}
}

func newHeatmapCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap [period]",
		Short: "Momentum risk of every entity and KPI in a period",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			period, err := resolvePeriod(cmd, s, args)
			if err != nil {
				return err
			}
			heatmap, err := s.service.Heatmap(cmd.Context(), period)
			if err != nil {
				return classify(err)
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), heatmap)
			}

			headers := append([]string{"ENTITY"}, heatmap.KPIs...)
			rows := make([][]string, 0, len(heatmap.Rows))
			for _, row := range heatmap.Rows {
				cells := make(map[string]string, len(row.Cells))
				for _, c := range row.Cells {
					cells[c.KPIID] = fmt.Sprintf("%s %s", formatFloat(c.Value), riskTierText(c.Risk.Tier))
				}
				line := []string{row.EntityID}
				for _, kpi := range heatmap.KPIs {
					cell, ok := cells[kpi]
					if !ok {
						cell = mutedStyle.Render("-")
					}
					line = append(line, cell)
				}
				rows = append(rows, line)
			}

			title := fmt.Sprintf("Risk heatmap %s (against %s)", heatmap.Period, heatmap.PreviousPeriod)
			renderTable(cmd.OutOrStdout(), title, headers, rows)
			return nil
		},
	}
}
