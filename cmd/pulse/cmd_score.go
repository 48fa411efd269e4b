package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/pulse/internal/modules/dashboard"
)

func newIngestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Append record files to a persistent observation log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dbPath == "" {
				return fmt.Errorf("ingest requires --db")
			}
			if len(opts.inputs) == 0 {
				return fmt.Errorf("ingest requires at least one --input")
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			periods, err := s.service.Periods(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d file(s) into %s, periods: %s\n",
				len(opts.inputs), opts.dbPath, strings.Join(periods, ", "))
			return nil
		},
	}
}

// resolvePeriod returns the given period or the latest one with data
func resolvePeriod(cmd *cobra.Command, s *session, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	period, err := s.service.LatestPeriod(cmd.Context())
	if err != nil {
		return "", classify(err)
	}
	return period, nil
}

func newScoreCommand(opts *rootOptions) *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "score [period]",
		Short: "Score and rank every entity of a period",
		Long: `Score every entity of a period (YYYY-MM, default the latest period) and
rank them by composite score. With --entity the per-KPI breakdown of one
entity is printed instead.`,
		Args: cobra.MaximumNArgs(1),
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

			if entity != "" {
				score, err := s.service.EntityScore(cmd.Context(), period, entity)
				if err != nil {
					return classify(err)
				}
				if opts.format == "json" {
					return writeJSON(cmd.OutOrStdout(), score)
				}
				rows := make([][]string, 0, len(score.Breakdown))
				for _, c := range score.Breakdown {
					rows = append(rows, []string{c.KPIID, formatFloat(c.Value), formatFloat(c.Achievement), formatFloat(c.Weight), formatFloat(c.Points)})
				}
				title := fmt.Sprintf("%s %s: %s %s, penalty %s", entity, period,
					formatFloat(score.CompositeScore), scoreTierText(score.Tier), formatFloat(score.Penalty))
				renderTable(cmd.OutOrStdout(), title, []string{"KPI", "VALUE", "ACHIEVEMENT", "WEIGHT", "POINTS"}, rows)
				return nil
			}

			board, err := s.service.Scoreboard(cmd.Context(), period)
			if err != nil {
				return classify(err)
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), board)
			}

			rows := make([][]string, 0, len(board.Entities))
			for _, r := range board.Entities {
				rows = append(rows, []string{
					strconv.Itoa(r.Rank), r.EntityID, formatFloat(r.CompositeScore),
					scoreTierText(r.Tier), string(r.Quartile), formatAlerts(r.Alerts),
				})
			}
			title := fmt.Sprintf("Scoreboard %s, average %s", board.Period, formatFloat(board.AverageScore))
			renderTable(cmd.OutOrStdout(), title, []string{"RANK", "ENTITY", "SCORE", "TIER", "QUARTILE", "ALERTS"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "Show the breakdown of one entity")
	return cmd
}

func newLeaderboardCommand(opts *rootOptions) *cobra.Command {
	var (
		n      int
		bottom bool
	)

	cmd := &cobra.Command{
		Use:   "leaderboard <kpi> [period]",
		Short: "Rank entities on a single KPI",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			period, err := resolvePeriod(cmd, s, args[1:])
			if err != nil {
				return err
			}
			order := dashboard.OrderTop
			if bottom {
				order = dashboard.OrderBottom
			}

			board, err := s.service.Leaderboard(cmd.Context(), period, args[0], n, order)
			if err != nil {
				return classify(err)
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), board)
			}

			rows := make([][]string, 0, len(board.Entries))
			for i, r := range board.Entries {
				rows = append(rows, []string{strconv.Itoa(i + 1), r.EntityID, formatFloat(r.Values[board.KPIID])})
			}
			label := "Top"
			if bottom {
				label = "Bottom"
			}
			title := fmt.Sprintf("%s %d on %s, %s", label, n, board.KPIID, board.Period)
			renderTable(cmd.OutOrStdout(), title, []string{"#", "ENTITY", strings.ToUpper(board.KPIID)}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", 5, "Number of entries")
	cmd.Flags().BoolVar(&bottom, "bottom", false, "Show the worst performers instead of the best")
	return cmd
}

func newSummaryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [period]",
		Short: "Team-wide KPI averages against targets",
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
			summary, err := s.service.TeamSummary(cmd.Context(), period)
			if err != nil {
				return classify(err)
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), summary)
			}

			rows := make([][]string, 0, len(summary.KPIs))
			for _, k := range summary.KPIs {
				rows = append(rows, []string{
					k.KPIID, formatFloat(k.Average), formatFloat(k.Target), statusText(k.Status),
					fmt.Sprintf("%d/%d", k.BelowTarget, k.Reporting),
				})
			}
			title := fmt.Sprintf("Team %s: %d entities, average score %s", summary.Period, summary.Entities, formatFloat(summary.AverageScore))
			renderTable(cmd.OutOrStdout(), title, []string{"KPI", "AVERAGE", "TARGET", "STATUS", "BELOW TARGET"}, rows)
			return nil
		},
	}
}
