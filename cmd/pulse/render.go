package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aristath/pulse/internal/domain"
)

var (
	success = lipgloss.Color("#00FFB2")
	warning = lipgloss.Color("#FFD300")
	danger  = lipgloss.Color("#E94090")
	muted   = lipgloss.Color("#858392")

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
)

func colored(text string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(text)
}

func statusText(s domain.Status) string {
	switch s {
	case domain.StatusGreen:
		return colored(string(s), success)
	case domain.StatusYellow:
		return colored(string(s), warning)
	case domain.StatusRed:
		return colored(string(s), danger)
	}
	return string(s)
}

func scoreTierText(t domain.ScoreTier) string {
	switch t {
	case domain.TierOptimal:
		return colored(string(t), success)
	case domain.TierControl:
		return colored(string(t), warning)
	case domain.TierRisk:
		return colored(string(t), danger)
	}
	return string(t)
}

func riskTierText(t domain.RiskTier) string {
	switch t {
	case domain.RiskLow:
		return colored(string(t), success)
	case domain.RiskMedium:
		return colored(string(t), warning)
	case domain.RiskHigh:
		return colored(string(t), danger)
	}
	return string(t)
}

func trendText(d domain.TrendDirection) string {
	switch d {
	case domain.TrendImproving:
		return colored(string(d), success)
	case domain.TrendWorsening:
		return colored(string(d), danger)
	case domain.TrendInsufficientData:
		return mutedStyle.Render(string(d))
	}
	return string(d)
}

func renderTable(w io.Writer, title string, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if title != "" {
		fmt.Fprintln(w, titleStyle.Render(title))
	}
	fmt.Fprintln(w, t.Render())
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatAlerts(alerts []domain.Alert) string {
	if len(alerts) == 0 {
		return mutedStyle.Render("-")
	}
	parts := make([]string, len(alerts))
	for i, a := range alerts {
		parts[i] = a.KPIID
		if a.Severity == domain.AlertCritical {
			parts[i] = colored(a.KPIID, danger)
		}
	}
	return strings.Join(parts, ",")
}
