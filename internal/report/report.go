// Package report prints run summaries to a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/talgya/agro-ecosim/internal/runner"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// Progress prints the completion line of a single run.
func Progress(w io.Writer, r runner.Result) {
	final := r.Final()
	fmt.Fprintf(w, "✓ Completed: %s\n", r.Scenario.Name)
	fmt.Fprintf(w, "  Final Crop Yield: %.1f\n", final.Crop)
	fmt.Fprintf(w, "  Final Bird Density: %.1f\n", final.Bird)
	fmt.Fprintf(w, "  Final Bat Density: %.1f\n", final.Bat)
	fmt.Fprintln(w, strings.Repeat("-", 40))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
}

// Summary prints the final state of every run.
func Summary(w io.Writer, results []runner.Result) {
	if len(results) == 0 {
		return
	}
	years := results[0].Years
	t := newTable("Scenario Name", "Crop Yield", "Bird Density", "Bat Density", "Pest Density")
	for _, r := range results {
		final := r.Final()
		t.Row(r.Scenario.Name, f1(final.Crop), f1(final.Bird), f1(final.Bat), f1(final.Pest))
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Final Results Summary (Year %d):", years)))
	fmt.Fprintln(w, t.Render())
}

// Scores prints the evaluation of every run.
func Scores(w io.Writer, results []runner.Result) {
	if len(results) == 0 {
		return
	}
	t := newTable("Scenario Name", "Overall", "Stability", "Biodiversity", "Yield", "Cost Eff.", "Soil Trend", "Summary")
	for _, r := range results {
		e := r.Evaluation
		t.Row(
			r.Scenario.Name,
			f1(e.Overall),
			f1(e.Ecological.ProductivityStability),
			f1(e.Ecological.Biodiversity),
			f1(e.Economic.Yield),
			f1(e.Economic.CostEfficiency),
			fmt.Sprintf("%+.2f", e.Sustainability.SoilTrend),
			e.Summary,
		)
	}
	fmt.Fprintln(w, titleStyle.Render("Scenario Evaluation:"))
	fmt.Fprintln(w, t.Render())
}

func f1(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
