package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/plotutil"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/evaluation"
)

// Output file names written by WriteAll.
const (
	ScenarioComparisonFile = "scenario_comparison.png"
	VariableComparisonFile = "all_scenarios_comparison_by_variable.png"
	EvaluationFile         = "scenario_evaluation.png"
)

// Run is a scenario and the history it produced.
type Run struct {
	Scenario ecosystem.Scenario
	History  ecosystem.History
}

type variable struct {
	field ecosystem.Field
	name  string
	color color.RGBA
}

var plotted = []variable{
	{ecosystem.FieldCrop, "Crop Biomass", color.RGBA{0x2e, 0x7d, 0x32, 0xff}},
	{ecosystem.FieldWeed, "Weed Biomass", color.RGBA{0xc6, 0x28, 0x28, 0xff}},
	{ecosystem.FieldPest, "Pest Density", color.RGBA{0xff, 0x8f, 0x00, 0xff}},
	{ecosystem.FieldBird, "Bird Density", color.RGBA{0x15, 0x65, 0xc0, 0xff}},
	{ecosystem.FieldBat, "Bat Density", color.RGBA{0x6a, 0x1b, 0x9a, 0xff}},
	{ecosystem.FieldSoilHealth, "Soil Health Index", color.RGBA{0x79, 0x55, 0x48, 0xff}},
}

var (
	herbicideStopColor = color.RGBA{0xe5, 0x39, 0x35, 0xff}
	pesticideStopColor = color.RGBA{0x1e, 0x88, 0xe5, 0xff}
)

func years(runs []Run) float64 {
	n := 0
	for _, r := range runs {
		n = max(n, r.History.Len())
	}
	return float64(n) / float64(len(ecosystem.Seasons))
}

// gridShape picks a layout of about twice as many columns as rows.
func gridShape(n, preferredCols int) (rows, cols int) {
	cols = min(n, preferredCols)
	if cols == 0 {
		return 1, 1
	}
	rows = (n + cols - 1) / cols
	return rows, cols
}

// ScenarioComparison draws one panel per scenario with every key variable.
func ScenarioComparison(runs []Run) Grid {
	extent := years(runs)
	panels := make([]Panel, len(runs))
	for i, r := range runs {
		p := Panel{
			Title:  r.Scenario.Name,
			YLabel: "Value",
			Years:  extent,
			Legend: i == 0,
		}
		for _, v := range plotted {
			p.Lines = append(p.Lines, Line{Label: v.name, Color: v.color, Values: r.History.Series(v.field)})
		}
		if y := r.Scenario.HerbicideStopYear; y != nil {
			p.Markers = append(p.Markers, Marker{Year: float64(*y), Color: herbicideStopColor})
		}
		if y := r.Scenario.PesticideStopYear; y != nil {
			p.Markers = append(p.Markers, Marker{Year: float64(*y), Color: pesticideStopColor})
		}
		panels[i] = p
	}

	rows, cols := gridShape(len(runs), 3)
	return Grid{
		Title:  fmt.Sprintf("%.0f-Year Simulation Results: Comparison of %d Agricultural Ecosystem Scenarios", extent, len(runs)),
		Rows:   rows,
		Cols:   cols,
		Panels: panels,
	}
}

// VariableComparison draws one panel per key variable with every scenario.
func VariableComparison(runs []Run) Grid {
	extent := years(runs)
	panels := make([]Panel, len(plotted))
	for i, v := range plotted {
		p := Panel{
			Title:  v.name,
			YLabel: v.name,
			Years:  extent,
			Legend: i == 0,
		}
		for j, r := range runs {
			p.Lines = append(p.Lines, Line{
				Label:  r.Scenario.Name,
				Color:  plotutil.Color(j),
				Values: r.History.Series(v.field),
			})
		}
		panels[i] = p
	}

	return Grid{
		Title:  fmt.Sprintf("Variable-wise Comparison Across %d Scenarios", len(runs)),
		Rows:   3,
		Cols:   2,
		Panels: panels,
	}
}

// Scores draws the overall score of each evaluated scenario.
func Scores(results []evaluation.Result) Bars {
	b := Bars{
		Title: "Scenario Evaluation Results Comparison",
	}
	for _, r := range results {
		b.Labels = append(b.Labels, r.ScenarioName)
		b.Values = append(b.Values, r.Overall)
	}
	return b
}

// WriteAll renders every chart into dir and returns the written paths.
func WriteAll(dir string, runs []Run, evals []evaluation.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	charts := []struct {
		name   string
		encode func(f *os.File) error
	}{
		{ScenarioComparisonFile, func(f *os.File) error { return ScenarioComparison(runs).WritePNG(f) }},
		{VariableComparisonFile, func(f *os.File) error { return VariableComparison(runs).WritePNG(f) }},
		{EvaluationFile, func(f *os.File) error { return Scores(evals).WritePNG(f) }},
	}

	var paths []string
	for _, c := range charts {
		path := filepath.Join(dir, c.name)
		if err := writeFile(path, c.encode); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
