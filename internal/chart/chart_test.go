package chart

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/evaluation"
)

func testRuns(t *testing.T) []Run {
	t.Helper()
	scs := []ecosystem.Scenario{
		{ID: "a", Name: "Conventional", UseFertilizer: true, UseHerbicide: true, UsePesticide: true},
		{ID: "b", Name: "Removal", UseFertilizer: true, UseHerbicide: true, UsePesticide: true,
			HerbicideStopYear: ecosystem.StopYear(3), PesticideStopYear: ecosystem.StopYear(2)},
		{ID: "c", Name: "Organic", UseOrganicFertilizer: true, UseCoverCrop: true, IntroduceBirds: true, IntroduceBats: true},
	}
	runs := make([]Run, len(scs))
	for i, sc := range scs {
		sim, err := ecosystem.New(sc)
		require.NoError(t, err)
		sim.Run(10)
		runs[i] = Run{Scenario: sc, History: sim.History()}
	}
	return runs
}

func TestPanelPlotAxes(t *testing.T) {
	runs := testRuns(t)
	g := ScenarioComparison(runs)

	plt, err := g.Panels[1].Plot()
	require.NoError(t, err)
	assert.Equal(t, 0.0, plt.X.Min)
	assert.Equal(t, 10.0, plt.X.Max)
	assert.Equal(t, 0.0, plt.Y.Min)
	assert.Greater(t, plt.Y.Max, 0.0)
	assert.Equal(t, "Removal", plt.Title.Text)
}

func TestPanelWithoutDataKeepsPositiveRange(t *testing.T) {
	plt, err := Panel{Title: "empty", Years: 5}.Plot()
	require.NoError(t, err)
	assert.Equal(t, 1.0, plt.Y.Max)
	assert.Equal(t, 5.0, plt.X.Max)
}

func TestSeasonXYs(t *testing.T) {
	xys := seasonXYs([]float64{1, 2, 3, 4, 5})
	require.Len(t, xys, 5)
	assert.Equal(t, 0.0, xys[0].X)
	assert.Equal(t, 0.25, xys[1].X)
	assert.Equal(t, 1.0, xys[4].X)
	assert.Equal(t, 5.0, xys[4].Y)
}

func TestStopYearMarkersAreDashed(t *testing.T) {
	g := ScenarioComparison(testRuns(t))
	markers := g.Panels[1].Markers
	require.Len(t, markers, 2)
	assert.Equal(t, 3.0, markers[0].Year)
	assert.Equal(t, herbicideStopColor, markers[0].Color)
	assert.Equal(t, 2.0, markers[1].Year)
	assert.Equal(t, pesticideStopColor, markers[1].Color)
}

func TestScenarioComparisonLayout(t *testing.T) {
	runs := testRuns(t)
	g := ScenarioComparison(runs)

	assert.Equal(t, 1, g.Rows)
	assert.Equal(t, 3, g.Cols)
	require.Len(t, g.Panels, 3)
	assert.True(t, g.Panels[0].Legend)
	assert.False(t, g.Panels[1].Legend)
	assert.Len(t, g.Panels[0].Lines, 6)
	assert.Empty(t, g.Panels[0].Markers)
	assert.Len(t, g.Panels[1].Markers, 2)
	assert.Equal(t, 10.0, g.Panels[0].Years)

	img, err := g.Render()
	require.NoError(t, err)
	assert.Equal(t, 3*480, img.Image().Bounds().Dx())
	assert.Equal(t, 36+320, img.Image().Bounds().Dy())
}

func TestVariableComparisonLayout(t *testing.T) {
	g := VariableComparison(testRuns(t))
	require.Len(t, g.Panels, 6)
	for _, p := range g.Panels {
		assert.Len(t, p.Lines, 3)
	}
	assert.Equal(t, "Crop Biomass", g.Panels[0].Title)
}

func TestWriteAll(t *testing.T) {
	runs := testRuns(t)
	evals := make([]evaluation.Result, len(runs))
	for i, r := range runs {
		res, err := evaluation.Evaluate(r.History, r.Scenario)
		require.NoError(t, err)
		evals[i] = res
	}

	dir := filepath.Join(t.TempDir(), "charts")
	paths, err := WriteAll(dir, runs, evals)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, p := range paths {
		f, err := os.Open(p)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, p)
		assert.Positive(t, img.Bounds().Dx())
	}
}

func TestBarsWithNoValues(t *testing.T) {
	img, err := Bars{Title: "empty"}.Render()
	require.NoError(t, err)
	assert.Equal(t, 960, img.Image().Bounds().Dx())
}

func TestScoresBars(t *testing.T) {
	b := Scores([]evaluation.Result{
		{ScenarioName: "A", Overall: 40},
		{ScenarioName: "B", Overall: 75.5},
	})
	assert.Equal(t, []string{"A", "B"}, b.Labels)
	assert.Equal(t, []float64{40, 75.5}, b.Values)

	plt, err := b.Plot()
	require.NoError(t, err)
	assert.Equal(t, 0.0, plt.Y.Min)
	assert.Equal(t, 100.0, plt.Y.Max)
}
