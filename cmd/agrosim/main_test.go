package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/agro-ecosim/internal/chart"
	"github.com/talgya/agro-ecosim/internal/persistence"
	"github.com/talgya/agro-ecosim/internal/scenario"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "warn"}, args...))
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "debug", "json")
	require.NoError(t, err)
	logger.Debug("hello", "year", 3)
	assert.Contains(t, buf.String(), `"year":3`)

	buf.Reset()
	logger, err = newLogger(&buf, "warn", "text")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	// A buffer is not a terminal.
	buf.Reset()
	logger, err = newLogger(&buf, "info", "auto")
	require.NoError(t, err)
	logger.Info("auto")
	assert.Contains(t, buf.String(), `"msg":"auto"`)

	_, err = newLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestEnvIntOrDefault(t *testing.T) {
	t.Setenv("AGROSIM_YEARS", "12")
	assert.Equal(t, 12, envIntOrDefault("AGROSIM_YEARS", 30))

	t.Setenv("AGROSIM_YEARS", "many")
	assert.Equal(t, 30, envIntOrDefault("AGROSIM_YEARS", 30))

	t.Setenv("AGROSIM_YEARS", "")
	assert.Equal(t, 30, defaultYears())
}

func TestRunStoresResultsAndCharts(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "runs.db")
	outDir := filepath.Join(dir, "charts")

	out := execute(t, "run", "--years", "3", "--only", "scenario1,scenario6", "--db", dbPath, "--out", outDir)
	assert.Contains(t, out, "Simulating 2 scenarios for 3 years")
	assert.Contains(t, out, "Final Results Summary (Year 3):")
	assert.Contains(t, out, "Scenario Evaluation:")

	for _, name := range []string{chart.ScenarioComparisonFile, chart.VariableComparisonFile, chart.EvaluationFile} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	db, err := persistence.Open(dbPath)
	require.NoError(t, err)
	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, runs, 2)

	listing := execute(t, "runs", "--db", dbPath)
	assert.Contains(t, listing, runs[0].ID)
}

func TestRunFromScenarioFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "scenarios.yaml")

	var buf bytes.Buffer
	require.NoError(t, scenario.Encode(&buf, scenario.Builtin()[:2]))
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0o644))

	out := execute(t, "run", "--scenarios", file, "--years", "2", "--no-save", "--no-charts")
	assert.Contains(t, out, "Simulating 2 scenarios for 2 years")
	assert.NotContains(t, out, "Chart written")
}

func TestRunRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"run", "--years", "0", "--no-save", "--no-charts"},
		{"run", "--only", "nope", "--no-save", "--no-charts"},
		{"run", "--scenarios", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs(args)
		assert.Error(t, root.Execute(), args)
	}
}

func TestScenariosCommand(t *testing.T) {
	out := execute(t, "scenarios")
	for _, sc := range scenario.Builtin() {
		assert.Contains(t, out, sc.ID)
	}

	yamlOut := execute(t, "scenarios", "--yaml")
	scs, err := scenario.Parse([]byte(yamlOut))
	require.NoError(t, err)
	assert.Equal(t, scenario.Builtin(), scs)
}

func TestLoadScenariosResolvesBuiltinIDs(t *testing.T) {
	scs, err := loadScenarios("", []string{"scenario5", "scenario2"})
	require.NoError(t, err)
	require.Len(t, scs, 2)
	assert.Equal(t, "scenario5", scs[0].ID)
	assert.Equal(t, "scenario2", scs[1].ID)

	all, err := loadScenarios("", nil)
	require.NoError(t, err)
	assert.Equal(t, scenario.Builtin(), all)

	_, err = loadScenarios("", []string{"scenario1", "nope"})
	assert.True(t, errors.Is(err, scenario.ErrUnknownScenario))
}
