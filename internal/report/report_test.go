package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/agro-ecosim/internal/runner"
	"github.com/talgya/agro-ecosim/internal/scenario"
)

func results(t *testing.T) []runner.Result {
	t.Helper()
	res, err := runner.Run(context.Background(), scenario.Builtin(), runner.Options{Years: 5})
	require.NoError(t, err)
	return res
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	r := results(t)[0]
	Progress(&buf, r)

	out := buf.String()
	assert.Contains(t, out, "Completed: "+r.Scenario.Name)
	assert.Contains(t, out, "Final Crop Yield:")
	assert.Contains(t, out, "Final Bat Density:")
}

func TestSummaryListsEveryScenario(t *testing.T) {
	var buf bytes.Buffer
	res := results(t)
	Summary(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "Final Results Summary (Year 5):")
	assert.Contains(t, out, "Pest Density")
	for _, r := range res {
		assert.Contains(t, out, r.Scenario.Name)
	}
}

func TestScoresListsSummaries(t *testing.T) {
	var buf bytes.Buffer
	res := results(t)
	Scores(&buf, res)

	out := buf.String()
	for _, r := range res {
		assert.Contains(t, out, r.Evaluation.Summary)
	}
}

func TestEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, nil)
	Scores(&buf, nil)
	assert.Empty(t, buf.String())
}
