package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/agro-ecosim/internal/persistence"
	"github.com/talgya/agro-ecosim/internal/scenario"
)

func TestScenariosTable(t *testing.T) {
	var buf bytes.Buffer
	Scenarios(&buf, scenario.Builtin())

	out := buf.String()
	for _, sc := range scenario.Builtin() {
		assert.Contains(t, out, sc.ID)
	}
	assert.Contains(t, out, "never")
}

func TestRunsTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []persistence.Run{{
		ID:           "run-1",
		ScenarioName: "Conventional",
		Years:        30,
		Overall:      61.34,
		CreatedAt:    now.Add(-3 * time.Hour),
	}}

	var buf bytes.Buffer
	Runs(&buf, runs, now)
	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "61.3")
	assert.Contains(t, out, "3 hours ago")
}

func TestRunsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	Runs(&buf, nil, time.Now())
	assert.Equal(t, "No stored runs.\n", buf.String())
}
