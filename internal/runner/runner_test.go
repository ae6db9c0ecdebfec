package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/scenario"
)

func TestRunPreservesOrder(t *testing.T) {
	scs := scenario.Builtin()
	results, err := Run(context.Background(), scs, Options{Concurrency: 3})
	require.NoError(t, err)
	require.Len(t, results, len(scs))

	for i, res := range results {
		assert.Equal(t, scs[i].ID, res.Scenario.ID)
		assert.Equal(t, DefaultYears, res.Years)
		assert.Equal(t, 4*DefaultYears, res.History.Len())
		assert.Equal(t, scs[i].ID, res.Evaluation.ScenarioID)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	scs := scenario.Builtin()
	parallel, err := Run(context.Background(), scs, Options{Years: 12, Concurrency: len(scs)})
	require.NoError(t, err)

	for i, sc := range scs {
		seq, err := RunOne(context.Background(), sc, Options{Years: 12})
		require.NoError(t, err)
		if diff := cmp.Diff(seq.History.Snapshots(), parallel[i].History.Snapshots()); diff != "" {
			t.Fatalf("%s: parallel history differs (-seq +par):\n%s", sc.ID, diff)
		}
		assert.Equal(t, seq.Evaluation, parallel[i].Evaluation)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, scenario.Builtin(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunRejectsInvalidScenario(t *testing.T) {
	bad := ecosystem.Scenario{ID: "bad", HerbicideStopYear: ecosystem.StopYear(-2)}
	_, err := Run(context.Background(), []ecosystem.Scenario{bad}, Options{Years: 1})
	assert.True(t, errors.Is(err, ecosystem.ErrInvalidStopYear))
}

func TestFinal(t *testing.T) {
	sc, err := scenario.Lookup("scenario4")
	require.NoError(t, err)
	res, err := RunOne(context.Background(), sc, Options{Years: 3})
	require.NoError(t, err)

	final := res.Final()
	assert.Equal(t, 2, final.Year)
	assert.Equal(t, ecosystem.SeasonWinter, final.Season)
	assert.Greater(t, final.Bird, 0.0)
}
