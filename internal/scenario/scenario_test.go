package scenario

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
)

const twoScenarios = `
scenarios:
  - id: conventional
    name: Conventional
    use_fertilizer: true
    use_herbicide: true
    use_pesticide: true
    introduce_birds: false
    introduce_bats: false
    herbicide_stop_year: null
    pesticide_stop_year: null
  - id: transition
    use_fertilizer: true
    use_organic_fertilizer: true
    use_herbicide: true
    use_pesticide: true
    use_cover_crop: true
    introduce_birds: true
    introduce_bats: true
    herbicide_stop_year: 4
    pesticide_stop_year: 2
`

func TestParse(t *testing.T) {
	scs, err := Parse([]byte(twoScenarios))
	require.NoError(t, err)
	require.Len(t, scs, 2)

	conv := scs[0]
	assert.Equal(t, "conventional", conv.ID)
	assert.Equal(t, "Conventional", conv.Name)
	assert.True(t, conv.UseFertilizer)
	assert.False(t, conv.UseOrganicFertilizer)
	assert.False(t, conv.UseCoverCrop)
	assert.Nil(t, conv.HerbicideStopYear)
	assert.Nil(t, conv.PesticideStopYear)

	tr := scs[1]
	assert.Equal(t, "transition", tr.Name, "name defaults to id")
	assert.True(t, tr.UseOrganicFertilizer)
	require.NotNil(t, tr.HerbicideStopYear)
	assert.Equal(t, 4, *tr.HerbicideStopYear)
	require.NotNil(t, tr.PesticideStopYear)
	assert.Equal(t, 2, *tr.PesticideStopYear)
}

func TestParseMissingRequiredKey(t *testing.T) {
	for _, key := range []string{"use_fertilizer", "use_herbicide", "use_pesticide", "introduce_birds", "introduce_bats"} {
		t.Run(key, func(t *testing.T) {
			flags := map[string]string{
				"use_fertilizer":  "true",
				"use_herbicide":   "false",
				"use_pesticide":   "false",
				"introduce_birds": "true",
				"introduce_bats":  "false",
			}
			delete(flags, key)

			var buf bytes.Buffer
			buf.WriteString("scenarios:\n  - id: partial\n")
			for _, k := range []string{"use_fertilizer", "use_herbicide", "use_pesticide", "introduce_birds", "introduce_bats"} {
				if v, ok := flags[k]; ok {
					buf.WriteString("    " + k + ": " + v + "\n")
				}
			}

			_, err := Parse(buf.Bytes())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingKey))
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestParseOptionalKeysDefaultFalse(t *testing.T) {
	scs, err := Parse([]byte(`
scenarios:
  - id: minimal
    use_fertilizer: true
    use_herbicide: false
    use_pesticide: false
    introduce_birds: false
    introduce_bats: false
`))
	require.NoError(t, err)
	assert.False(t, scs[0].UseOrganicFertilizer)
	assert.False(t, scs[0].UseCoverCrop)
	assert.Nil(t, scs[0].HerbicideStopYear)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no scenarios", "scenarios: []\n"},
		{"unknown key", "scenarios:\n  - id: a\n    use_fertiliser: true\n"},
		{"missing id", "scenarios:\n  - use_fertilizer: true\n"},
		{"negative stop year", `scenarios:
  - id: a
    use_fertilizer: true
    use_herbicide: true
    use_pesticide: true
    introduce_birds: false
    introduce_bats: false
    pesticide_stop_year: -3
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseNegativeStopYearIsTyped(t *testing.T) {
	_, err := Parse([]byte(`scenarios:
  - id: a
    use_fertilizer: true
    use_herbicide: true
    use_pesticide: true
    introduce_birds: false
    introduce_bats: false
    herbicide_stop_year: -1
`))
	assert.True(t, errors.Is(err, ecosystem.ErrInvalidStopYear))
}

func TestParseDuplicateID(t *testing.T) {
	rec := `  - id: dup
    use_fertilizer: true
    use_herbicide: true
    use_pesticide: true
    introduce_birds: false
    introduce_bats: false
`
	_, err := Parse([]byte("scenarios:\n" + rec + rec))
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestEncodeRoundTripsBuiltins(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Builtin()))

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := LoadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(Builtin(), got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadExampleFile(t *testing.T) {
	scs, err := LoadFile(filepath.Join("..", "..", "scenarios.yaml"))
	require.NoError(t, err)
	require.Len(t, scs, 2)

	assert.Equal(t, "herbicide-only", scs[0].ID)
	assert.False(t, scs[0].UseOrganicFertilizer)
	assert.Nil(t, scs[0].HerbicideStopYear)

	assert.True(t, scs[1].UseOrganicFertilizer)
	require.NotNil(t, scs[1].PesticideStopYear)
	assert.Equal(t, 10, *scs[1].PesticideStopYear)
}

func TestBuiltin(t *testing.T) {
	scs := Builtin()
	require.Len(t, scs, 6)
	for _, sc := range scs {
		assert.NoError(t, sc.Validate(), sc.ID)
		assert.NotEmpty(t, sc.Name)
	}

	radical, err := Lookup("scenario6")
	require.NoError(t, err)
	assert.False(t, radical.UseFertilizer)
	assert.False(t, radical.UseHerbicide)
	assert.True(t, radical.IntroduceBirds)

	_, err = Lookup("scenario9")
	assert.True(t, errors.Is(err, ErrUnknownScenario))
}

func TestSelectKeepsRequestedOrder(t *testing.T) {
	got, err := Select(Builtin(), []string{"scenario3", "scenario1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "scenario3", got[0].ID)
	assert.Equal(t, "scenario1", got[1].ID)

	all, err := Select(Builtin(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestParseRecordAcceptsJSON(t *testing.T) {
	sc, err := ParseRecord([]byte(`{"id": "json", "use_fertilizer": false, "use_herbicide": true, "use_pesticide": true, "introduce_birds": true, "introduce_bats": false, "pesticide_stop_year": 5}`))
	require.NoError(t, err)
	assert.Equal(t, "json", sc.ID)
	assert.True(t, sc.UseHerbicide)
	require.NotNil(t, sc.PesticideStopYear)
	assert.Equal(t, 5, *sc.PesticideStopYear)

	_, err = ParseRecord([]byte(`{"id": "json"}`))
	assert.True(t, errors.Is(err, ErrMissingKey))
}

func TestParseRecordJSONIsStrict(t *testing.T) {
	const rest = `"use_herbicide": true, "use_pesticide": true, "introduce_birds": false, "introduce_bats": false`
	tests := []struct {
		name string
		body string
	}{
		{"string yes", `{"id": "j", "use_fertilizer": "yes", ` + rest + `}`},
		{"string false", `{"id": "j", "use_fertilizer": "false", ` + rest + `}`},
		{"number", `{"id": "j", "use_fertilizer": 0, ` + rest + `}`},
		{"unknown key", `{"id": "j", "use_fertiliser": true, "use_fertilizer": true, ` + rest + `}`},
		{"trailing object", `{"id": "j", "use_fertilizer": true, ` + rest + `} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord([]byte(tt.body))
			assert.Error(t, err)
		})
	}

	_, err := ParseRecord([]byte(`{"id": "j", "use_fertilizer": null, ` + rest + `}`))
	assert.True(t, errors.Is(err, ErrMissingKey))
}

func TestParseRecordAcceptsYAML(t *testing.T) {
	sc, err := ParseRecord([]byte(`
id: yaml
use_fertilizer: true
use_cover_crop: true
use_herbicide: false
use_pesticide: false
introduce_birds: false
introduce_bats: true
`))
	require.NoError(t, err)
	assert.True(t, sc.UseFertilizer)
	assert.True(t, sc.UseCoverCrop)
	assert.True(t, sc.IntroduceBats)

	_, err = ParseRecord([]byte("   \n"))
	assert.Error(t, err)
}
