// Package scenario loads farming-policy scenarios from YAML files and
// provides the built-in comparison set.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
)

// Errors returned while resolving scenarios.
var (
	ErrMissingKey      = errors.New("missing required key")
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrDuplicateID     = errors.New("duplicate scenario id")
)

// File is the on-disk layout of a scenario file.
type File struct {
	Scenarios []Record `yaml:"scenarios"`
}

// Record is one scenario as written in a file. Pointer fields distinguish
// an absent key from an explicit false.
type Record struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	UseFertilizer        *bool `yaml:"use_fertilizer" json:"use_fertilizer"`
	UseOrganicFertilizer *bool `yaml:"use_organic_fertilizer,omitempty" json:"use_organic_fertilizer,omitempty"`
	UseHerbicide         *bool `yaml:"use_herbicide" json:"use_herbicide"`
	UsePesticide         *bool `yaml:"use_pesticide" json:"use_pesticide"`
	UseCoverCrop         *bool `yaml:"use_cover_crop,omitempty" json:"use_cover_crop,omitempty"`
	IntroduceBirds       *bool `yaml:"introduce_birds" json:"introduce_birds"`
	IntroduceBats        *bool `yaml:"introduce_bats" json:"introduce_bats"`

	HerbicideStopYear *int `yaml:"herbicide_stop_year" json:"herbicide_stop_year"`
	PesticideStopYear *int `yaml:"pesticide_stop_year" json:"pesticide_stop_year"`
}

// Resolve converts the record into a scenario. Every policy flag is required
// except use_organic_fertilizer and use_cover_crop, which default to false.
func (r Record) Resolve() (ecosystem.Scenario, error) {
	if r.ID == "" {
		return ecosystem.Scenario{}, fmt.Errorf("id: %w", ErrMissingKey)
	}

	required := []struct {
		key string
		val *bool
	}{
		{"use_fertilizer", r.UseFertilizer},
		{"use_herbicide", r.UseHerbicide},
		{"use_pesticide", r.UsePesticide},
		{"introduce_birds", r.IntroduceBirds},
		{"introduce_bats", r.IntroduceBats},
	}
	for _, req := range required {
		if req.val == nil {
			return ecosystem.Scenario{}, fmt.Errorf("scenario %q: %s: %w", r.ID, req.key, ErrMissingKey)
		}
	}

	sc := ecosystem.Scenario{
		ID:                   r.ID,
		Name:                 r.Name,
		UseFertilizer:        *r.UseFertilizer,
		UseOrganicFertilizer: deref(r.UseOrganicFertilizer),
		UseHerbicide:         *r.UseHerbicide,
		UsePesticide:         *r.UsePesticide,
		UseCoverCrop:         deref(r.UseCoverCrop),
		IntroduceBirds:       *r.IntroduceBirds,
		IntroduceBats:        *r.IntroduceBats,
		HerbicideStopYear:    r.HerbicideStopYear,
		PesticideStopYear:    r.PesticideStopYear,
	}
	if sc.Name == "" {
		sc.Name = sc.ID
	}
	if err := sc.Validate(); err != nil {
		return ecosystem.Scenario{}, fmt.Errorf("scenario %q: %w", r.ID, err)
	}
	return sc, nil
}

// FromScenario builds a fully populated record.
func FromScenario(sc ecosystem.Scenario) Record {
	return Record{
		ID:                   sc.ID,
		Name:                 sc.Name,
		UseFertilizer:        &sc.UseFertilizer,
		UseOrganicFertilizer: &sc.UseOrganicFertilizer,
		UseHerbicide:         &sc.UseHerbicide,
		UsePesticide:         &sc.UsePesticide,
		UseCoverCrop:         &sc.UseCoverCrop,
		IntroduceBirds:       &sc.IntroduceBirds,
		IntroduceBats:        &sc.IntroduceBats,
		HerbicideStopYear:    sc.HerbicideStopYear,
		PesticideStopYear:    sc.PesticideStopYear,
	}
}

func deref(b *bool) bool {
	return b != nil && *b
}

// Parse decodes a scenario file. Unknown keys are rejected so that a typo in
// a flag name is reported rather than read as an absent key.
func Parse(data []byte) ([]ecosystem.Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario file is empty")
		}
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, errors.New("scenario file lists no scenarios")
	}

	seen := make(map[string]bool, len(f.Scenarios))
	out := make([]ecosystem.Scenario, 0, len(f.Scenarios))
	for i, rec := range f.Scenarios {
		sc, err := rec.Resolve()
		if err != nil {
			return nil, fmt.Errorf("scenario #%d: %w", i+1, err)
		}
		if seen[sc.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, sc.ID)
		}
		seen[sc.ID] = true
		out = append(out, sc)
	}
	return out, nil
}

// ParseRecord decodes a single scenario given as a JSON or YAML object.
// A body starting with '{' is strict JSON, so a quoted "false" is a type
// error rather than a boolean.
func ParseRecord(data []byte) (ecosystem.Scenario, error) {
	body := bytes.TrimSpace(data)
	if len(body) == 0 {
		return ecosystem.Scenario{}, errors.New("scenario is empty")
	}

	var rec Record
	if body[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rec); err != nil {
			return ecosystem.Scenario{}, fmt.Errorf("decode scenario: %w", err)
		}
		if dec.More() {
			return ecosystem.Scenario{}, errors.New("decode scenario: trailing data after object")
		}
		return rec.Resolve()
	}

	dec := yaml.NewDecoder(bytes.NewReader(body))
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil {
		return ecosystem.Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	return rec.Resolve()
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) ([]ecosystem.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	scs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scs, nil
}

// Encode writes scenarios in the file layout Parse accepts.
func Encode(w io.Writer, scs []ecosystem.Scenario) error {
	f := File{Scenarios: make([]Record, len(scs))}
	for i, sc := range scs {
		f.Scenarios[i] = FromScenario(sc)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode scenarios: %w", err)
	}
	return enc.Close()
}

// Select returns the scenarios with the given ids, in the order requested.
// An empty id list selects everything.
func Select(all []ecosystem.Scenario, ids []string) ([]ecosystem.Scenario, error) {
	if len(ids) == 0 {
		return all, nil
	}
	index := make(map[string]ecosystem.Scenario, len(all))
	for _, sc := range all {
		index[sc.ID] = sc
	}
	out := make([]ecosystem.Scenario, 0, len(ids))
	for _, id := range ids {
		sc, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
		}
		out = append(out, sc)
	}
	return out, nil
}
