// Package ecosystem simulates a farm ecosystem in quarterly steps.
//
// Each season runs farming operations, population growth, chemical decay,
// and then records a snapshot, in that order. Runs are deterministic and
// share nothing but the read-only parameter table.
package ecosystem

import (
	"fmt"
	"log/slog"
	"slices"
)

// Simulation is a single scenario run. It is not safe for concurrent use;
// separate runs are fully independent.
type Simulation struct {
	scenario Scenario
	params   Params
	state    State
	year     int // Completed years; increments after winter
	history  History
	events   []Event
}

// New creates a simulation of the scenario using DefaultParams.
func New(sc Scenario) (*Simulation, error) {
	return NewWithParams(sc, DefaultParams)
}

// NewWithParams creates a simulation of the scenario with a custom table.
func NewWithParams(sc Scenario, p Params) (*Simulation, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.ID, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return &Simulation{
		scenario: sc,
		params:   p,
		state:    InitialState(),
	}, nil
}

// StepYear advances the simulation by one year of four seasons and
// records four snapshots.
func (sim *Simulation) StepYear() {
	for _, season := range Seasons {
		sim.stepSeason(season)
	}

	slog.Debug("year simulated",
		"scenario", sim.scenario.ID,
		"year", sim.year,
		"crop", sim.state.Crop,
		"pest", sim.state.Pest,
		"bird", sim.state.Bird,
		"bat", sim.state.Bat,
	)
	sim.year++
}

// Run steps the given number of years.
func (sim *Simulation) Run(years int) {
	for range years {
		sim.StepYear()
	}
}

func (sim *Simulation) stepSeason(season Season) {
	sim.runOperations(season)
	sim.updatePopulations(season)
	sim.decayChemicals()
	sim.history.append(Snapshot{
		Year:   sim.year,
		Season: season,
		State:  sim.state,
	})
}

// History returns the snapshots recorded so far.
func (sim *Simulation) History() History {
	return NewHistory(sim.history.snapshots)
}

// Events returns the farming operations that have fired so far.
func (sim *Simulation) Events() []Event {
	return slices.Clone(sim.events)
}

// State returns the current ecosystem state.
func (sim *Simulation) State() State {
	return sim.state
}

// Year returns the number of completed years.
func (sim *Simulation) Year() int {
	return sim.year
}

// Scenario returns the scenario being simulated.
func (sim *Simulation) Scenario() Scenario {
	return sim.scenario
}
