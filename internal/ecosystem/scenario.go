package ecosystem

import (
	"errors"
	"fmt"
)

// ErrInvalidStopYear is returned for a negative chemical stop year.
var ErrInvalidStopYear = errors.New("stop year must be non-negative")

// Scenario is the farming policy applied for the whole of a run.
type Scenario struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	UseFertilizer        bool `json:"use_fertilizer"`
	UseOrganicFertilizer bool `json:"use_organic_fertilizer"`
	UseHerbicide         bool `json:"use_herbicide"`
	UsePesticide         bool `json:"use_pesticide"`
	UseCoverCrop         bool `json:"use_cover_crop"`
	IntroduceBirds       bool `json:"introduce_birds"`
	IntroduceBats        bool `json:"introduce_bats"`

	// Year from which the chemical is no longer applied. Nil = never stops.
	HerbicideStopYear *int `json:"herbicide_stop_year"`
	PesticideStopYear *int `json:"pesticide_stop_year"`
}

// Validate checks values that cannot be caught by the type system.
func (sc Scenario) Validate() error {
	if sc.HerbicideStopYear != nil && *sc.HerbicideStopYear < 0 {
		return fmt.Errorf("herbicide_stop_year %d: %w", *sc.HerbicideStopYear, ErrInvalidStopYear)
	}
	if sc.PesticideStopYear != nil && *sc.PesticideStopYear < 0 {
		return fmt.Errorf("pesticide_stop_year %d: %w", *sc.PesticideStopYear, ErrInvalidStopYear)
	}
	return nil
}

// StopYear returns a pointer for use as a scenario stop year.
func StopYear(year int) *int {
	return &year
}
