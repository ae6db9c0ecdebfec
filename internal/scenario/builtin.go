package scenario

import "github.com/talgya/agro-ecosim/internal/ecosystem"

// Builtin returns the six reference scenarios, from conventional farming to
// a fully organic system.
func Builtin() []ecosystem.Scenario {
	stop := ecosystem.StopYear
	return []ecosystem.Scenario{
		// Baseline.
		{
			ID:            "scenario1",
			Name:          "Conventional Agriculture (High Chemical Input)",
			UseFertilizer: true,
			UseHerbicide:  true,
			UsePesticide:  true,
		},

		// Single interventions.
		{
			ID:                "scenario2",
			Name:              "Chemical Removal Only (No Natural Predators)",
			UseFertilizer:     true,
			UseHerbicide:      true,
			UsePesticide:      true,
			HerbicideStopYear: stop(3),
			PesticideStopYear: stop(2),
		},
		{
			ID:                "scenario3",
			Name:              "Chemical Removal + Bat Introduction",
			UseFertilizer:     true,
			UseHerbicide:      true,
			UsePesticide:      true,
			UseCoverCrop:      true,
			IntroduceBats:     true,
			HerbicideStopYear: stop(3),
			PesticideStopYear: stop(2),
		},
		{
			ID:                "scenario4",
			Name:              "Chemical Removal + Bird Introduction",
			UseFertilizer:     true,
			UseHerbicide:      true,
			UsePesticide:      true,
			UseCoverCrop:      true,
			IntroduceBirds:    true,
			HerbicideStopYear: stop(3),
			PesticideStopYear: stop(2),
		},

		// Complete organic systems.
		{
			ID:                   "scenario5",
			Name:                 "Gradual Organic Transition",
			UseFertilizer:        true,
			UseOrganicFertilizer: true,
			UseHerbicide:         true,
			UsePesticide:         true,
			UseCoverCrop:         true,
			IntroduceBirds:       true,
			IntroduceBats:        true,
			HerbicideStopYear:    stop(4),
			PesticideStopYear:    stop(2),
		},
		{
			ID:                   "scenario6",
			Name:                 "Radical Organic (From Beginning)",
			UseOrganicFertilizer: true,
			UseCoverCrop:         true,
			IntroduceBirds:       true,
			IntroduceBats:        true,
		},
	}
}

// Lookup finds a built-in scenario by id.
func Lookup(id string) (ecosystem.Scenario, error) {
	scs, err := Select(Builtin(), []string{id})
	if err != nil {
		return ecosystem.Scenario{}, err
	}
	return scs[0], nil
}
