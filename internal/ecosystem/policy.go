package ecosystem

import (
	"fmt"
	"math"
)

// Farming operation constants.
const (
	replantLevel = 80.0 // Crop biomass right after spring planting

	organicNutrientGain  = 15.0
	organicHealthGain    = 2.0
	chemicalNutrientGain = 30.0
	chemicalHealthLoss   = 1.0

	pestThreshold = 8.0  // Pesticide is only sprayed above this pest density
	weedThreshold = 15.0 // Herbicide is only sprayed above this weed biomass
	pesticideDose = 50.0
	herbicideDose = 40.0

	mechanicalWeedThreshold = 20.0
	coverCropWeedFactor     = 0.8

	birdSeedPopulation = 2.0
	batSeedPopulation  = 1.5
)

// chemical identifies a sprayed intervention.
type chemical uint8

const (
	pesticide chemical = iota
	herbicide
)

func (c chemical) String() string {
	if c == pesticide {
		return "pesticide"
	}
	return "herbicide"
}

// runOperations executes the discretionary farming operations for a season.
// Autumn and winter have none.
func (sim *Simulation) runOperations(season Season) {
	switch season {
	case SeasonSpring:
		sim.springOperations()
	case SeasonSummer:
		sim.summerOperations()
	}
}

// springOperations replants the crop and fertilizes.
func (sim *Simulation) springOperations() {
	sim.state.Crop = replantLevel

	if sim.scenario.UseFertilizer {
		sim.applyFertilizer()
	}
}

func (sim *Simulation) applyFertilizer() {
	st := &sim.state
	if sim.scenario.UseOrganicFertilizer {
		st.SoilNutrient += organicNutrientGain
		st.SoilHealth = math.Min(100, st.SoilHealth+organicHealthGain)
		sim.emit(SeasonSpring, EventFertilizer, "organic fertilizer applied")
		return
	}
	st.SoilNutrient += chemicalNutrientGain
	st.SoilHealth = math.Max(0, st.SoilHealth-chemicalHealthLoss)
	sim.emit(SeasonSpring, EventFertilizer, "chemical fertilizer applied")
}

// summerOperations sprays chemicals where eligible. Organic weed control
// replaces herbicide whenever herbicide is not sprayed, for any reason.
func (sim *Simulation) summerOperations() {
	if sim.shouldApply(pesticide) {
		sim.applyChemical(pesticide)
	}
	if sim.shouldApply(herbicide) {
		sim.applyChemical(herbicide)
	} else {
		sim.organicWeedControl()
	}
}

// shouldApply reports whether a chemical is enabled, its target is above
// threshold, and its stop year has not been reached.
func (sim *Simulation) shouldApply(c chemical) bool {
	var enabled bool
	var level, threshold float64
	var stopYear *int

	switch c {
	case pesticide:
		enabled = sim.scenario.UsePesticide
		level, threshold = sim.state.Pest, pestThreshold
		stopYear = sim.scenario.PesticideStopYear
	case herbicide:
		enabled = sim.scenario.UseHerbicide
		level, threshold = sim.state.Weed, weedThreshold
		stopYear = sim.scenario.HerbicideStopYear
	}

	return enabled && level > threshold && (stopYear == nil || sim.year < *stopYear)
}

func (sim *Simulation) applyChemical(c chemical) {
	st := &sim.state
	switch c {
	case pesticide:
		st.PesticideResidue = pesticideDose
		st.Pest *= 1 - sim.params.PesticideEffect

		// Drift and poisoning hit both insectivores.
		survival := 1 - sim.params.PredatorPesticideMortality
		st.Bird *= survival
		st.Bat *= survival
	case herbicide:
		st.HerbicideResidue = herbicideDose
		st.Weed *= 1 - sim.params.HerbicideEffect
	}
	sim.emit(SeasonSummer, EventChemical, fmt.Sprintf("%s applied", c))
}

// organicWeedControl runs mechanical weeding, cover-crop competition and
// crop-density suppression, in that order.
func (sim *Simulation) organicWeedControl() {
	st := &sim.state

	// Weeding crews get better over the first eight years.
	if st.Weed > mechanicalWeedThreshold {
		efficiency := math.Min(0.5, 0.25+0.03*math.Min(8, float64(sim.year)))
		st.Weed *= 1 - efficiency
	}

	if sim.scenario.UseCoverCrop {
		st.Weed *= coverCropWeedFactor
	}

	st.Set(FieldWeed, st.Weed*(1-math.Min(0.3, st.Crop*0.001)))

	sim.emit(SeasonSummer, EventOrganicWeeding, "organic weed control")
}

// recoverPredators introduces or grows birds and bats for scenarios that
// manage them. It runs every season.
func (sim *Simulation) recoverPredators(season Season) {
	if sim.scenario.IntroduceBirds {
		sim.recoverPredator(season, FieldBird, sim.params.Bird, birdSeedPopulation, "birds")
	}
	if sim.scenario.IntroduceBats {
		sim.recoverPredator(season, FieldBat, sim.params.Bat, batSeedPopulation, "bats")
	}
}

func (sim *Simulation) recoverPredator(season Season, f Field, sp Species, seed float64, name string) {
	st := &sim.state
	pop := st.Get(f)
	if pop == 0 {
		st.Set(f, seed)
		sim.emit(season, EventIntroduction, fmt.Sprintf("%s introduced", name))
		return
	}

	// Abundant prey speeds recovery. Half the annual rate per quarter.
	pestBonus := math.Min(0.3, st.Pest/100)
	growth := logistic(sp.R, pop, sp.K) * (1 + pestBonus)
	st.Set(f, pop+growth*0.5)
}
