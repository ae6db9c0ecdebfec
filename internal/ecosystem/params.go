package ecosystem

import "fmt"

// Species holds logistic growth parameters for one population.
type Species struct {
	R float64 `json:"r"` // Intrinsic growth rate
	K float64 `json:"k"` // Carrying capacity
}

// Params is the constant parameter table shared by every run.
// A Simulation copies it on construction, so one table can back any number
// of concurrent runs.
type Params struct {
	Crop Species `json:"crop"`
	Weed Species `json:"weed"`
	Pest Species `json:"pest"`
	Bird Species `json:"bird"`
	Bat  Species `json:"bat"`

	// Interaction coefficients.
	PestOnCrop   float64 `json:"pest_on_crop"`
	CropWeedComp float64 `json:"crop_weed_comp"`

	// Chemicals and fertilizer.
	HerbicideDecay             float64 `json:"herbicide_decay"`
	PesticideDecay             float64 `json:"pesticide_decay"`
	OrganicFertilizerEffect    float64 `json:"organic_fertilizer_effect"`
	ChemicalFertilizerEffect   float64 `json:"chemical_fertilizer_effect"`
	HerbicideEffect            float64 `json:"herbicide_effect"`
	PesticideEffect            float64 `json:"pesticide_effect"`
	PredatorPesticideMortality float64 `json:"predator_pesticide_mortality"`
	NutrientRetention          float64 `json:"nutrient_retention"` // Fraction of soil nutrient left after each season

	// Growth multiplier per season, indexed by Season.
	SeasonFactors [4]float64 `json:"season_factors"`
}

// DefaultParams is the calibrated parameter table.
var DefaultParams = Params{
	Crop: Species{R: 0.8, K: 300},
	Weed: Species{R: 0.6, K: 100},
	Pest: Species{R: 0.5, K: 80},
	Bird: Species{R: 0.1, K: 20},
	Bat:  Species{R: 0.08, K: 15},

	PestOnCrop:   -0.5,
	CropWeedComp: -2.0,

	HerbicideDecay:             0.3,
	PesticideDecay:             0.25,
	OrganicFertilizerEffect:    0.2,
	ChemicalFertilizerEffect:   0.3,
	HerbicideEffect:            0.7,
	PesticideEffect:            0.6,
	PredatorPesticideMortality: 0.3,
	NutrientRetention:          0.9,

	SeasonFactors: [4]float64{
		SeasonSpring: 0.8,
		SeasonSummer: 1.2,
		SeasonAutumn: 0.9,
		SeasonWinter: 0.3,
	},
}

// SeasonFactor returns the growth multiplier for a season.
func (p *Params) SeasonFactor(s Season) float64 {
	if int(s) >= len(p.SeasonFactors) {
		return 0
	}
	return p.SeasonFactors[s]
}

// Validate rejects tables that would divide by zero in logistic growth.
func (p *Params) Validate() error {
	species := []struct {
		name string
		sp   Species
	}{
		{"crop", p.Crop}, {"weed", p.Weed}, {"pest", p.Pest}, {"bird", p.Bird}, {"bat", p.Bat},
	}
	for _, s := range species {
		if s.sp.K <= 0 {
			return fmt.Errorf("%s carrying capacity must be positive, got %g", s.name, s.sp.K)
		}
	}
	return nil
}
