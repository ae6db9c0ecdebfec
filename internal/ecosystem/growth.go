package ecosystem

import "math"

// Rates holds the per-season change of each biological population.
type Rates struct {
	Crop float64 `json:"crop"`
	Weed float64 `json:"weed"`
	Pest float64 `json:"pest"`
	Bird float64 `json:"bird"`
	Bat  float64 `json:"bat"`
}

func logistic(r, n, k float64) float64 {
	return r * n * (1 - n/k)
}

// updatePopulations advances the biological populations by one season:
// rates come from the post-operations state, birds then eat weed seed,
// rates are applied, and finally managed predators recover.
func (sim *Simulation) updatePopulations(season Season) {
	rates := sim.growthRates(season)
	sim.birdSeedPredation()
	sim.applyRates(rates)
	sim.recoverPredators(season)
}

// growthRates computes season-scaled population changes from the current state.
func (sim *Simulation) growthRates(season Season) Rates {
	st := sim.state
	r := Rates{
		Crop: sim.cropGrowth(st),
		Weed: sim.weedGrowth(st),
		Pest: sim.pestGrowth(st),
	}
	if st.Bird > 0 {
		r.Bird = sim.birdGrowth(st)
	}
	if st.Bat > 0 {
		r.Bat = sim.batGrowth(st)
	}

	f := sim.params.SeasonFactor(season)
	r.Crop *= f
	r.Weed *= f
	r.Pest *= f
	r.Bird *= f
	r.Bat *= f
	return r
}

func (sim *Simulation) applyRates(r Rates) {
	st := &sim.state
	st.Set(FieldCrop, st.Crop+r.Crop)
	st.Set(FieldWeed, st.Weed+r.Weed)
	st.Set(FieldPest, st.Pest+r.Pest)
	st.Set(FieldBird, st.Bird+r.Bird)
	st.Set(FieldBat, st.Bat+r.Bat)
}

// cropGrowth is logistic growth damped by pests and weeds, scaled by soil
// health, plus a fertilizer bonus from the nutrient pool.
func (sim *Simulation) cropGrowth(st State) float64 {
	p := &sim.params
	base := logistic(p.Crop.R, st.Crop, p.Crop.K)

	pestEffect := math.Min(0.6, math.Abs(p.PestOnCrop)*st.Pest*0.02)
	weedEffect := math.Min(0.5, math.Abs(p.CropWeedComp)*st.Weed*0.03)
	net := math.Max(0.05, base*(1-pestEffect-weedEffect))

	soilFactor := 0.5 + (st.SoilHealth/100)*0.5

	var bonus float64
	if sim.scenario.UseFertilizer {
		effect := p.ChemicalFertilizerEffect
		if sim.scenario.UseOrganicFertilizer {
			effect = p.OrganicFertilizerEffect
		}
		bonus = effect * st.SoilNutrient * 0.01
	}

	return net*soilFactor + bonus
}

// weedGrowth is logistic growth suppressed by crop shading and herbicide residue.
func (sim *Simulation) weedGrowth(st State) float64 {
	base := logistic(sim.params.Weed.R, st.Weed, sim.params.Weed.K)
	cropCompetition := math.Min(0.5, 0.05+st.Crop*0.001)
	return base*(1-cropCompetition) - 0.05*st.HerbicideResidue
}

// pestGrowth is logistic growth reduced by predation and pesticide residue.
// Predators hunt more efficiently as the farm matures.
func (sim *Simulation) pestGrowth(st State) float64 {
	base := logistic(sim.params.Pest.R, st.Pest, sim.params.Pest.K)

	year := float64(sim.year)
	birdEfficiency := math.Min(0.6, 0.3+0.02*year)
	batEfficiency := math.Min(0.5, 0.25+0.015*year)
	predation := birdEfficiency*st.Bird*0.05 + batEfficiency*st.Bat*0.04

	return base*(1-predation) - 0.01*st.PesticideResidue
}

func (sim *Simulation) birdGrowth(st State) float64 {
	food := math.Min(0.2, st.Pest/50)
	return logistic(sim.params.Bird.R, st.Bird, sim.params.Bird.K) * (1 + 0.5*food)
}

func (sim *Simulation) batGrowth(st State) float64 {
	food := math.Min(0.2, st.Pest/50)
	return logistic(sim.params.Bat.R, st.Bat, sim.params.Bat.K) * (1 + 0.4*food)
}

// birdSeedPredation removes weed seed eaten by birds, up to 10% per season.
// It reads the bird density the rates were computed from.
func (sim *Simulation) birdSeedPredation() {
	st := &sim.state
	if st.Bird <= 0 {
		return
	}
	st.Set(FieldWeed, st.Weed*(1-math.Min(0.1, st.Bird*0.005)))
}
