package ecosystem

// decayChemicals breaks down residues and draws down the nutrient pool.
func (sim *Simulation) decayChemicals() {
	st := &sim.state
	st.Set(FieldPesticideResidue, st.PesticideResidue*(1-sim.params.PesticideDecay))
	st.Set(FieldHerbicideResidue, st.HerbicideResidue*(1-sim.params.HerbicideDecay))
	st.Set(FieldSoilNutrient, st.SoilNutrient*sim.params.NutrientRetention)
}
