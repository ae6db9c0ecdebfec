// Package evaluation scores a finished simulation run along ecological,
// economic and sustainability dimensions.
package evaluation

import (
	"errors"
	"math"
	"strings"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
)

// ErrInsufficientHistory is returned when a run has no complete year.
var ErrInsufficientHistory = errors.New("history holds no complete year")

// Weights combine the three dimensions into the overall score.
type Weights struct {
	Ecological     float64 `json:"ecological"`
	Economic       float64 `json:"economic"`
	Sustainability float64 `json:"sustainability"`
}

// CostFactors are the annual cost of each management practice.
type CostFactors struct {
	Herbicide float64 `json:"herbicide"`
	Pesticide float64 `json:"pesticide"`
	Bird      float64 `json:"bird"`
	Bat       float64 `json:"bat"`
	Labor     float64 `json:"labor"` // Hand weeding when no herbicide is used
}

// Thresholds drive the text summary.
type Thresholds struct {
	HighStability    float64 `json:"high_stability"`
	LowStability     float64 `json:"low_stability"`
	HighBiodiversity float64 `json:"high_biodiversity"`
	LowBiodiversity  float64 `json:"low_biodiversity"`
	SoilTrend        float64 `json:"soil_trend"` // Magnitude of a notable soil trend
}

// Scoring is the full scoring configuration.
type Scoring struct {
	Weights    Weights     `json:"weights"`
	Costs      CostFactors `json:"costs"`
	Thresholds Thresholds  `json:"thresholds"`
}

// DefaultScoring is the standard scoring configuration.
var DefaultScoring = Scoring{
	Weights: Weights{Ecological: 0.4, Economic: 0.3, Sustainability: 0.3},
	Costs:   CostFactors{Herbicide: 15, Pesticide: 20, Bird: 5, Bat: 3, Labor: 10},
	Thresholds: Thresholds{
		HighStability:    80,
		LowStability:     60,
		HighBiodiversity: 70,
		LowBiodiversity:  40,
		SoilTrend:        0.5,
	},
}

// Ecological scores, each on a 0-100 scale.
type Ecological struct {
	ProductivityStability float64 `json:"productivity_stability"`
	Biodiversity          float64 `json:"biodiversity"`
	PestControl           float64 `json:"pest_control"`
	WeedManagement        float64 `json:"weed_management"`
	SoilHealth            float64 `json:"soil_health"`
	ChemicalFree          float64 `json:"chemical_free"`
}

func (e Ecological) values() []float64 {
	return []float64{e.ProductivityStability, e.Biodiversity, e.PestControl, e.WeedManagement, e.SoilHealth, e.ChemicalFree}
}

// Economic scores.
type Economic struct {
	Yield          float64 `json:"yield"`
	CostEfficiency float64 `json:"cost_efficiency"`
}

// Sustainability scores.
type Sustainability struct {
	SoilTrend            float64 `json:"soil_trend"`
	Resilience           float64 `json:"resilience"`
	LongTermProductivity float64 `json:"long_term_productivity"`
	Equilibrium          float64 `json:"equilibrium"`
}

func (s Sustainability) values() []float64 {
	return []float64{s.SoilTrend, s.Resilience, s.LongTermProductivity, s.Equilibrium}
}

// Result is the evaluation of one run.
type Result struct {
	ScenarioID     string         `json:"scenario_id"`
	ScenarioName   string         `json:"scenario_name"`
	Ecological     Ecological     `json:"ecological"`
	Economic       Economic       `json:"economic"`
	Sustainability Sustainability `json:"sustainability"`
	Overall        float64        `json:"overall_score"`
	Summary        string         `json:"summary"`
}

// annual holds one value per year for each field, taken from the last
// season of the year.
type annual map[ecosystem.Field][]float64

func annualData(h ecosystem.History) annual {
	yearly := h.Annual()
	out := make(annual, len(ecosystem.Fields))
	for _, f := range ecosystem.Fields {
		out[f] = yearly.Series(f)
	}
	return out
}

// Evaluate scores a run with DefaultScoring.
func Evaluate(h ecosystem.History, sc ecosystem.Scenario) (Result, error) {
	return DefaultScoring.Evaluate(h, sc)
}

// Evaluate scores a run of the given scenario.
func (cfg Scoring) Evaluate(h ecosystem.History, sc ecosystem.Scenario) (Result, error) {
	data := annualData(h)
	if len(data[ecosystem.FieldCrop]) == 0 {
		return Result{}, ErrInsufficientHistory
	}

	eco := ecological(data)
	econ := cfg.economic(data, sc)
	sust := sustainability(data)

	overall := (mean(eco.values())/100*cfg.Weights.Ecological +
		econ.CostEfficiency/100*cfg.Weights.Economic +
		mean(sust.values())/100*cfg.Weights.Sustainability) * 100

	return Result{
		ScenarioID:     sc.ID,
		ScenarioName:   sc.Name,
		Ecological:     eco,
		Economic:       econ,
		Sustainability: sust,
		Overall:        math.Min(100, overall),
		Summary:        cfg.summary(eco, sust),
	}, nil
}

func ecological(d annual) Ecological {
	crop10 := last(d[ecosystem.FieldCrop], 10)

	var stability float64
	if m := mean(crop10); m != 0 {
		stability = 100 - stddev(crop10)/m*100
	}

	biodiversity := (mean(last(d[ecosystem.FieldBird], 5))*2 + mean(last(d[ecosystem.FieldBat], 5))*3) / 50 * 100
	residue := lastValue(d[ecosystem.FieldHerbicideResidue]) + lastValue(d[ecosystem.FieldPesticideResidue])

	return Ecological{
		ProductivityStability: stability,
		Biodiversity:          math.Min(100, biodiversity),
		PestControl:           math.Max(0, 100-mean(last(d[ecosystem.FieldPest], 5))/80*100),
		WeedManagement:        math.Max(0, 100-mean(last(d[ecosystem.FieldWeed], 5))/100*100),
		SoilHealth:            lastValue(d[ecosystem.FieldSoilHealth]),
		ChemicalFree:          100 - math.Min(100, residue/50*100),
	}
}

func (cfg Scoring) economic(d annual, sc ecosystem.Scenario) Economic {
	avgYield := mean(last(d[ecosystem.FieldCrop], 10))

	var costs float64
	if sc.UseHerbicide {
		costs += cfg.Costs.Herbicide
	}
	if sc.UsePesticide {
		costs += cfg.Costs.Pesticide
	}
	if sc.IntroduceBirds {
		costs += cfg.Costs.Bird
	}
	if sc.IntroduceBats {
		costs += cfg.Costs.Bat
	}
	if !sc.UseHerbicide && lastValue(d[ecosystem.FieldWeed]) > 20 {
		costs += cfg.Costs.Labor
	}

	efficiency := avgYield * 15
	if costs > 0 {
		efficiency = avgYield / costs * 10
	}

	return Economic{
		Yield:          avgYield,
		CostEfficiency: math.Min(100, efficiency),
	}
}

func sustainability(d annual) Sustainability {
	crop := d[ecosystem.FieldCrop]
	return Sustainability{
		SoilTrend:            slope(every(d[ecosystem.FieldSoilHealth], 4)) * 10,
		Resilience:           resilience(last(crop, 5)),
		LongTermProductivity: productivityChange(crop),
		Equilibrium:          100 - stddev(last(crop, 5))/50*100,
	}
}

// resilience maps the lag-1 autocorrelation of a series onto 0-100.
func resilience(xs []float64) float64 {
	if len(xs) < 3 {
		return 50
	}
	corr := correlation(xs[:len(xs)-1], xs[1:])
	if math.IsNaN(corr) {
		return 50
	}
	return (corr + 1) / 2 * 100
}

func productivityChange(crop []float64) float64 {
	early := mean(first(crop, 10))
	if early <= 0 {
		return 0
	}
	return mean(last(crop, 10)) / early * 100
}

func (cfg Scoring) summary(eco Ecological, sust Sustainability) string {
	th := cfg.Thresholds
	var parts []string

	switch {
	case eco.ProductivityStability > th.HighStability:
		parts = append(parts, "Highly stable yield")
	case eco.ProductivityStability < th.LowStability:
		parts = append(parts, "Significant yield fluctuation")
	}

	switch {
	case eco.Biodiversity > th.HighBiodiversity:
		parts = append(parts, "Good biodiversity")
	case eco.Biodiversity < th.LowBiodiversity:
		parts = append(parts, "Insufficient biodiversity")
	}

	switch {
	case sust.SoilTrend > th.SoilTrend:
		parts = append(parts, "Soil health improving")
	case sust.SoilTrend < -th.SoilTrend:
		parts = append(parts, "Soil degradation")
	}

	if len(parts) == 0 {
		return "System status average"
	}
	return strings.Join(parts, "; ")
}

func lastValue(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}
