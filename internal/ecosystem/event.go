package ecosystem

// Event categories.
const (
	EventFertilizer     = "fertilizer"
	EventChemical       = "chemical"
	EventOrganicWeeding = "organic_weeding"
	EventIntroduction   = "introduction"
)

// Event is a farming operation that fired during a season step.
type Event struct {
	Year        int    `json:"year"`
	Season      Season `json:"season"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (sim *Simulation) emit(season Season, category, desc string) {
	sim.events = append(sim.events, Event{
		Year:        sim.year,
		Season:      season,
		Category:    category,
		Description: desc,
	})
}
