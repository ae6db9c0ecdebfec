package ecosystem

import (
	"encoding/json"
	"slices"
)

// Snapshot is the state recorded at the end of one season step.
type Snapshot struct {
	Year   int    `json:"year"`
	Season Season `json:"season"`
	State
}

// History is the ordered record of season snapshots of a run.
// Values returned by Simulation.History are copies and never change.
type History struct {
	snapshots []Snapshot
}

// NewHistory builds a History from previously recorded snapshots.
func NewHistory(snaps []Snapshot) History {
	return History{snapshots: slices.Clone(snaps)}
}

// Len returns the number of recorded season steps.
func (h History) Len() int {
	return len(h.snapshots)
}

// At returns the i-th snapshot.
func (h History) At(i int) Snapshot {
	return h.snapshots[i]
}

// Last returns the most recent snapshot.
func (h History) Last() (Snapshot, bool) {
	if len(h.snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.snapshots[len(h.snapshots)-1], true
}

// Snapshots returns a copy of all recorded snapshots.
func (h History) Snapshots() []Snapshot {
	return slices.Clone(h.snapshots)
}

// Series returns the time series of one field, one value per season step.
func (h History) Series(f Field) []float64 {
	out := make([]float64, len(h.snapshots))
	for i := range h.snapshots {
		out[i] = h.snapshots[i].Get(f)
	}
	return out
}

// Years returns the year index of each season step.
func (h History) Years() []int {
	out := make([]int, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = s.Year
	}
	return out
}

// SeasonLabels returns the season label of each season step.
func (h History) SeasonLabels() []string {
	out := make([]string, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = s.Season.String()
	}
	return out
}

// Annual keeps the last season step of every complete year.
func (h History) Annual() History {
	n := len(h.snapshots) / len(Seasons)
	out := make([]Snapshot, n)
	for i := range n {
		out[i] = h.snapshots[i*len(Seasons)+len(Seasons)-1]
	}
	return History{snapshots: out}
}

func (h *History) append(s Snapshot) {
	h.snapshots = append(h.snapshots, s)
}

// MarshalJSON encodes the history as field-indexed series:
// {"crop": [...], ..., "year": [...], "season": [...]}.
func (h History) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(Fields)+2)
	for _, f := range Fields {
		out[f.String()] = h.Series(f)
	}
	out["year"] = h.Years()
	out["season"] = h.SeasonLabels()
	return json.Marshal(out)
}
