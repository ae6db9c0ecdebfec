package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/persistence"
)

// Scenarios prints the policy flags of each scenario.
func Scenarios(w io.Writer, scs []ecosystem.Scenario) {
	t := newTable("ID", "Name", "Fert.", "Organic", "Herb.", "Pest.", "Birds", "Bats", "Herb. Stop", "Pest. Stop")
	for _, sc := range scs {
		t.Row(
			sc.ID,
			sc.Name,
			yesNo(sc.UseFertilizer),
			yesNo(sc.UseOrganicFertilizer),
			yesNo(sc.UseHerbicide),
			yesNo(sc.UsePesticide),
			yesNo(sc.IntroduceBirds),
			yesNo(sc.IntroduceBats),
			stopYear(sc.HerbicideStopYear),
			stopYear(sc.PesticideStopYear),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// Runs prints stored runs with creation times relative to now.
func Runs(w io.Writer, runs []persistence.Run, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return
	}
	t := newTable("Run", "Scenario", "Years", "Overall", "Created")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.ScenarioName,
			strconv.Itoa(r.Years),
			f1(r.Overall),
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func stopYear(y *int) string {
	if y == nil {
		return "never"
	}
	return strconv.Itoa(*y)
}
