package simulation

import "github.com/nvandessel/contagion/internal/models"

// Summary condenses a stats history into the figures a driver reports.
type Summary struct {
	// Days is the last simulated day.
	Days int `json:"days"`

	PeakInfectious int `json:"peak_infectious"`
	PeakDay        int `json:"peak_day"`

	// PeakNewCases is the largest single-day new case count after day 0.
	PeakNewCases    int `json:"peak_new_cases"`
	PeakNewCasesDay int `json:"peak_new_cases_day"`

	TotalCases int `json:"total_cases"`

	// AttackRate is TotalCases over the population, 0.0 to 1.0.
	AttackRate float64 `json:"attack_rate"`

	// NeverInfected is the susceptible count at the end of the run.
	NeverInfected int `json:"never_infected"`

	// BurnedOut reports whether nobody is exposed or infectious at the end.
	BurnedOut bool `json:"burned_out"`
}

// Summarize computes a Summary. The peak day is the first day the peak
// is reached.
func Summarize(history []models.Stats, population int) Summary {
	if len(history) == 0 {
		return Summary{}
	}

	var s Summary
	for _, st := range history {
		if st.Infectious > s.PeakInfectious {
			s.PeakInfectious = st.Infectious
			s.PeakDay = st.Day
		}
		if st.Day > 0 && st.NewCases > s.PeakNewCases {
			s.PeakNewCases = st.NewCases
			s.PeakNewCasesDay = st.Day
		}
	}

	last := history[len(history)-1]
	s.Days = last.Day
	s.TotalCases = last.TotalCases
	s.NeverInfected = last.Susceptible
	s.BurnedOut = !last.Active()
	if population > 0 {
		s.AttackRate = float64(last.TotalCases) / float64(population)
	}
	return s
}
