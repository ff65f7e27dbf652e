package models

// Stats is the aggregate population state after one simulated day.
// Day 0 describes the freshly generated network.
type Stats struct {
	Day         int `json:"day" yaml:"day"`
	Susceptible int `json:"susceptible" yaml:"susceptible"`
	Exposed     int `json:"exposed" yaml:"exposed"`
	Infectious  int `json:"infectious" yaml:"infectious"`
	Recovered   int `json:"recovered" yaml:"recovered"`

	// NewCases counts susceptible->exposed transitions during the day.
	// On day 0 it is the number of individuals seeded as infectious.
	NewCases int `json:"new_cases" yaml:"new_cases"`

	// TotalCases is everyone who has left the susceptible pool.
	TotalCases int `json:"total_cases" yaml:"total_cases"`
}

// Total returns the population size the counts add up to.
func (s Stats) Total() int {
	return s.Susceptible + s.Exposed + s.Infectious + s.Recovered
}

// Active reports whether anyone is still exposed or infectious.
func (s Stats) Active() bool {
	return s.Exposed > 0 || s.Infectious > 0
}

// Count returns the count for a single status.
func (s Stats) Count(status Status) int {
	switch status {
	case StatusSusceptible:
		return s.Susceptible
	case StatusExposed:
		return s.Exposed
	case StatusInfectious:
		return s.Infectious
	case StatusRecovered:
		return s.Recovered
	}
	return 0
}

// CountStats builds the Stats record for a network snapshot.
func CountStats(n *Network, day, newCases int) Stats {
	s := Stats{Day: day, NewCases: newCases}
	for _, ind := range n.Individuals {
		switch ind.Status {
		case StatusSusceptible:
			s.Susceptible++
		case StatusExposed:
			s.Exposed++
		case StatusInfectious:
			s.Infectious++
		case StatusRecovered:
			s.Recovered++
		}
	}
	s.TotalCases = len(n.Individuals) - s.Susceptible
	return s
}
