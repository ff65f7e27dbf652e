package models

// Status is an individual's position in the SEIR progression
type Status string

const (
	StatusSusceptible Status = "SUSCEPTIBLE" // Never infected
	StatusExposed     Status = "EXPOSED"     // Infected, not yet contagious
	StatusInfectious  Status = "INFECTIOUS"  // Contagious to neighbors
	StatusRecovered   Status = "RECOVERED"   // Immune for the rest of the run
)

// AllStatuses lists the statuses in progression order.
var AllStatuses = []Status{StatusSusceptible, StatusExposed, StatusInfectious, StatusRecovered}

// Valid reports whether s is one of the four SEIR statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSusceptible, StatusExposed, StatusInfectious, StatusRecovered:
		return true
	}
	return false
}

// Individual is one member of the simulated population
type Individual struct {
	// Identity, 0..PopulationSize-1
	ID int `json:"id" yaml:"id"`

	// Disease state, mutated once per simulated day
	Status       Status `json:"status" yaml:"status"`
	DaysExposed  int    `json:"days_exposed" yaml:"days_exposed"`
	DaysInfected int    `json:"days_infected" yaml:"days_infected"`

	// Connections holds neighbor ids in ascending order. It is fixed at
	// generation time and shared between snapshots, so it must never be
	// mutated after the network is returned to a caller.
	Connections []int `json:"connections" yaml:"connections"`

	// Community is fixed at creation, 0..CommunityCount-1
	Community int `json:"community" yaml:"community"`

	// Age is informational only; no transition rule reads it
	Age int `json:"age" yaml:"age"`
}

// Degree returns the number of contacts.
func (i Individual) Degree() int {
	return len(i.Connections)
}
