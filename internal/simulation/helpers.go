package simulation

import (
	"slices"

	"github.com/nvandessel/contagion/internal/models"
)

// EdgeSpec is one undirected contact in a NetworkSpec. A zero Strength
// means 1.0.
type EdgeSpec struct {
	A, B     int
	Strength float64
}

// NetworkSpec is a flat builder for hand-made networks in tests and
// scripted scenarios. It produces the same shape network.Generate does:
// sorted adjacency mirrored by the edge list.
type NetworkSpec struct {
	Size  int
	Edges []EdgeSpec

	Exposed    []int
	Infectious []int
	Recovered  []int

	// Communities assigns community ids by index; missing entries are 0.
	Communities []int
}

// Build converts the spec into a network.
func (s NetworkSpec) Build() *models.Network {
	individuals := make([]models.Individual, s.Size)
	for i := range individuals {
		individuals[i] = models.Individual{ID: i, Status: models.StatusSusceptible}
		if i < len(s.Communities) {
			individuals[i].Community = s.Communities[i]
		}
	}

	edges := make([]models.Edge, 0, len(s.Edges))
	for _, e := range s.Edges {
		strength := e.Strength
		if strength == 0 {
			strength = 1.0
		}
		individuals[e.A].Connections = append(individuals[e.A].Connections, e.B)
		individuals[e.B].Connections = append(individuals[e.B].Connections, e.A)
		edges = append(edges, models.Edge{Source: e.A, Target: e.B, Strength: strength})
	}
	for i := range individuals {
		slices.Sort(individuals[i].Connections)
	}

	for _, id := range s.Exposed {
		individuals[id].Status = models.StatusExposed
	}
	for _, id := range s.Infectious {
		individuals[id].Status = models.StatusInfectious
	}
	for _, id := range s.Recovered {
		individuals[id].Status = models.StatusRecovered
	}
	return models.NewNetwork(individuals, edges)
}

// PathEdges returns the edges of the path 0-1-...-(n-1).
func PathEdges(n int) []EdgeSpec {
	edges := make([]EdgeSpec, 0, max(n-1, 0))
	for i := 0; i+1 < n; i++ {
		edges = append(edges, EdgeSpec{A: i, B: i + 1})
	}
	return edges
}

// CompleteEdges returns every pair among n individuals.
func CompleteEdges(n int) []EdgeSpec {
	var edges []EdgeSpec
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, EdgeSpec{A: i, B: j})
		}
	}
	return edges
}

// StarEdges returns edges from hub 0 to every other individual.
func StarEdges(n int) []EdgeSpec {
	edges := make([]EdgeSpec, 0, max(n-1, 0))
	for i := 1; i < n; i++ {
		edges = append(edges, EdgeSpec{A: 0, B: i})
	}
	return edges
}
