// Package network builds the synthetic contact graph a simulation runs on.
//
// Generation follows the Barabási–Albert model: a small complete seed
// graph, then each new individual attaches to existing ones with
// probability proportional to their degree. Attachment is biased toward
// the new individual's own community, and contacts within a community
// are stronger than contacts across communities.
package network

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/models"
)

// NewRand wraps src in a *rand.Rand. A nil src yields a randomly seeded
// PCG source, so output is only reproducible when a source is injected.
func NewRand(src rand.Source) *rand.Rand {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.New(src)
}

// Generate builds a population and its contact graph from p.
//
// Parameters are validated before anything is built; an invalid p
// returns a *models.ConfigError and no network.
func Generate(p models.Params, src rand.Source) (*models.Network, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("generate network: %w", err)
	}
	rng := NewRand(src)
	n := p.PopulationSize
	k := p.ConnectionsPerPerson

	individuals := make([]models.Individual, n)
	for i := range individuals {
		individuals[i] = models.Individual{
			ID:        i,
			Status:    models.StatusSusceptible,
			Community: rng.IntN(p.CommunityCount),
			Age:       constants.MinAge + rng.IntN(constants.MaxAge-constants.MinAge),
		}
	}

	for _, id := range pickDistinct(rng, n, p.InitialInfections) {
		individuals[id].Status = models.StatusInfectious
	}

	bl := &builder{
		individuals: individuals,
		adjacency:   make([][]int, n),
		edges:       make([]models.Edge, 0, n*k),
		attach:      newAttachment(individuals, p.CommunityCount),
		rng:         rng,
	}

	// Complete seed graph so the first attachments have degree to favor.
	startSize := min(k+1, n)
	for i := 0; i < startSize; i++ {
		for j := i + 1; j < startSize; j++ {
			bl.connect(i, j)
		}
	}

	// Preferential attachment for everyone else.
	for i := startSize; i < n; i++ {
		for _, target := range bl.attach.sample(i, k, rng) {
			bl.connect(i, target)
		}
	}

	for i := range individuals {
		slices.Sort(bl.adjacency[i])
		individuals[i].Connections = bl.adjacency[i]
	}

	net := models.NewNetwork(individuals, bl.edges)
	if issues := Validate(net); len(issues) > 0 {
		return nil, fmt.Errorf("generate network: %d consistency issues, first: %s", len(issues), issues[0])
	}
	return net, nil
}

type builder struct {
	individuals []models.Individual
	adjacency   [][]int
	edges       []models.Edge
	attach      *attachment
	rng         *rand.Rand
}

// connect adds the undirected contact (a, b) to both adjacency lists, the
// edge list and the attachment weights.
func (bl *builder) connect(a, b int) {
	bl.adjacency[a] = append(bl.adjacency[a], b)
	bl.adjacency[b] = append(bl.adjacency[b], a)
	bl.edges = append(bl.edges, models.Edge{
		Source:   a,
		Target:   b,
		Strength: EdgeStrength(bl.individuals[a], bl.individuals[b], bl.rng),
	})
	bl.attach.link(a, b)
}

// EdgeStrength draws the strength of a new contact between a and b.
// Same-community contacts land in [0.8, 1.0], cross-community ones in
// [0.5, 0.7).
func EdgeStrength(a, b models.Individual, rng *rand.Rand) float64 {
	strength := constants.BaseEdgeStrength
	if a.Community == b.Community {
		strength += constants.SameCommunityStrengthBonus
	}
	strength += rng.Float64() * constants.EdgeStrengthJitter
	return math.Min(strength, constants.MaxEdgeStrength)
}

// pickDistinct returns count distinct values from 0..n-1 using a partial
// Fisher-Yates shuffle.
func pickDistinct(rng *rand.Rand, n, count int) []int {
	if count <= 0 {
		return nil
	}
	count = min(count, n)
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + rng.IntN(n-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:count]
}
