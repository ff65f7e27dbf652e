package ranking

import (
	"cmp"
	"slices"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/models"
)

// RiskConfig holds weights for the three risk signals.
type RiskConfig struct {
	// PressureWeight for the chance of infection on the next day. Default: 0.6.
	PressureWeight float64

	// PageRankWeight for structural importance. Default: 0.25.
	PageRankWeight float64

	// DegreeWeight for contact count relative to the best connected. Default: 0.15.
	DegreeWeight float64
}

// DefaultRiskConfig returns the default risk weights.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		PressureWeight: 0.6,
		PageRankWeight: 0.25,
		DegreeWeight:   0.15,
	}
}

// RiskScorer ranks susceptible individuals by how likely and how costly
// their infection would be.
type RiskScorer struct {
	config           RiskConfig
	transmissionRate float64
	pageRankScores   []float64
}

// NewRiskScorer creates a scorer. pageRankScores should be pre-computed
// via ComputePageRank; nil scores count as zero.
func NewRiskScorer(config RiskConfig, transmissionRate float64, pageRankScores []float64) *RiskScorer {
	return &RiskScorer{
		config:           config,
		transmissionRate: transmissionRate,
		pageRankScores:   pageRankScores,
	}
}

// RiskScore is the combined score for one individual.
type RiskScore struct {
	ID            int     `json:"id"`
	FinalScore    float64 `json:"final_score"`
	Pressure      float64 `json:"pressure"`
	PageRankScore float64 `json:"pagerank_score"`
	DegreeScore   float64 `json:"degree_score"`

	// InfectiousContacts is the number of infectious neighbors.
	InfectiousContacts int `json:"infectious_contacts"`
}

// Pressure returns the probability that susceptible individual id is
// exposed on the next day: 1 - prod(1 - rate*strength) over its
// infectious neighbors. Missing edge records use the fallback strength.
func Pressure(net *models.Network, id int, transmissionRate float64) (float64, int) {
	net = net.Indexed()
	escape := 1.0
	contacts := 0
	for _, nb := range net.Individuals[id].Connections {
		if net.Individuals[nb].Status != models.StatusInfectious {
			continue
		}
		contacts++
		strength, ok := net.Strength(id, nb)
		if !ok {
			strength = constants.FallbackEdgeStrength
		}
		escape *= 1 - min(1, transmissionRate*strength)
	}
	return 1 - escape, contacts
}

// Score computes the risk score of individual id. maxDegree scales the
// degree signal; pass 0 to skip it.
func (r *RiskScorer) Score(net *models.Network, id int, maxDegree int) RiskScore {
	if id < 0 || id >= net.Size() {
		return RiskScore{ID: id}
	}

	pressure, contacts := Pressure(net, id, r.transmissionRate)
	var pageRank float64
	if id < len(r.pageRankScores) {
		pageRank = r.pageRankScores[id]
	}
	var degree float64
	if maxDegree > 0 {
		degree = float64(net.Individuals[id].Degree()) / float64(maxDegree)
	}

	return RiskScore{
		ID: id,
		FinalScore: r.config.PressureWeight*pressure +
			r.config.PageRankWeight*pageRank +
			r.config.DegreeWeight*degree,
		Pressure:           pressure,
		PageRankScore:      pageRank,
		DegreeScore:        degree,
		InfectiousContacts: contacts,
	}
}

// AtRisk scores every susceptible individual and returns the top n by
// FinalScore descending, ties broken by lower id. n < 0 returns all.
func (r *RiskScorer) AtRisk(net *models.Network, n int) []RiskScore {
	maxDegree := 0
	for _, ind := range net.Individuals {
		maxDegree = max(maxDegree, ind.Degree())
	}

	results := make([]RiskScore, 0)
	for i, ind := range net.Individuals {
		if ind.Status != models.StatusSusceptible {
			continue
		}
		results = append(results, r.Score(net, i, maxDegree))
	}

	slices.SortFunc(results, func(a, b RiskScore) int {
		if c := cmp.Compare(b.FinalScore, a.FinalScore); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if n >= 0 && n < len(results) {
		results = results[:n]
	}
	return results
}
