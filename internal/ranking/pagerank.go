// Package ranking scores individuals of a contact network by structural
// importance: degree statistics, PageRank hubs, community mixing and
// current exposure pressure.
package ranking

import (
	"math"

	"github.com/nvandessel/contagion/internal/models"
)

// PageRankConfig holds configuration for PageRank computation.
type PageRankConfig struct {
	// DampingFactor (d) is the probability of following an edge vs. teleporting.
	// Standard value: 0.85.
	DampingFactor float64

	// MaxIterations is the maximum number of power iteration steps. Default: 100.
	MaxIterations int

	// Tolerance is the convergence threshold. Default: 1e-6.
	Tolerance float64

	// Weighted distributes each individual's score in proportion to
	// contact strength instead of evenly across contacts.
	Weighted bool
}

// DefaultPageRankConfig returns the default PageRank configuration.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// ComputePageRank calculates PageRank scores for every individual.
// The result is indexed by individual id and normalized so the top
// score is 1.0.
//
// Algorithm: Standard power iteration
//  1. Initialize all nodes with score = 1/N
//  2. For each iteration:
//     PR(v) = (1-d)/N + d * (sum(PR(u)*w(u,v)/W(u)) + dangling/N)
//  3. Converge when max change < Tolerance
//  4. Normalize to [0, 1] range
//
// Contacts are undirected, so every edge links both ways. w is 1 unless
// Weighted is set, in which case it is the edge strength.
func ComputePageRank(net *models.Network, config PageRankConfig) []float64 {
	n := net.Size()
	if n == 0 {
		return []float64{}
	}
	net = net.Indexed()

	weight := func(a, b int) float64 {
		if !config.Weighted {
			return 1
		}
		if s, ok := net.Strength(a, b); ok {
			return s
		}
		return 0
	}

	// out[u] is the total link weight leaving u.
	out := make([]float64, n)
	for u, ind := range net.Individuals {
		for _, v := range ind.Connections {
			out[u] += weight(u, v)
		}
	}

	d := config.DampingFactor
	nf := float64(n)
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / nf
	}

	next := make([]float64, n)
	for iter := 0; iter < config.MaxIterations; iter++ {
		// Individuals without contacts spread their score uniformly.
		dangling := 0.0
		for u := range scores {
			if out[u] == 0 {
				dangling += scores[u]
			}
		}

		maxDelta := 0.0
		for v, ind := range net.Individuals {
			sum := 0.0
			for _, u := range ind.Connections {
				if out[u] > 0 {
					sum += scores[u] * weight(u, v) / out[u]
				}
			}

			newScore := (1.0-d)/nf + d*(sum+dangling/nf)
			next[v] = newScore

			if delta := math.Abs(newScore - scores[v]); delta > maxDelta {
				maxDelta = delta
			}
		}

		scores, next = next, scores

		if maxDelta < config.Tolerance {
			break
		}
	}

	// Normalize to [0, 1] by dividing by max score.
	maxScore := 0.0
	for _, score := range scores {
		maxScore = max(maxScore, score)
	}
	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}
	return scores
}
