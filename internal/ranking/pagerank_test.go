package ranking

import (
	"math"
	"slices"
	"testing"

	"github.com/nvandessel/contagion/internal/models"
)

// contact is a test edge with an explicit strength.
type contact struct {
	a, b     int
	strength float64
}

// buildNetwork is a test helper that creates a network with sorted
// adjacency from a contact list.
func buildNetwork(t *testing.T, n int, contacts ...contact) *models.Network {
	t.Helper()
	individuals := make([]models.Individual, n)
	for i := range individuals {
		individuals[i] = models.Individual{ID: i, Status: models.StatusSusceptible}
	}
	edges := make([]models.Edge, 0, len(contacts))
	for _, c := range contacts {
		if c.a >= n || c.b >= n {
			t.Fatalf("contact %d-%d out of range for %d individuals", c.a, c.b, n)
		}
		s := c.strength
		if s == 0 {
			s = 1.0
		}
		individuals[c.a].Connections = append(individuals[c.a].Connections, c.b)
		individuals[c.b].Connections = append(individuals[c.b].Connections, c.a)
		edges = append(edges, models.Edge{Source: c.a, Target: c.b, Strength: s})
	}
	for i := range individuals {
		slices.Sort(individuals[i].Connections)
	}
	return models.NewNetwork(individuals, edges)
}

func TestComputePageRank_EmptyGraph(t *testing.T) {
	scores := ComputePageRank(models.NewNetwork(nil, nil), DefaultPageRankConfig())
	if len(scores) != 0 {
		t.Errorf("expected no scores for empty network, got %d", len(scores))
	}
}

func TestComputePageRank_SingleNode(t *testing.T) {
	scores := ComputePageRank(buildNetwork(t, 1), DefaultPageRankConfig())
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	// Single node should have PageRank = 1.0 (normalized max).
	if math.Abs(scores[0]-1.0) > 0.001 {
		t.Errorf("single node PageRank = %f, want 1.0", scores[0])
	}
}

func TestComputePageRank_LinearChain(t *testing.T) {
	// 0 -- 1 -- 2
	scores := ComputePageRank(buildNetwork(t, 3, contact{0, 1, 0}, contact{1, 2, 0}), DefaultPageRankConfig())

	if scores[1] < scores[0] || scores[1] < scores[2] {
		t.Errorf("middle node (%f) should outrank ends (%f, %f)", scores[1], scores[0], scores[2])
	}
	if math.Abs(scores[0]-scores[2]) > 0.01 {
		t.Errorf("end nodes %f and %f should have roughly equal PageRank", scores[0], scores[2])
	}
}

func TestComputePageRank_Hub(t *testing.T) {
	var contacts []contact
	for i := 1; i <= 5; i++ {
		contacts = append(contacts, contact{0, i, 0})
	}
	scores := ComputePageRank(buildNetwork(t, 6, contacts...), DefaultPageRankConfig())

	for i := 1; i <= 5; i++ {
		if scores[0] < scores[i] {
			t.Errorf("hub (%f) should outrank leaf %d (%f)", scores[0], i, scores[i])
		}
	}
	if math.Abs(scores[0]-1.0) > 0.001 {
		t.Errorf("hub PageRank = %f, want 1.0 (normalized)", scores[0])
	}
}

func TestComputePageRank_Ring(t *testing.T) {
	const n = 10
	var contacts []contact
	for i := 0; i < n; i++ {
		contacts = append(contacts, contact{i, (i + 1) % n, 0})
	}
	scores := ComputePageRank(buildNetwork(t, n, contacts...), DefaultPageRankConfig())

	// In a ring all nodes are symmetric, so all normalize to ~1.0.
	for i, s := range scores {
		if math.Abs(s-1.0) > 0.01 {
			t.Errorf("ring node %d PageRank = %f, want ~1.0", i, s)
		}
	}
}

func TestComputePageRank_IsolatedNodes(t *testing.T) {
	// 0 -- 1, with 2 isolated.
	scores := ComputePageRank(buildNetwork(t, 3, contact{0, 1, 0}), DefaultPageRankConfig())

	for i, s := range scores {
		if s <= 0 || s > 1 || math.IsNaN(s) {
			t.Errorf("score[%d] = %f, want in (0, 1]", i, s)
		}
	}
	if scores[2] >= scores[0] {
		t.Errorf("isolated node (%f) should rank below connected node (%f)", scores[2], scores[0])
	}
}

func TestComputePageRank_Weighted(t *testing.T) {
	// 0 is tied strongly to 1 and weakly to 2; 1 and 2 are otherwise
	// symmetric leaves.
	net := buildNetwork(t, 3, contact{0, 1, 1.0}, contact{0, 2, 0.1})

	plain := ComputePageRank(net, DefaultPageRankConfig())
	if math.Abs(plain[1]-plain[2]) > 1e-9 {
		t.Errorf("unweighted leaves differ: %f vs %f", plain[1], plain[2])
	}

	cfg := DefaultPageRankConfig()
	cfg.Weighted = true
	weighted := ComputePageRank(net, cfg)
	if weighted[1] <= weighted[2] {
		t.Errorf("strong contact (%f) should outrank weak contact (%f)", weighted[1], weighted[2])
	}
}

func TestComputePageRank_MaxIterationsRespected(t *testing.T) {
	cfg := DefaultPageRankConfig()
	cfg.MaxIterations = 0
	scores := ComputePageRank(buildNetwork(t, 3, contact{0, 1, 0}, contact{1, 2, 0}), cfg)

	// No iterations: uniform start, normalized to 1.0 everywhere.
	for i, s := range scores {
		if math.Abs(s-1.0) > 1e-9 {
			t.Errorf("score[%d] = %f, want 1.0", i, s)
		}
	}
}
