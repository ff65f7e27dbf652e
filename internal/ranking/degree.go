package ranking

import (
	"cmp"
	"slices"

	"github.com/nvandessel/contagion/internal/models"
)

// Degrees summarizes the degree distribution of a network.
type Degrees struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`

	// Histogram maps degree to the number of individuals with it.
	Histogram map[int]int `json:"histogram"`
}

// DegreeStats computes the degree distribution.
func DegreeStats(net *models.Network) Degrees {
	n := net.Size()
	out := Degrees{Histogram: make(map[int]int)}
	if n == 0 {
		return out
	}

	degrees := make([]int, n)
	total := 0
	for i, ind := range net.Individuals {
		degrees[i] = ind.Degree()
		total += degrees[i]
		out.Histogram[degrees[i]]++
	}
	slices.Sort(degrees)

	out.Min = degrees[0]
	out.Max = degrees[n-1]
	out.Mean = float64(total) / float64(n)
	if n%2 == 1 {
		out.Median = float64(degrees[n/2])
	} else {
		out.Median = float64(degrees[n/2-1]+degrees[n/2]) / 2
	}
	return out
}

// Hub is a highly connected individual.
type Hub struct {
	ID        int           `json:"id"`
	Degree    int           `json:"degree"`
	Community int           `json:"community"`
	Status    models.Status `json:"status"`
	Score     float64       `json:"score"`
}

// TopHubs returns the n individuals with the highest scores, ties broken
// by degree and then by lower id. scores is indexed by individual id;
// when nil, degree is used as the score.
func TopHubs(net *models.Network, scores []float64, n int) []Hub {
	hubs := make([]Hub, 0, net.Size())
	for i, ind := range net.Individuals {
		h := Hub{ID: i, Degree: ind.Degree(), Community: ind.Community, Status: ind.Status}
		if scores != nil && i < len(scores) {
			h.Score = scores[i]
		} else {
			h.Score = float64(h.Degree)
		}
		hubs = append(hubs, h)
	}

	slices.SortFunc(hubs, func(a, b Hub) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Degree, a.Degree); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if n >= 0 && n < len(hubs) {
		hubs = hubs[:n]
	}
	return hubs
}

// Community describes one community label.
type Community struct {
	ID   int `json:"id"`
	Size int `json:"size"`

	// Infected counts members who are no longer susceptible.
	Infected int `json:"infected"`
}

// Mix describes how contacts fall within and across communities.
type Mix struct {
	Communities []Community `json:"communities"`

	IntraEdges int `json:"intra_edges"`
	InterEdges int `json:"inter_edges"`

	IntraStrength float64 `json:"intra_mean_strength"`
	InterStrength float64 `json:"inter_mean_strength"`

	// IntraFraction is IntraEdges over all edges.
	IntraFraction float64 `json:"intra_fraction"`
}

// CommunityMix reports community sizes and intra/inter community contact
// counts with their mean strengths. Communities are listed by id.
func CommunityMix(net *models.Network) Mix {
	byID := make(map[int]*Community)
	for _, ind := range net.Individuals {
		c, ok := byID[ind.Community]
		if !ok {
			c = &Community{ID: ind.Community}
			byID[ind.Community] = c
		}
		c.Size++
		if ind.Status != models.StatusSusceptible {
			c.Infected++
		}
	}

	var mix Mix
	for _, c := range byID {
		mix.Communities = append(mix.Communities, *c)
	}
	slices.SortFunc(mix.Communities, func(a, b Community) int { return cmp.Compare(a.ID, b.ID) })

	var intraSum, interSum float64
	for _, e := range net.Edges {
		if !validID(net, e.Source) || !validID(net, e.Target) {
			continue
		}
		if net.Individuals[e.Source].Community == net.Individuals[e.Target].Community {
			mix.IntraEdges++
			intraSum += e.Strength
		} else {
			mix.InterEdges++
			interSum += e.Strength
		}
	}
	if mix.IntraEdges > 0 {
		mix.IntraStrength = intraSum / float64(mix.IntraEdges)
	}
	if mix.InterEdges > 0 {
		mix.InterStrength = interSum / float64(mix.InterEdges)
	}
	if total := mix.IntraEdges + mix.InterEdges; total > 0 {
		mix.IntraFraction = float64(mix.IntraEdges) / float64(total)
	}
	return mix
}

func validID(net *models.Network, id int) bool {
	return id >= 0 && id < net.Size()
}
