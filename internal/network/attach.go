package network

import (
	"math/rand/v2"
	"slices"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/models"
)

// attachment keeps preferential-attachment weights up to date as edges
// are added, so each newcomer samples its targets in O(k log n).
//
// A candidate j's weight for a newcomer in community c is deg(j), times
// SameCommunityBoost when j is also in c. That splits into deg(j) over
// everyone plus (boost-1)*deg(j) over c's members, one tree each.
type attachment struct {
	extra     float64    // SameCommunityBoost - 1
	degree    []float64  // by id
	all       *fenwick   // degree by id
	community []*fenwick // degree by position within the community
	members   [][]int    // community -> ids in ascending order
	pos       []int      // id -> position in members[community]
	comm      []int      // id -> community
}

func newAttachment(individuals []models.Individual, communities int) *attachment {
	n := len(individuals)
	at := &attachment{
		extra:   constants.SameCommunityBoost - 1,
		degree:  make([]float64, n),
		all:     newFenwick(make([]float64, n)),
		members: make([][]int, communities),
		pos:     make([]int, n),
		comm:    make([]int, n),
	}
	for i, ind := range individuals {
		at.comm[i] = ind.Community
		at.pos[i] = len(at.members[ind.Community])
		at.members[ind.Community] = append(at.members[ind.Community], i)
	}
	at.community = make([]*fenwick, communities)
	for c, ids := range at.members {
		at.community[c] = newFenwick(make([]float64, len(ids)))
	}
	return at
}

// bump changes id's weight in both trees by delta.
func (at *attachment) bump(id int, delta float64) {
	at.all.add(id, delta)
	at.community[at.comm[id]].add(at.pos[id], delta)
}

// link records a new edge between a and b.
func (at *attachment) link(a, b int) {
	at.degree[a]++
	at.degree[b]++
	at.bump(a, 1)
	at.bump(b, 1)
}

// sample draws up to k distinct targets among ids 0..newcomer-1 for
// newcomer, without replacement. Individuals at or after newcomer have no
// edges yet and carry no weight.
func (at *attachment) sample(newcomer, k int, rng *rand.Rand) []int {
	k = min(k, newcomer)
	c := at.comm[newcomer]
	picked := make([]int, 0, k)

	// Picked targets leave the pool until the draw is done.
	defer func() {
		for _, id := range picked {
			at.bump(id, at.degree[id])
		}
	}()

	for len(picked) < k {
		id, ok := at.draw(c, rng)
		if !ok || id >= newcomer || slices.Contains(picked, id) {
			return append(picked, at.exact(newcomer, k-len(picked), picked, rng)...)
		}
		picked = append(picked, id)
		at.bump(id, -at.degree[id])
	}
	return picked
}

// draw picks one id with probability proportional to its weight for a
// newcomer in community c. ok is false when the pool has no weight or the
// search ran off the end of a tree.
func (at *attachment) draw(c int, rng *rand.Rand) (id int, ok bool) {
	base := at.all.total()
	total := base + at.extra*at.community[c].total()
	if total <= 0 {
		return 0, false
	}
	r := rng.Float64() * total
	if r < base {
		id = at.all.find(r)
		return id, id < len(at.degree)
	}
	p := at.community[c].find((r - base) / at.extra)
	if p >= len(at.members[c]) {
		return 0, false
	}
	return at.members[c][p], true
}

// exact finishes a draw from explicit weights when the trees cannot
// serve it, which happens only when every remaining candidate has degree
// zero.
func (at *attachment) exact(newcomer, count int, picked []int, rng *rand.Rand) []int {
	c := at.comm[newcomer]
	weights := make([]float64, newcomer)
	for j := range weights {
		if slices.Contains(picked, j) {
			continue
		}
		weights[j] = at.degree[j]
		if at.comm[j] == c {
			weights[j] *= constants.SameCommunityBoost
		}
	}
	// Already-picked ids have zero weight but WeightedSample may still
	// reach them through its uniform fallback.
	var out []int
	for _, j := range WeightedSample(weights, count+len(picked), rng) {
		if len(out) == count {
			break
		}
		if !slices.Contains(picked, j) {
			out = append(out, j)
		}
	}
	return out
}
