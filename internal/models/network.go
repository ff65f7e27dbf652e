package models

import "sync"

// Edge is one undirected contact between two individuals.
// Strength is in (0, 1] and scales the per-contact transmission probability.
type Edge struct {
	Source   int     `json:"source" yaml:"source"`
	Target   int     `json:"target" yaml:"target"`
	Strength float64 `json:"strength" yaml:"strength"`
}

// PairKey returns an order-independent key for the pair (a, b).
func PairKey(a, b int) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}

// Network is the population and its contact graph for one run.
//
// Topology (Edges and every Individual's Connections) is static for the
// lifetime of a run. Snapshots produced by Clone share it; only the
// per-individual disease state is copied.
type Network struct {
	Individuals []Individual `json:"individuals" yaml:"individuals"`
	Edges       []Edge       `json:"edges" yaml:"edges"`

	index *edgeIndex
}

// edgeIndex maps pair keys to edge strength. Built once and shared by
// every snapshot of the same topology.
type edgeIndex struct {
	once     sync.Once
	strength map[uint64]float64
}

// NewNetwork wraps individuals and edges into a network.
func NewNetwork(individuals []Individual, edges []Edge) *Network {
	return &Network{
		Individuals: individuals,
		Edges:       edges,
		index:       &edgeIndex{},
	}
}

// Size returns the population size.
func (n *Network) Size() int {
	return len(n.Individuals)
}

// Indexed returns n if it carries a strength index. Otherwise it returns
// a network sharing n's individuals and edges with an index of its own;
// n is not modified. Use it before many Strength lookups on a network
// built without NewNetwork.
func (n *Network) Indexed() *Network {
	if n.index != nil {
		return n
	}
	return &Network{
		Individuals: n.Individuals,
		Edges:       n.Edges,
		index:       &edgeIndex{},
	}
}

func (x *edgeIndex) lookup(edges []Edge) map[uint64]float64 {
	x.once.Do(func() {
		x.strength = make(map[uint64]float64, len(edges))
		for _, e := range edges {
			x.strength[PairKey(e.Source, e.Target)] = e.Strength
		}
	})
	return x.strength
}

// Strength returns the strength of the edge between a and b and whether
// an edge record exists. Safe for concurrent use. Without an index the
// edge list is scanned on every call.
func (n *Network) Strength(a, b int) (float64, bool) {
	if n.index == nil {
		key := PairKey(a, b)
		for _, e := range n.Edges {
			if PairKey(e.Source, e.Target) == key {
				return e.Strength, true
			}
		}
		return 0, false
	}
	s, ok := n.index.lookup(n.Edges)[PairKey(a, b)]
	return s, ok
}

// Clone returns a snapshot with its own copy of individual state.
// Edges, Connections and the strength index are shared. A network
// without an index gives its clone a fresh one.
func (n *Network) Clone() *Network {
	index := n.index
	if index == nil {
		index = &edgeIndex{}
	}
	individuals := make([]Individual, len(n.Individuals))
	copy(individuals, n.Individuals)
	return &Network{
		Individuals: individuals,
		Edges:       n.Edges,
		index:       index,
	}
}

// CountByStatus tallies individuals per status.
func (n *Network) CountByStatus() map[Status]int {
	counts := make(map[Status]int, len(AllStatuses))
	for _, ind := range n.Individuals {
		counts[ind.Status]++
	}
	return counts
}
