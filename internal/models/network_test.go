package models

import (
	"sync"
	"testing"
)

func triangle() *Network {
	individuals := []Individual{
		{ID: 0, Status: StatusInfectious, Connections: []int{1, 2}},
		{ID: 1, Status: StatusSusceptible, Connections: []int{0, 2}},
		{ID: 2, Status: StatusRecovered, Connections: []int{0, 1}},
	}
	edges := []Edge{
		{Source: 0, Target: 1, Strength: 0.6},
		{Source: 1, Target: 2, Strength: 0.9},
		{Source: 2, Target: 0, Strength: 0.7},
	}
	return NewNetwork(individuals, edges)
}

func TestPairKey_OrderIndependent(t *testing.T) {
	if PairKey(3, 7) != PairKey(7, 3) {
		t.Error("PairKey(3, 7) != PairKey(7, 3)")
	}
	if PairKey(1, 2) == PairKey(1, 3) {
		t.Error("distinct pairs share a key")
	}
}

func TestNetwork_Strength(t *testing.T) {
	n := triangle()

	tests := []struct {
		a, b   int
		want   float64
		wantOK bool
	}{
		{0, 1, 0.6, true},
		{1, 0, 0.6, true},
		{2, 1, 0.9, true},
		{0, 2, 0.7, true},
		{0, 0, 0, false},
		{1, 5, 0, false},
	}
	for _, tt := range tests {
		got, ok := n.Strength(tt.a, tt.b)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Strength(%d, %d) = (%v, %v), want (%v, %v)", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNetwork_Strength_ZeroValue(t *testing.T) {
	n := &Network{Edges: []Edge{{Source: 4, Target: 2, Strength: 0.55}}}
	if s, ok := n.Strength(2, 4); !ok || s != 0.55 {
		t.Errorf("Strength(2, 4) = (%v, %v), want (0.55, true)", s, ok)
	}
}

func TestNetwork_UnindexedLeftUntouched(t *testing.T) {
	n := &Network{
		Individuals: []Individual{{ID: 0, Connections: []int{1}}, {ID: 1, Connections: []int{0}}},
		Edges:       []Edge{{Source: 0, Target: 1, Strength: 0.8}},
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := n.Clone()
			if s, ok := c.Strength(1, 0); !ok || s != 0.8 {
				t.Errorf("clone Strength(1, 0) = (%v, %v), want (0.8, true)", s, ok)
			}
			if s, ok := n.Indexed().Strength(0, 1); !ok || s != 0.8 {
				t.Errorf("indexed Strength(0, 1) = (%v, %v), want (0.8, true)", s, ok)
			}
			if _, ok := n.Strength(0, 0); ok {
				t.Error("Strength(0, 0) reported an edge")
			}
		}()
	}
	wg.Wait()

	if n.index != nil {
		t.Error("Clone, Indexed or Strength wrote an index into the receiver")
	}
}

func TestNetwork_IndexedSharesState(t *testing.T) {
	n := triangle()
	if n.Indexed() != n {
		t.Error("Indexed() on an indexed network should return it unchanged")
	}

	bare := &Network{Individuals: n.Individuals, Edges: n.Edges}
	ix := bare.Indexed()
	if ix == bare {
		t.Fatal("Indexed() on an unindexed network returned the receiver")
	}
	if &ix.Individuals[0] != &bare.Individuals[0] {
		t.Error("Indexed() should share individuals")
	}
	if ix.Clone().index != ix.index {
		t.Error("clone of an indexed network should share its index")
	}
}

func TestNetwork_Clone(t *testing.T) {
	n := triangle()
	c := n.Clone()

	c.Individuals[1].Status = StatusExposed
	c.Individuals[1].DaysExposed = 2

	if n.Individuals[1].Status != StatusSusceptible {
		t.Errorf("original status changed to %s", n.Individuals[1].Status)
	}
	if n.Individuals[1].DaysExposed != 0 {
		t.Errorf("original DaysExposed changed to %d", n.Individuals[1].DaysExposed)
	}
	if len(c.Edges) != len(n.Edges) || &c.Edges[0] != &n.Edges[0] {
		t.Error("clone should share the edge list")
	}
	if s, ok := c.Strength(1, 2); !ok || s != 0.9 {
		t.Errorf("clone Strength(1, 2) = (%v, %v), want (0.9, true)", s, ok)
	}
}

func TestCountStats(t *testing.T) {
	n := triangle()
	s := CountStats(n, 4, 1)

	if s.Day != 4 || s.NewCases != 1 {
		t.Errorf("Day/NewCases = %d/%d, want 4/1", s.Day, s.NewCases)
	}
	if s.Susceptible != 1 || s.Exposed != 0 || s.Infectious != 1 || s.Recovered != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.TotalCases != 2 {
		t.Errorf("TotalCases = %d, want 2", s.TotalCases)
	}
	if s.Total() != 3 {
		t.Errorf("Total() = %d, want 3", s.Total())
	}
	if !s.Active() {
		t.Error("Active() = false with one infectious")
	}
	if s.Count(StatusRecovered) != 1 {
		t.Errorf("Count(RECOVERED) = %d, want 1", s.Count(StatusRecovered))
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if Status("DEAD").Valid() {
		t.Error(`Status("DEAD").Valid() = true`)
	}
}
