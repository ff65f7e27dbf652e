package simulation

import (
	"slices"
	"testing"

	"github.com/nvandessel/contagion/internal/models"
)

// AssertConservation asserts that every day's counts sum to the population.
func AssertConservation(t *testing.T, result *Result) {
	t.Helper()
	for _, st := range result.History {
		if st.Total() != result.Params.PopulationSize {
			t.Errorf("AssertConservation: day %d: counts sum to %d, want %d", st.Day, st.Total(), result.Params.PopulationSize)
		}
	}
}

// AssertMonotonicTotalCases asserts that TotalCases never decreases and
// always equals the population minus the susceptible count.
func AssertMonotonicTotalCases(t *testing.T, result *Result) {
	t.Helper()
	prev := 0
	for _, st := range result.History {
		if st.TotalCases < prev {
			t.Errorf("AssertMonotonicTotalCases: day %d: total cases fell from %d to %d", st.Day, prev, st.TotalCases)
		}
		if want := result.Params.PopulationSize - st.Susceptible; st.TotalCases != want {
			t.Errorf("AssertMonotonicTotalCases: day %d: total cases %d, want %d", st.Day, st.TotalCases, want)
		}
		prev = st.TotalCases
	}
}

// AssertDaysOrdered asserts that the history is day 0, 1, 2, ...
func AssertDaysOrdered(t *testing.T, result *Result) {
	t.Helper()
	for i, st := range result.History {
		if st.Day != i {
			t.Errorf("AssertDaysOrdered: record %d has day %d", i, st.Day)
		}
	}
}

// AssertNoReinfection asserts that nobody leaves RECOVERED. Requires
// KeepSnapshots.
func AssertNoReinfection(t *testing.T, result *Result) {
	t.Helper()
	requireSnapshots(t, result, "AssertNoReinfection")
	for d := 1; d < len(result.Snapshots); d++ {
		prev, next := result.Snapshots[d-1], result.Snapshots[d]
		for i := range prev.Individuals {
			if prev.Individuals[i].Status == models.StatusRecovered && next.Individuals[i].Status != models.StatusRecovered {
				t.Errorf("AssertNoReinfection: day %d: individual %d went from RECOVERED to %s", d, i, next.Individuals[i].Status)
			}
		}
	}
}

// AssertProgressionBounds asserts that no one becomes infectious before
// ExposedDays or recovers before RecoveryDays. Requires KeepSnapshots.
func AssertProgressionBounds(t *testing.T, result *Result) {
	t.Helper()
	requireSnapshots(t, result, "AssertProgressionBounds")
	p := result.Params
	for d := 1; d < len(result.Snapshots); d++ {
		prev, next := result.Snapshots[d-1], result.Snapshots[d]
		for i := range prev.Individuals {
			a, b := prev.Individuals[i], next.Individuals[i]
			if a.Status == models.StatusExposed && b.Status == models.StatusInfectious && b.DaysExposed < p.ExposedDays {
				t.Errorf("AssertProgressionBounds: day %d: individual %d infectious after %d of %d exposed days", d, i, b.DaysExposed, p.ExposedDays)
			}
			if a.Status == models.StatusInfectious && b.Status == models.StatusRecovered && b.DaysInfected < p.RecoveryDays {
				t.Errorf("AssertProgressionBounds: day %d: individual %d recovered after %d of %d infectious days", d, i, b.DaysInfected, p.RecoveryDays)
			}
		}
	}
}

// AssertTopologyInvariant asserts that every snapshot carries the day 0
// edge list and adjacency. Requires KeepSnapshots.
func AssertTopologyInvariant(t *testing.T, result *Result) {
	t.Helper()
	requireSnapshots(t, result, "AssertTopologyInvariant")
	base := result.Snapshots[0]
	for d, snap := range result.Snapshots[1:] {
		if !slices.Equal(snap.Edges, base.Edges) {
			t.Errorf("AssertTopologyInvariant: day %d: edge list changed", d+1)
		}
		for i := range base.Individuals {
			if !slices.Equal(snap.Individuals[i].Connections, base.Individuals[i].Connections) {
				t.Errorf("AssertTopologyInvariant: day %d: connections of %d changed", d+1, i)
			}
		}
	}
}

// AssertBurnedOut asserts that the run ended with no active cases.
func AssertBurnedOut(t *testing.T, result *Result) {
	t.Helper()
	if !result.Summary.BurnedOut {
		last := result.History[len(result.History)-1]
		t.Errorf("AssertBurnedOut: day %d still has %d exposed and %d infectious", last.Day, last.Exposed, last.Infectious)
	}
}

func requireSnapshots(t *testing.T, result *Result, name string) {
	t.Helper()
	if len(result.Snapshots) != len(result.History) {
		t.Fatalf("%s: have %d snapshots for %d days; run with KeepSnapshots", name, len(result.Snapshots), len(result.History))
	}
}
