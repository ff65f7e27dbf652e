package epidemic

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/models"
	"github.com/nvandessel/contagion/internal/network"
)

func baseParams() models.Params {
	return models.Params{
		PopulationSize:       300,
		InitialInfections:    5,
		TransmissionRate:     0.3,
		ExposedDays:          3,
		RecoveryDays:         7,
		ConnectionsPerPerson: 4,
		CommunityCount:       3,
	}
}

func generate(t *testing.T, p models.Params, seed uint64) *models.Network {
	t.Helper()
	net, err := network.Generate(p, rand.NewPCG(seed, seed+1))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return net
}

// handBuilt creates a network from an edge list with strength 1.0 on
// every edge. Individuals listed in infectious start infectious.
func handBuilt(n int, pairs [][2]int, infectious ...int) *models.Network {
	individuals := make([]models.Individual, n)
	for i := range individuals {
		individuals[i] = models.Individual{ID: i, Status: models.StatusSusceptible}
	}
	edges := make([]models.Edge, 0, len(pairs))
	for _, p := range pairs {
		individuals[p[0]].Connections = append(individuals[p[0]].Connections, p[1])
		individuals[p[1]].Connections = append(individuals[p[1]].Connections, p[0])
		edges = append(edges, models.Edge{Source: p[0], Target: p[1], Strength: 1.0})
	}
	for i := range individuals {
		slices.Sort(individuals[i].Connections)
	}
	for _, id := range infectious {
		individuals[id].Status = models.StatusInfectious
	}
	return models.NewNetwork(individuals, edges)
}

func pathPairs(n int) [][2]int {
	pairs := make([][2]int, 0, n-1)
	for i := 0; i+1 < n; i++ {
		pairs = append(pairs, [2]int{i, i + 1})
	}
	return pairs
}

func completePairs(n int) [][2]int {
	var pairs [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

func deepCopyIndividuals(in []models.Individual) []models.Individual {
	out := make([]models.Individual, len(in))
	for i, ind := range in {
		out[i] = ind
		out[i].Connections = slices.Clone(ind.Connections)
	}
	return out
}

func TestStep_LeavesInputUntouched(t *testing.T) {
	p := baseParams()
	net := generate(t, p, 1)
	before := deepCopyIndividuals(net.Individuals)
	edgesBefore := slices.Clone(net.Edges)

	s := NewStepper(p, rand.NewPCG(1, 1))
	cur := net
	for day := 1; day <= 20; day++ {
		cur, _ = s.Step(cur, day)
	}

	if !reflect.DeepEqual(net.Individuals, before) {
		t.Error("Step mutated the day 0 snapshot")
	}
	if !reflect.DeepEqual(net.Edges, edgesBefore) {
		t.Error("Step mutated the edge list")
	}
}

func TestStep_TopologyInvariant(t *testing.T) {
	p := baseParams()
	prev := generate(t, p, 2)
	s := NewStepper(p, rand.NewPCG(2, 2))

	for day := 1; day <= 30; day++ {
		next, _ := s.Step(prev, day)

		if !reflect.DeepEqual(next.Edges, prev.Edges) {
			t.Fatalf("day %d: edge list changed", day)
		}
		for i := range next.Individuals {
			a, b := prev.Individuals[i], next.Individuals[i]
			if !slices.Equal(a.Connections, b.Connections) {
				t.Fatalf("day %d: individual %d connections changed", day, i)
			}
			if a.ID != b.ID || a.Community != b.Community || a.Age != b.Age {
				t.Fatalf("day %d: individual %d identity fields changed", day, i)
			}
		}
		prev = next
	}
}

func TestStep_Invariants(t *testing.T) {
	p := baseParams()
	prev := generate(t, p, 3)
	s := NewStepper(p, rand.NewPCG(3, 3))
	last := InitialStats(prev)

	for day := 1; day <= 120; day++ {
		next, stats := s.Step(prev, day)

		if stats.Day != day {
			t.Fatalf("stats.Day = %d, want %d", stats.Day, day)
		}
		if stats.Total() != p.PopulationSize {
			t.Fatalf("day %d: counts sum to %d, want %d", day, stats.Total(), p.PopulationSize)
		}
		if stats.TotalCases != p.PopulationSize-stats.Susceptible {
			t.Fatalf("day %d: TotalCases = %d, want %d", day, stats.TotalCases, p.PopulationSize-stats.Susceptible)
		}
		if stats.TotalCases < last.TotalCases {
			t.Fatalf("day %d: TotalCases decreased from %d to %d", day, last.TotalCases, stats.TotalCases)
		}
		if got := last.Susceptible - stats.Susceptible; got != stats.NewCases {
			t.Fatalf("day %d: NewCases = %d, susceptible pool shrank by %d", day, stats.NewCases, got)
		}

		for i := range next.Individuals {
			a, b := prev.Individuals[i], next.Individuals[i]
			switch {
			case a.Status == models.StatusRecovered && b.Status != models.StatusRecovered:
				t.Fatalf("day %d: individual %d left RECOVERED for %s", day, i, b.Status)
			case a.Status == models.StatusExposed && b.Status == models.StatusInfectious:
				if b.DaysExposed < p.ExposedDays {
					t.Fatalf("day %d: individual %d infectious after %d exposed days", day, i, b.DaysExposed)
				}
			case a.Status == models.StatusInfectious && b.Status == models.StatusRecovered:
				if b.DaysInfected < p.RecoveryDays {
					t.Fatalf("day %d: individual %d recovered after %d infectious days", day, i, b.DaysInfected)
				}
			case a.Status == models.StatusSusceptible && b.Status != models.StatusSusceptible:
				if b.Status != models.StatusExposed {
					t.Fatalf("day %d: individual %d skipped from SUSCEPTIBLE to %s", day, i, b.Status)
				}
			}
		}

		prev, last = next, stats
	}
}

func TestStep_ZeroTransmission(t *testing.T) {
	p := models.Params{
		PopulationSize:       100,
		InitialInfections:    5,
		TransmissionRate:     0,
		ExposedDays:          3,
		RecoveryDays:         14,
		ConnectionsPerPerson: 5,
		CommunityCount:       4,
	}
	net := generate(t, p, 4)
	s := NewStepper(p, rand.NewPCG(4, 4))

	for day := 1; day <= 30; day++ {
		var stats models.Stats
		net, stats = s.Step(net, day)

		if stats.Exposed != 0 || stats.NewCases != 0 {
			t.Fatalf("day %d: exposed=%d new=%d with zero transmission", day, stats.Exposed, stats.NewCases)
		}
		if day < p.RecoveryDays {
			if stats.Infectious != 5 || stats.Recovered != 0 {
				t.Fatalf("day %d: infectious=%d recovered=%d, want 5/0", day, stats.Infectious, stats.Recovered)
			}
		} else {
			if stats.Infectious != 0 || stats.Recovered != 5 {
				t.Fatalf("day %d: infectious=%d recovered=%d, want 0/5", day, stats.Infectious, stats.Recovered)
			}
		}
		if stats.TotalCases != 5 {
			t.Fatalf("day %d: TotalCases = %d, want 5", day, stats.TotalCases)
		}
	}
}

func TestInitialStats_EveryoneInfected(t *testing.T) {
	p := baseParams()
	p.PopulationSize = 100
	p.InitialInfections = 100
	net := generate(t, p, 5)

	stats := InitialStats(net)
	want := models.Stats{Day: 0, Infectious: 100, NewCases: 100, TotalCases: 100}
	if stats != want {
		t.Errorf("InitialStats = %+v, want %+v", stats, want)
	}
}

func TestInitialStats_NoInfections(t *testing.T) {
	p := baseParams()
	p.InitialInfections = 0
	net := generate(t, p, 6)

	stats := InitialStats(net)
	if stats.Susceptible != p.PopulationSize || stats.NewCases != 0 || stats.TotalCases != 0 {
		t.Errorf("InitialStats = %+v", stats)
	}

	// Nothing can ever happen.
	s := NewStepper(p, rand.NewPCG(6, 6))
	for day := 1; day <= 5; day++ {
		var st models.Stats
		net, st = s.Step(net, day)
		if st.Susceptible != p.PopulationSize {
			t.Fatalf("day %d: susceptible = %d", day, st.Susceptible)
		}
	}
}

func TestStep_CertainTransmissionReachesPath(t *testing.T) {
	// With certain transmission on strength-1 edges and one-day stages,
	// individual d on a path is exposed on day 2d-1 and everyone has
	// recovered by day 2*(n-1)+1.
	const n = 8
	p := models.Params{
		PopulationSize:       n,
		InitialInfections:    1,
		TransmissionRate:     1,
		ExposedDays:          1,
		RecoveryDays:         1,
		ConnectionsPerPerson: 1,
		CommunityCount:       1,
	}
	net := handBuilt(n, pathPairs(n), 0)
	s := NewStepper(p, rand.NewPCG(7, 7))

	exposedOn := make(map[int]int)
	var stats models.Stats
	bound := 2*(n-1) + 1
	for day := 1; day <= bound; day++ {
		net, stats = s.Step(net, day)
		for _, ind := range net.Individuals {
			if ind.Status == models.StatusExposed {
				if _, ok := exposedOn[ind.ID]; !ok {
					exposedOn[ind.ID] = day
				}
			}
		}
	}

	for d := 1; d < n; d++ {
		if exposedOn[d] != 2*d-1 {
			t.Errorf("individual %d exposed on day %d, want %d", d, exposedOn[d], 2*d-1)
		}
	}
	if stats.Recovered != n {
		t.Errorf("day %d: recovered = %d, want %d", bound, stats.Recovered, n)
	}
	if stats.Active() {
		t.Errorf("epidemic still active after day %d: %+v", bound, stats)
	}
}

func TestStep_CertainTransmissionCompleteGraph(t *testing.T) {
	const n = 6
	p := models.Params{
		PopulationSize:       n,
		InitialInfections:    1,
		TransmissionRate:     1,
		ExposedDays:          1,
		RecoveryDays:         1,
		ConnectionsPerPerson: n - 1,
		CommunityCount:       1,
	}
	net := handBuilt(n, completePairs(n), 2)
	s := NewStepper(p, rand.NewPCG(8, 8))

	net, day1 := s.Step(net, 1)
	if day1.Exposed != n-1 || day1.NewCases != n-1 || day1.Recovered != 1 {
		t.Fatalf("day 1 = %+v, want everyone else exposed", day1)
	}
	net, day2 := s.Step(net, 2)
	if day2.Infectious != n-1 {
		t.Fatalf("day 2 = %+v, want %d infectious", day2, n-1)
	}
	_, day3 := s.Step(net, 3)
	if day3.Recovered != n || day3.NewCases != 0 {
		t.Fatalf("day 3 = %+v, want all recovered", day3)
	}
}

func TestStep_ExposedProgression(t *testing.T) {
	p := models.Params{
		PopulationSize:       2,
		InitialInfections:    1,
		TransmissionRate:     1,
		ExposedDays:          3,
		RecoveryDays:         10,
		ConnectionsPerPerson: 1,
		CommunityCount:       1,
	}
	net := handBuilt(2, [][2]int{{0, 1}}, 0)
	s := NewStepper(p, rand.NewPCG(9, 9))

	want := []struct {
		status      models.Status
		daysExposed int
	}{
		{models.StatusExposed, 0},    // day 1
		{models.StatusExposed, 1},    // day 2
		{models.StatusExposed, 2},    // day 3
		{models.StatusInfectious, 3}, // day 4
	}
	for day, w := range want {
		net, _ = s.Step(net, day+1)
		got := net.Individuals[1]
		if got.Status != w.status || got.DaysExposed != w.daysExposed {
			t.Fatalf("day %d: individual 1 = %s/%d, want %s/%d", day+1, got.Status, got.DaysExposed, w.status, w.daysExposed)
		}
	}
	if net.Individuals[1].DaysInfected != 0 {
		t.Errorf("DaysInfected = %d on becoming infectious, want 0", net.Individuals[1].DaysInfected)
	}

	// Individual 0 recovers once 10 infectious days have elapsed.
	for day := 5; day <= 10; day++ {
		net, _ = s.Step(net, day)
	}
	if net.Individuals[0].Status != models.StatusRecovered {
		t.Errorf("individual 0 = %s after 10 days, want RECOVERED", net.Individuals[0].Status)
	}
}

func TestStep_WorkerCountDoesNotChangeResults(t *testing.T) {
	p := baseParams()
	net := generate(t, p, 10)

	run := func(workers int) ([]models.Stats, *models.Network) {
		s := NewStepper(p, rand.NewPCG(10, 10), WithWorkers(workers))
		cur := net
		var history []models.Stats
		for day := 1; day <= 60; day++ {
			var st models.Stats
			cur, st = s.Step(cur, day)
			history = append(history, st)
		}
		return history, cur
	}

	serialStats, serialNet := run(1)
	parallelStats, parallelNet := run(4)

	if !reflect.DeepEqual(serialStats, parallelStats) {
		t.Error("stats differ between 1 and 4 workers")
	}
	if !reflect.DeepEqual(serialNet.Individuals, parallelNet.Individuals) {
		t.Error("final snapshots differ between 1 and 4 workers")
	}
}

func TestStep_Reproducible(t *testing.T) {
	p := baseParams()
	net := generate(t, p, 11)

	a, sa := NewStepper(p, rand.NewPCG(5, 5)).Step(net, 1)
	b, sb := NewStepper(p, rand.NewPCG(5, 5)).Step(net, 1)
	if sa != sb || !reflect.DeepEqual(a.Individuals, b.Individuals) {
		t.Error("same seed produced different days")
	}
}

func TestStep_MissingEdgeFallsBack(t *testing.T) {
	individuals := []models.Individual{
		{ID: 0, Status: models.StatusInfectious, Connections: []int{1}},
		{ID: 1, Status: models.StatusSusceptible, Connections: []int{0}},
	}
	net := models.NewNetwork(individuals, nil)
	p := models.Params{
		PopulationSize:       2,
		InitialInfections:    1,
		TransmissionRate:     1,
		ExposedDays:          2,
		RecoveryDays:         100,
		ConnectionsPerPerson: 1,
		CommunityCount:       1,
	}

	var buf bytes.Buffer
	s := NewStepper(p, rand.NewPCG(12, 12), WithLogger(logging.NewLogger("info", &buf)))

	// Fallback strength 0.5 with certain transmission: exposure within
	// a few days, and every attempt is logged.
	exposed := false
	for day := 1; day <= 40 && !exposed; day++ {
		var st models.Stats
		net, st = s.Step(net, day)
		exposed = st.Exposed == 1
	}
	if !exposed {
		t.Fatal("expected exposure through the fallback strength")
	}
	if s.Fallbacks() == 0 {
		t.Error("Fallbacks() = 0, want > 0")
	}
	if !strings.Contains(buf.String(), "fallback edge strength") {
		t.Errorf("expected a warning in the log, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "no edge record") {
		t.Errorf("expected the consistency error in the log, got %q", buf.String())
	}
}

func TestStep_TransitionLog(t *testing.T) {
	p := models.Params{
		PopulationSize:       3,
		InitialInfections:    1,
		TransmissionRate:     1,
		ExposedDays:          1,
		RecoveryDays:         5,
		ConnectionsPerPerson: 2,
		CommunityCount:       1,
	}
	net := handBuilt(3, completePairs(3), 0)

	var buf bytes.Buffer
	s := NewStepper(p, rand.NewPCG(13, 13),
		WithTransitionLogger(logging.NewTransitionWriter(&buf)),
		WithRunID("run-1"))
	s.Step(net, 1)

	var events []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSONL: %v", err)
		}
		events = append(events, e)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for i, e := range events {
		if e["from"] != "SUSCEPTIBLE" || e["to"] != "EXPOSED" {
			t.Errorf("event %d = %v", i, e)
		}
		if e["run_id"] != "run-1" {
			t.Errorf("event %d run_id = %v", i, e["run_id"])
		}
		if e["individual"] != float64(i+1) {
			t.Errorf("event %d individual = %v, want %d", i, e["individual"], i+1)
		}
	}
}

func TestStep_AfterBurnoutIsNoOp(t *testing.T) {
	p := models.Params{
		PopulationSize:       2,
		InitialInfections:    0,
		TransmissionRate:     0.5,
		ExposedDays:          1,
		RecoveryDays:         1,
		ConnectionsPerPerson: 1,
		CommunityCount:       1,
	}
	net := handBuilt(2, [][2]int{{0, 1}})
	net.Individuals[0].Status = models.StatusRecovered
	s := NewStepper(p, rand.NewPCG(14, 14))

	for day := 1; day <= 3; day++ {
		next, st := s.Step(net, day)
		want := models.Stats{Day: day, Susceptible: 1, Recovered: 1, TotalCases: 1}
		if st != want {
			t.Fatalf("day %d = %+v, want %+v", day, st, want)
		}
		net = next
	}
}

func TestSimulate(t *testing.T) {
	p := baseParams()
	net := generate(t, p, 15)

	next, stats := Simulate(net, p, 1, rand.NewPCG(1, 2))
	if next == net {
		t.Error("Simulate returned the input network")
	}
	if stats.Day != 1 || stats.Total() != p.PopulationSize {
		t.Errorf("stats = %+v", stats)
	}
}

func TestConsistencyError(t *testing.T) {
	var err error = &ConsistencyError{Individual: 3, Neighbor: 9}
	if !errors.Is(err, ErrMissingEdge) {
		t.Error("expected errors.Is(err, ErrMissingEdge)")
	}
	if !strings.Contains(err.Error(), "individual 3 lists neighbor 9") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestChunks(t *testing.T) {
	tests := []struct {
		workers, n int
		want       int
	}{
		{1, 100, 1},
		{4, 100, 4},
		{4, 3, 3},
		{8, 10, 5},
		{4, 0, 1},
	}
	for _, tt := range tests {
		s := NewStepper(baseParams(), rand.NewPCG(0, 0), WithWorkers(tt.workers))
		chunks := s.chunks(tt.n)
		if len(chunks) != tt.want {
			t.Errorf("chunks(workers=%d, n=%d) = %v, want %d ranges", tt.workers, tt.n, chunks, tt.want)
		}
		covered := 0
		for _, c := range chunks {
			covered += c[1] - c[0]
		}
		if covered != tt.n {
			t.Errorf("chunks(workers=%d, n=%d) cover %d", tt.workers, tt.n, covered)
		}
	}
}

func TestSimulate_MatchesStepper(t *testing.T) {
	p := baseParams()
	net := generate(t, p, 21)

	gotNet, gotStats := Simulate(net, p, 1, rand.NewPCG(8, 9))
	wantNet, wantStats := NewStepper(p, rand.NewPCG(8, 9)).Step(net, 1)

	if gotStats != wantStats {
		t.Errorf("Simulate stats = %+v, Stepper stats = %+v", gotStats, wantStats)
	}
	if !reflect.DeepEqual(gotNet.Individuals, wantNet.Individuals) {
		t.Error("Simulate and Stepper produced different snapshots")
	}
}
