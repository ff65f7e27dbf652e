package network

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestWeightedSample_Distinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	weights := []float64{5, 1, 1, 8, 2, 2, 3, 1}

	for trial := 0; trial < 200; trial++ {
		got := WeightedSample(weights, 5, rng)
		if len(got) != 5 {
			t.Fatalf("len = %d, want 5", len(got))
		}
		seen := make(map[int]bool)
		for _, idx := range got {
			if idx < 0 || idx >= len(weights) {
				t.Fatalf("index %d out of range", idx)
			}
			if seen[idx] {
				t.Fatalf("duplicate index %d in %v", idx, got)
			}
			seen[idx] = true
		}
	}
}

func TestWeightedSample_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	tests := []struct {
		name    string
		weights []float64
		count   int
		wantLen int
	}{
		{"zero count", []float64{1, 2}, 0, 0},
		{"negative count", []float64{1, 2}, -1, 0},
		{"empty pool", nil, 3, 0},
		{"pool smaller than count", []float64{1, 2, 3}, 5, 3},
		{"exact pool", []float64{1, 2, 3}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedSample(tt.weights, tt.count, rng)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestWeightedSample_SkipsZeroWeights(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	weights := []float64{0, 1, 0, 2, -4}

	for trial := 0; trial < 100; trial++ {
		got := WeightedSample(weights, 2, rng)
		slices.Sort(got)
		if !slices.Equal(got, []int{1, 3}) {
			t.Fatalf("WeightedSample = %v, want [1 3]", got)
		}
	}
}

func TestWeightedSample_AllZeroFallsBackToUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	weights := []float64{0, 0, 0, 0}

	got := WeightedSample(weights, 4, rng)
	slices.Sort(got)
	if !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("WeightedSample = %v, want all indices", got)
	}
}

func TestWeightedSample_Proportional(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	weights := []float64{1, 3}

	const trials = 20000
	hits := 0
	for i := 0; i < trials; i++ {
		if WeightedSample(weights, 1, rng)[0] == 1 {
			hits++
		}
	}
	frac := float64(hits) / trials
	if frac < 0.72 || frac > 0.78 {
		t.Errorf("index 1 drawn %.3f of the time, want about 0.75", frac)
	}
}

func TestWeightedSample_SecondDrawRenormalizes(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	// After removing the heavy item, the two light ones split evenly.
	weights := []float64{100, 1, 1}

	const trials = 20000
	firstLight := 0
	for i := 0; i < trials; i++ {
		got := WeightedSample(weights, 2, rng)
		if got[0] != 0 {
			continue
		}
		if got[1] == 1 {
			firstLight++
		}
	}
	frac := float64(firstLight) / trials
	if frac < 0.44 || frac > 0.54 {
		t.Errorf("second draw picked index 1 %.3f of the time, want about 0.49", frac)
	}
}

func TestFenwick_FindMatchesLinearScan(t *testing.T) {
	weights := []float64{2, 0, 3, 1, 0, 4, 5}
	f := newFenwick(weights)

	if f.total() != 15 {
		t.Fatalf("total = %v, want 15", f.total())
	}

	linear := func(r float64) int {
		for i, w := range weights {
			if r < w {
				return i
			}
			r -= w
		}
		return len(weights)
	}

	for r := 0.0; r < 15; r += 0.25 {
		if got, want := f.find(r), linear(r); got != want {
			t.Errorf("find(%v) = %d, want %d", r, got, want)
		}
	}

	f.add(2, -3)
	weights[2] = 0
	for r := 0.0; r < 12; r += 0.5 {
		if got, want := f.find(r), linear(r); got != want {
			t.Errorf("after removal find(%v) = %d, want %d", r, got, want)
		}
	}
}
