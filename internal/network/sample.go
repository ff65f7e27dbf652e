package network

import "math/rand/v2"

// WeightedSample draws count distinct indices from weights without
// replacement. Each draw picks index i with probability weights[i]
// divided by the total weight still in the pool. Negative weights count
// as zero. When the remaining pool has no weight left, the rest of the
// draws are uniform over the indices not yet taken.
//
// If count >= len(weights), every index is returned (in draw order).
func WeightedSample(weights []float64, count int, rng *rand.Rand) []int {
	n := len(weights)
	count = min(count, n)
	if count <= 0 {
		return nil
	}

	remaining := make([]float64, n)
	for i, w := range weights {
		if w > 0 {
			remaining[i] = w
		}
	}
	tree := newFenwick(remaining)
	taken := make([]bool, n)
	selected := make([]int, 0, count)

	for len(selected) < count {
		idx := n
		if total := tree.total(); total > 0 {
			idx = tree.find(rng.Float64() * total)
		}
		// Rounding can leave residue on removed entries; fall back to an
		// exact scan whenever the tree points somewhere it should not.
		if idx >= n || taken[idx] || remaining[idx] <= 0 {
			idx = linearPick(remaining, taken, rng)
		}
		if idx < 0 {
			idx = uniformPick(taken, rng)
		}

		selected = append(selected, idx)
		taken[idx] = true
		tree.add(idx, -remaining[idx])
		remaining[idx] = 0
	}
	return selected
}

// linearPick is the exact O(n) weighted draw over untaken indices.
// Returns -1 when no untaken index has positive weight.
func linearPick(remaining []float64, taken []bool, rng *rand.Rand) int {
	total := 0.0
	for i, w := range remaining {
		if !taken[i] {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := rng.Float64() * total
	last := -1
	for i, w := range remaining {
		if taken[i] || w <= 0 {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	return last
}

func uniformPick(taken []bool, rng *rand.Rand) int {
	free := make([]int, 0, len(taken))
	for i, t := range taken {
		if !t {
			free = append(free, i)
		}
	}
	return free[rng.IntN(len(free))]
}

// fenwick is a binary indexed tree over float64 weights supporting
// point updates and prefix-sum search in O(log n).
type fenwick struct {
	tree []float64 // 1-based
	sum  float64
}

func newFenwick(weights []float64) *fenwick {
	f := &fenwick{tree: make([]float64, len(weights)+1)}
	for i, w := range weights {
		f.tree[i+1] += w
		if parent := (i + 1) + ((i + 1) & -(i + 1)); parent < len(f.tree) {
			f.tree[parent] += f.tree[i+1]
		}
		f.sum += w
	}
	return f
}

func (f *fenwick) total() float64 {
	return f.sum
}

func (f *fenwick) add(i int, delta float64) {
	f.sum += delta
	for j := i + 1; j < len(f.tree); j += j & -j {
		f.tree[j] += delta
	}
}

// find returns the smallest index whose inclusive prefix sum exceeds r.
// Zero-weight entries are never returned unless r is at or past the total,
// in which case len(weights) is returned.
func (f *fenwick) find(r float64) int {
	n := len(f.tree) - 1
	step := 1
	for step*2 <= n {
		step *= 2
	}
	pos := 0
	for ; step > 0; step /= 2 {
		next := pos + step
		if next <= n && f.tree[next] <= r {
			pos = next
			r -= f.tree[next]
		}
	}
	return pos
}
