// Package ranking turns per-pair scores into 1-based rank tables.
package ranking

import "sort"

// Table maps positions to pairs and pairs to ranks. Both slices are 1-based;
// index 0 is unused. Positions past the last played pair hold pair 0, and
// pairs that did not play have rank 0.
type Table struct {
	PairAt []int
	RankOf []int
}

// Len returns the number of pairs the table was built for.
func (t Table) Len() int {
	if len(t.PairAt) == 0 {
		return 0
	}
	return len(t.PairAt) - 1
}

// Ranked returns the number of pairs holding a rank.
func (t Table) Ranked() int {
	n := 0
	for _, p := range t.PairAt[min(1, len(t.PairAt)):] {
		if p != 0 {
			n++
		}
	}
	return n
}

// Build ranks pairs 1..len(scores)-1 by descending score. scores and played
// are indexed by pair id; index 0 is ignored. Equal scores share the best
// rank of their group; pairs with the same score keep pair id order.
func Build(scores []int64, played []bool) Table {
	n := len(scores) - 1
	if n < 0 {
		n = 0
	}

	ids := make([]int, 0, n)
	for p := 1; p <= n; p++ {
		if p < len(played) && played[p] {
			ids = append(ids, p)
		}
	}

	return Positions(n, ids, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		}
		return 0
	})
}

// Positions orders ids with cmp (negative when a ranks ahead of b, zero when
// they are equal) and builds a table over n ids. Entries that compare equal
// to their predecessor take its rank.
func Positions(n int, ids []int, cmp func(a, b int) int) Table {
	t := Table{
		PairAt: make([]int, n+1),
		RankOf: make([]int, n+1),
	}

	sorted := append([]int(nil), ids...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := cmp(sorted[i], sorted[j]); c != 0 {
			return c < 0
		}
		return sorted[i] < sorted[j]
	})

	for i, id := range sorted {
		pos := i + 1
		t.PairAt[pos] = id
		t.RankOf[id] = pos
		if i > 0 && cmp(sorted[i-1], id) == 0 {
			t.RankOf[id] = t.RankOf[sorted[i-1]]
		}
	}
	return t
}
