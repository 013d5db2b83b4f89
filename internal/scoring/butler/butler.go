// Package butler scores a board in IMPs against a trimmed-mean datum.
package butler

import (
	"sort"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

const (
	// MinimumScores is the sample size below which no trimming happens
	// (trimming needs more than MinimumScores+2 results).
	MinimumScores = 3

	// ImpsPerTenPercent converts adjusted percentages to IMPs.
	ImpsPerTenPercent = 2
)

// Datum is the reference score of one board direction.
type Datum struct {
	Value   int
	Sample  int // real scores considered
	Trimmed int // scores removed from each end
	Valid   bool
}

// Award is the IMP result one pair earns on a board.
type Award struct {
	Pair int
	IMPs int
}

// Direction holds the outcome of scoring one direction of a board.
type Direction struct {
	Datum  Datum
	Awards []Award
}

// ComputeDatum computes the trimmed mean of the real scores, rounded to a
// multiple of ten. Percentage and sentinel values are ignored.
func ComputeDatum(values []score.Value) Datum {
	real := make([]int, 0, len(values))
	for _, v := range values {
		if v.IsReal() {
			real = append(real, int(v))
		}
	}
	if len(real) == 0 {
		return Datum{}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(real)))

	n := len(real)
	trim := 0
	if n > MinimumScores+2 {
		trim = (n + 9) / 10
		if trim < 1 {
			trim = 1
		}
	}
	kept := real[trim : n-trim]

	sum := 0
	for _, s := range kept {
		sum += s
	}
	mean := sum / len(kept)

	return Datum{
		Value:   roundToTen(mean),
		Sample:  n,
		Trimmed: trim,
		Valid:   true,
	}
}

// IMPs returns the IMPs a score earns against datum.
func IMPs(v score.Value, datum int) int {
	if v.IsPercentage() {
		return 2 * ImpsPerTenPercent * (v.ToReal() - 50) / 10
	}
	diff := int(v) - datum
	if diff < 0 {
		return -Lookup(-diff)
	}
	return Lookup(diff)
}

// ScoreDirection computes the datum of one direction and each pair's IMPs.
func ScoreDirection(results []score.PairScore) Direction {
	values := make([]score.Value, len(results))
	for i, r := range results {
		values[i] = r.Score
	}
	d := Direction{Datum: ComputeDatum(values)}

	for _, r := range results {
		switch {
		case r.Score.IsPercentage():
			d.Awards = append(d.Awards, Award{Pair: r.Pair, IMPs: IMPs(r.Score, 0)})
		case r.Score.IsReal() && d.Datum.Valid:
			d.Awards = append(d.Awards, Award{Pair: r.Pair, IMPs: IMPs(r.Score, d.Datum.Value)})
		}
	}
	return d
}

func roundToTen(v int) int {
	if v < 0 {
		return -((-v + 5) / 10 * 10)
	}
	return (v + 5) / 10 * 10
}
