// Package matchpoint scores a board by matchpoints: it builds the frequency table
// of the results in one direction, awards matchpoints per pair, and merges the
// North-South and East-West tables into one.
package matchpoint

import (
	"sort"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// Entry is one distinct score in a single direction.
type Entry struct {
	Score  score.Value
	Count  int
	Points score.Tenths // matchpoints awarded to each occurrence
}

// Award is the matchpoint credit one pair earns on a board.
type Award struct {
	Pair   int
	Points score.Tenths
	Top    int // normal top of the board, in whole matchpoints
}

// Direction holds the outcome of scoring one direction of a board.
type Direction struct {
	Entries   []Entry
	Awards    []Award
	NormalTop int
	Adjusted  int // number of percentage-encoded results
}

// Options controls matchpoint scoring.
type Options struct {
	// Neuberg recomputes real-score matchpoints with the Neuberg formula
	// whenever the board carries adjusted scores.
	Neuberg bool
}

// NormalTop returns the top of a board played by sets tables.
func NormalTop(sets int) int {
	if sets < 1 {
		return 0
	}
	return 2 * (sets - 1)
}

// ScoreDirection awards matchpoints for one direction of a board. results holds
// each pair's score from its own side; values that are neither real nor percentage
// are ignored. sets is the number of tables that played the board.
func ScoreDirection(results []score.PairScore, sets int, opts Options) Direction {
	scored := make([]score.PairScore, 0, len(results))
	adjusted := 0
	for _, r := range results {
		switch r.Score.Kind() {
		case score.KindPercentage:
			adjusted++
			scored = append(scored, r)
		case score.KindReal:
			scored = append(scored, r)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	normalTop := NormalTop(sets)
	top := normalTop - adjusted
	if opts.Neuberg {
		top = normalTop - 2*adjusted
	}
	comparable := len(scored) - adjusted
	useNeuberg := opts.Neuberg && adjusted > 0

	d := Direction{
		Entries:   make([]Entry, 0, len(scored)),
		Awards:    make([]Award, 0, len(scored)),
		NormalTop: normalTop,
		Adjusted:  adjusted,
	}

	for i := 0; i < len(scored); {
		j := i
		for j < len(scored) && scored[j].Score == scored[i].Score {
			j++
		}
		k := j - i
		v := scored[i].Score

		var points score.Tenths
		if v.IsPercentage() {
			points = score.Tenths(score.RoundDiv(int64(normalTop)*int64(v.ToReal()), 10))
		} else {
			raw := 1 + top - k
			if useNeuberg {
				points = Neuberg(raw, sets, comparable)
			} else {
				points = score.TenthsFromPoints(raw)
			}
			top -= 2 * k
		}

		d.Entries = append(d.Entries, Entry{Score: v, Count: k, Points: points})
		for _, r := range scored[i:j] {
			d.Awards = append(d.Awards, Award{Pair: r.Pair, Points: points, Top: normalTop})
		}
		i = j
	}

	return d
}
