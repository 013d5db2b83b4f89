// Package clubs aggregates pair scores by club affiliation.
package clubs

import (
	"sort"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/ranking"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// Member is one pair's contribution. Club 0 means unaffiliated.
type Member struct {
	Pair   int
	Club   int
	Score  score.Hundredths
	Played bool
}

// Rules bounds how many members count for a club.
type Rules struct {
	MinCount int // clubs with fewer contributors rank below all others
	MaxCount int // only the best MaxCount scores enter the average; <= 0 counts all
}

// Club is the accumulated result of one club.
type Club struct {
	ID       int
	Capped   score.Hundredths // sum of the best MaxCount scores
	Total    score.Hundredths // sum of all scores
	Count    int
	Average  score.Hundredths
	Eligible bool
	Rank     int
	Pairs    []int
}

// Aggregate groups played, affiliated members into clubs and ranks them. The
// result is in ranking order; equal clubs keep ascending club id.
func Aggregate(members []Member, rules Rules) []Club {
	byClub := make(map[int][]Member)
	for _, m := range members {
		if m.Club == 0 || !m.Played {
			continue
		}
		byClub[m.Club] = append(byClub[m.Club], m)
	}
	if len(byClub) == 0 {
		return nil
	}

	list := make([]Club, 0, len(byClub))
	for id, ms := range byClub {
		list = append(list, accumulate(id, ms, rules))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	// Positions works on 1-based ids, so index into list+1.
	ids := make([]int, len(list))
	for i := range list {
		ids[i] = i + 1
	}
	table := ranking.Positions(len(list), ids, func(a, b int) int {
		return Compare(list[a-1], list[b-1])
	})

	out := make([]Club, 0, len(list))
	for pos := 1; pos <= len(list); pos++ {
		idx := table.PairAt[pos]
		c := list[idx-1]
		c.Rank = table.RankOf[idx]
		out = append(out, c)
	}
	return out
}

// Compare orders clubs: eligible before ineligible, then higher average.
// It returns a negative value when a ranks ahead of b.
func Compare(a, b Club) int {
	if a.Eligible != b.Eligible {
		if a.Eligible {
			return -1
		}
		return 1
	}
	switch {
	case a.Average > b.Average:
		return -1
	case a.Average < b.Average:
		return 1
	}
	return 0
}

func accumulate(id int, members []Member, rules Rules) Club {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Score > members[j].Score
	})

	c := Club{ID: id, Count: len(members)}
	limit := len(members)
	if rules.MaxCount > 0 && rules.MaxCount < limit {
		limit = rules.MaxCount
	}
	for i, m := range members {
		c.Total += m.Score
		if i < limit {
			c.Capped += m.Score
		}
		c.Pairs = append(c.Pairs, m.Pair)
	}
	sort.Ints(c.Pairs)

	c.Average = score.Hundredths(score.RoundDiv(int64(c.Capped), int64(limit)))
	c.Eligible = c.Count >= rules.MinCount
	return c
}
