package matchpoint

import (
	"sort"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// FrequencyEntry is one row of a board's merged frequency table, keyed by the
// North-South score.
type FrequencyEntry struct {
	Score score.Value
	Count int
	NS    score.Tenths
	EW    score.Tenths
	HasNS bool
	HasEW bool
}

// Table is a board's frequency table ordered by descending North-South score.
type Table []FrequencyEntry

// Merge combines the two direction tables of a board. East-West scores are
// translated to their North-South complement so both columns share one key.
func Merge(ns, ew Direction) Table {
	index := make(map[score.Value]int, len(ns.Entries))
	table := make(Table, 0, len(ns.Entries))

	for _, e := range ns.Entries {
		index[e.Score] = len(table)
		table = append(table, FrequencyEntry{Score: e.Score, Count: e.Count, NS: e.Points, HasNS: true})
	}

	for _, e := range ew.Entries {
		key := e.Score.Complement()
		if i, ok := index[key]; ok {
			table[i].EW = e.Points
			table[i].HasEW = true
			if e.Count > table[i].Count {
				table[i].Count = e.Count
			}
			continue
		}
		index[key] = len(table)
		table = append(table, FrequencyEntry{Score: key, Count: e.Count, EW: e.Points, HasEW: true})
	}

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Score > table[j].Score
	})
	return table
}

// TotalPoints returns the sum of matchpoints awarded in one column, counting
// every occurrence.
func (t Table) TotalPoints(ew bool) score.Tenths {
	var total score.Tenths
	for _, e := range t {
		if ew {
			total += e.EW * score.Tenths(e.Count)
		} else {
			total += e.NS * score.Tenths(e.Count)
		}
	}
	return total
}
