package export

import (
	"sort"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/clubs"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// StandingRow is one line of a session ranking.
type StandingRow struct {
	Position   int              `json:"position" csv:"position"`
	Rank       int              `json:"rank" csv:"rank"`
	Pair       int              `json:"pair" csv:"pair"`
	GlobalPair int              `json:"globalPair" csv:"global_pair"`
	Name       string           `json:"name,omitempty" csv:"name"`
	Score      score.Hundredths `json:"score" csv:"score"`
	Games      int              `json:"games" csv:"games"`
	Corrected  bool             `json:"corrected" csv:"corrected"`
}

// FrequencyRow is one line of a board frequency table.
type FrequencyRow struct {
	Game     int          `json:"game" csv:"game"`
	Score    score.Value  `json:"score" csv:"score"`
	Count    int          `json:"count" csv:"count"`
	NSPoints score.Tenths `json:"nsPoints" csv:"ns_points"`
	EWPoints score.Tenths `json:"ewPoints" csv:"ew_points"`
}

// DatumRow is the Butler datum of one board.
type DatumRow struct {
	Game     int  `json:"game" csv:"game"`
	NSDatum  int  `json:"nsDatum" csv:"ns_datum"`
	EWDatum  int  `json:"ewDatum" csv:"ew_datum"`
	Sample   int  `json:"sample" csv:"sample"`
	Trimmed  int  `json:"trimmed" csv:"trimmed"`
	HasDatum bool `json:"hasDatum" csv:"has_datum"`
}

// TotalRow is one line of the competition ranking.
type TotalRow struct {
	Position   int              `json:"position" csv:"position"`
	Rank       int              `json:"rank" csv:"rank"`
	Pair       int              `json:"pair" csv:"pair"`
	Name       string           `json:"name,omitempty" csv:"name"`
	Sessions   int              `json:"sessions" csv:"sessions"`
	Absent     int              `json:"absent" csv:"absent"`
	Games      int              `json:"games" csv:"games"`
	Total      score.Hundredths `json:"total" csv:"total"`
	Bonus      score.Hundredths `json:"bonus" csv:"bonus"`
	Final      score.Hundredths `json:"final" csv:"final"`
	Average    score.Hundredths `json:"average" csv:"average"`
	Substitute score.Hundredths `json:"substitute" csv:"substitute"`
	Disagree   bool             `json:"methodsDisagree" csv:"methods_disagree"`
}

// ClubRow is one line of the club ranking.
type ClubRow struct {
	Rank     int              `json:"rank" csv:"rank"`
	Club     int              `json:"club" csv:"club"`
	Name     string           `json:"name,omitempty" csv:"name"`
	Members  int              `json:"members" csv:"members"`
	Total    score.Hundredths `json:"total" csv:"total"`
	Counted  score.Hundredths `json:"counted" csv:"counted"`
	Average  score.Hundredths `json:"average" csv:"average"`
	Eligible bool             `json:"eligible" csv:"eligible"`
}

// Names resolves display names; a nil Names leaves names empty.
type Names map[int]string

// SessionStandings lists a session's ranked pairs in rank order.
func SessionStandings(res *engine.SessionResults, names Names) []StandingRow {
	var rows []StandingRow
	for pos := 1; pos < len(res.Rank.PairAt); pos++ {
		pair := res.Rank.PairAt[pos]
		if pair == 0 || pair >= len(res.Pairs) {
			continue
		}
		p := res.Pairs[pair]
		rows = append(rows, StandingRow{
			Position:   pos,
			Rank:       res.Rank.RankOf[pair],
			Pair:       pair,
			GlobalPair: p.GlobalPair,
			Name:       names[p.GlobalPair],
			Score:      p.Score,
			Games:      p.Tally.Games,
			Corrected:  p.Corrected,
		})
	}
	return rows
}

// Frequencies flattens the matchpoint tables of a percentage session, board
// by board.
func Frequencies(res *engine.SessionResults) []FrequencyRow {
	if res.Percentage == nil {
		return nil
	}
	games := make([]int, 0, len(res.Percentage.Frequencies))
	for g := range res.Percentage.Frequencies {
		games = append(games, g)
	}
	sort.Ints(games)

	var rows []FrequencyRow
	for _, g := range games {
		for _, e := range res.Percentage.Frequencies[g] {
			rows = append(rows, FrequencyRow{Game: g, Score: e.Score, Count: e.Count, NSPoints: e.NS, EWPoints: e.EW})
		}
	}
	return rows
}

// Datums lists the board datums of a Butler session.
func Datums(res *engine.SessionResults) []DatumRow {
	if res.Butler == nil {
		return nil
	}
	games := make([]int, 0, len(res.Butler.Datums))
	for g := range res.Butler.Datums {
		games = append(games, g)
	}
	sort.Ints(games)

	rows := make([]DatumRow, 0, len(games))
	for _, g := range games {
		d := res.Butler.Datums[g]
		rows = append(rows, DatumRow{
			Game:     g,
			NSDatum:  d.NS.Value,
			EWDatum:  d.EW.Value,
			Sample:   d.NS.Sample,
			Trimmed:  d.NS.Trimmed,
			HasDatum: d.NS.Valid,
		})
	}
	return rows
}

// Totals lists the ranked pairs of a competition in rank order.
func Totals(res *engine.CompetitionResults, names Names) []TotalRow {
	var rows []TotalRow
	for pos := 1; pos < len(res.Rank.PairAt); pos++ {
		pair := res.Rank.PairAt[pos]
		if pair == 0 || pair >= len(res.Totals) {
			continue
		}
		t := res.Totals[pair]
		rows = append(rows, TotalRow{
			Position:   pos,
			Rank:       res.Rank.RankOf[pair],
			Pair:       pair,
			Name:       names[pair],
			Sessions:   t.Sessions,
			Absent:     t.Absent,
			Games:      t.Games,
			Total:      t.Total,
			Bonus:      t.Bonus,
			Final:      t.Final,
			Average:    t.Average,
			Substitute: t.Substitute,
			Disagree:   t.MethodsDisagree,
		})
	}
	return rows
}

// Clubs lists clubs in ranking order.
func Clubs(list []clubs.Club, names Names) []ClubRow {
	rows := make([]ClubRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, ClubRow{
			Rank:     c.Rank,
			Club:     c.ID,
			Name:     names[c.ID],
			Members:  c.Count,
			Total:    c.Total,
			Counted:  c.Capped,
			Average:  c.Average,
			Eligible: c.Eligible,
		})
	}
	return rows
}
