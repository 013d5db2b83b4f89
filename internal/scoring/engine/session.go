package engine

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/butler"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/clubs"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/correction"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/matchpoint"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/ranking"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// board is a game's usable rows split by direction.
type board struct {
	game int
	sets int
	ns   []score.PairScore
	ew   []score.PairScore
}

// ScoreSession scores every board of a session, folds in corrections and
// ranks the pairs. Invalid rows and corrections are reported, never fatal.
func ScoreSession(cfg Config, in SessionInput) *SessionResults {
	res := &SessionResults{
		Session: in.Session,
		Method:  cfg.Method,
	}
	if cfg.PairCount <= 0 {
		return res
	}

	boards := collectBoards(cfg, in, res)
	tallies := make([]correction.Tally, cfg.PairCount+1)

	switch cfg.Method {
	case score.MethodButler:
		res.Butler = scoreButler(boards, tallies)
	default:
		res.Percentage, res.NormalTop = scorePercentage(cfg, boards, tallies)
	}

	var checker correction.CombiChecker
	combiTop := 0
	if in.Schema != nil {
		checker = in.Schema
		combiTop = in.Schema.CombiTop()
	}
	corrections, diags := correction.ValidateSession(cfg.Method, in.Session, cfg.PairCount, in.Corrections, checker)
	res.Diagnostics = diags

	scale := correction.Scale{NormalTop: res.NormalTop, CombiTop: combiTop}
	res.Pairs = make([]PairResult, cfg.PairCount+1)
	scores := make([]int64, cfg.PairCount+1)
	played := make([]bool, cfg.PairCount+1)

	for p := 1; p <= cfg.PairCount; p++ {
		c, corrected := corrections[p]
		out := correction.Fold(cfg.Method, tallies[p], c, scale)
		pr := PairResult{
			Pair:       p,
			GlobalPair: globalPair(in.GlobalPair, p),
			Tally:      out.Tally,
			Score:      out.Score,
			HasScore:   out.HasScore,
			Corrected:  corrected,
		}
		res.Pairs[p] = pr
		scores[p] = int64(pr.Score)
		played[p] = pr.Played()
	}

	res.Rank = ranking.Build(scores, played)
	return res
}

// SessionClubs aggregates a session's pair scores by club. clubOf is keyed by
// global pair.
func SessionClubs(cfg Config, res *SessionResults, clubOf map[int]int) []clubs.Club {
	members := make([]clubs.Member, 0, len(res.Pairs))
	for _, p := range res.Pairs {
		if p.Pair == 0 {
			continue
		}
		members = append(members, clubs.Member{
			Pair:   p.GlobalPair,
			Club:   clubOf[p.GlobalPair],
			Score:  p.Score,
			Played: p.Played(),
		})
	}
	return clubs.Aggregate(members, clubs.Rules{MinCount: cfg.MinClubCount, MaxCount: cfg.MaxClubCount})
}

func globalPair(mapping []int, pair int) int {
	if pair < len(mapping) && mapping[pair] > 0 {
		return mapping[pair]
	}
	return pair
}

// collectBoards drops rows that reference unknown pairs and records them as
// bad data. Pairs playing more boards than their schema rounds allow are
// reported too; a pair with unknown rounds is not checked.
func collectBoards(cfg Config, in SessionInput, res *SessionResults) []board {
	games := make([]int, 0, len(in.Boards))
	for g := range in.Boards {
		games = append(games, g)
	}
	sort.Ints(games)

	played := make(map[int]int)
	out := make([]board, 0, len(games))

	for _, g := range games {
		b := board{game: g}
		for _, row := range in.Boards[g] {
			if reason := rowProblem(cfg.PairCount, row); reason != "" {
				res.BadData = append(res.BadData, BadData{Game: g, PairNS: row.PairNS, PairEW: row.PairEW, Reason: reason})
				continue
			}
			if !row.Played() {
				continue
			}
			b.sets++
			b.ns = append(b.ns, score.PairScore{Pair: row.PairNS, Score: row.ScoreNS})
			b.ew = append(b.ew, score.PairScore{Pair: row.PairEW, Score: row.EW()})
			played[row.PairNS]++
			played[row.PairEW]++
		}
		out = append(out, b)
	}

	if in.Schema != nil && cfg.SetSize > 0 {
		for p := 1; p <= cfg.PairCount; p++ {
			rounds := in.Schema.NumberOfRounds(p)
			limit := rounds * cfg.SetSize
			if rounds > 0 && played[p] > limit {
				res.BadData = append(res.BadData, BadData{
					PairNS: p,
					Reason: fmt.Sprintf("pair %d played %d boards, schema allows %d", p, played[p], limit),
				})
			}
		}
	}
	return out
}

func rowProblem(pairCount int, row BoardResult) string {
	switch {
	case row.PairNS < 1 || row.PairNS > pairCount:
		return fmt.Sprintf("NS pair %d out of range 1..%d", row.PairNS, pairCount)
	case row.PairEW < 1 || row.PairEW > pairCount:
		return fmt.Sprintf("EW pair %d out of range 1..%d", row.PairEW, pairCount)
	case row.PairNS == row.PairEW:
		return fmt.Sprintf("pair %d sits both directions", row.PairNS)
	}
	return ""
}

func scorePercentage(cfg Config, boards []board, tallies []correction.Tally) (*PercentageDetail, int) {
	detail := &PercentageDetail{
		Frequencies: make(map[int]matchpoint.Table, len(boards)),
		Tops:        make(map[int]int, len(boards)),
	}
	opts := matchpoint.Options{Neuberg: cfg.Neuberg}
	normalTop := 0

	for _, b := range boards {
		ns := matchpoint.ScoreDirection(b.ns, b.sets, opts)
		ew := matchpoint.ScoreDirection(b.ew, b.sets, opts)

		for _, d := range []matchpoint.Direction{ns, ew} {
			for _, a := range d.Awards {
				t := &tallies[a.Pair]
				t.Games++
				t.MaxScore += a.Top
				t.Points += a.Points
			}
		}

		detail.Frequencies[b.game] = matchpoint.Merge(ns, ew)
		detail.Tops[b.game] = ns.NormalTop
		if ns.NormalTop > normalTop {
			normalTop = ns.NormalTop
		}
	}
	return detail, normalTop
}

func scoreButler(boards []board, tallies []correction.Tally) *ButlerDetail {
	detail := &ButlerDetail{Datums: make(map[int]BoardDatum, len(boards))}

	for _, b := range boards {
		ns := butler.ScoreDirection(b.ns)
		ew := butler.ScoreDirection(b.ew)

		for _, d := range []butler.Direction{ns, ew} {
			for _, a := range d.Awards {
				t := &tallies[a.Pair]
				t.Games++
				t.IMPs += a.IMPs
			}
		}
		detail.Datums[b.game] = BoardDatum{NS: ns.Datum, EW: ew.Datum}
	}
	return detail
}
