package engine

import (
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/clubs"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/correction"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/totals"
)

// ScoreCompetition layers end corrections over the stored session results,
// aggregates totals, ranks the pairs and ranks the clubs. Only sessions held
// so far count, capped at MaxSessions.
func ScoreCompetition(cfg Config, in CompetitionInput) *CompetitionResults {
	res := &CompetitionResults{}

	sessions := len(in.Sessions)
	if cfg.MaxSessions > 0 && cfg.MaxSessions < sessions {
		sessions = cfg.MaxSessions
	}
	if in.PairCount <= 0 || sessions == 0 {
		return res
	}

	lim := correction.Limits{Method: cfg.Method, PairCount: in.PairCount, GameCount: cfg.GameCount}
	perPair := make(map[int][]totals.Session, in.PairCount)

	for s := 1; s <= sessions; s++ {
		var stored map[int]totals.Session
		if s <= len(in.Sessions) {
			stored = in.Sessions[s-1]
		}
		ends, diags := correction.ValidateEnd(s, in.EndCorrections[s], lim)
		res.Diagnostics = append(res.Diagnostics, diags...)

		for p := 1; p <= in.PairCount; p++ {
			sess := stored[p]
			if e, ok := ends[p]; ok {
				sess = totals.ApplyEnd(sess, e, cfg.GameCount)
			}
			perPair[p] = append(perPair[p], sess)
		}
	}

	tcfg := totals.Config{
		MaxSessions: sessions,
		GameCount:   cfg.GameCount,
		MaxAbsent:   cfg.MaxAbsent,
		MaxMean:     cfg.MaxMean,
		Weighted:    cfg.WeightedAverage,
	}
	res.Totals = totals.Compute(tcfg, in.PairCount, perPair)
	res.Rank = totals.Rank(res.Totals)

	// A pair's club score is its competition average, not its total, so
	// members with fewer sessions are not penalised.
	members := make([]clubs.Member, 0, in.PairCount)
	for p := 1; p < len(res.Totals); p++ {
		t := res.Totals[p]
		members = append(members, clubs.Member{
			Pair:   p,
			Club:   in.Clubs[p],
			Score:  t.Average,
			Played: t.HasPlayed,
		})
	}
	res.Clubs = clubs.Aggregate(members, clubs.Rules{MinCount: cfg.MinClubCount, MaxCount: cfg.MaxClubCount})
	return res
}
