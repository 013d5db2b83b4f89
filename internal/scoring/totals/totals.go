// Package totals aggregates per-session pair results into competition totals.
package totals

import (
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/correction"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/ranking"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// Session is a pair's stored short result for one session. Games == 0 means
// the pair was absent. Excluded sessions do not count for the pair at all.
type Session struct {
	Score    score.Hundredths
	Games    int
	Bonus    score.Hundredths
	Excluded bool
}

// Played reports whether the pair played boards in the session.
func (s Session) Played() bool {
	return !s.Excluded && s.Games > 0
}

// Config holds the aggregation settings.
type Config struct {
	MaxSessions int
	GameCount   int
	MaxAbsent   int
	MaxMean     score.Hundredths // zero or negative: no cap
	Weighted    bool
}

// Result is a pair's competition total.
type Result struct {
	Pair int

	// Published values, selected by Config.Weighted.
	Total   score.Hundredths
	Average score.Hundredths
	Final   score.Hundredths // Total + Bonus, the ranking key

	PlainTotal      score.Hundredths
	PlainAverage    score.Hundredths
	WeightedTotal   score.Hundredths
	WeightedAverage score.Hundredths
	Bonus           score.Hundredths

	// Substitute is the value credited for each absence, zero when none was.
	Substitute         score.Hundredths
	WeightedSubstitute score.Hundredths

	Sessions  int // sessions actually played
	Effective int // sessions counting toward the denominator
	Absent    int
	Games     int

	HasPlayed       bool
	MethodsDisagree bool
}

// ApplyEnd layers an end correction over a stored session result.
func ApplyEnd(s Session, e correction.EndCorrection, gameCount int) Session {
	switch {
	case e.Score == correction.EndNoTotal:
		s.Excluded = true
		return s
	case e.Score == correction.EndIgnore:
		return Session{}
	case e.Score == 0 && e.Games == 0:
		s.Bonus += e.Bonus
		return s
	}

	s.Score = e.Score
	switch {
	case e.Games > 0:
		s.Games = e.Games
	case s.Games == 0:
		s.Games = gameCount
	}
	return s
}

// Aggregate computes one pair's totals. sessions beyond cfg.MaxSessions are
// ignored; missing sessions count as absences.
func Aggregate(cfg Config, pair int, sessions []Session) Result {
	r := Result{Pair: pair}

	var sum, weighted int64
	for i := 0; i < cfg.MaxSessions; i++ {
		var s Session
		if i < len(sessions) {
			s = sessions[i]
		}
		if s.Excluded {
			continue
		}
		r.Effective++
		r.Bonus += s.Bonus
		if s.Games <= 0 {
			r.Absent++
			continue
		}
		r.Sessions++
		r.Games += s.Games
		sum += int64(s.Score)
		weighted += int64(s.Score) * int64(s.Games)
	}

	if r.Effective == 0 {
		return Result{Pair: pair}
	}
	r.HasPlayed = r.Sessions > 0

	substitute := r.Absent > 0 && r.Absent <= cfg.MaxAbsent && r.Absent < r.Effective
	absent := int64(r.Absent)

	plain := sum
	if substitute {
		r.Substitute = clamp(score.Hundredths(score.RoundDiv(sum, int64(r.Sessions))), cfg.MaxMean)
		plain += absent * int64(r.Substitute)
	}
	r.PlainTotal = score.Hundredths(plain)
	r.PlainAverage = score.Hundredths(score.RoundDiv(plain, int64(r.Effective)))

	games := int64(r.Games) + absent*int64(cfg.GameCount)
	if substitute {
		r.WeightedSubstitute = clamp(score.Hundredths(score.RoundDiv(weighted, int64(r.Games))), cfg.MaxMean)
		weighted += absent * int64(cfg.GameCount) * int64(r.WeightedSubstitute)
	}
	r.WeightedAverage = score.Hundredths(score.RoundDiv(weighted, games))
	r.WeightedTotal = r.WeightedAverage * score.Hundredths(r.Effective)

	if cfg.Weighted {
		r.Total, r.Average = r.WeightedTotal, r.WeightedAverage
	} else {
		r.Total, r.Average = r.PlainTotal, r.PlainAverage
	}
	r.Final = r.Total + r.Bonus
	r.MethodsDisagree = r.PlainAverage != r.WeightedAverage
	return r
}

// Compute aggregates every pair 1..pairCount. sessions maps a pair to its
// per-session results in session order. The returned slice is indexed by pair.
func Compute(cfg Config, pairCount int, sessions map[int][]Session) []Result {
	if pairCount <= 0 || cfg.MaxSessions <= 0 {
		return nil
	}
	out := make([]Result, pairCount+1)
	for p := 1; p <= pairCount; p++ {
		out[p] = Aggregate(cfg, p, sessions[p])
	}
	return out
}

// Rank builds the total rank table from Compute's output. Pairs that never
// played are left unranked.
func Rank(results []Result) ranking.Table {
	if len(results) == 0 {
		return ranking.Table{}
	}
	scores := make([]int64, len(results))
	played := make([]bool, len(results))
	for p := 1; p < len(results); p++ {
		scores[p] = int64(results[p].Final)
		played[p] = results[p].HasPlayed
	}
	return ranking.Build(scores, played)
}

func clamp(v, ceiling score.Hundredths) score.Hundredths {
	if ceiling > 0 && v > ceiling {
		return ceiling
	}
	return v
}
