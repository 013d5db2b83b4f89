// Package engine scores complete sessions and competitions. Every call works on
// a full snapshot of its input and keeps no state between runs.
package engine

import (
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/butler"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/clubs"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/correction"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/matchpoint"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/ranking"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/totals"
)

// Config holds the competition settings the engine needs.
type Config struct {
	Method    score.Method
	PairCount int
	SetSize   int // boards per round
	GameCount int // boards per session
	Neuberg   bool

	MaxSessions     int
	MaxAbsent       int
	MaxMean         score.Hundredths
	WeightedAverage bool

	MinClubCount int
	MaxClubCount int
}

// BoardResult is one table's result on one board. ScoreEW is only entered
// when East-West received their own adjusted score; otherwise it is NoScore
// and East-West scored the complement of ScoreNS.
type BoardResult struct {
	PairNS  int
	PairEW  int
	ScoreNS score.Value
	ScoreEW score.Value
}

// EW returns the East-West score of the row.
func (b BoardResult) EW() score.Value {
	if b.ScoreEW.IsEntered() {
		return b.ScoreEW
	}
	return b.ScoreNS.Complement()
}

// Played reports whether either side has a usable score.
func (b BoardResult) Played() bool {
	return b.ScoreNS.IsEntered() || b.ScoreEW.IsEntered()
}

// Schema answers the pairing questions the engine needs.
type Schema interface {
	NumberOfRounds(pair int) int
	IsCombiCandidate(pair int) bool
	CombiTop() int
}

// SessionInput is everything needed to score one session.
type SessionInput struct {
	Session     int
	Boards      map[int][]BoardResult // keyed by game number
	Corrections map[int]correction.Correction
	Schema      Schema // optional
	// GlobalPair maps a session pair to its competition pair; nil means identity.
	GlobalPair []int
}

// PairResult is one pair's session result.
type PairResult struct {
	Pair       int
	GlobalPair int
	Tally      correction.Tally
	Score      score.Hundredths
	HasScore   bool
	Corrected  bool
}

// Played reports whether the pair takes part in the session ranking.
func (p PairResult) Played() bool {
	return p.Tally.Games > 0 && p.HasScore
}

// BadData reports a board row the engine could not use.
type BadData struct {
	Game   int
	PairNS int
	PairEW int
	Reason string
}

// BoardDatum holds both directions' Butler datum of a board.
type BoardDatum struct {
	NS butler.Datum
	EW butler.Datum
}

// PercentageDetail carries the per-board matchpoint tables.
type PercentageDetail struct {
	Frequencies map[int]matchpoint.Table
	Tops        map[int]int
}

// ButlerDetail carries the per-board datums.
type ButlerDetail struct {
	Datums map[int]BoardDatum
}

// SessionResults is the outcome of scoring one session. Exactly one of
// Percentage and Butler is set, matching Method.
type SessionResults struct {
	Session     int
	Method      score.Method
	Pairs       []PairResult // indexed by session pair; index 0 unused
	Rank        ranking.Table
	NormalTop   int
	Percentage  *PercentageDetail
	Butler      *ButlerDetail
	Diagnostics []correction.Diagnostic
	BadData     []BadData
}

// ShortResults returns the stored form of the session, keyed by global pair.
// Pairs that did not play are left out and count as absent later on.
func (r *SessionResults) ShortResults() map[int]totals.Session {
	out := make(map[int]totals.Session)
	for _, p := range r.Pairs {
		if p.Pair == 0 || !p.Played() {
			continue
		}
		out[p.GlobalPair] = totals.Session{Score: p.Score, Games: p.Tally.Games}
	}
	return out
}

// CompetitionInput is everything needed to compute competition totals.
type CompetitionInput struct {
	PairCount int
	// Sessions holds the short results of each session, oldest first.
	Sessions []map[int]totals.Session
	// EndCorrections is keyed by session number, then global pair.
	EndCorrections map[int]map[int]correction.EndCorrection
	// Clubs maps a global pair to its club id.
	Clubs map[int]int
}

// CompetitionResults is the outcome of aggregating a competition.
type CompetitionResults struct {
	Totals      []totals.Result // indexed by global pair; index 0 unused
	Rank        ranking.Table
	Clubs       []clubs.Club
	Diagnostics []correction.Diagnostic
}
