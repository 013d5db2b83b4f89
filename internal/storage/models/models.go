package models

import "time"

// Club represents a bridge club that pairs can be affiliated with.
type Club struct {
	ID   int
	Name string
}

// Pair represents a competition (global) pair.
type Pair struct {
	ID     int
	Name   string
	ClubID int // 0 = unaffiliated
}

// Session represents one playing session of the competition.
type Session struct {
	Number      int
	PlayedOn    *time.Time // Nullable
	CombiTop    int        // Top the combi corrections were entered against
	Fingerprint string     // Fingerprint of the inputs last scored ("" = never scored)
	RunID       string     // Recompute run that produced the stored results
	ScoredAt    *time.Time // Nullable
}

// SessionPair maps a session pair number to its global pair and holds the
// pairing schema facts for it.
type SessionPair struct {
	Session        int
	Pair           int
	GlobalPair     int
	Rounds         int
	CombiCandidate bool
}

// BoardResult is one table's result on one board.
type BoardResult struct {
	ID      int
	Session int
	Game    int
	PairNS  int
	PairEW  int
	ScoreNS int // Encoded score value
	ScoreEW int // Encoded score value, NoScore unless EW got their own adjustment
}

// Correction is a director's correction of a session pair's result.
type Correction struct {
	Session       int
	Pair          int
	Kind          string // "none", "percent" or "matchpoints"
	Value         int
	HasCombi      bool
	CombiExtra    int
	CombiMaxExtra int
	CombiGames    int
}

// EndCorrection overrides a global pair's stored result for one session.
type EndCorrection struct {
	Session int
	Pair    int // Global pair
	Score   int // Hundredths, or an end correction sentinel
	Bonus   int // Hundredths
	Games   int
}

// SessionResult is the short result of a global pair in one session.
type SessionResult struct {
	Session     int
	GlobalPair  int
	SessionPair int
	Score       int // Hundredths: percentage or IMPs per board
	Games       int
}

// SessionRank is one position of a session rank table.
type SessionRank struct {
	Session  int
	Position int
	Pair     int // Session pair, 0 when the position is unused
	Rank     int
}

// SessionDiagnostic is a problem found while scoring a session.
type SessionDiagnostic struct {
	ID      int
	Session int
	Pair    int
	Kind    string // "correction" or "bad_data"
	Reason  string
}
