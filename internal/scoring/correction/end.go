package correction

import (
	"fmt"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// End correction score sentinels.
const (
	// EndIgnore removes the pair's result for the session; it counts as an absence.
	EndIgnore score.Hundredths = 99999
	// EndNoTotal drops the session from the pair's totals entirely.
	EndNoTotal score.Hundredths = 99998
)

const (
	maxPercentage score.Hundredths = 10000
	maxButler     score.Hundredths = 9999
	maxBonus      score.Hundredths = 9999
)

// EndCorrection overrides a stored session result for one global pair.
type EndCorrection struct {
	Score score.Hundredths
	Bonus score.Hundredths
	Games int
}

// IsSentinel reports whether Score is EndIgnore or EndNoTotal.
func (e EndCorrection) IsSentinel() bool {
	return e.Score == EndIgnore || e.Score == EndNoTotal
}

// Limits bounds the fields of an end correction.
type Limits struct {
	Method    score.Method
	PairCount int
	GameCount int
}

// ValidateEnd returns the end corrections of one session that are usable and
// a diagnostic for every rejected record.
func ValidateEnd(session int, ends map[int]EndCorrection, lim Limits) (map[int]EndCorrection, []Diagnostic) {
	valid := make(map[int]EndCorrection, len(ends))
	var diags []Diagnostic

	for _, pair := range sortedPairs(ends) {
		e := ends[pair]
		if reason := endProblem(pair, e, lim); reason != "" {
			diags = append(diags, Diagnostic{Session: session, Pair: pair, Reason: reason})
			continue
		}
		valid[pair] = e
	}
	return valid, diags
}

func endProblem(pair int, e EndCorrection, lim Limits) string {
	if pair < 1 || pair > lim.PairCount {
		return fmt.Sprintf("pair out of range 1..%d", lim.PairCount)
	}
	if !e.IsSentinel() {
		lo, hi := score.Hundredths(0), maxPercentage
		if lim.Method == score.MethodButler {
			lo, hi = -maxButler, maxButler
		}
		if e.Score < lo || e.Score > hi {
			return fmt.Sprintf("score %s out of range %s..%s", e.Score, lo, hi)
		}
	}
	if e.Bonus < -maxBonus || e.Bonus > maxBonus {
		return fmt.Sprintf("bonus %s out of range", e.Bonus)
	}
	if e.Games < 0 || e.Games > lim.GameCount {
		return fmt.Sprintf("games %d out of range 0..%d", e.Games, lim.GameCount)
	}
	if e.Bonus != 0 && (e.Score != 0 || e.Games != 0) {
		return "bonus cannot be combined with score or games"
	}
	return ""
}
