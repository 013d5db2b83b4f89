// Package correction validates director corrections and folds them into a
// pair's session tally.
package correction

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

// Kind tags which field of a Correction is meaningful.
type Kind int

const (
	KindNone Kind = iota
	KindPercent
	KindMatchpoints
)

func (k Kind) String() string {
	switch k {
	case KindPercent:
		return "percent"
	case KindMatchpoints:
		return "matchpoints"
	default:
		return "none"
	}
}

// ParseKind maps the stored type tag to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "none":
		return KindNone, nil
	case "percent", "%":
		return KindPercent, nil
	case "matchpoints", "mp":
		return KindMatchpoints, nil
	default:
		return KindNone, fmt.Errorf("unknown correction kind %q", s)
	}
}

// Combi carries the manual result of a pair that met an absent opponent.
// Extra is in tenths of a matchpoint under percentage scoring and in IMPs
// under Butler scoring; MaxExtra is in whole matchpoints.
type Combi struct {
	Extra    int
	MaxExtra int
	Games    int
}

// IsZero reports whether no combi field is set.
func (c Combi) IsZero() bool {
	return c.Extra == 0 && c.MaxExtra == 0 && c.Games == 0
}

// Correction is a director's adjustment to one pair's session result.
// Value is a score.Hundredths percentage for KindPercent, whole matchpoints
// (percentage scoring) or IMPs (Butler scoring) for KindMatchpoints.
type Correction struct {
	Kind  Kind
	Value int
	Combi *Combi
}

// Diagnostic describes a correction that was dropped.
type Diagnostic struct {
	Session int
	Pair    int
	Reason  string
}

func (d Diagnostic) String() string {
	if d.Session > 0 {
		return fmt.Sprintf("session %d pair %d: %s", d.Session, d.Pair, d.Reason)
	}
	return fmt.Sprintf("pair %d: %s", d.Pair, d.Reason)
}

// CombiChecker tells which pairs face an absent opponent.
type CombiChecker interface {
	IsCombiCandidate(pair int) bool
}

// ValidateSession returns the usable part of each correction. Invalid parts
// are dropped and reported; nothing here fails the run.
func ValidateSession(method score.Method, session, pairCount int, corrections map[int]Correction, combi CombiChecker) (map[int]Correction, []Diagnostic) {
	valid := make(map[int]Correction, len(corrections))
	var diags []Diagnostic

	drop := func(pair int, format string, args ...any) {
		diags = append(diags, Diagnostic{Session: session, Pair: pair, Reason: fmt.Sprintf(format, args...)})
	}

	for _, pair := range sortedPairs(corrections) {
		c := corrections[pair]
		if pair < 1 || pair > pairCount {
			drop(pair, "pair out of range 1..%d", pairCount)
			continue
		}

		if c.Kind == KindPercent && c.Value != 0 && method == score.MethodButler {
			drop(pair, "percentage correction not allowed with Butler scoring")
			c.Kind = KindNone
			c.Value = 0
		}

		if c.Combi != nil && !c.Combi.IsZero() {
			if reason := combiProblem(method, pair, *c.Combi, combi); reason != "" {
				drop(pair, "combi dropped: %s", reason)
				c.Combi = nil
			} else {
				cp := *c.Combi
				c.Combi = &cp
			}
		} else {
			c.Combi = nil
		}

		if c.Kind == KindNone && c.Combi == nil {
			continue
		}
		valid[pair] = c
	}
	return valid, diags
}

func combiProblem(method score.Method, pair int, c Combi, checker CombiChecker) string {
	if checker == nil || !checker.IsCombiCandidate(pair) {
		return "pair is not a combi candidate"
	}
	if c.Games == 0 {
		return "games is zero"
	}
	if method == score.MethodButler {
		if c.MaxExtra != 0 {
			return "max extra not allowed with Butler scoring"
		}
		return ""
	}
	switch {
	case c.MaxExtra == 0:
		return "max extra is zero"
	case c.Extra < 0:
		return "extra is negative"
	case c.Extra > 10*c.MaxExtra:
		return fmt.Sprintf("extra %s exceeds max extra %d", score.Tenths(c.Extra), c.MaxExtra)
	}
	return ""
}

func sortedPairs[T any](m map[int]T) []int {
	pairs := make([]int, 0, len(m))
	for p := range m {
		pairs = append(pairs, p)
	}
	sort.Ints(pairs)
	return pairs
}
