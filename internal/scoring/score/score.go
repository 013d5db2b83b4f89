// Package score defines the single-integer score encoding shared by every scorer,
// the fixed-point units used for matchpoints and percentages, and the scoring method.
package score

import "strconv"

// Value is a board score. It holds either a real duplicate score (e.g. 420, -100)
// or an adjusted percentage encoded as Offset+p, plus two sentinels.
type Value int

const (
	// Offset is added to a 0-100 percentage so adjusted and real scores never overlap.
	Offset Value = 10000

	// NoScore marks a board where nothing has been entered yet.
	NoScore Value = 32767

	// NotPlayed marks a board the table did not play.
	NotPlayed Value = 32766
)

// Kind classifies a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindReal
	KindPercentage
	KindSentinel
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindPercentage:
		return "percentage"
	case KindSentinel:
		return "sentinel"
	default:
		return "invalid"
	}
}

// Percentage encodes an adjusted score of p percent.
func Percentage(p int) Value {
	return Offset + Value(p)
}

// Kind classifies v. Every integer maps to exactly one kind.
func (v Value) Kind() Kind {
	switch {
	case v == NoScore || v == NotPlayed:
		return KindSentinel
	case v >= Offset && v <= Offset+100:
		return KindPercentage
	case v > -Offset && v < Offset:
		return KindReal
	default:
		return KindInvalid
	}
}

// IsReal reports whether v is a real duplicate score.
func (v Value) IsReal() bool { return v.Kind() == KindReal }

// IsPercentage reports whether v is an adjusted percentage score.
func (v Value) IsPercentage() bool { return v.Kind() == KindPercentage }

// IsEntered reports whether v carries a usable score of either kind.
func (v Value) IsEntered() bool {
	k := v.Kind()
	return k == KindReal || k == KindPercentage
}

// ToReal returns the bare number behind v: the score itself for real values,
// the 0-100 percentage for adjusted values. Other values are returned unchanged.
func (v Value) ToReal() int {
	if v.IsPercentage() {
		return int(v - Offset)
	}
	return int(v)
}

// Complement returns the score as seen by the opponents: a negated real score,
// or the complementary percentage in the same encoding.
func (v Value) Complement() Value {
	switch v.Kind() {
	case KindReal:
		return -v
	case KindPercentage:
		return 100 + 2*Offset - v
	default:
		return v
	}
}

// String formats v for reports.
func (v Value) String() string {
	switch v.Kind() {
	case KindReal:
		return strconv.Itoa(int(v))
	case KindPercentage:
		return strconv.Itoa(v.ToReal()) + "%"
	case KindSentinel:
		if v == NotPlayed {
			return "NP"
		}
		return "-"
	default:
		return "?" + strconv.Itoa(int(v))
	}
}

// PairScore is one pair's score on one board, from that pair's own point of view.
type PairScore struct {
	Pair  int
	Score Value
}
