package correction

import "github.com/ramonehamilton/bridge-scorer/internal/scoring/score"

// Tally is what a pair collected over the boards of one session.
type Tally struct {
	Games    int
	MaxScore int          // whole matchpoints
	Points   score.Tenths // matchpoints earned
	IMPs     int
}

// Scale converts combi values from the schema's combi top to the session top.
// A zero CombiTop leaves the values as entered.
type Scale struct {
	NormalTop int
	CombiTop  int
}

func (s Scale) rescale(v int) int64 {
	if s.CombiTop == 0 {
		return int64(v)
	}
	return score.RoundDiv(int64(s.NormalTop)*int64(v), int64(s.CombiTop))
}

// Outcome is a pair's session result after corrections.
type Outcome struct {
	Tally    Tally
	Score    score.Hundredths // percentage, or IMPs per board
	HasScore bool
}

// Fold applies a validated correction to a tally and derives the session
// score. A zero denominator yields no score.
func Fold(method score.Method, t Tally, c Correction, scale Scale) Outcome {
	if method == score.MethodButler {
		return foldButler(t, c)
	}
	return foldPercentage(t, c, scale)
}

func foldPercentage(t Tally, c Correction, scale Scale) Outcome {
	var percent int64
	switch c.Kind {
	case KindPercent:
		percent = int64(c.Value)
	case KindMatchpoints:
		t.Points += score.TenthsFromPoints(c.Value)
	}

	if c.Combi != nil {
		t.Points += score.Tenths(scale.rescale(c.Combi.Extra))
		t.MaxScore += int(scale.rescale(c.Combi.MaxExtra))
		t.Games += c.Combi.Games
	}

	out := Outcome{Tally: t}
	if t.MaxScore > 0 {
		out.Score = score.Hundredths(percent + score.RoundDiv(1000*int64(t.Points), int64(t.MaxScore)))
		out.HasScore = true
	}
	return out
}

func foldButler(t Tally, c Correction) Outcome {
	var corr int64
	if c.Kind == KindMatchpoints {
		corr = int64(c.Value)
	}
	if c.Combi != nil {
		t.IMPs += c.Combi.Extra
		t.Games += c.Combi.Games
	}

	out := Outcome{Tally: t}
	if t.Games > 0 {
		out.Score = score.Hundredths(score.RoundDiv(100*int64(t.IMPs)+100*corr, int64(t.Games)))
		out.HasScore = true
	}
	return out
}
