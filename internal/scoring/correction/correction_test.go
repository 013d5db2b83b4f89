package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

type candidates map[int]bool

func (c candidates) IsCombiCandidate(pair int) bool { return c[pair] }

func TestValidateSessionDropsPercentUnderButler(t *testing.T) {
	in := map[int]Correction{
		1: {Kind: KindPercent, Value: 250},
		2: {Kind: KindMatchpoints, Value: 3},
	}

	valid, diags := ValidateSession(score.MethodButler, 1, 4, in, nil)

	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Pair)
	assert.Equal(t, 1, diags[0].Session)
	assert.NotContains(t, valid, 1)
	assert.Equal(t, Correction{Kind: KindMatchpoints, Value: 3}, valid[2])
}

func TestValidateSessionKeepsPercentUnderPercentage(t *testing.T) {
	in := map[int]Correction{1: {Kind: KindPercent, Value: -150}}

	valid, diags := ValidateSession(score.MethodPercentage, 1, 4, in, nil)

	assert.Empty(t, diags)
	assert.Equal(t, in[1], valid[1])
}

func TestValidateSessionCombiRules(t *testing.T) {
	schema := candidates{1: true, 2: true, 3: true, 4: true}

	tests := []struct {
		name    string
		method  score.Method
		pair    int
		combi   Combi
		checker CombiChecker
		valid   bool
	}{
		{"Percentage valid", score.MethodPercentage, 1, Combi{Extra: 60, MaxExtra: 10, Games: 2}, schema, true},
		{"Not a candidate", score.MethodPercentage, 5, Combi{Extra: 60, MaxExtra: 10, Games: 2}, schema, false},
		{"No schema", score.MethodPercentage, 1, Combi{Extra: 60, MaxExtra: 10, Games: 2}, nil, false},
		{"Zero games", score.MethodPercentage, 1, Combi{Extra: 60, MaxExtra: 10}, schema, false},
		{"Zero max extra", score.MethodPercentage, 1, Combi{Extra: 0, Games: 2}, schema, false},
		{"Negative extra", score.MethodPercentage, 1, Combi{Extra: -1, MaxExtra: 10, Games: 2}, schema, false},
		{"Extra above max", score.MethodPercentage, 1, Combi{Extra: 101, MaxExtra: 10, Games: 2}, schema, false},
		{"Extra equals max", score.MethodPercentage, 1, Combi{Extra: 100, MaxExtra: 10, Games: 2}, schema, true},
		{"Butler valid", score.MethodButler, 2, Combi{Extra: -4, Games: 2}, schema, true},
		{"Butler with max extra", score.MethodButler, 2, Combi{Extra: 4, MaxExtra: 10, Games: 2}, schema, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combi := tt.combi
			in := map[int]Correction{tt.pair: {Combi: &combi}}
			valid, diags := ValidateSession(tt.method, 2, 8, in, tt.checker)

			if tt.valid {
				assert.Empty(t, diags)
				require.Contains(t, valid, tt.pair)
				assert.Equal(t, tt.combi, *valid[tt.pair].Combi)
			} else {
				require.Len(t, diags, 1)
				assert.Equal(t, tt.pair, diags[0].Pair)
				assert.NotContains(t, valid, tt.pair)
			}
		})
	}
}

func TestValidateSessionKeepsCorrectionWhenOnlyCombiDropped(t *testing.T) {
	in := map[int]Correction{3: {Kind: KindMatchpoints, Value: 2, Combi: &Combi{Extra: 5, Games: 1}}}

	valid, diags := ValidateSession(score.MethodPercentage, 1, 8, in, candidates{})

	require.Len(t, diags, 1)
	require.Contains(t, valid, 3)
	assert.Nil(t, valid[3].Combi)
	assert.Equal(t, 2, valid[3].Value)
}

func TestValidateSessionPairOutOfRange(t *testing.T) {
	in := map[int]Correction{
		9: {Kind: KindMatchpoints, Value: 1},
		0: {Kind: KindMatchpoints, Value: 1},
	}

	valid, diags := ValidateSession(score.MethodPercentage, 1, 8, in, nil)

	assert.Empty(t, valid)
	require.Len(t, diags, 2)
	assert.Equal(t, 0, diags[0].Pair)
	assert.Equal(t, 9, diags[1].Pair)
}

func TestValidateSessionDoesNotAliasInput(t *testing.T) {
	combi := &Combi{Extra: 20, MaxExtra: 4, Games: 1}
	in := map[int]Correction{1: {Combi: combi}}

	valid, _ := ValidateSession(score.MethodPercentage, 1, 4, in, candidates{1: true})
	valid[1].Combi.Extra = 0

	assert.Equal(t, 20, combi.Extra)
}

func TestFoldPercentage(t *testing.T) {
	tally := Tally{Games: 3, MaxScore: 18, Points: 120}

	tests := []struct {
		name string
		c    Correction
		want score.Hundredths
	}{
		{"No correction", Correction{}, 6667},
		{"Percent correction", Correction{Kind: KindPercent, Value: -500}, 6167},
		{"Matchpoint correction", Correction{Kind: KindMatchpoints, Value: -3}, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Fold(score.MethodPercentage, tally, tt.c, Scale{NormalTop: 6})
			require.True(t, out.HasScore)
			assert.Equal(t, tt.want, out.Score)
		})
	}
}

func TestFoldPercentageCombiRescales(t *testing.T) {
	tally := Tally{Games: 2, MaxScore: 12, Points: 60}
	c := Correction{Combi: &Combi{Extra: 80, MaxExtra: 10, Games: 1}}

	out := Fold(score.MethodPercentage, tally, c, Scale{NormalTop: 6, CombiTop: 10})

	assert.Equal(t, 3, out.Tally.Games)
	assert.Equal(t, 18, out.Tally.MaxScore)
	assert.Equal(t, score.Tenths(108), out.Tally.Points)
	assert.Equal(t, score.Hundredths(6000), out.Score)
}

func TestFoldPercentageNoMaxScore(t *testing.T) {
	out := Fold(score.MethodPercentage, Tally{}, Correction{Kind: KindPercent, Value: 1000}, Scale{NormalTop: 6})
	assert.False(t, out.HasScore)
}

func TestFoldButler(t *testing.T) {
	tally := Tally{Games: 3, IMPs: 10}

	out := Fold(score.MethodButler, tally, Correction{Kind: KindMatchpoints, Value: -2}, Scale{})
	require.True(t, out.HasScore)
	assert.Equal(t, score.Hundredths(267), out.Score)

	out = Fold(score.MethodButler, tally, Correction{Combi: &Combi{Extra: 5, Games: 2}}, Scale{})
	assert.Equal(t, 5, out.Tally.Games)
	assert.Equal(t, score.Hundredths(300), out.Score)
}

func TestFoldButlerNoGames(t *testing.T) {
	out := Fold(score.MethodButler, Tally{IMPs: 3}, Correction{}, Scale{})
	assert.False(t, out.HasScore)
}

func TestValidateEnd(t *testing.T) {
	pct := Limits{Method: score.MethodPercentage, PairCount: 10, GameCount: 24}
	butler := Limits{Method: score.MethodButler, PairCount: 10, GameCount: 24}

	tests := []struct {
		name  string
		pair  int
		e     EndCorrection
		lim   Limits
		valid bool
	}{
		{"Percentage score", 1, EndCorrection{Score: 5512, Games: 24}, pct, true},
		{"Percentage score above 100", 1, EndCorrection{Score: 10001}, pct, false},
		{"Percentage score negative", 1, EndCorrection{Score: -1}, pct, false},
		{"Butler negative score", 1, EndCorrection{Score: -250, Games: 20}, butler, true},
		{"Butler score too large", 1, EndCorrection{Score: 10000}, butler, false},
		{"Bonus alone", 2, EndCorrection{Bonus: -300}, pct, true},
		{"Bonus too large", 2, EndCorrection{Bonus: 10000}, pct, false},
		{"Bonus with score", 2, EndCorrection{Score: 5000, Bonus: 100}, pct, false},
		{"Bonus with games", 2, EndCorrection{Games: 3, Bonus: 100}, pct, false},
		{"Games above game count", 3, EndCorrection{Score: 5000, Games: 25}, pct, false},
		{"Pair out of range", 11, EndCorrection{Score: 5000}, pct, false},
		{"Ignore sentinel", 4, EndCorrection{Score: EndIgnore}, butler, true},
		{"No total sentinel", 4, EndCorrection{Score: EndNoTotal}, pct, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, diags := ValidateEnd(2, map[int]EndCorrection{tt.pair: tt.e}, tt.lim)
			if tt.valid {
				assert.Empty(t, diags)
				assert.Equal(t, tt.e, valid[tt.pair])
			} else {
				require.Len(t, diags, 1)
				assert.Equal(t, 2, diags[0].Session)
				assert.Empty(t, valid)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("%")
	require.NoError(t, err)
	assert.Equal(t, KindPercent, k)

	k, err = ParseKind("matchpoints")
	require.NoError(t, err)
	assert.Equal(t, KindMatchpoints, k)

	_, err = ParseKind("bogus")
	assert.Error(t, err)
}
