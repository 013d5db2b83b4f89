package matchpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

func pairScores(values ...score.Value) []score.PairScore {
	out := make([]score.PairScore, len(values))
	for i, v := range values {
		out[i] = score.PairScore{Pair: i + 1, Score: v}
	}
	return out
}

func awardsByPair(d Direction) map[int]score.Tenths {
	m := make(map[int]score.Tenths, len(d.Awards))
	for _, a := range d.Awards {
		m[a.Pair] = a.Points
	}
	return m
}

func TestScoreDirectionDistinctScoresSumToTop(t *testing.T) {
	d := ScoreDirection(pairScores(420, 100, -50, 450), 4, Options{})

	require.Len(t, d.Entries, 4)
	assert.Equal(t, 6, d.NormalTop)

	var sum score.Tenths
	for _, e := range d.Entries {
		sum += e.Points * score.Tenths(e.Count)
	}
	assert.Equal(t, score.Tenths(10*4*3), sum)

	got := awardsByPair(d)
	assert.Equal(t, score.Tenths(60), got[4])
	assert.Equal(t, score.Tenths(40), got[1])
	assert.Equal(t, score.Tenths(20), got[2])
	assert.Equal(t, score.Tenths(0), got[3])
}

func TestScoreDirectionTiesShareAverage(t *testing.T) {
	d := ScoreDirection(pairScores(420, 420, 100, -50), 4, Options{})

	got := awardsByPair(d)
	assert.Equal(t, score.Tenths(50), got[1])
	assert.Equal(t, score.Tenths(50), got[2])
	assert.Equal(t, score.Tenths(20), got[3])
	assert.Equal(t, score.Tenths(0), got[4])

	require.Len(t, d.Entries, 3)
	assert.Equal(t, Entry{Score: 420, Count: 2, Points: 50}, d.Entries[0])
}

func TestScoreDirectionAdjustedWithoutNeuberg(t *testing.T) {
	d := ScoreDirection(pairScores(420, 100, -50, score.Percentage(60)), 4, Options{})

	assert.Equal(t, 1, d.Adjusted)
	got := awardsByPair(d)
	assert.Equal(t, score.Tenths(50), got[1])
	assert.Equal(t, score.Tenths(30), got[2])
	assert.Equal(t, score.Tenths(10), got[3])
	assert.Equal(t, score.Tenths(36), got[4])

	for _, a := range d.Awards {
		assert.Equal(t, 6, a.Top)
	}
}

func TestScoreDirectionAdjustedWithNeuberg(t *testing.T) {
	d := ScoreDirection(pairScores(420, 100, -50, -200, score.Percentage(60)), 5, Options{Neuberg: true})

	got := awardsByPair(d)
	assert.Equal(t, score.Tenths(77), got[1])
	assert.Equal(t, score.Tenths(52), got[2])
	assert.Equal(t, score.Tenths(28), got[3])
	assert.Equal(t, score.Tenths(3), got[4])
	assert.Equal(t, score.Tenths(48), got[5])
}

func TestScoreDirectionNeubergWithoutAdjustedUsesPlainFormula(t *testing.T) {
	plain := ScoreDirection(pairScores(420, 420, 100, -50), 4, Options{})
	neuberg := ScoreDirection(pairScores(420, 420, 100, -50), 4, Options{Neuberg: true})
	assert.Equal(t, plain, neuberg)
}

func TestScoreDirectionIgnoresSentinels(t *testing.T) {
	d := ScoreDirection(pairScores(420, score.NotPlayed, score.NoScore, 100), 2, Options{})

	assert.Len(t, d.Awards, 2)
	got := awardsByPair(d)
	assert.Equal(t, score.Tenths(20), got[1])
	assert.Equal(t, score.Tenths(0), got[4])
}

func TestScoreDirectionEmpty(t *testing.T) {
	d := ScoreDirection(nil, 0, Options{})
	assert.Empty(t, d.Entries)
	assert.Empty(t, d.Awards)
	assert.Equal(t, 0, d.NormalTop)
}

func TestNeuberg(t *testing.T) {
	tests := []struct {
		name                      string
		points, games, comparable int
		want                      score.Tenths
	}{
		{"Two comparable", 9, 5, 2, 80},
		{"Three comparable", 2, 5, 3, 48},
		{"Exact x5 above median is cut", 6, 5, 4, 77},
		{"Exact x5 above median second group", 4, 5, 4, 52},
		{"Exact x5 below median rounds up", 2, 5, 4, 28},
		{"Single comparable lands on median", 0, 5, 1, 40},
		{"Exact x0 stays", 2, 7, 6, 25},
		{"Inexact division rounds", 3, 7, 6, 37},
		{"No comparable results", 3, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Neuberg(tt.points, tt.games, tt.comparable))
		})
	}
}

func TestMerge(t *testing.T) {
	ns := ScoreDirection(pairScores(420, 420, 100, -50), 4, Options{})
	ew := ScoreDirection(pairScores(-420, -420, -100, 50), 4, Options{})

	table := Merge(ns, ew)
	require.Len(t, table, 3)

	assert.Equal(t, score.Value(420), table[0].Score)
	assert.Equal(t, 2, table[0].Count)
	assert.Equal(t, score.Tenths(50), table[0].NS)
	assert.Equal(t, score.Tenths(10), table[0].EW)
	assert.True(t, table[0].HasNS)
	assert.True(t, table[0].HasEW)

	assert.Equal(t, score.Value(-50), table[2].Score)
	assert.Equal(t, score.Tenths(60), table[2].EW)

	assert.Equal(t, score.Tenths(120), table.TotalPoints(false))
	assert.Equal(t, score.Tenths(120), table.TotalPoints(true))
}

func TestMergeSplitAdjustedScores(t *testing.T) {
	ns := ScoreDirection(pairScores(420, score.Percentage(60)), 2, Options{})
	ew := ScoreDirection(pairScores(-420, score.Percentage(50)), 2, Options{})

	table := Merge(ns, ew)
	require.Len(t, table, 3)

	assert.Equal(t, score.Percentage(60), table[0].Score)
	assert.True(t, table[0].HasNS)
	assert.False(t, table[0].HasEW)

	assert.Equal(t, score.Percentage(50), table[1].Score)
	assert.False(t, table[1].HasNS)
	assert.True(t, table[1].HasEW)

	assert.Equal(t, score.Value(420), table[2].Score)
	assert.True(t, table[2].HasNS)
	assert.True(t, table[2].HasEW)
}
