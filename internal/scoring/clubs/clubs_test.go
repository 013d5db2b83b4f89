package clubs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
)

func TestAggregateEligibleClubOutranksHigherAverage(t *testing.T) {
	members := []Member{
		{Pair: 1, Club: 10, Score: 5000, Played: true},
		{Pair: 2, Club: 10, Score: 5000, Played: true},
		{Pair: 3, Club: 20, Score: 6000, Played: true},
	}

	clubs := Aggregate(members, Rules{MinCount: 2, MaxCount: 3})

	require.Len(t, clubs, 2)
	assert.Equal(t, 10, clubs[0].ID)
	assert.True(t, clubs[0].Eligible)
	assert.Equal(t, score.Hundredths(5000), clubs[0].Average)
	assert.Equal(t, 1, clubs[0].Rank)

	assert.Equal(t, 20, clubs[1].ID)
	assert.False(t, clubs[1].Eligible)
	assert.Equal(t, score.Hundredths(6000), clubs[1].Average)
	assert.Equal(t, 2, clubs[1].Rank)
}

func TestAggregateCapsAverageToBestScores(t *testing.T) {
	members := []Member{
		{Pair: 1, Club: 5, Score: 4000, Played: true},
		{Pair: 2, Club: 5, Score: 6000, Played: true},
		{Pair: 3, Club: 5, Score: 5500, Played: true},
	}

	clubs := Aggregate(members, Rules{MinCount: 1, MaxCount: 2})

	require.Len(t, clubs, 1)
	c := clubs[0]
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, score.Hundredths(11500), c.Capped)
	assert.Equal(t, score.Hundredths(15500), c.Total)
	assert.Equal(t, score.Hundredths(5750), c.Average)
	assert.Equal(t, []int{1, 2, 3}, c.Pairs)
}

func TestAggregateEqualAveragesShareRank(t *testing.T) {
	members := []Member{
		{Pair: 1, Club: 3, Score: 5000, Played: true},
		{Pair: 2, Club: 1, Score: 5000, Played: true},
		{Pair: 3, Club: 2, Score: 4000, Played: true},
	}

	clubs := Aggregate(members, Rules{MinCount: 1})

	require.Len(t, clubs, 3)
	assert.Equal(t, []int{1, 3, 2}, []int{clubs[0].ID, clubs[1].ID, clubs[2].ID})
	assert.Equal(t, []int{1, 1, 3}, []int{clubs[0].Rank, clubs[1].Rank, clubs[2].Rank})
}

func TestAggregateSkipsUnaffiliatedAndAbsent(t *testing.T) {
	members := []Member{
		{Pair: 1, Club: 0, Score: 7000, Played: true},
		{Pair: 2, Club: 4, Score: 7000, Played: false},
	}
	assert.Nil(t, Aggregate(members, Rules{}))
}

func TestCompare(t *testing.T) {
	eligible := Club{Eligible: true, Average: 4000}
	ineligible := Club{Average: 9000}

	assert.Negative(t, Compare(eligible, ineligible))
	assert.Positive(t, Compare(ineligible, eligible))
	assert.Zero(t, Compare(eligible, eligible))
}
