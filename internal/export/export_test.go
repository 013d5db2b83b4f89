package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/totals"
)

func scoredSession(t *testing.T) *engine.SessionResults {
	t.Helper()
	row := func(ns, ew int, v score.Value) engine.BoardResult {
		return engine.BoardResult{PairNS: ns, PairEW: ew, ScoreNS: v, ScoreEW: score.NoScore}
	}
	cfg := engine.Config{Method: score.MethodPercentage, PairCount: 8, SetSize: 1, GameCount: 1}
	return engine.ScoreSession(cfg, engine.SessionInput{
		Session: 1,
		Boards: map[int][]engine.BoardResult{
			1: {row(1, 5, 420), row(2, 6, 420), row(3, 7, 100), row(4, 8, -50)},
		},
	})
}

func TestSessionStandingsCSV(t *testing.T) {
	rows := SessionStandings(scoredSession(t), Names{8: "Smith - Jones"})
	require.Len(t, rows, 8)

	var buf bytes.Buffer
	require.NoError(t, ExportToWriter(&buf, FormatCSV, rows, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "position,rank,pair,global_pair,name,score,games,corrected", lines[0])
	assert.Equal(t, "1,1,8,8,Smith - Jones,100.00,1,false", lines[1])
	assert.Equal(t, "2,2,1,1,,83.33,1,false", lines[2])
	assert.Equal(t, "3,2,2,2,,83.33,1,false", lines[3])
	assert.Equal(t, "8,8,4,4,,0.00,1,false", lines[8])
}

func TestFrequenciesJSON(t *testing.T) {
	rows := Frequencies(scoredSession(t))
	require.Len(t, rows, 3)
	assert.Equal(t, score.Value(420), rows[0].Score)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, score.Tenths(50), rows[0].NSPoints)

	var buf bytes.Buffer
	require.NoError(t, ExportToWriter(&buf, FormatJSON, rows, true))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.EqualValues(t, 420, decoded[0]["score"])
	assert.EqualValues(t, 10, decoded[0]["ewPoints"])
}

func TestDatumsOnlyForButler(t *testing.T) {
	assert.Nil(t, Datums(scoredSession(t)))

	res := &engine.SessionResults{Butler: &engine.ButlerDetail{Datums: map[int]engine.BoardDatum{}}}
	assert.Empty(t, Datums(res))
	assert.Nil(t, Frequencies(res))
}

func TestTotalsAndClubs(t *testing.T) {
	cfg := engine.Config{Method: score.MethodPercentage, GameCount: 24, MinClubCount: 1, MaxClubCount: 2}
	res := engine.ScoreCompetition(cfg, engine.CompetitionInput{
		PairCount: 2,
		Sessions: []map[int]totals.Session{
			{1: {Score: 5500, Games: 24}, 2: {Score: 6000, Games: 24}},
		},
		Clubs: map[int]int{1: 3, 2: 3},
	})

	rows := Totals(res, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Pair)
	assert.Equal(t, score.Hundredths(6000), rows[0].Final)

	clubs := Clubs(res.Clubs, Names{3: "Downtown"})
	require.Len(t, clubs, 1)
	assert.Equal(t, "Downtown", clubs[0].Name)
	assert.Equal(t, 2, clubs[0].Members)
	assert.True(t, clubs[0].Eligible)
}

func TestExporterRespectsOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "totals.csv")
	rows := []ClubRow{{Rank: 1, Club: 2}}

	require.NoError(t, NewExporter(Options{Format: FormatCSV, FilePath: path}).Export(rows))
	err := NewExporter(Options{Format: FormatCSV, FilePath: path}).Export(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, NewExporter(Options{Format: FormatJSON, FilePath: path, Overwrite: true}).Export(rows))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"club":2`)
}

func TestCSVRejectsNonSlices(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ExportToWriter(&buf, FormatCSV, ClubRow{}, false))
	assert.Error(t, ExportToWriter(&buf, FormatCSV, []int{1}, false))
	assert.Error(t, ExportToWriter(&buf, Format("xml"), []ClubRow{}, false))

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
