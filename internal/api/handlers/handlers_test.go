package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/bridge-scorer/internal/events"
	"github.com/ramonehamilton/bridge-scorer/internal/recompute"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/correction"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
	"github.com/ramonehamilton/bridge-scorer/internal/storage"
	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

type testEnv struct {
	store      *storage.Service
	recomputer *recompute.Recomputer
	recorder   *events.RecordingObserver
	router     chi.Router
}

func newTestEnv(t *testing.T, method score.Method) *testEnv {
	t.Helper()

	store := storage.NewTestService(t)
	dispatcher := events.NewEventDispatcher()
	recorder := events.NewRecordingObserver()
	dispatcher.Register(recorder)

	cfg := engine.Config{Method: method, PairCount: 4, SetSize: 1, GameCount: 2, MaxSessions: 2}
	rec := recompute.New(store, cfg, recompute.WithDispatcher(dispatcher))
	deps := Deps{Store: store, Recomputer: rec, Dispatcher: dispatcher, AutoRecompute: true}

	sessions := NewSessionHandler(deps)
	competition := NewCompetitionHandler(deps)
	system := NewSystemHandler(deps)

	r := chi.NewRouter()
	r.Get("/status", system.GetStatus)
	r.Get("/metrics", system.GetMetrics)
	r.Post("/recompute", system.PostRecompute)
	r.Get("/sessions", sessions.ListSessions)
	r.Get("/sessions/{session}/standings", sessions.GetStandings)
	r.Get("/sessions/{session}/frequencies", sessions.GetFrequencies)
	r.Get("/sessions/{session}/diagnostics", sessions.GetDiagnostics)
	r.Get("/sessions/{session}/boards/{game}", sessions.GetBoard)
	r.Post("/sessions/{session}/boards/{game}", sessions.PostBoard)
	r.Put("/sessions/{session}/corrections/{pair}", sessions.PutCorrection)
	r.Put("/sessions/{session}/pairs", sessions.PutPairs)
	r.Get("/totals", competition.GetTotals)
	r.Get("/clubs", competition.GetClubs)
	r.Put("/end-corrections/{session}/{pair}", competition.PutEndCorrection)
	r.Put("/pairs/{pair}", competition.PutPair)
	r.Put("/clubs/{club}", competition.PutClub)

	return &testEnv{store: store, recomputer: rec, recorder: recorder, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func boardOne() map[string]interface{} {
	return map[string]interface{}{
		"rows": []map[string]interface{}{
			{"pair_ns": 1, "pair_ew": 3, "contract": "4H", "declarer": "N", "result": "="},
			{"pair_ns": 2, "pair_ew": 4, "score_ns": 100},
		},
	}
}

func TestPostBoardScoresContractsAndRecomputes(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)

	rec := env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/sessions/1/boards/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.BoardResult
	decodeData(t, rec, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, 420, rows[0].ScoreNS)
	assert.Equal(t, int(score.NoScore), rows[0].ScoreEW)

	rec = env.do(t, http.MethodGet, "/sessions/1/standings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var standings []storage.SessionStanding
	decodeData(t, rec, &standings)
	require.Len(t, standings, 4)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 10000, standings[0].Score)

	assert.Equal(t, 1, env.recorder.Count(events.TypeBoardsUpdated))
	assert.Equal(t, 1, env.recorder.Count(events.TypeSessionScored))
	assert.Equal(t, 1, env.recorder.Count(events.TypeTotalsUpdated))
}

func TestPostBoardPercentageAndNotPlayed(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)

	body := map[string]interface{}{
		"rows": []map[string]interface{}{
			{"pair_ns": 1, "pair_ew": 3, "percent_ns": 60, "percent_ew": 40},
			{"pair_ns": 2, "pair_ew": 4, "not_played": true},
		},
	}
	rec := env.do(t, http.MethodPost, "/sessions/1/boards/2", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rows, err := env.store.BoardResults(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int(score.Percentage(60)), rows[0].ScoreNS)
	assert.Equal(t, int(score.Percentage(40)), rows[0].ScoreEW)
	assert.Equal(t, int(score.NotPlayed), rows[1].ScoreNS)
}

func TestPostBoardRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"Malformed JSON", "/sessions/1/boards/1", "{", http.StatusBadRequest},
		{"Unknown field", "/sessions/1/boards/1", `{"rows":[],"extra":1}`, http.StatusBadRequest},
		{"Bad session", "/sessions/x/boards/1", boardOne(), http.StatusBadRequest},
		{"Bad board", "/sessions/1/boards/0", boardOne(), http.StatusBadRequest},
		{"No rows", "/sessions/1/boards/1", map[string]interface{}{"rows": []interface{}{}}, http.StatusUnprocessableEntity},
		{
			"Pair against itself", "/sessions/1/boards/1",
			map[string]interface{}{"rows": []map[string]interface{}{{"pair_ns": 2, "pair_ew": 2, "score_ns": 100}}},
			http.StatusUnprocessableEntity,
		},
		{
			"Two results", "/sessions/1/boards/1",
			map[string]interface{}{"rows": []map[string]interface{}{{"pair_ns": 1, "pair_ew": 2, "score_ns": 100, "not_played": true}}},
			http.StatusUnprocessableEntity,
		},
		{
			"Odd score", "/sessions/1/boards/1",
			map[string]interface{}{"rows": []map[string]interface{}{{"pair_ns": 1, "pair_ew": 2, "score_ns": 105}}},
			http.StatusUnprocessableEntity,
		},
		{
			"Impossible contract result", "/sessions/1/boards/1",
			map[string]interface{}{"rows": []map[string]interface{}{{"pair_ns": 1, "pair_ew": 2, "contract": "7NT", "declarer": "N", "result": "+1"}}},
			http.StatusUnprocessableEntity,
		},
		{
			"North-South twice", "/sessions/1/boards/1",
			map[string]interface{}{"rows": []map[string]interface{}{
				{"pair_ns": 1, "pair_ew": 2, "score_ns": 100},
				{"pair_ns": 1, "pair_ew": 3, "score_ns": 100},
			}},
			http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	sessions, err := env.store.Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestValidationErrorsAreReportedPerField(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)

	body := map[string]interface{}{"rows": []map[string]interface{}{{"pair_ns": 1, "pair_ew": 2, "score_ns": 9000}}}
	rec := env.do(t, http.MethodPost, "/sessions/1/boards/1", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "BoardRequest.Rows[0].ScoreNS")
}

func TestGetFrequenciesPercentage(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)

	rec := env.do(t, http.MethodGet, "/sessions/1/frequencies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Method      string            `json:"method"`
		Frequencies []json.RawMessage `json:"frequencies"`
	}
	decodeData(t, rec, &got)
	assert.Equal(t, score.MethodPercentage.String(), got.Method)
	assert.Len(t, got.Frequencies, 2)
}

func TestGetFrequenciesButlerReturnsDatums(t *testing.T) {
	env := newTestEnv(t, score.MethodButler)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)

	rec := env.do(t, http.MethodGet, "/sessions/1/frequencies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Datums []json.RawMessage `json:"datums"`
	}
	decodeData(t, rec, &got)
	assert.Len(t, got.Datums, 1)
}

func TestGetFrequenciesUnknownSession(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)

	rec := env.do(t, http.MethodGet, "/sessions/7/frequencies", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutCorrectionReportsDiagnostics(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)

	rec := env.do(t, http.MethodPut, "/sessions/1/corrections/9", map[string]interface{}{"kind": "percent", "value": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/sessions/1/diagnostics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var diags []models.SessionDiagnostic
	decodeData(t, rec, &diags)
	require.Len(t, diags, 1)
	assert.Equal(t, 9, diags[0].Pair)
	assert.Equal(t, "correction", diags[0].Kind)

	rec = env.do(t, http.MethodPut, "/sessions/1/corrections/2", map[string]interface{}{"kind": "bogus"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPutPairsMapsGlobalPairs(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)

	body := map[string]interface{}{
		"combi_top": 10,
		"pairs": []map[string]interface{}{
			{"pair": 1, "global_pair": 21, "rounds": 1},
			{"pair": 2, "global_pair": 22, "rounds": 1},
			{"pair": 3, "global_pair": 23, "rounds": 1},
			{"pair": 4, "global_pair": 24, "rounds": 1, "combi_candidate": true},
		},
	}
	rec := env.do(t, http.MethodPut, "/sessions/1/pairs", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	standings, err := env.store.SessionStandings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, standings, 4)
	for _, s := range standings {
		assert.Equal(t, s.Pair+20, s.GlobalPair)
	}
}

func TestGetTotalsAndEndCorrections(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/pairs/1", map[string]interface{}{"name": "Smith - Jones"}).Code)

	rec := env.do(t, http.MethodGet, "/totals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var totals TotalsResponse
	decodeData(t, rec, &totals)
	require.Len(t, totals.Totals, 4)
	assert.Equal(t, 1, totals.Totals[0].Rank)
	assert.Empty(t, totals.Diagnostics)

	var named string
	for _, row := range totals.Totals {
		if row.Pair == 1 {
			named = row.Name
		}
	}
	assert.Equal(t, "Smith - Jones", named)

	rec = env.do(t, http.MethodPut, "/end-corrections/1/1", map[string]interface{}{"ignore": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stored models.EndCorrection
	decodeData(t, rec, &stored)
	assert.Equal(t, int(correction.EndIgnore), stored.Score)

	rec = env.do(t, http.MethodPut, "/end-corrections/1/2", map[string]interface{}{"no_total": true, "bonus": 1.5})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPut, "/end-corrections/1/2", map[string]interface{}{"score": 55.5, "bonus": 0.25})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &stored)
	assert.Equal(t, 5550, stored.Score)
	assert.Equal(t, 25, stored.Bonus)
}

func TestGetClubsUsesClubNames(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/clubs/5", map[string]interface{}{"name": "Riverside"}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/pairs/1", map[string]interface{}{"name": "A - B", "club_id": 5}).Code)

	rec := env.do(t, http.MethodGet, "/clubs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var clubs []struct {
		Club int    `json:"club"`
		Name string `json:"name"`
	}
	decodeData(t, rec, &clubs)
	require.Len(t, clubs, 1)
	assert.Equal(t, 5, clubs[0].Club)
	assert.Equal(t, "Riverside", clubs[0].Name)
}

func TestPostRecomputeSkipsUnchangedSessions(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)

	rec := env.do(t, http.MethodPost, "/recompute", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary RecomputeResponse
	decodeData(t, rec, &summary)
	require.Len(t, summary.Sessions, 1)
	assert.True(t, summary.Sessions[0].Skipped)
	assert.Equal(t, 4, summary.Ranked)

	rec = env.do(t, http.MethodPost, "/recompute", map[string]interface{}{"force": true})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &summary)
	assert.False(t, summary.Sessions[0].Skipped)
	assert.Equal(t, summary.RunID, summary.Sessions[0].RunID)
}

func TestStatusAndMetrics(t *testing.T) {
	env := newTestEnv(t, score.MethodButler)

	rec := env.do(t, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	decodeData(t, rec, &status)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, score.MethodButler.String(), status.Method)

	rec = env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sessions []models.Session
	decodeData(t, rec, &sessions)
	assert.Empty(t, sessions)
}

func TestExportStandingsCSV(t *testing.T) {
	env := newTestEnv(t, score.MethodPercentage)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/sessions/1/boards/1", boardOne()).Code)

	exports := NewExportHandler(Deps{Store: env.store, Recomputer: env.recomputer})
	env.router.Get("/sessions/{session}/export", exports.ExportStandings)
	env.router.Get("/totals/export", exports.ExportTotals)

	rec := env.do(t, http.MethodGet, "/sessions/1/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "session_1_")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "position,rank,pair"))

	rec = env.do(t, http.MethodGet, "/totals/export?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = env.do(t, http.MethodGet, "/totals/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
