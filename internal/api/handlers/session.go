package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ramonehamilton/bridge-scorer/internal/api/response"
	"github.com/ramonehamilton/bridge-scorer/internal/events"
	"github.com/ramonehamilton/bridge-scorer/internal/export"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
	"github.com/ramonehamilton/bridge-scorer/internal/storage"
	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// SessionHandler handles session-related API requests.
type SessionHandler struct {
	Deps
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(deps Deps) *SessionHandler {
	return &SessionHandler{Deps: deps}
}

// BoardRowRequest is one table's result. Exactly one of ScoreNS, PercentNS,
// Contract and NotPlayed describes the North-South result.
type BoardRowRequest struct {
	PairNS    int    `json:"pair_ns" validate:"required,min=1"`
	PairEW    int    `json:"pair_ew" validate:"required,min=1,nefield=PairNS"`
	ScoreNS   *int   `json:"score_ns,omitempty" validate:"omitempty,min=-7600,max=7600"`
	PercentNS *int   `json:"percent_ns,omitempty" validate:"omitempty,min=0,max=100"`
	PercentEW *int   `json:"percent_ew,omitempty" validate:"omitempty,min=0,max=100"`
	Contract  string `json:"contract,omitempty"`
	Declarer  string `json:"declarer,omitempty" validate:"omitempty,oneof=N E S W n e s w"`
	Result    string `json:"result,omitempty"`
	NotPlayed bool   `json:"not_played,omitempty"`
}

// BoardRequest is the body of a board result upload.
type BoardRequest struct {
	Rows []BoardRowRequest `json:"rows" validate:"required,min=1,dive"`
}

// toModel encodes the row. Contracts are scored with the vulnerability of
// the board number.
func (req BoardRowRequest) toModel(game int) (*models.BoardResult, error) {
	set := 0
	for _, given := range []bool{req.ScoreNS != nil, req.PercentNS != nil, req.Contract != "", req.NotPlayed} {
		if given {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("pair %d-%d: give exactly one of score_ns, percent_ns, contract or not_played", req.PairNS, req.PairEW)
	}

	row := &models.BoardResult{Game: game, PairNS: req.PairNS, PairEW: req.PairEW, ScoreEW: int(score.NoScore)}

	switch {
	case req.ScoreNS != nil:
		if *req.ScoreNS%10 != 0 {
			return nil, fmt.Errorf("pair %d-%d: score %d is not a multiple of 10", req.PairNS, req.PairEW, *req.ScoreNS)
		}
		row.ScoreNS = *req.ScoreNS
	case req.PercentNS != nil:
		row.ScoreNS = int(score.Percentage(*req.PercentNS))
		if req.PercentEW != nil {
			row.ScoreEW = int(score.Percentage(*req.PercentEW))
		}
	case req.NotPlayed:
		row.ScoreNS = int(score.NotPlayed)
	default:
		c, err := score.ParseContract(req.Contract, req.Declarer)
		if err != nil {
			return nil, err
		}
		overUnder, err := score.ParseResult(c.Level, req.Result)
		if err != nil {
			return nil, err
		}
		v, err := c.NSScore(overUnder, score.BoardVulnerability(game))
		if err != nil {
			return nil, err
		}
		row.ScoreNS = int(v)
	}
	return row, nil
}

// ListSessions returns every stored session.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.Sessions(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if sessions == nil {
		sessions = []*models.Session{}
	}
	response.Success(w, sessions)
}

// GetStandings returns the published ranking of a session.
func (h *SessionHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	standings, err := h.Store.SessionStandings(r.Context(), session)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if standings == nil {
		standings = []storage.SessionStanding{}
	}
	response.Success(w, standings)
}

// GetFrequencies returns the frequency tables of a percentage session or the
// board datums of a Butler session.
func (h *SessionHandler) GetFrequencies(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	res, ok := h.Recomputer.SessionResults(session)
	if !ok {
		out, err := h.Recomputer.RunSession(r.Context(), session, false)
		if errors.Is(err, storage.ErrSessionNotFound) {
			response.NotFound(w, err)
			return
		}
		if err != nil {
			response.InternalError(w, err)
			return
		}
		res = out.Results
	}

	if res.Method == score.MethodButler {
		response.Success(w, map[string]interface{}{"method": res.Method.String(), "datums": export.Datums(res)})
		return
	}
	response.Success(w, map[string]interface{}{"method": res.Method.String(), "frequencies": export.Frequencies(res)})
}

// GetDiagnostics returns the problems found when the session was scored.
func (h *SessionHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	diags, err := h.Store.SessionDiagnostics(r.Context(), session)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if diags == nil {
		diags = []*models.SessionDiagnostic{}
	}
	response.Success(w, diags)
}

// GetBoard returns the stored rows of one board.
func (h *SessionHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	game, err := intParam(r, "game")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	rows, err := h.Store.BoardResults(r.Context(), session, game)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if rows == nil {
		rows = []*models.BoardResult{}
	}
	response.Success(w, rows)
}

// PostBoard stores the results of one board.
func (h *SessionHandler) PostBoard(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	game, err := intParam(r, "game")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req BoardRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	rows := make([]*models.BoardResult, 0, len(req.Rows))
	seen := make(map[int]bool, len(req.Rows))
	for _, rr := range req.Rows {
		if seen[rr.PairNS] {
			response.Invalid(w, fmt.Errorf("pair %d sits North-South twice", rr.PairNS))
			return
		}
		seen[rr.PairNS] = true

		row, err := rr.toModel(game)
		if err != nil {
			response.Invalid(w, err)
			return
		}
		rows = append(rows, row)
	}

	if err := h.Store.SaveBoardResults(r.Context(), session, rows); err != nil {
		response.InternalError(w, err)
		return
	}
	h.dispatch(r, events.TypeBoardsUpdated, events.BoardsUpdatedEvent{Session: session, Game: game, Rows: len(rows)})

	if err := h.afterWrite(r, session); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Created(w, rows)
}

// CombiRequest is the combined-correction part of a correction.
type CombiRequest struct {
	Extra    int `json:"extra"`
	MaxExtra int `json:"max_extra" validate:"min=0"`
	Games    int `json:"games" validate:"min=1"`
}

// CorrectionRequest sets or clears a session correction. Percent values are
// in hundredths of a percent.
type CorrectionRequest struct {
	Kind  string        `json:"kind" validate:"omitempty,oneof=none percent matchpoints"`
	Value int           `json:"value"`
	Combi *CombiRequest `json:"combi,omitempty"`
}

// PutCorrection stores a session correction. A request with no kind and no
// combi part removes it.
func (h *SessionHandler) PutCorrection(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	pair, err := intParam(r, "pair")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req CorrectionRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	c := &models.Correction{Session: session, Pair: pair, Kind: strings.ToLower(req.Kind), Value: req.Value}
	if req.Combi != nil {
		c.HasCombi = true
		c.CombiExtra = req.Combi.Extra
		c.CombiMaxExtra = req.Combi.MaxExtra
		c.CombiGames = req.Combi.Games
	}

	if err := h.Store.SaveCorrection(r.Context(), c); err != nil {
		response.InternalError(w, err)
		return
	}
	if err := h.afterWrite(r, session); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, c)
}

// SessionPairRequest is one pair's schema facts.
type SessionPairRequest struct {
	Pair           int  `json:"pair" validate:"required,min=1"`
	GlobalPair     int  `json:"global_pair" validate:"required,min=1"`
	Rounds         int  `json:"rounds" validate:"min=0"`
	CombiCandidate bool `json:"combi_candidate"`
}

// PairsRequest is the body of a session pairing upload.
type PairsRequest struct {
	CombiTop int                  `json:"combi_top" validate:"min=0"`
	Pairs    []SessionPairRequest `json:"pairs" validate:"required,min=1,dive"`
}

// PutPairs stores the pairing facts of a session.
func (h *SessionHandler) PutPairs(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req PairsRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	pairs := make([]*models.SessionPair, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		pairs = append(pairs, &models.SessionPair{
			Pair:           p.Pair,
			GlobalPair:     p.GlobalPair,
			Rounds:         p.Rounds,
			CombiCandidate: p.CombiCandidate,
		})
	}

	if err := h.Store.SaveSessionPairs(r.Context(), session, req.CombiTop, pairs); err != nil {
		response.InternalError(w, err)
		return
	}
	if err := h.afterWrite(r, session); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, pairs)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errInvalidBody) {
		response.BadRequest(w, err)
		return
	}
	response.Invalid(w, err)
}
