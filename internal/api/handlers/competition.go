package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ramonehamilton/bridge-scorer/internal/api/response"
	"github.com/ramonehamilton/bridge-scorer/internal/export"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/correction"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// CompetitionHandler handles totals, clubs and pair registration.
type CompetitionHandler struct {
	Deps
}

// NewCompetitionHandler creates a new CompetitionHandler.
func NewCompetitionHandler(deps Deps) *CompetitionHandler {
	return &CompetitionHandler{Deps: deps}
}

// TotalsResponse is the competition ranking.
type TotalsResponse struct {
	Method      string                  `json:"method"`
	Totals      []export.TotalRow       `json:"totals"`
	Diagnostics []correction.Diagnostic `json:"diagnostics"`
}

// latest returns the last competition results, scoring the competition when
// nothing was scored yet.
func (h *CompetitionHandler) latest(r *http.Request) (*engine.CompetitionResults, error) {
	if res := h.Recomputer.Latest(); res != nil {
		return res, nil
	}
	return h.Recomputer.RunCompetition(r.Context())
}

// GetTotals returns the competition ranking.
func (h *CompetitionHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	res, err := h.latest(r)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	pairs, err := h.Store.Pairs(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	names := make(export.Names, len(pairs))
	for _, p := range pairs {
		names[p.ID] = p.Name
	}

	rows := export.Totals(res, names)
	if rows == nil {
		rows = []export.TotalRow{}
	}
	diags := res.Diagnostics
	if diags == nil {
		diags = []correction.Diagnostic{}
	}
	response.Success(w, TotalsResponse{
		Method:      h.Recomputer.Config().Method.String(),
		Totals:      rows,
		Diagnostics: diags,
	})
}

// GetClubs returns the club ranking.
func (h *CompetitionHandler) GetClubs(w http.ResponseWriter, r *http.Request) {
	res, err := h.latest(r)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	list, err := h.Store.Clubs(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	names := make(export.Names, len(list))
	for _, c := range list {
		names[c.ID] = c.Name
	}
	response.Success(w, export.Clubs(res.Clubs, names))
}

// EndCorrectionRequest overrides a pair's session result in the totals.
// Score and Bonus are percentages or IMPs per board with two decimals.
type EndCorrectionRequest struct {
	Score   *float64 `json:"score,omitempty" validate:"omitempty,min=-99.99,max=100"`
	Bonus   float64  `json:"bonus" validate:"min=-99.99,max=99.99"`
	Games   int      `json:"games" validate:"min=0"`
	Ignore  bool     `json:"ignore"`
	NoTotal bool     `json:"no_total"`
}

func (req EndCorrectionRequest) toModel(session, pair int) (*models.EndCorrection, error) {
	e := &models.EndCorrection{
		Session: session,
		Pair:    pair,
		Bonus:   int(score.HundredthsFromFloat(req.Bonus)),
		Games:   req.Games,
	}

	switch {
	case req.Ignore && req.NoTotal:
		return nil, errors.New("ignore and no_total are exclusive")
	case req.Ignore:
		e.Score = int(correction.EndIgnore)
	case req.NoTotal:
		e.Score = int(correction.EndNoTotal)
	case req.Score != nil:
		e.Score = int(score.HundredthsFromFloat(*req.Score))
	}

	if (req.Ignore || req.NoTotal) && (req.Score != nil || req.Bonus != 0) {
		return nil, fmt.Errorf("pair %d: a sentinel end correction carries no score or bonus", pair)
	}
	return e, nil
}

// PutEndCorrection stores an end correction for a global pair.
func (h *CompetitionHandler) PutEndCorrection(w http.ResponseWriter, r *http.Request) {
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

	var req EndCorrectionRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	e, err := req.toModel(session, pair)
	if err != nil {
		response.Invalid(w, err)
		return
	}

	if err := h.Store.SaveEndCorrection(r.Context(), e); err != nil {
		response.InternalError(w, err)
		return
	}
	if err := h.afterWrite(r, 0); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, e)
}

// PairRequest registers a global pair.
type PairRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	ClubID int    `json:"club_id" validate:"min=0"`
}

// PutPair creates or renames a global pair.
func (h *CompetitionHandler) PutPair(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "pair")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req PairRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	p := &models.Pair{ID: id, Name: req.Name, ClubID: req.ClubID}
	if err := h.Store.SavePair(r.Context(), p); err != nil {
		response.InternalError(w, err)
		return
	}
	if err := h.afterWrite(r, 0); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, p)
}

// ClubRequest registers a club.
type ClubRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// PutClub creates or renames a club.
func (h *CompetitionHandler) PutClub(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "club")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req ClubRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	c := &models.Club{ID: id, Name: req.Name}
	if err := h.Store.SaveClub(r.Context(), c); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, c)
}
