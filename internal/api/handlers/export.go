package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ramonehamilton/bridge-scorer/internal/api/response"
	"github.com/ramonehamilton/bridge-scorer/internal/export"
	"github.com/ramonehamilton/bridge-scorer/internal/storage"
)

// ExportHandler streams standings as CSV or JSON downloads.
type ExportHandler struct {
	Deps
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(deps Deps) *ExportHandler {
	return &ExportHandler{Deps: deps}
}

func formatParam(r *http.Request) (export.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return export.FormatCSV, nil
	}
	return export.ParseFormat(raw)
}

func (h *ExportHandler) pairNames(r *http.Request) (export.Names, error) {
	pairs, err := h.Store.Pairs(r.Context())
	if err != nil {
		return nil, err
	}
	names := make(export.Names, len(pairs))
	for _, p := range pairs {
		names[p.ID] = p.Name
	}
	return names, nil
}

func write(w http.ResponseWriter, name string, format export.Format, data interface{}) {
	contentType := "text/csv"
	if format == export.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.GenerateFilename(name, format)))
	if err := export.ExportToWriter(w, format, data, false); err != nil {
		response.InternalError(w, err)
	}
}

// ExportStandings downloads a session ranking.
func (h *ExportHandler) ExportStandings(w http.ResponseWriter, r *http.Request) {
	session, err := intParam(r, "session")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	format, err := formatParam(r)
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

	names, err := h.pairNames(r)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	write(w, fmt.Sprintf("session_%d", session), format, export.SessionStandings(res, names))
}

// ExportTotals downloads the competition ranking.
func (h *ExportHandler) ExportTotals(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	res := h.Recomputer.Latest()
	if res == nil {
		if res, err = h.Recomputer.RunCompetition(r.Context()); err != nil {
			response.InternalError(w, err)
			return
		}
	}

	names, err := h.pairNames(r)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	write(w, "totals", format, export.Totals(res, names))
}
