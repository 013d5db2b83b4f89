package handlers

import (
	"net/http"
	"time"

	"github.com/ramonehamilton/bridge-scorer/internal/api/response"
	"github.com/ramonehamilton/bridge-scorer/internal/version"
)

// SystemHandler handles health, metrics and recompute requests.
type SystemHandler struct {
	Deps
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(deps Deps) *SystemHandler {
	return &SystemHandler{Deps: deps, started: time.Now()}
}

// StatusResponse is the service status.
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Method  string `json:"method"`
	Uptime  string `json:"uptime"`
}

// GetStatus returns the service status.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response.Success(w, StatusResponse{
		Status:  "ok",
		Service: version.Service,
		Version: version.GetVersion(),
		Method:  h.Recomputer.Config().Method.String(),
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// GetMetrics returns recompute timings and counters.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.Recomputer.Metrics().GetStats())
}

// RecomputeRequest triggers a full recompute.
type RecomputeRequest struct {
	Force bool `json:"force"`
}

// SessionSummary describes one session of a recompute.
type SessionSummary struct {
	Session     int    `json:"session"`
	Fingerprint string `json:"fingerprint"`
	RunID       string `json:"runId"`
	Skipped     bool   `json:"skipped"`
	Pairs       int    `json:"pairs"`
	Diagnostics int    `json:"diagnostics"`
	DurationMs  int64  `json:"durationMs"`
}

// RecomputeResponse describes a full recompute.
type RecomputeResponse struct {
	RunID    string           `json:"runId"`
	Sessions []SessionSummary `json:"sessions"`
	Ranked   int              `json:"ranked"`
}

// PostRecompute rescores every session and the competition. An empty body
// rescores only changed sessions.
func (h *SystemHandler) PostRecompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
	}

	summary, err := h.Recomputer.RunAll(r.Context(), req.Force)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	resp := RecomputeResponse{RunID: summary.RunID, Sessions: make([]SessionSummary, 0, len(summary.Sessions))}
	for _, s := range summary.Sessions {
		line := SessionSummary{
			Session:     s.Session,
			Fingerprint: s.Fingerprint,
			RunID:       s.RunID,
			Skipped:     s.Skipped,
			DurationMs:  s.Duration.Milliseconds(),
		}
		if s.Results != nil {
			line.Pairs = s.Results.Rank.Ranked()
			line.Diagnostics = len(s.Results.Diagnostics) + len(s.Results.BadData)
		}
		resp.Sessions = append(resp.Sessions, line)
	}
	if summary.Competition != nil {
		resp.Ranked = summary.Competition.Rank.Ranked()
	}
	response.Success(w, resp)
}
