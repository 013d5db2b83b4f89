package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/bridge-scorer/internal/api/handlers"
	"github.com/ramonehamilton/bridge-scorer/internal/api/response"
	"github.com/ramonehamilton/bridge-scorer/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint, ?session=N narrows the stream to one session
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		sessionHandler := handlers.NewSessionHandler(s.deps)
		exportHandler := handlers.NewExportHandler(s.deps)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.ListSessions)
			r.Route("/{session}", func(r chi.Router) {
				r.Get("/standings", sessionHandler.GetStandings)
				r.Get("/frequencies", sessionHandler.GetFrequencies)
				r.Get("/diagnostics", sessionHandler.GetDiagnostics)
				r.Get("/export", exportHandler.ExportStandings)
				r.Get("/boards/{game}", sessionHandler.GetBoard)
				r.Post("/boards/{game}", sessionHandler.PostBoard)
				r.Put("/corrections/{pair}", sessionHandler.PutCorrection)
				r.Put("/pairs", sessionHandler.PutPairs)
			})
		})

		competitionHandler := handlers.NewCompetitionHandler(s.deps)
		r.Get("/totals", competitionHandler.GetTotals)
		r.Get("/totals/export", exportHandler.ExportTotals)
		r.Get("/clubs", competitionHandler.GetClubs)
		r.Put("/clubs/{club}", competitionHandler.PutClub)
		r.Put("/pairs/{pair}", competitionHandler.PutPair)
		r.Put("/end-corrections/{session}/{pair}", competitionHandler.PutEndCorrection)

		systemHandler := handlers.NewSystemHandler(s.deps)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Get("/metrics", systemHandler.GetMetrics)
			r.Post("/recompute", systemHandler.PostRecompute)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": version.Service,
		"version": version.GetVersion(),
	})
}
