package events

// ============================================================================
// Event Message Types
// ============================================================================

// SessionScoredEvent is the payload for session:scored events.
// Sent when a session's results have been recomputed and stored.
type SessionScoredEvent struct {
	Session     int    `json:"session"`     // Session number
	Method      string `json:"method"`      // "percentage" or "butler"
	Pairs       int    `json:"pairs"`       // Number of pairs with a score
	Diagnostics int    `json:"diagnostics"` // Rejected corrections and bad rows
	Fingerprint string `json:"fingerprint"` // Fingerprint of the scored inputs
	RunID       string `json:"runId"`       // Recompute run id
}

// Map returns the payload as an untyped map.
func (e SessionScoredEvent) Map() map[string]interface{} {
	return map[string]interface{}{
		"session":     e.Session,
		"method":      e.Method,
		"pairs":       e.Pairs,
		"diagnostics": e.Diagnostics,
		"fingerprint": e.Fingerprint,
		"runId":       e.RunID,
	}
}

// SessionSkippedEvent is the payload for session:skipped events.
// Sent when a session's inputs are unchanged since it was last scored.
type SessionSkippedEvent struct {
	Session     int    `json:"session"`
	Fingerprint string `json:"fingerprint"`
}

// Map returns the payload as an untyped map.
func (e SessionSkippedEvent) Map() map[string]interface{} {
	return map[string]interface{}{"session": e.Session, "fingerprint": e.Fingerprint}
}

// TotalsUpdatedEvent is the payload for totals:updated events.
// Sent when the multi-session totals have been recomputed.
type TotalsUpdatedEvent struct {
	Sessions int    `json:"sessions"` // Sessions included
	Ranked   int    `json:"ranked"`   // Pairs with a rank
	Clubs    int    `json:"clubs"`    // Clubs aggregated
	Leader   int    `json:"leader"`   // Global pair ranked first (0 = none)
	RunID    string `json:"runId"`
}

// Map returns the payload as an untyped map.
func (e TotalsUpdatedEvent) Map() map[string]interface{} {
	return map[string]interface{}{
		"sessions": e.Sessions,
		"ranked":   e.Ranked,
		"clubs":    e.Clubs,
		"leader":   e.Leader,
		"runId":    e.RunID,
	}
}

// BoardsUpdatedEvent is the payload for boards:updated events.
// Sent when board results were entered through the API.
type BoardsUpdatedEvent struct {
	Session int `json:"session"`
	Game    int `json:"game"`
	Rows    int `json:"rows"`
}

// Map returns the payload as an untyped map.
func (e BoardsUpdatedEvent) Map() map[string]interface{} {
	return map[string]interface{}{"session": e.Session, "game": e.Game, "rows": e.Rows}
}

// ConfigReloadedEvent is the payload for config:reloaded events.
// Sent when the watched configuration file changed and was reloaded.
type ConfigReloadedEvent struct {
	Path   string `json:"path"`
	Method string `json:"method"`
}

// Map returns the payload as an untyped map.
func (e ConfigReloadedEvent) Map() map[string]interface{} {
	return map[string]interface{}{"path": e.Path, "method": e.Method}
}

// RecomputeFailedEvent is the payload for recompute:failed events.
type RecomputeFailedEvent struct {
	Session int    `json:"session,omitempty"` // 0 when the totals failed
	Error   string `json:"error"`
	RunID   string `json:"runId"`
}

// Map returns the payload as an untyped map.
func (e RecomputeFailedEvent) Map() map[string]interface{} {
	return map[string]interface{}{"session": e.Session, "error": e.Error, "runId": e.RunID}
}
