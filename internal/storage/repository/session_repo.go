package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// SessionRepository handles database operations for sessions and their
// pairing schema.
type SessionRepository interface {
	// Upsert inserts or updates a session's header. Scoring state is left alone.
	Upsert(ctx context.Context, session *models.Session) error

	// GetByNumber retrieves a session. Returns nil when not found.
	GetByNumber(ctx context.Context, number int) (*models.Session, error)

	// List retrieves all sessions ordered by number.
	List(ctx context.Context) ([]*models.Session, error)

	// MarkScored records the fingerprint and run that produced the stored results.
	MarkScored(ctx context.Context, number int, fingerprint, runID string, at time.Time) error

	// ClearFingerprint forces the next recompute of a session.
	ClearFingerprint(ctx context.Context, number int) error

	// UpsertPair stores a session pair's schema facts.
	UpsertPair(ctx context.Context, pair *models.SessionPair) error

	// ListPairs retrieves a session's pairs ordered by session pair number.
	ListPairs(ctx context.Context, session int) ([]*models.SessionPair, error)
}

type sessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

// Upsert inserts or updates a session's header.
func (r *sessionRepository) Upsert(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (number, played_on, combi_top) VALUES (?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			played_on = excluded.played_on,
			combi_top = excluded.combi_top
	`

	if _, err := r.db.ExecContext(ctx, query, session.Number, session.PlayedOn, session.CombiTop); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// GetByNumber retrieves a session.
func (r *sessionRepository) GetByNumber(ctx context.Context, number int) (*models.Session, error) {
	query := `
		SELECT number, played_on, combi_top, fingerprint, run_id, scored_at
		FROM sessions
		WHERE number = ?
	`

	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, number).Scan(
		&session.Number,
		&session.PlayedOn,
		&session.CombiTop,
		&session.Fingerprint,
		&session.RunID,
		&session.ScoredAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// List retrieves all sessions ordered by number.
func (r *sessionRepository) List(ctx context.Context) ([]*models.Session, error) {
	query := `
		SELECT number, played_on, combi_top, fingerprint, run_id, scored_at
		FROM sessions
		ORDER BY number
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session := &models.Session{}
		err := rows.Scan(
			&session.Number,
			&session.PlayedOn,
			&session.CombiTop,
			&session.Fingerprint,
			&session.RunID,
			&session.ScoredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// MarkScored records the fingerprint and run that produced the stored results.
func (r *sessionRepository) MarkScored(ctx context.Context, number int, fingerprint, runID string, at time.Time) error {
	query := `UPDATE sessions SET fingerprint = ?, run_id = ?, scored_at = ? WHERE number = ?`

	res, err := r.db.ExecContext(ctx, query, fingerprint, runID, at, number)
	if err != nil {
		return fmt.Errorf("failed to mark session scored: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %d not found", number)
	}
	return nil
}

// ClearFingerprint forces the next recompute of a session.
func (r *sessionRepository) ClearFingerprint(ctx context.Context, number int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sessions SET fingerprint = '' WHERE number = ?`, number); err != nil {
		return fmt.Errorf("failed to clear session fingerprint: %w", err)
	}
	return nil
}

// UpsertPair stores a session pair's schema facts.
func (r *sessionRepository) UpsertPair(ctx context.Context, pair *models.SessionPair) error {
	query := `
		INSERT INTO session_pairs (session, pair, global_pair, rounds, combi_candidate)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session, pair) DO UPDATE SET
			global_pair = excluded.global_pair,
			rounds = excluded.rounds,
			combi_candidate = excluded.combi_candidate
	`

	_, err := r.db.ExecContext(ctx, query,
		pair.Session,
		pair.Pair,
		pair.GlobalPair,
		pair.Rounds,
		pair.CombiCandidate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session pair: %w", err)
	}
	return nil
}

// ListPairs retrieves a session's pairs ordered by session pair number.
func (r *sessionRepository) ListPairs(ctx context.Context, session int) ([]*models.SessionPair, error) {
	query := `
		SELECT session, pair, global_pair, rounds, combi_candidate
		FROM session_pairs
		WHERE session = ?
		ORDER BY pair
	`

	rows, err := r.db.QueryContext(ctx, query, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list session pairs: %w", err)
	}
	defer rows.Close()

	var pairs []*models.SessionPair
	for rows.Next() {
		p := &models.SessionPair{}
		if err := rows.Scan(&p.Session, &p.Pair, &p.GlobalPair, &p.Rounds, &p.CombiCandidate); err != nil {
			return nil, fmt.Errorf("failed to scan session pair: %w", err)
		}
		pairs = append(pairs, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session pairs: %w", err)
	}
	return pairs, nil
}
