package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// ResultRepository handles the scored output of sessions: short results,
// rank tables and diagnostics.
type ResultRepository interface {
	// ReplaceSession deletes a session's stored output and writes the new one.
	ReplaceSession(ctx context.Context, session int, results []*models.SessionResult, ranks []*models.SessionRank, diags []*models.SessionDiagnostic) error

	// ListResults retrieves a session's short results ordered by global pair.
	ListResults(ctx context.Context, session int) ([]*models.SessionResult, error)

	// ListAllResults retrieves every stored short result ordered by session.
	ListAllResults(ctx context.Context) ([]*models.SessionResult, error)

	// ListRanks retrieves a session's rank table ordered by position.
	ListRanks(ctx context.Context, session int) ([]*models.SessionRank, error)

	// ListDiagnostics retrieves a session's diagnostics in insertion order.
	ListDiagnostics(ctx context.Context, session int) ([]*models.SessionDiagnostic, error)
}

type resultRepository struct {
	db DBTX
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db DBTX) ResultRepository {
	return &resultRepository{db: db}
}

// ReplaceSession deletes a session's stored output and writes the new one.
// Run it inside a transaction so readers never see a half-written session.
func (r *resultRepository) ReplaceSession(ctx context.Context, session int, results []*models.SessionResult, ranks []*models.SessionRank, diags []*models.SessionDiagnostic) error {
	for _, table := range []string{"session_results", "session_ranks", "session_diagnostics"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE session = ?", session); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, res := range results {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO session_results (session, global_pair, session_pair, score, games) VALUES (?, ?, ?, ?, ?)`,
			session, res.GlobalPair, res.SessionPair, res.Score, res.Games,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session result: %w", err)
		}
	}

	for _, rank := range ranks {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO session_ranks (session, position, pair, rank) VALUES (?, ?, ?, ?)`,
			session, rank.Position, rank.Pair, rank.Rank,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session rank: %w", err)
		}
	}

	for _, d := range diags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO session_diagnostics (session, pair, kind, reason) VALUES (?, ?, ?, ?)`,
			session, d.Pair, d.Kind, d.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session diagnostic: %w", err)
		}
	}

	return nil
}

// ListResults retrieves a session's short results.
func (r *resultRepository) ListResults(ctx context.Context, session int) ([]*models.SessionResult, error) {
	query := `
		SELECT session, global_pair, session_pair, score, games
		FROM session_results
		WHERE session = ?
		ORDER BY global_pair
	`
	return r.listResults(ctx, query, session)
}

// ListAllResults retrieves every stored short result.
func (r *resultRepository) ListAllResults(ctx context.Context) ([]*models.SessionResult, error) {
	query := `
		SELECT session, global_pair, session_pair, score, games
		FROM session_results
		ORDER BY session, global_pair
	`
	return r.listResults(ctx, query)
}

func (r *resultRepository) listResults(ctx context.Context, query string, args ...any) ([]*models.SessionResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list session results: %w", err)
	}
	defer rows.Close()

	var out []*models.SessionResult
	for rows.Next() {
		res := &models.SessionResult{}
		if err := rows.Scan(&res.Session, &res.GlobalPair, &res.SessionPair, &res.Score, &res.Games); err != nil {
			return nil, fmt.Errorf("failed to scan session result: %w", err)
		}
		out = append(out, res)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session results: %w", err)
	}
	return out, nil
}

// ListRanks retrieves a session's rank table.
func (r *resultRepository) ListRanks(ctx context.Context, session int) ([]*models.SessionRank, error) {
	query := `
		SELECT session, position, pair, rank
		FROM session_ranks
		WHERE session = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list session ranks: %w", err)
	}
	defer rows.Close()

	var out []*models.SessionRank
	for rows.Next() {
		rank := &models.SessionRank{}
		if err := rows.Scan(&rank.Session, &rank.Position, &rank.Pair, &rank.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan session rank: %w", err)
		}
		out = append(out, rank)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session ranks: %w", err)
	}
	return out, nil
}

// ListDiagnostics retrieves a session's diagnostics.
func (r *resultRepository) ListDiagnostics(ctx context.Context, session int) ([]*models.SessionDiagnostic, error) {
	query := `
		SELECT id, session, pair, kind, reason
		FROM session_diagnostics
		WHERE session = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list session diagnostics: %w", err)
	}
	defer rows.Close()

	var out []*models.SessionDiagnostic
	for rows.Next() {
		d := &models.SessionDiagnostic{}
		if err := rows.Scan(&d.ID, &d.Session, &d.Pair, &d.Kind, &d.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan session diagnostic: %w", err)
		}
		out = append(out, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session diagnostics: %w", err)
	}
	return out, nil
}
