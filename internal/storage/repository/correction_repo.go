package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// CorrectionRepository handles database operations for session corrections
// and end corrections.
type CorrectionRepository interface {
	// Upsert stores a session pair's correction.
	Upsert(ctx context.Context, c *models.Correction) error

	// Delete removes a session pair's correction.
	Delete(ctx context.Context, session, pair int) error

	// ListBySession retrieves a session's corrections ordered by pair.
	ListBySession(ctx context.Context, session int) ([]*models.Correction, error)

	// UpsertEnd stores a global pair's end correction for a session.
	UpsertEnd(ctx context.Context, e *models.EndCorrection) error

	// ListEnd retrieves every end correction ordered by session and pair.
	ListEnd(ctx context.Context) ([]*models.EndCorrection, error)
}

type correctionRepository struct {
	db DBTX
}

// NewCorrectionRepository creates a new correction repository.
func NewCorrectionRepository(db DBTX) CorrectionRepository {
	return &correctionRepository{db: db}
}

// Upsert stores a session pair's correction.
func (r *correctionRepository) Upsert(ctx context.Context, c *models.Correction) error {
	query := `
		INSERT INTO corrections (
			session, pair, kind, value,
			has_combi, combi_extra, combi_max_extra, combi_games
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, pair) DO UPDATE SET
			kind = excluded.kind,
			value = excluded.value,
			has_combi = excluded.has_combi,
			combi_extra = excluded.combi_extra,
			combi_max_extra = excluded.combi_max_extra,
			combi_games = excluded.combi_games
	`

	_, err := r.db.ExecContext(ctx, query,
		c.Session,
		c.Pair,
		c.Kind,
		c.Value,
		c.HasCombi,
		c.CombiExtra,
		c.CombiMaxExtra,
		c.CombiGames,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert correction: %w", err)
	}
	return nil
}

// Delete removes a session pair's correction.
func (r *correctionRepository) Delete(ctx context.Context, session, pair int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM corrections WHERE session = ? AND pair = ?`, session, pair); err != nil {
		return fmt.Errorf("failed to delete correction: %w", err)
	}
	return nil
}

// ListBySession retrieves a session's corrections.
func (r *correctionRepository) ListBySession(ctx context.Context, session int) ([]*models.Correction, error) {
	query := `
		SELECT session, pair, kind, value,
		       has_combi, combi_extra, combi_max_extra, combi_games
		FROM corrections
		WHERE session = ?
		ORDER BY pair
	`

	rows, err := r.db.QueryContext(ctx, query, session)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	defer rows.Close()

	var out []*models.Correction
	for rows.Next() {
		c := &models.Correction{}
		err := rows.Scan(
			&c.Session,
			&c.Pair,
			&c.Kind,
			&c.Value,
			&c.HasCombi,
			&c.CombiExtra,
			&c.CombiMaxExtra,
			&c.CombiGames,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		out = append(out, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrections: %w", err)
	}
	return out, nil
}

// UpsertEnd stores a global pair's end correction for a session.
func (r *correctionRepository) UpsertEnd(ctx context.Context, e *models.EndCorrection) error {
	query := `
		INSERT INTO end_corrections (session, pair, score, bonus, games)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session, pair) DO UPDATE SET
			score = excluded.score,
			bonus = excluded.bonus,
			games = excluded.games
	`

	if _, err := r.db.ExecContext(ctx, query, e.Session, e.Pair, e.Score, e.Bonus, e.Games); err != nil {
		return fmt.Errorf("failed to upsert end correction: %w", err)
	}
	return nil
}

// ListEnd retrieves every end correction.
func (r *correctionRepository) ListEnd(ctx context.Context) ([]*models.EndCorrection, error) {
	query := `
		SELECT session, pair, score, bonus, games
		FROM end_corrections
		ORDER BY session, pair
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list end corrections: %w", err)
	}
	defer rows.Close()

	var out []*models.EndCorrection
	for rows.Next() {
		e := &models.EndCorrection{}
		if err := rows.Scan(&e.Session, &e.Pair, &e.Score, &e.Bonus, &e.Games); err != nil {
			return nil, fmt.Errorf("failed to scan end correction: %w", err)
		}
		out = append(out, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating end corrections: %w", err)
	}
	return out, nil
}
