package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// BoardRepository handles database operations for board results.
type BoardRepository interface {
	// Upsert stores a table's result on a board, replacing an earlier entry
	// for the same NS pair.
	Upsert(ctx context.Context, result *models.BoardResult) error

	// ListBySession retrieves a session's results ordered by game and NS pair.
	ListBySession(ctx context.Context, session int) ([]*models.BoardResult, error)

	// ListByGame retrieves one board's results ordered by NS pair.
	ListByGame(ctx context.Context, session, game int) ([]*models.BoardResult, error)

	// DeleteGame removes every result of a board.
	DeleteGame(ctx context.Context, session, game int) error
}

type boardRepository struct {
	db DBTX
}

// NewBoardRepository creates a new board result repository.
func NewBoardRepository(db DBTX) BoardRepository {
	return &boardRepository{db: db}
}

// Upsert stores a table's result on a board.
func (r *boardRepository) Upsert(ctx context.Context, result *models.BoardResult) error {
	query := `
		INSERT INTO board_results (session, game, pair_ns, pair_ew, score_ns, score_ew)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, game, pair_ns) DO UPDATE SET
			pair_ew = excluded.pair_ew,
			score_ns = excluded.score_ns,
			score_ew = excluded.score_ew
	`

	_, err := r.db.ExecContext(ctx, query,
		result.Session,
		result.Game,
		result.PairNS,
		result.PairEW,
		result.ScoreNS,
		result.ScoreEW,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert board result: %w", err)
	}
	return nil
}

// ListBySession retrieves a session's results.
func (r *boardRepository) ListBySession(ctx context.Context, session int) ([]*models.BoardResult, error) {
	query := `
		SELECT id, session, game, pair_ns, pair_ew, score_ns, score_ew
		FROM board_results
		WHERE session = ?
		ORDER BY game, pair_ns
	`
	return r.list(ctx, query, session)
}

// ListByGame retrieves one board's results.
func (r *boardRepository) ListByGame(ctx context.Context, session, game int) ([]*models.BoardResult, error) {
	query := `
		SELECT id, session, game, pair_ns, pair_ew, score_ns, score_ew
		FROM board_results
		WHERE session = ? AND game = ?
		ORDER BY pair_ns
	`
	return r.list(ctx, query, session, game)
}

func (r *boardRepository) list(ctx context.Context, query string, args ...any) ([]*models.BoardResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list board results: %w", err)
	}
	defer rows.Close()

	var results []*models.BoardResult
	for rows.Next() {
		b := &models.BoardResult{}
		err := rows.Scan(
			&b.ID,
			&b.Session,
			&b.Game,
			&b.PairNS,
			&b.PairEW,
			&b.ScoreNS,
			&b.ScoreEW,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board result: %w", err)
		}
		results = append(results, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating board results: %w", err)
	}
	return results, nil
}

// DeleteGame removes every result of a board.
func (r *boardRepository) DeleteGame(ctx context.Context, session, game int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM board_results WHERE session = ? AND game = ?`, session, game); err != nil {
		return fmt.Errorf("failed to delete board results: %w", err)
	}
	return nil
}
