package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// PairRepository handles database operations for pairs and clubs.
type PairRepository interface {
	// Upsert inserts or updates a pair.
	Upsert(ctx context.Context, pair *models.Pair) error

	// GetByID retrieves a pair by its ID. Returns nil when not found.
	GetByID(ctx context.Context, id int) (*models.Pair, error)

	// List retrieves all pairs ordered by ID.
	List(ctx context.Context) ([]*models.Pair, error)

	// ClubMap returns the club of every affiliated pair.
	ClubMap(ctx context.Context) (map[int]int, error)

	// UpsertClub inserts or updates a club.
	UpsertClub(ctx context.Context, club *models.Club) error

	// ListClubs retrieves all clubs ordered by ID.
	ListClubs(ctx context.Context) ([]*models.Club, error)
}

type pairRepository struct {
	db DBTX
}

// NewPairRepository creates a new pair repository.
func NewPairRepository(db DBTX) PairRepository {
	return &pairRepository{db: db}
}

// Upsert inserts or updates a pair.
func (r *pairRepository) Upsert(ctx context.Context, pair *models.Pair) error {
	query := `
		INSERT INTO pairs (id, name, club_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, club_id = excluded.club_id
	`

	if _, err := r.db.ExecContext(ctx, query, pair.ID, pair.Name, pair.ClubID); err != nil {
		return fmt.Errorf("failed to upsert pair: %w", err)
	}
	return nil
}

// GetByID retrieves a pair by its ID.
func (r *pairRepository) GetByID(ctx context.Context, id int) (*models.Pair, error) {
	pair := &models.Pair{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, club_id FROM pairs WHERE id = ?`, id).
		Scan(&pair.ID, &pair.Name, &pair.ClubID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pair by id: %w", err)
	}
	return pair, nil
}

// List retrieves all pairs ordered by ID.
func (r *pairRepository) List(ctx context.Context) ([]*models.Pair, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, club_id FROM pairs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	defer rows.Close()

	var pairs []*models.Pair
	for rows.Next() {
		pair := &models.Pair{}
		if err := rows.Scan(&pair.ID, &pair.Name, &pair.ClubID); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, pair)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pairs: %w", err)
	}
	return pairs, nil
}

// ClubMap returns the club of every affiliated pair.
func (r *pairRepository) ClubMap(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, club_id FROM pairs WHERE club_id <> 0`)
	if err != nil {
		return nil, fmt.Errorf("failed to load club map: %w", err)
	}
	defer rows.Close()

	clubs := make(map[int]int)
	for rows.Next() {
		var pair, club int
		if err := rows.Scan(&pair, &club); err != nil {
			return nil, fmt.Errorf("failed to scan club map: %w", err)
		}
		clubs[pair] = club
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club map: %w", err)
	}
	return clubs, nil
}

// UpsertClub inserts or updates a club.
func (r *pairRepository) UpsertClub(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`

	if _, err := r.db.ExecContext(ctx, query, club.ID, club.Name); err != nil {
		return fmt.Errorf("failed to upsert club: %w", err)
	}
	return nil
}

// ListClubs retrieves all clubs ordered by ID.
func (r *pairRepository) ListClubs(ctx context.Context) ([]*models.Club, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM clubs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []*models.Club
	for rows.Next() {
		club := &models.Club{}
		if err := rows.Scan(&club.ID, &club.Name); err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, club)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clubs: %w", err)
	}
	return clubs, nil
}
