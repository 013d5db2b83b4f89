package repository

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory database with the scoring tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a new database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE clubs (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);

		CREATE TABLE pairs (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			club_id INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE sessions (
			number INTEGER PRIMARY KEY,
			played_on DATETIME,
			combi_top INTEGER NOT NULL DEFAULT 0,
			fingerprint TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL DEFAULT '',
			scored_at DATETIME
		);

		CREATE TABLE session_pairs (
			session INTEGER NOT NULL,
			pair INTEGER NOT NULL,
			global_pair INTEGER NOT NULL,
			rounds INTEGER NOT NULL DEFAULT 0,
			combi_candidate INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session, pair)
		);

		CREATE TABLE board_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session INTEGER NOT NULL,
			game INTEGER NOT NULL,
			pair_ns INTEGER NOT NULL,
			pair_ew INTEGER NOT NULL,
			score_ns INTEGER NOT NULL,
			score_ew INTEGER NOT NULL,
			UNIQUE (session, game, pair_ns)
		);

		CREATE TABLE corrections (
			session INTEGER NOT NULL,
			pair INTEGER NOT NULL,
			kind TEXT NOT NULL DEFAULT 'none',
			value INTEGER NOT NULL DEFAULT 0,
			has_combi INTEGER NOT NULL DEFAULT 0,
			combi_extra INTEGER NOT NULL DEFAULT 0,
			combi_max_extra INTEGER NOT NULL DEFAULT 0,
			combi_games INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session, pair)
		);

		CREATE TABLE end_corrections (
			session INTEGER NOT NULL,
			pair INTEGER NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			bonus INTEGER NOT NULL DEFAULT 0,
			games INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session, pair)
		);

		CREATE TABLE session_results (
			session INTEGER NOT NULL,
			global_pair INTEGER NOT NULL,
			session_pair INTEGER NOT NULL,
			score INTEGER NOT NULL,
			games INTEGER NOT NULL,
			PRIMARY KEY (session, global_pair)
		);

		CREATE TABLE session_ranks (
			session INTEGER NOT NULL,
			position INTEGER NOT NULL,
			pair INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			PRIMARY KEY (session, position)
		);

		CREATE TABLE session_diagnostics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session INTEGER NOT NULL,
			pair INTEGER NOT NULL,
			kind TEXT NOT NULL,
			reason TEXT NOT NULL
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	})
	return db
}
