package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableNames(t *testing.T, dbPath string) []string {
	t.Helper()

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name != 'schema_migrations' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrationManager_UpCreatesScoringTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	require.NoError(t, Migrate(path))

	assert.Equal(t, []string{
		"board_results",
		"clubs",
		"corrections",
		"end_corrections",
		"pairs",
		"session_diagnostics",
		"session_pairs",
		"session_ranks",
		"session_results",
		"sessions",
	}, tableNames(t, path))
}

func TestMigrationManager_Down(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")

	mgr, err := NewMigrationManager(path)
	require.NoError(t, err)
	defer mgr.Close()

	require.NoError(t, mgr.Up())
	require.NoError(t, mgr.Down())
	require.NoError(t, mgr.Down(), "a second rollback has nothing to do")

	assert.Empty(t, tableNames(t, path))
}

func TestMigrationManager_VersionBeforeUp(t *testing.T) {
	mgr, err := NewMigrationManager(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	defer mgr.Close()

	version, dirty, err := mgr.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)
}

func TestDatabaseURL(t *testing.T) {
	assert.Equal(t, "sqlite:///tmp/scores.db", databaseURL("/tmp/scores.db"))
	assert.Equal(t, "sqlite://scores.db", databaseURL("scores.db"))
}
