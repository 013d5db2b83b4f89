package storage

import (
	"path/filepath"
	"testing"
)

// NewTestService creates a migrated database in a temporary directory and
// returns a service over it. The database is closed when the test ends.
// This helper is exported for use in other package tests.
func NewTestService(t testing.TB) *Service {
	t.Helper()

	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := NewService(db)
	t.Cleanup(func() {
		if err := service.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return service
}
