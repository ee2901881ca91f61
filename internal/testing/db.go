// Package testing provides testing utilities and helpers for the rebalancer project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/rebalancer/internal/database"
)

// NewTestDB creates a migrated SQLite database in a per-test temporary directory.
// The connection is closed when the test finishes.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "rebalancer.db"),
		Profile: database.ProfileStandard,
		Name:    "rebalancer",
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
