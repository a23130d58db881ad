// Package testing provides testing utilities and helpers for the stockboard project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/database"
	"github.com/aristath/stockboard/internal/storage"
)

// NewTestDB creates a file-backed SQLite database in a per-test temporary directory
// and applies the embedded schema for name ("state" is the only schema).
// The database is closed automatically when the test ends.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})
	return db
}

// NewTestRepository returns a storage repository over a fresh state database.
// A nil codec selects JSON.
func NewTestRepository(t *testing.T, codec storage.Codec) (*storage.Repository, *database.DB) {
	t.Helper()

	db := NewTestDB(t, "state")
	return storage.NewRepository(db.Conn(), codec, zerolog.Nop()), db
}
