// Package testing provides database helpers for package tests.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/foldvqe/internal/database"
)

// NewTestDB creates a file-backed SQLite database under t.TempDir() and applies the schema
// registered for name ("runs"). Unknown names yield an empty database. The connection is
// closed when the test ends.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileCache,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}
