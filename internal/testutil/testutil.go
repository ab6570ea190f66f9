// Package testutil provides shared test helpers for databases, users and
// export archives.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/draftdeck/internal/auth"
	"github.com/starford/draftdeck/internal/models"
	"github.com/starford/draftdeck/internal/prompts"
	"github.com/starford/draftdeck/internal/storage"
	"github.com/starford/draftdeck/internal/store"
)

// TestDB creates a temporary migrated SQLite database that is automatically
// cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "draftdeck-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := store.Open(context.Background(), store.DriverSQLite, dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestUser inserts a user with a hashed password.
func TestUser(t *testing.T, db *store.DB, email, password string) *models.User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	u, err := db.CreateUser(context.Background(), email, hashed)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// TestPrompts returns the built-in prompt templates.
func TestPrompts(t *testing.T) *prompts.Set {
	t.Helper()
	set, err := prompts.New("")
	if err != nil {
		t.Fatal(err)
	}
	return set
}

// TestArchive creates a temporary directory-backed export archive.
func TestArchive(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	archive, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, archive
}
