package storage

import (
	"path/filepath"
	"testing"
)

// newTestDB opens a fresh migrated database in a temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("second migration run: %v", err)
	}

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count)
	if err != nil {
		t.Fatalf("querying migrations table: %v", err)
	}
	if count == 0 {
		t.Error("no migrations recorded")
	}
}
