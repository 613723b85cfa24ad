// Package dbtest provides an in-memory SQLite store for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"barangay-events/internal/config"
	"barangay-events/internal/database"
)

// New returns a fresh in-memory database with the schema applied. It is
// closed when the test finishes.
func New(t testing.TB) *bun.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}
