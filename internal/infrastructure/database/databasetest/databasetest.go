// Package databasetest provides migrated throwaway databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arrangemylist/planner/internal/infrastructure/config"
	"github.com/arrangemylist/planner/internal/infrastructure/database"
)

// NewSQLite opens a fresh sqlite file under t.TempDir with the schema applied.
func NewSQLite(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "planner.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.MigrateUp())
	return db
}
