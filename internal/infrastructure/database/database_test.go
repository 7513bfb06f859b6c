package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangemylist/planner/internal/infrastructure/database/databasetest"
)

func TestMigrationsRoundTrip(t *testing.T) {
	db := databasetest.NewSQLite(t)

	version, dirty, err := db.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	for _, table := range []string{"users", "sessions", "tasks", "notes", "calendar_events"} {
		var n int
		require.NoError(t, db.DB.Get(&n, "SELECT COUNT(*) FROM "+table), table)
	}

	// Applying again is a no-op.
	require.NoError(t, db.MigrateUp())

	require.NoError(t, db.MigrateDown())
	version, _, err = db.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

func TestHealthCheck(t *testing.T) {
	db := databasetest.NewSQLite(t)

	assert.NoError(t, db.HealthCheck(context.Background()))
	info := db.GetConnectionInfo()
	assert.Equal(t, "sqlite", info["driver"])
	assert.Equal(t, "sqlite", db.Driver())
}
