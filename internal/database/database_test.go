package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barangay-events/internal/config"
	"barangay-events/internal/database"
	"barangay-events/internal/logger"
	"barangay-events/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestConnectAndEnsureSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: "sqlite", URL: ":memory:", ConnectRetries: 1}

	db, err := database.Connect(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.EnsureSchema(ctx, db))
	require.NoError(t, database.EnsureSchema(ctx, db))

	now := time.Now().UTC()
	event := &models.Event{
		Title:       "Clean-up Drive",
		Description: "Coastal clean-up",
		EventDate:   now.Add(time.Hour),
		Location:    "Baywalk",
		Organizer:   "SK Council",
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = db.NewInsert().Model(event).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), event.ID)

	count, err := db.NewSelect().Model((*models.Event)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConnectHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.DatabaseConfig{Driver: "postgres", URL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable", ConnectRetries: 3}
	_, err := database.Connect(ctx, cfg, logger.Discard())
	assert.Error(t, err)
}
