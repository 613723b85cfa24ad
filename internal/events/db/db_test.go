package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barangay-events/internal/database/dbtest"
	"barangay-events/internal/events/db"
	"barangay-events/internal/models"
)

func setupTestDB(t *testing.T) *db.DB {
	return &db.DB{Bun: dbtest.New(t)}
}

func newEvent(title string, date time.Time) *models.Event {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Event{
		Title:       title,
		Description: title + " description",
		EventDate:   date.UTC(),
		Location:    "Plaza",
		Organizer:   "Barangay Council",
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()

	contact := "0917-000-0000"
	event := newEvent("Barangay Fiesta", time.Date(2099, 1, 1, 10, 0, 0, 0, time.UTC))
	event.ContactInfo = &contact

	require.NoError(t, eventDB.CreateEvent(ctx, event))
	assert.Equal(t, int64(1), event.ID)

	got, err := eventDB.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, event.Title, got.Title)
	assert.Equal(t, event.Description, got.Description)
	assert.True(t, event.EventDate.Equal(got.EventDate))
	assert.True(t, event.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, event.UpdatedAt.Equal(got.UpdatedAt))
	require.NotNil(t, got.ContactInfo)
	assert.Equal(t, contact, *got.ContactInfo)
	assert.True(t, got.IsPublic)
}

func TestGetMissingEventReturnsNil(t *testing.T) {
	eventDB := setupTestDB(t)

	got, err := eventDB.GetEventByID(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestIDsAreNotReused(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()

	first := newEvent("First", time.Now().Add(time.Hour))
	require.NoError(t, eventDB.CreateEvent(ctx, first))

	deleted, err := eventDB.DeleteEvent(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	second := newEvent("Second", time.Now().Add(time.Hour))
	require.NoError(t, eventDB.CreateEvent(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestListEventsOrderingAndPaging(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2099, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, offset := range []int{3, 1, 2, 0} {
		ev := newEvent("Event", base.Add(time.Duration(offset)*24*time.Hour))
		require.NoError(t, eventDB.CreateEvent(ctx, ev))
	}

	all, err := eventDB.ListEvents(ctx, models.EventQuery{Limit: 100})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].EventDate.Before(all[i-1].EventDate), "results must be ordered by event_date")
	}

	page, err := eventDB.ListEvents(ctx, models.EventQuery{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[1].ID, page[0].ID)
	assert.Equal(t, all[2].ID, page[1].ID)
}

func TestListEventsFromExcludesPast(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := newEvent("Past", now.Add(-48*time.Hour))
	future := newEvent("Future", now.Add(48*time.Hour))
	require.NoError(t, eventDB.CreateEvent(ctx, past))
	require.NoError(t, eventDB.CreateEvent(ctx, future))

	upcoming, err := eventDB.ListEvents(ctx, models.EventQuery{Limit: 100, From: &now})
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, future.ID, upcoming[0].ID)

	all, err := eventDB.ListEvents(ctx, models.EventQuery{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListEventsEmptyIsNotNil(t *testing.T) {
	eventDB := setupTestDB(t)

	events, err := eventDB.ListEvents(context.Background(), models.EventQuery{Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestSearchEventsMatchesAnyTextField(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()
	date := time.Now().Add(24 * time.Hour)

	byTitle := newEvent("Barangay Fiesta", date)
	byDescription := newEvent("Night market", date.Add(time.Hour))
	byDescription.Description = "Food stalls after the Fiesta mass"
	byLocation := newEvent("Zumba", date.Add(2*time.Hour))
	byLocation.Location = "Fiesta Grounds"
	unrelated := newEvent("Vaccination drive", date.Add(3*time.Hour))

	for _, ev := range []*models.Event{byTitle, byDescription, byLocation, unrelated} {
		require.NoError(t, eventDB.CreateEvent(ctx, ev))
	}

	found, err := eventDB.SearchEvents(ctx, "Fiesta", 0, 50)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, byTitle.ID, found[0].ID)
	assert.Equal(t, byDescription.ID, found[1].ID)
	assert.Equal(t, byLocation.ID, found[2].ID)

	// SQLite LIKE folds ASCII case.
	lower, err := eventDB.SearchEvents(ctx, "fiesta", 0, 50)
	require.NoError(t, err)
	assert.Len(t, lower, 3)

	paged, err := eventDB.SearchEvents(ctx, "Fiesta", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, byDescription.ID, paged[0].ID)
}

func TestSearchEventsTreatsWildcardsLiterally(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()

	discount := newEvent("50% off at the tiangge", time.Now().Add(time.Hour))
	other := newEvent("Basketball league", time.Now().Add(2*time.Hour))
	require.NoError(t, eventDB.CreateEvent(ctx, discount))
	require.NoError(t, eventDB.CreateEvent(ctx, other))

	found, err := eventDB.SearchEvents(ctx, "%", 0, 50)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, discount.ID, found[0].ID)

	found, err = eventDB.SearchEvents(ctx, "_", 0, 50)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUpdateEventWritesOnlyListedColumns(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()

	event := newEvent("Original", time.Now().Add(time.Hour))
	require.NoError(t, eventDB.CreateEvent(ctx, event))

	changed := *event
	changed.Title = "Renamed"
	changed.Location = "Should not be written"
	changed.UpdatedAt = event.UpdatedAt.Add(time.Minute)

	ok, err := eventDB.UpdateEvent(ctx, &changed, []string{"title", "updated_at"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := eventDB.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Plaza", got.Location)
	assert.True(t, changed.UpdatedAt.Equal(got.UpdatedAt))
}

func TestUpdateMissingEvent(t *testing.T) {
	eventDB := setupTestDB(t)

	ghost := newEvent("Ghost", time.Now())
	ghost.ID = 99
	ok, err := eventDB.UpdateEvent(context.Background(), ghost, []string{"title"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteEvent(t *testing.T) {
	eventDB := setupTestDB(t)
	ctx := context.Background()

	event := newEvent("To delete", time.Now().Add(time.Hour))
	require.NoError(t, eventDB.CreateEvent(ctx, event))

	ok, err := eventDB.DeleteEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := eventDB.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = eventDB.DeleteEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
