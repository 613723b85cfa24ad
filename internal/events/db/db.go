package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"barangay-events/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().
		Model(event).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetEventByID returns nil, nil when no event has the given id.
func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select event %d: %w", id, err)
	}
	return &event, nil
}

func (d *DB) ListEvents(ctx context.Context, query models.EventQuery) ([]models.Event, error) {
	events := make([]models.Event, 0)
	q := d.Bun.NewSelect().Model(&events)

	if query.From != nil {
		q = q.Where("e.event_date >= ?", query.From.UTC())
	}

	err := orderAndPage(q, query.Skip, query.Limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// SearchEvents matches term as a literal substring of title, description or
// location. Case sensitivity follows the engine's LIKE semantics.
func (d *DB) SearchEvents(ctx context.Context, term string, skip, limit int) ([]models.Event, error) {
	pattern := "%" + escapeLike(term) + "%"

	events := make([]models.Event, 0)
	q := d.Bun.NewSelect().
		Model(&events).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`e.title LIKE ? ESCAPE '\'`, pattern).
				WhereOr(`e.description LIKE ? ESCAPE '\'`, pattern).
				WhereOr(`e.location LIKE ? ESCAPE '\'`, pattern)
		})

	err := orderAndPage(q, skip, limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

// UpdateEvent writes the listed columns. It reports false when the row no
// longer exists.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event, columns []string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model(event).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update event %d: %w", event.ID, err)
	}
	return affected(res)
}

// DeleteEvent reports false when there was nothing to delete.
func (d *DB) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete event %d: %w", id, err)
	}
	return affected(res)
}

// Offset pagination: rows may be skipped or repeated if the table changes
// between page requests.
func orderAndPage(q *bun.SelectQuery, skip, limit int) *bun.SelectQuery {
	q = q.Order("e.event_date ASC", "e.id ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
