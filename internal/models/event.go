package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Event is a single community announcement on the bulletin.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull,type:varchar(200)" json:"title"`
	Description string    `bun:"description,notnull,type:varchar(1000)" json:"description"`
	EventDate   time.Time `bun:"event_date,notnull" json:"event_date"`
	Location    string    `bun:"location,notnull,type:varchar(200)" json:"location"`
	Organizer   string    `bun:"organizer,notnull,type:varchar(100)" json:"organizer"`
	ContactInfo *string   `bun:"contact_info,type:varchar(100)" json:"contact_info"`
	IsPublic    bool      `bun:"is_public,notnull" json:"is_public"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

var _ bun.AfterScanRowHook = (*Event)(nil)

// AfterScanRow puts timestamps read back from storage in UTC.
func (e *Event) AfterScanRow(ctx context.Context) error {
	e.EventDate = e.EventDate.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return nil
}

// EventCreate is the request body for creating an event.
type EventCreate struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required,max=1000"`
	EventDate   Timestamp `json:"event_date"`
	Location    string    `json:"location" validate:"required,max=200"`
	Organizer   string    `json:"organizer" validate:"required,max=100"`
	ContactInfo *string   `json:"contact_info" validate:"omitempty,max=100"`
	// IsPublic defaults to true when omitted.
	IsPublic *bool `json:"is_public"`
}

// EventUpdate is a partial update. Only fields present in the request body
// are applied.
type EventUpdate struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	EventDate   Optional[Timestamp] `json:"event_date"`
	Location    Optional[string]    `json:"location"`
	Organizer   Optional[string]    `json:"organizer"`
	ContactInfo Optional[string]    `json:"contact_info"`
	IsPublic    Optional[bool]      `json:"is_public"`
}

// Empty reports whether no field was supplied.
func (u EventUpdate) Empty() bool {
	return !u.Title.Set && !u.Description.Set && !u.EventDate.Set && !u.Location.Set &&
		!u.Organizer.Set && !u.ContactInfo.Set && !u.IsPublic.Set
}

// EventQuery selects a page of events ordered by event date.
type EventQuery struct {
	Skip  int
	Limit int
	// From, when set, excludes events dated strictly before it.
	From *time.Time
}
