package models

import (
	"time"

	"github.com/google/uuid"
)

type ChangeType string

const (
	EventCreated ChangeType = "created"
	EventUpdated ChangeType = "updated"
	EventDeleted ChangeType = "deleted"
)

// EventChange is broadcast after every successful write.
type EventChange struct {
	ID         string     `json:"id"`
	Type       ChangeType `json:"type"`
	EventID    int64      `json:"event_id"`
	Event      *Event     `json:"event,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewEventChange builds a change message. event is nil for deletions.
func NewEventChange(changeType ChangeType, eventID int64, event *Event, at time.Time) EventChange {
	return EventChange{
		ID:         uuid.NewString(),
		Type:       changeType,
		EventID:    eventID,
		Event:      event,
		OccurredAt: at.UTC(),
	}
}
