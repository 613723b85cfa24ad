package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"barangay-events/internal/logger"
	"barangay-events/internal/models"
	"barangay-events/internal/utils"
)

// Pagination policy.
const (
	DefaultListLimit     = 100
	MaxListLimit         = 100
	DefaultUpcomingLimit = 5
	MaxUpcomingLimit     = 20
	DefaultSearchLimit   = 20
	MaxSearchLimit       = 50
)

const notifyTimeout = 5 * time.Second

type EventDBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	ListEvents(ctx context.Context, query models.EventQuery) ([]models.Event, error)
	SearchEvents(ctx context.Context, term string, skip, limit int) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event, columns []string) (bool, error)
	DeleteEvent(ctx context.Context, id int64) (bool, error)
}

type ChangeNotifier interface {
	Notify(ctx context.Context, change models.EventChange) error
}

type EventService struct {
	DB       EventDBLayer
	Notifier ChangeNotifier
	Logger   *logger.Logger
	// Now is the clock used for timestamps and the "upcoming" cutoff.
	Now func() time.Time

	validate *validator.Validate
}

// NewEventService wires the access layer. notifier may be nil.
func NewEventService(db EventDBLayer, notifier ChangeNotifier, log *logger.Logger) *EventService {
	if log == nil {
		log = logger.Discard()
	}
	return &EventService{
		DB:       db,
		Notifier: notifier,
		Logger:   log,
		Now:      time.Now,
		validate: newValidator(),
	}
}

func (s *EventService) now() time.Time {
	return utils.NormalizeTime(s.Now())
}

func (s *EventService) CreateEvent(ctx context.Context, req models.EventCreate) (*models.Event, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	now := s.now()
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   utils.NormalizeTime(req.EventDate.Time),
		Location:    req.Location,
		Organizer:   req.Organizer,
		ContactInfo: req.ContactInfo,
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to create event %q: %v", req.Title, err))
		return nil, err
	}

	s.Logger.LogEvent("CREATE", event.ID, event.Title)
	s.publish(ctx, models.NewEventChange(models.EventCreated, event.ID, event, now))
	return event, nil
}

// GetEvent returns nil, nil when the event does not exist.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, skip, limit int, upcomingOnly bool) ([]models.Event, error) {
	query := models.EventQuery{
		Skip:  max(skip, 0),
		Limit: boundLimit(limit, DefaultListLimit, MaxListLimit),
	}
	if upcomingOnly {
		from := s.now()
		query.From = &from
	}
	return s.DB.ListEvents(ctx, query)
}

// UpcomingEvents is the homepage shortcut: the next few events from now.
func (s *EventService) UpcomingEvents(ctx context.Context, limit int) ([]models.Event, error) {
	from := s.now()
	return s.DB.ListEvents(ctx, models.EventQuery{
		Limit: boundLimit(limit, DefaultUpcomingLimit, MaxUpcomingLimit),
		From:  &from,
	})
}

func (s *EventService) SearchEvents(ctx context.Context, term string, skip, limit int) ([]models.Event, error) {
	if term == "" {
		return nil, invalid("q", "field required")
	}
	return s.DB.SearchEvents(ctx, term, max(skip, 0), boundLimit(limit, DefaultSearchLimit, MaxSearchLimit))
}

// UpdateEvent applies the fields present in update and refreshes updated_at.
// It returns nil, nil when the event does not exist. Concurrent updates are
// last-write-wins.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, update models.EventUpdate) (*models.Event, error) {
	if err := s.validateUpdate(update); err != nil {
		return nil, err
	}

	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil || event == nil {
		return nil, err
	}

	if update.Empty() {
		s.Logger.Debug("EVENT", fmt.Sprintf("Empty update for event %d, refreshing updated_at only", id))
	}
	columns := applyUpdate(event, update)

	now := s.now()
	if now.Before(event.CreatedAt) {
		now = event.CreatedAt
	}
	event.UpdatedAt = now
	columns = append(columns, "updated_at")

	ok, err := s.DB.UpdateEvent(ctx, event, columns)
	if err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to update event %d: %v", id, err))
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	s.Logger.LogEvent("UPDATE", event.ID, fmt.Sprintf("columns %v", columns))
	s.publish(ctx, models.NewEventChange(models.EventUpdated, event.ID, event, now))
	return event, nil
}

// DeleteEvent reports false when the event did not exist.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	ok, err := s.DB.DeleteEvent(ctx, id)
	if err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to delete event %d: %v", id, err))
		return false, err
	}
	if ok {
		s.Logger.LogEvent("DELETE", id, "removed")
		s.publish(ctx, models.NewEventChange(models.EventDeleted, id, nil, s.now()))
	}
	return ok, nil
}

func applyUpdate(event *models.Event, u models.EventUpdate) []string {
	var columns []string
	if u.Title.Present() {
		event.Title = u.Title.Value
		columns = append(columns, "title")
	}
	if u.Description.Present() {
		event.Description = u.Description.Value
		columns = append(columns, "description")
	}
	if u.EventDate.Present() {
		event.EventDate = utils.NormalizeTime(u.EventDate.Value.Time)
		columns = append(columns, "event_date")
	}
	if u.Location.Present() {
		event.Location = u.Location.Value
		columns = append(columns, "location")
	}
	if u.Organizer.Present() {
		event.Organizer = u.Organizer.Value
		columns = append(columns, "organizer")
	}
	if u.ContactInfo.Set {
		if u.ContactInfo.Null {
			event.ContactInfo = nil
		} else {
			value := u.ContactInfo.Value
			event.ContactInfo = &value
		}
		columns = append(columns, "contact_info")
	}
	if u.IsPublic.Present() {
		event.IsPublic = u.IsPublic.Value
		columns = append(columns, "is_public")
	}
	return columns
}

// Notification is best-effort and never fails the write that triggered it.
func (s *EventService) publish(ctx context.Context, change models.EventChange) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.Notifier.Notify(ctx, change); err != nil {
		s.Logger.Warn("NOTIFY", fmt.Sprintf("Failed to publish %s change for event %d: %v", change.Type, change.EventID, err))
	}
}

func boundLimit(limit, def, upper int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, upper)
}
