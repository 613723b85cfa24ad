package event_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"barangay-events/internal/events/service"
	"barangay-events/internal/logger"
	"barangay-events/internal/models"
	"barangay-events/internal/sse"
	"barangay-events/internal/utils"
)

const maxBodyBytes = 1 << 20

type EventService interface {
	CreateEvent(ctx context.Context, req models.EventCreate) (*models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	ListEvents(ctx context.Context, skip, limit int, upcomingOnly bool) ([]models.Event, error)
	UpcomingEvents(ctx context.Context, limit int) ([]models.Event, error)
	SearchEvents(ctx context.Context, term string, skip, limit int) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id int64, update models.EventUpdate) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) (bool, error)
}

type Handler struct {
	EventService EventService
	Emitter      *sse.EventChangeEmitter
	Logger       *logger.Logger
}

func NewHandler(eventService EventService, emitter *sse.EventChangeEmitter, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		EventService: eventService,
		Emitter:      emitter,
		Logger:       log,
	}
}

// RegisterRoutes mounts the event API under /api/v1/events. The collection
// answers with and without a trailing slash.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/upcoming", h.UpcomingEvents)
		r.Get("/search", h.SearchEvents)
		r.Get("/stream", h.StreamEvents)
		r.Get("/{id}", h.GetEvent)
		r.Put("/{id}", h.UpdateEvent)
		r.Delete("/{id}", h.DeleteEvent)
		r.Get("/{id}/stream", h.StreamEvent)
	})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventCreate
	if !h.decodeBody(w, r, &req) {
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "create event", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	skip := q.Int("skip", 0, 0, -1)
	limit := q.Int("limit", service.DefaultListLimit, 1, service.MaxListLimit)
	upcomingOnly := q.Bool("upcoming_only", true)
	if q.Invalid(w, h) {
		return
	}

	events, err := h.EventService.ListEvents(r.Context(), skip, limit, upcomingOnly)
	if err != nil {
		h.writeServiceError(w, "list events", err)
		return
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	limit := q.Int("limit", service.DefaultUpcomingLimit, 1, service.MaxUpcomingLimit)
	if q.Invalid(w, h) {
		return
	}

	events, err := h.EventService.UpcomingEvents(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, "list upcoming events", err)
		return
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	term := q.RequiredString("q")
	skip := q.Int("skip", 0, 0, -1)
	limit := q.Int("limit", service.DefaultSearchLimit, 1, service.MaxSearchLimit)
	if q.Invalid(w, h) {
		return
	}

	events, err := h.EventService.SearchEvents(r.Context(), term, skip, limit)
	if err != nil {
		h.writeServiceError(w, "search events", err)
		return
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.EventService.GetEvent(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get event", err)
		return
	}
	if event == nil {
		h.writeNotFound(w, id)
		return
	}
	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var update models.EventUpdate
	if !h.decodeBody(w, r, &update) {
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), id, update)
	if err != nil {
		h.writeServiceError(w, "update event", err)
		return
	}
	if event == nil {
		h.writeNotFound(w, id)
		return
	}
	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	deleted, err := h.EventService.DeleteEvent(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "delete event", err)
		return
	}
	if !deleted {
		h.writeNotFound(w, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness only.
func Health(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "What's On in our Barangay is running!",
	})
}

func (h *Handler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeValidation(w, &service.ValidationError{Errors: []service.FieldError{
			{Field: "id", Message: "value is not a valid integer"},
		}})
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeValidation(w, &service.ValidationError{Errors: []service.FieldError{
			{Field: "body", Message: decodeMessage(err)},
		}})
		return false
	}
	return true
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "malformed JSON"
	}
	return strings.TrimPrefix(err.Error(), "json: ")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := utils.WriteJSON(w, status, data); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Failed to write response: %v", err))
	}
}

func (h *Handler) writeNotFound(w http.ResponseWriter, id int64) {
	h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", fmt.Sprintf("no event with id %d", id)))
}

func (h *Handler) writeValidation(w http.ResponseWriter, ve *service.ValidationError) {
	resp := utils.ErrorResponse("Validation failed", ve.Error())
	resp.Details = ve.Errors
	h.writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		h.writeValidation(w, ve)
		return
	}
	h.Logger.Error("API", fmt.Sprintf("Failed to %s: %v", op, err))
	h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal server error", "an unexpected error occurred"))
}
