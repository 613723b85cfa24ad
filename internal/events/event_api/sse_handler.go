package event_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"barangay-events/internal/models"
)

const keepAliveInterval = 30 * time.Second

// StreamEvents streams every event change as Server-Sent Events.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.Emitter == nil {
		http.Error(w, "event stream not available", http.StatusServiceUnavailable)
		return
	}
	changes := h.Emitter.Subscribe(r.Context())
	h.stream(w, r, changes, "all events")
}

// StreamEvent streams the changes of a single event.
func (h *Handler) StreamEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}
	if h.Emitter == nil {
		http.Error(w, "event stream not available", http.StatusServiceUnavailable)
		return
	}
	changes := h.Emitter.SubscribeToEvent(r.Context(), id)
	h.stream(w, r, changes, fmt.Sprintf("event %d", id))
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, changes <-chan models.EventChange, scope string) {
	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut long-lived streams.
	_ = rc.SetWriteDeadline(time.Time{})

	setupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	if err := rc.Flush(); err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Streaming unsupported: %v", err))
		return
	}

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to change stream for %s", scope))

	ctx := r.Context()
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for %s", scope))
				return
			}
			if err := writeChange(w, change); err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize event change: %v", err))
				continue
			}
			rc.Flush()

		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			rc.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from change stream for %s", scope))
			return
		}
	}
}

func writeChange(w http.ResponseWriter, change models.EventChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", change.ID, change.Type, data)
	return err
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
