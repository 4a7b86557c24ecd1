package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/depthpose/internal/store"
)

// EventHandler handles HTTP requests for recorded events.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates a new EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

// ServeHTTP routes /api/events and /api/events/{id}.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.deleteBefore(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

type eventResponse struct {
	ID        string  `json:"id"`
	User      int     `json:"user"`
	Kind      string  `json:"kind"`
	Name      string  `json:"name,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ScreenX   float64 `json:"screen_x"`
	ScreenY   float64 `json:"screen_y"`
	Mode      string  `json:"mode"`
	CreatedAt string  `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type deleteEventsResponse struct {
	Deleted int64 `json:"deleted"`
}

func toEventResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		User:      e.User,
		Kind:      e.Kind,
		Name:      e.Name,
		X:         e.X,
		Y:         e.Y,
		ScreenX:   e.ScreenX,
		ScreenY:   e.ScreenY,
		Mode:      e.Mode,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/events with optional user and limit parameters.
func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var (
		events []*store.Event
		err    error
	)
	if v := q.Get("user"); v != "" {
		user, convErr := strconv.Atoi(v)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "user must be an integer")
			return
		}
		events, err = h.store.Events().ListByUser(user, limit)
	} else {
		events, err = h.store.Events().List(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		Events: make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		response.Events = append(response.Events, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/events/{id}.
func (h *EventHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.store.Events().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(e))
}

// deleteBefore handles DELETE /api/events?before=<RFC 3339 time>.
func (h *EventHandler) deleteBefore(w http.ResponseWriter, r *http.Request) {
	before, err := time.Parse(time.RFC3339, r.URL.Query().Get("before"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "before must be an RFC 3339 time")
		return
	}

	n, err := h.store.Events().DeleteBefore(before)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete events")
		return
	}

	writeJSON(w, http.StatusOK, deleteEventsResponse{Deleted: n})
}
