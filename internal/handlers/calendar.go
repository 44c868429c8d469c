package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/request"
	"github.com/cepho/cepho-api/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// CalendarHandler handles synced calendar events used for conflict checks
type CalendarHandler struct {
	calendarRepo *database.CalendarRepository
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarRepo *database.CalendarRepository) *CalendarHandler {
	return &CalendarHandler{calendarRepo: calendarRepo}
}

// RegisterRoutes registers calendar routes on the given router
// The router should already have the /calendar prefix
func (h *CalendarHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/events", h.ListEvents).Methods("GET")
	r.HandleFunc("/events", h.CreateEvent).Methods("POST")
	r.HandleFunc("/events/{id}", h.DeleteEvent).Methods("DELETE")
}

// CreateEventRequest represents a synced calendar event
type CreateEventRequest struct {
	Title    string    `json:"title" validate:"required,min=1,max=500"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}

// ListEvents returns events overlapping [from, to). Defaults to the next 24
// hours when no window is given.
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	from := time.Now()
	to := from.Add(24 * time.Hour)
	if f := r.URL.Query().Get("from"); f != "" {
		parsed, err := time.Parse(time.RFC3339, f)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid 'from' timestamp, expected RFC3339")
			return
		}
		from = parsed
	}
	if t := r.URL.Query().Get("to"); t != "" {
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid 'to' timestamp, expected RFC3339")
			return
		}
		to = parsed
	}
	if !to.After(from) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "'to' must be after 'from'")
		return
	}

	events, err := h.calendarRepo.GetByUserIDInWindow(r.Context(), user.ID, from, to)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve events")
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// CreateEvent records a synced calendar event
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required")
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "ends_at must be after starts_at")
		return
	}

	event := &models.CalendarEvent{
		ID:       uuid.New(),
		UserID:   user.ID,
		Title:    req.Title,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	if err := h.calendarRepo.Create(r.Context(), event); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create event")
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// DeleteEvent removes a synced calendar event
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid event ID")
		return
	}

	if err := h.calendarRepo.Delete(r.Context(), id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
