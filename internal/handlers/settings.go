package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/request"
	"github.com/cepho/cepho-api/internal/validation"
	"github.com/gorilla/mux"
)

// SettingsHandler handles review settings requests
type SettingsHandler struct {
	settingsRepo *database.SettingsRepository
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsRepo *database.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

// RegisterRoutes registers settings routes on the given router
// The router should already have the /settings prefix
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSettings).Methods("GET")
	r.HandleFunc("", h.UpdateSettings).Methods("PUT")
}

// UpdateSettingsRequest represents a settings update. Absent fields keep their
// current values.
type UpdateSettingsRequest struct {
	EveningReviewTime *string `json:"evening_review_time,omitempty"`
	AutoDelegate      *bool   `json:"auto_delegate,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`
}

// GetSettings returns the user's review settings, with documented defaults
// when nothing has been saved yet
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	settings, err := h.settingsRepo.GetByUserID(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve settings")
		return
	}
	if settings == nil {
		settings = &models.ReviewSettings{
			UserID:            user.ID,
			EveningReviewTime: models.DefaultEveningReviewTime,
			AutoDelegate:      false,
			Timezone:          "UTC",
		}
	}

	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings upserts the user's review settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	ctx := r.Context()
	settings, err := h.settingsRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve settings")
		return
	}
	if settings == nil {
		settings = &models.ReviewSettings{
			UserID:            user.ID,
			EveningReviewTime: models.DefaultEveningReviewTime,
			Timezone:          "UTC",
		}
	}

	if req.EveningReviewTime != nil {
		if err := validation.ValidateClockTime(*req.EveningReviewTime); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		settings.EveningReviewTime = *req.EveningReviewTime
	}
	if req.Timezone != nil {
		if err := validation.ValidateTimezone(*req.Timezone); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		settings.Timezone = *req.Timezone
	}
	if req.AutoDelegate != nil {
		settings.AutoDelegate = *req.AutoDelegate
	}

	if err := h.settingsRepo.Upsert(ctx, settings); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
