package handlers

import (
	"net/http"
	"time"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/request"
	"github.com/cepho/cepho-api/internal/review"
	"github.com/gorilla/mux"
)

// PatternHandler exposes learned timing patterns and the smart-time resolution
type PatternHandler struct {
	patternRepo  *database.PatternRepository
	settingsRepo *database.SettingsRepository
}

// NewPatternHandler creates a new pattern handler
func NewPatternHandler(patternRepo *database.PatternRepository, settingsRepo *database.SettingsRepository) *PatternHandler {
	return &PatternHandler{patternRepo: patternRepo, settingsRepo: settingsRepo}
}

// RegisterRoutes registers pattern routes on the given router
// The router should already have the /patterns prefix
func (h *PatternHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListPatterns).Methods("GET")
	r.HandleFunc("/smart-time", h.GetSmartTime).Methods("GET")
}

// ListPatternsResponse groups weekday patterns with the overall prediction
type ListPatternsResponse struct {
	Patterns      []*models.TimingPattern `json:"patterns"`
	PredictedTime *models.PredictedTime   `json:"predicted_time,omitempty"`
}

// ListPatterns returns the user's weekday timing patterns as learning
// insights. Patterns below the minimum sample count are hidden; they are too
// noisy to show, let alone act on.
func (h *PatternHandler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()
	patterns, err := h.patternRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve patterns")
		return
	}

	visible := make([]*models.TimingPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.SampleCount >= models.MinPatternSamples {
			visible = append(visible, p)
		}
	}

	predicted, err := h.patternRepo.GetPredictedTime(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve predicted time")
		return
	}

	respondJSON(w, http.StatusOK, ListPatternsResponse{
		Patterns:      visible,
		PredictedTime: predicted,
	})
}

// GetSmartTime resolves today's effective review time for the user
func (h *PatternHandler) GetSmartTime(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()
	settings, err := h.settingsRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve settings")
		return
	}

	setting := models.DefaultEveningReviewTime
	if settings != nil && settings.EveningReviewTime != "" {
		setting = settings.EveningReviewTime
	}

	patterns, err := h.patternRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve patterns")
		return
	}

	predicted, err := h.patternRepo.GetPredictedTime(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve predicted time")
		return
	}

	now := time.Now().In(settings.Location())
	resolved := review.ResolveSmartTime(setting, patterns, predicted, now.Weekday())

	respondJSON(w, http.StatusOK, resolved)
}
