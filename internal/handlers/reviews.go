package handlers

import (
	"net/http"
	"time"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DefaultReviewLookback bounds how much history the list endpoint returns.
const DefaultReviewLookback = 30 * 24 * time.Hour

// ReviewHandler handles review session requests
type ReviewHandler struct {
	reviewRepo *database.ReviewRepository
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewRepo *database.ReviewRepository) *ReviewHandler {
	return &ReviewHandler{reviewRepo: reviewRepo}
}

// RegisterRoutes registers review routes on the given router
// The router should already have the /reviews prefix
func (h *ReviewHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListReviews).Methods("GET")
	r.HandleFunc("/{id}", h.GetReview).Methods("GET")
	r.HandleFunc("/{id}/complete", h.CompleteReview).Methods("POST")
	r.HandleFunc("/{id}/abandon", h.AbandonReview).Methods("POST")
}

// ListReviews returns the user's recent review sessions
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	sessions, err := h.reviewRepo.GetRecentByUserID(r.Context(), user.ID, DefaultReviewLookback)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve reviews")
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// GetReview retrieves a review session by ID
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	session, ok := h.loadOwnedReview(w, r, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// CompleteReview marks an interactive review session as completed
func (h *ReviewHandler) CompleteReview(w http.ResponseWriter, r *http.Request) {
	h.finishReview(w, r, models.ReviewStatusCompleted)
}

// AbandonReview marks a review session as abandoned
func (h *ReviewHandler) AbandonReview(w http.ResponseWriter, r *http.Request) {
	h.finishReview(w, r, models.ReviewStatusAbandoned)
}

func (h *ReviewHandler) finishReview(w http.ResponseWriter, r *http.Request, status models.ReviewStatus) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	session, ok := h.loadOwnedReview(w, r, user.ID)
	if !ok {
		return
	}

	if session.Status == models.ReviewStatusCompleted || session.Status == models.ReviewStatusAbandoned {
		respondJSONError(w, http.StatusConflict, "Conflict", "Review session is already finished")
		return
	}

	if err := h.reviewRepo.UpdateStatus(r.Context(), session.ID, status, nil); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update review")
		return
	}

	session.Status = status
	now := time.Now()
	session.CompletedAt = &now

	respondJSON(w, http.StatusOK, session)
}

func (h *ReviewHandler) loadOwnedReview(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.ReviewSession, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid review ID")
		return nil, false
	}

	session, err := h.reviewRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Review not found")
		return nil, false
	}

	if session.UserID != userID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Review does not belong to user")
		return nil, false
	}

	return session, true
}
