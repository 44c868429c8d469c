package handlers

import (
	"net/http"

	"github.com/cepho/cepho-api/internal/request"
	"github.com/cepho/cepho-api/internal/review"
	"github.com/gorilla/mux"
)

// PromptHandler exposes the evening review prompt state machine. Polling GET
// is what keeps a user's trigger session alive in the manager.
type PromptHandler struct {
	manager *review.Manager
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(manager *review.Manager) *PromptHandler {
	return &PromptHandler{manager: manager}
}

// RegisterRoutes registers prompt routes on the given router
// The router should already have the /review/prompt prefix
func (h *PromptHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetPrompt).Methods("GET")
	r.HandleFunc("/accept", h.Accept).Methods("POST")
	r.HandleFunc("/dismiss", h.Dismiss).Methods("POST")
	r.HandleFunc("/delegate", h.Delegate).Methods("POST")
}

// PromptResponse is the polled prompt state for the front end
type PromptResponse struct {
	State         review.TriggerState  `json:"state"`
	EffectiveTime *review.ResolvedTime `json:"effective_time,omitempty"`
	Reason        string               `json:"reason,omitempty"`
}

// RespondResponse carries the redirect after accept or delegate
type RespondResponse struct {
	RedirectPath string `json:"redirect_path"`
}

// GetPrompt returns the current trigger state for the authenticated user
func (h *PromptHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	state, resolved, reason := h.manager.EnsureSession(user.ID).State()

	respondJSON(w, http.StatusOK, PromptResponse{
		State:         state,
		EffectiveTime: resolved,
		Reason:        reason,
	})
}

// Accept records the user accepting the prompt and starts an interactive review
func (h *PromptHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	redirect, err := h.manager.EnsureSession(user.ID).Accept(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start review")
		return
	}

	respondJSON(w, http.StatusOK, RespondResponse{RedirectPath: redirect})
}

// Dismiss hides the prompt. The auto-start countdown keeps running.
func (h *PromptHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	session := h.manager.EnsureSession(user.ID)
	session.Dismiss()

	state, resolved, reason := session.State()
	respondJSON(w, http.StatusOK, PromptResponse{
		State:         state,
		EffectiveTime: resolved,
		Reason:        reason,
	})
}

// Delegate hands the review off to run unattended
func (h *PromptHandler) Delegate(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	redirect, err := h.manager.EnsureSession(user.ID).Delegate(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delegate review")
		return
	}

	respondJSON(w, http.StatusOK, RespondResponse{RedirectPath: redirect})
}
