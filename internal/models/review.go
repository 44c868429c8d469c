package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewMode represents how a review session was started
type ReviewMode string

const (
	// ReviewModeInteractive means the user accepted the prompt and runs the review themselves
	ReviewModeInteractive ReviewMode = "interactive"
	// ReviewModeDelegate means the user handed the review off to run unattended
	ReviewModeDelegate ReviewMode = "delegate"
	// ReviewModeAutostart means the countdown expired and the review started unattended
	ReviewModeAutostart ReviewMode = "autostart"
)

// ReviewStatus represents the lifecycle state of a review session
type ReviewStatus string

const (
	ReviewStatusStarted    ReviewStatus = "started"
	ReviewStatusProcessing ReviewStatus = "processing"
	ReviewStatusCompleted  ReviewStatus = "completed"
	ReviewStatusAbandoned  ReviewStatus = "abandoned"
)

// ReviewSession represents one evening review, interactive or unattended
type ReviewSession struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Mode        ReviewMode   `json:"mode"`
	Status      ReviewStatus `json:"status"`
	Summary     *string      `json:"summary,omitempty"` // triage summary for unattended reviews
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// Unattended reports whether the session runs without the user present.
func (s *ReviewSession) Unattended() bool {
	return s.Mode == ReviewModeDelegate || s.Mode == ReviewModeAutostart
}
