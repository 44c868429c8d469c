package review

import (
	"context"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewRecorder persists review sessions.
type ReviewRecorder interface {
	Create(ctx context.Context, session *models.ReviewSession) error
}

// Launcher hands a review off to the (out-of-scope) review workflow: it
// records the session, enqueues unattended processing where needed, and
// returns the redirect path the client should navigate to. The navigation
// itself is fire-and-forget; consumer failures are not this package's problem.
type Launcher struct {
	reviews  ReviewRecorder
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewLauncher creates a launcher.
func NewLauncher(reviews ReviewRecorder, jobQueue queue.JobQueue, logger *zap.Logger) *Launcher {
	return &Launcher{
		reviews:  reviews,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// Launch records a review session in the given mode and returns the redirect path.
func (l *Launcher) Launch(ctx context.Context, userID uuid.UUID, mode models.ReviewMode) (string, error) {
	session := &models.ReviewSession{
		ID:        uuid.New(),
		UserID:    userID,
		Mode:      mode,
		Status:    models.ReviewStatusStarted,
		StartedAt: time.Now(),
	}

	if err := l.reviews.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to record review session: %w", err)
	}

	if session.Unattended() {
		job := queue.NewJob(queue.JobTypeProcessReview, userID, &session.ID)
		if err := l.jobQueue.Enqueue(ctx, job); err != nil {
			// The session row exists; the worker sweep can pick it up later.
			l.logger.Error("failed_to_enqueue_review_processing_job",
				zap.String("user_id", userID.String()),
				zap.String("review_id", session.ID.String()),
				zap.Error(err),
			)
		}
	}

	l.logger.Info("review_launched",
		zap.String("user_id", userID.String()),
		zap.String("review_id", session.ID.String()),
		zap.String("mode", string(mode)),
	)

	return RedirectPath(mode), nil
}

// RedirectPath returns the review-flow path for a mode, with the query flag
// the front end expects.
func RedirectPath(mode models.ReviewMode) string {
	switch mode {
	case models.ReviewModeDelegate:
		return "/review?delegate=true"
	case models.ReviewModeAutostart:
		return "/review?autostart=true"
	default:
		return "/review"
	}
}
