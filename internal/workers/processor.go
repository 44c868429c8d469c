package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/queue"
	"github.com/cepho/cepho-api/internal/review"
	"github.com/cepho/cepho-api/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewProcessor runs unattended review sessions: it triages the user's open
// work with the AI summarizer, records the summary, and queues a pattern
// recompute so the night's behavior feeds back into smart-time resolution.
type ReviewProcessor struct {
	summarizer   ai.Summarizer
	reviewRepo   database.ReviewRepositoryInterface
	taskRepo     database.TaskRepositoryInterface
	projectRepo  database.ProjectRepositoryInterface
	settingsRepo database.SettingsRepositoryInterface
	analyzer     PatternRecomputer
	jobQueue     queue.JobQueue // for re-enqueueing jobs with delays
	logger       *zap.Logger
}

// PatternRecomputer rebuilds a user's timing aggregates. The pattern analyzer
// implements it; tests substitute fakes.
type PatternRecomputer interface {
	Recompute(ctx context.Context, userID uuid.UUID) error
}

// NewReviewProcessor creates a new review processor
func NewReviewProcessor(
	summarizer ai.Summarizer,
	reviewRepo database.ReviewRepositoryInterface,
	taskRepo database.TaskRepositoryInterface,
	projectRepo database.ProjectRepositoryInterface,
	settingsRepo database.SettingsRepositoryInterface,
	analyzer PatternRecomputer,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *ReviewProcessor {
	return &ReviewProcessor{
		summarizer:   summarizer,
		reviewRepo:   reviewRepo,
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
		settingsRepo: settingsRepo,
		analyzer:     analyzer,
		jobQueue:     jobQueue,
		logger:       logger,
	}
}

// ProcessJob dispatches one queue message to the right job handler and
// settles the message (ack, nack, or delayed re-enqueue).
func (p *ReviewProcessor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		p.logger.Warn("job_expired",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack expired job: %w", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeProcessReview:
		if err := p.ProcessReviewJob(ctx, job); err != nil {
			return p.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeRecomputePatterns:
		if err := p.analyzer.Recompute(ctx, job.UserID); err != nil {
			// Aggregates converge on the next finished review anyway.
			if nackErr := msg.Nack(false); nackErr != nil {
				p.logger.Error("failed_to_nack_recompute_job", zap.Error(nackErr))
			}
			return fmt.Errorf("pattern recompute failed: %w", err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack recompute job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // unknown job type, send to DLQ
			p.logger.Error("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// ProcessReviewJob triages one unattended review session
func (p *ReviewProcessor) ProcessReviewJob(ctx context.Context, job *queue.Job) error {
	if job.ReviewID == nil {
		return fmt.Errorf("review_id is required for review processing job")
	}

	session, err := p.reviewRepo.GetByID(ctx, *job.ReviewID)
	if err != nil {
		return fmt.Errorf("failed to get review session: %w", err)
	}
	if session.UserID != job.UserID {
		return fmt.Errorf("review session does not belong to user")
	}
	if session.Status == models.ReviewStatusCompleted || session.Status == models.ReviewStatusAbandoned {
		// Already settled, likely a redelivery.
		return nil
	}

	if err := p.reviewRepo.UpdateStatus(ctx, session.ID, models.ReviewStatusProcessing, nil); err != nil {
		p.logger.Warn("failed_to_mark_review_processing",
			zap.String("review_id", session.ID.String()),
			zap.Error(err),
		)
		// Continue; the terminal status update below is the one that matters.
	}

	tasks, err := p.taskRepo.GetOpenByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to get open tasks: %w", err)
	}
	projects, err := p.projectRepo.GetByUserID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to get projects: %w", err)
	}

	reviewCtx := review.BuildContext(tasks, projects)

	eveningStart := models.DefaultEveningReviewTime
	if settings, err := p.settingsRepo.GetByUserID(ctx, job.UserID); err == nil && settings != nil {
		eveningStart = settings.EveningReviewTime
	}

	summary, err := p.summarizer.SummarizeReview(ctx, ai.ReviewInput{
		Mode:         session.Mode,
		Tasks:        tasks,
		Projects:     projects,
		Outstanding:  reviewCtx.OutstandingItems,
		EveningStart: eveningStart,
	})
	if err != nil {
		return fmt.Errorf("failed to summarize review: %w", err)
	}

	if err := p.reviewRepo.UpdateStatus(ctx, session.ID, models.ReviewStatusCompleted, &summary); err != nil {
		return fmt.Errorf("failed to complete review session: %w", err)
	}

	p.logger.Info("review_processed",
		zap.String("review_id", session.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("mode", string(session.Mode)),
		zap.Int("open_tasks", len(tasks)),
	)

	// A finished session changes the user's timing history.
	if p.jobQueue != nil {
		recompute := queue.NewJob(queue.JobTypeRecomputePatterns, job.UserID, nil)
		if err := p.jobQueue.Enqueue(ctx, recompute); err != nil {
			p.logger.Error("failed_to_enqueue_pattern_recompute",
				zap.String("user_id", job.UserID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// handleJobError settles a failed message: delayed re-enqueue for quota and
// rate limit errors, bounded requeue for transient ones, DLQ otherwise.
func (p *ReviewProcessor) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if ai.IsQuotaError(err) || ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		delayedJob := &queue.Job{
			ID:         job.ID,
			Type:       job.Type,
			UserID:     job.UserID,
			ReviewID:   job.ReviewID,
			NotBefore:  &notBefore,
			NotAfter:   job.NotAfter,
			Metadata:   job.Metadata,
			CreatedAt:  job.CreatedAt,
			RetryCount: job.RetryCount + 1,
			MaxRetries: job.MaxRetries,
		}

		if ackErr := msg.Ack(); ackErr != nil {
			p.logger.Error("failed_to_ack_before_delayed_retry", zap.Error(ackErr))
		}

		if p.jobQueue != nil {
			if enqueueErr := p.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				return fmt.Errorf("api limited, failed to re-enqueue: %w", enqueueErr)
			}
			p.logger.Warn("review_job_delayed",
				zap.String("job_id", job.ID.String()),
				zap.Duration("retry_delay", retryDelay),
				zap.Int("retry_count", delayedJob.RetryCount),
			)
			return nil
		}

		return fmt.Errorf("api limited and no queue access (job %s): %w", job.ID, err)
	}

	if job.CanRetry() {
		job.IncrementRetry()
		p.logger.Warn("review_job_retrying",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			return fmt.Errorf("failed to requeue job: %w", nackErr)
		}
		return nil
	}

	p.logger.Error("review_job_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		return fmt.Errorf("failed to dead-letter job: %w", nackErr)
	}
	return fmt.Errorf("review processing failed (job %s): %w", job.ID, err)
}
