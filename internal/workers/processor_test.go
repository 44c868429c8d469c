package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/queue"
	"github.com/cepho/cepho-api/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mockSummarizer is a mock implementation of ai.Summarizer
type mockSummarizer struct {
	summarizeFunc func(ctx context.Context, input ai.ReviewInput) (string, error)
	calls         int
}

func (m *mockSummarizer) SummarizeReview(ctx context.Context, input ai.ReviewInput) (string, error) {
	m.calls++
	if m.summarizeFunc != nil {
		return m.summarizeFunc(ctx, input)
	}
	return "All quiet this evening.", nil
}

var _ ai.Summarizer = (*mockSummarizer)(nil)

// mockReviewRepo is a mock implementation of ReviewRepositoryInterface
type mockReviewRepo struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error)
	recentFunc  func(ctx context.Context, userID uuid.UUID, lookback time.Duration) ([]*models.ReviewSession, error)

	mu            sync.Mutex
	statusUpdates []models.ReviewStatus
	lastSummary   *string
}

func (m *mockReviewRepo) Create(ctx context.Context, session *models.ReviewSession) error {
	return nil
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockReviewRepo) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSession, error) {
	return nil, nil
}

func (m *mockReviewRepo) GetRecentByUserID(ctx context.Context, userID uuid.UUID, lookback time.Duration) ([]*models.ReviewSession, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, userID, lookback)
	}
	return nil, nil
}

func (m *mockReviewRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, summary *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates = append(m.statusUpdates, status)
	m.lastSummary = summary
	return nil
}

var _ database.ReviewRepositoryInterface = (*mockReviewRepo)(nil)

// mockTaskRepo is a mock implementation of TaskRepositoryInterface
type mockTaskRepo struct {
	openTasks []*models.Task
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error { return nil }
func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return nil, errors.New("not found")
}
func (m *mockTaskRepo) GetByUserID(ctx context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error) {
	return m.openTasks, nil
}
func (m *mockTaskRepo) GetOpenByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	return m.openTasks, nil
}
func (m *mockTaskRepo) Update(ctx context.Context, task *models.Task) error { return nil }

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

var _ database.TaskRepositoryInterface = (*mockTaskRepo)(nil)

// mockProjectRepo is a mock implementation of ProjectRepositoryInterface
type mockProjectRepo struct {
	projects []*models.Project
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error { return nil }
func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return nil, errors.New("not found")
}
func (m *mockProjectRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	return m.projects, nil
}
func (m *mockProjectRepo) Update(ctx context.Context, project *models.Project) error { return nil }

func (m *mockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

var _ database.ProjectRepositoryInterface = (*mockProjectRepo)(nil)

// mockSettingsRepo is a mock implementation of SettingsRepositoryInterface
type mockSettingsRepo struct {
	settings *models.ReviewSettings
}

func (m *mockSettingsRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSettings, error) {
	return m.settings, nil
}
func (m *mockSettingsRepo) Upsert(ctx context.Context, settings *models.ReviewSettings) error {
	return nil
}

var _ database.SettingsRepositoryInterface = (*mockSettingsRepo)(nil)

// mockMessage is a mock implementation of queue.MessageInterface
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job { return m.job }

var _ queue.MessageInterface = (*mockMessage)(nil)

// mockJobQueue records enqueued jobs
type mockJobQueue struct {
	mu       sync.Mutex
	enqueued []*queue.Job
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error { return nil }

func (m *mockJobQueue) HealthCheck(ctx context.Context) error { return nil }

var _ queue.JobQueue = (*mockJobQueue)(nil)

// mockRecomputer records recompute calls
type mockRecomputer struct {
	calls []uuid.UUID
	err   error
}

func (m *mockRecomputer) Recompute(ctx context.Context, userID uuid.UUID) error {
	m.calls = append(m.calls, userID)
	return m.err
}

func newTestProcessor(summarizer ai.Summarizer, reviewRepo *mockReviewRepo, jobQueue queue.JobQueue, recomputer PatternRecomputer) *ReviewProcessor {
	priority := models.TaskPriorityHigh
	return NewReviewProcessor(
		summarizer,
		reviewRepo,
		&mockTaskRepo{openTasks: []*models.Task{
			{ID: uuid.New(), Title: "Ship release notes", Status: models.TaskStatusPending, Priority: &priority},
		}},
		&mockProjectRepo{},
		&mockSettingsRepo{settings: &models.ReviewSettings{EveningReviewTime: "19:00", Timezone: "UTC"}},
		recomputer,
		jobQueue,
		zap.NewNop(),
	)
}

func TestProcessReviewJob_Success(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reviewID := uuid.New()
	reviewRepo := &mockReviewRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
			return &models.ReviewSession{
				ID:        reviewID,
				UserID:    userID,
				Mode:      models.ReviewModeDelegate,
				Status:    models.ReviewStatusStarted,
				StartedAt: time.Now(),
			}, nil
		},
	}
	jobQueue := &mockJobQueue{}
	processor := newTestProcessor(&mockSummarizer{}, reviewRepo, jobQueue, &mockRecomputer{})

	job := queue.NewJob(queue.JobTypeProcessReview, userID, &reviewID)
	if err := processor.ProcessReviewJob(context.Background(), job); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(reviewRepo.statusUpdates) != 2 {
		t.Fatalf("Expected 2 status updates, got %d", len(reviewRepo.statusUpdates))
	}
	if reviewRepo.statusUpdates[0] != models.ReviewStatusProcessing {
		t.Errorf("Expected first update to be processing, got %s", reviewRepo.statusUpdates[0])
	}
	if reviewRepo.statusUpdates[1] != models.ReviewStatusCompleted {
		t.Errorf("Expected second update to be completed, got %s", reviewRepo.statusUpdates[1])
	}
	if reviewRepo.lastSummary == nil || *reviewRepo.lastSummary == "" {
		t.Error("Expected a summary to be stored")
	}

	if len(jobQueue.enqueued) != 1 {
		t.Fatalf("Expected a pattern recompute job, got %d jobs", len(jobQueue.enqueued))
	}
	if jobQueue.enqueued[0].Type != queue.JobTypeRecomputePatterns {
		t.Errorf("Expected recompute job type, got %s", jobQueue.enqueued[0].Type)
	}
}

func TestProcessReviewJob_MissingReviewID(t *testing.T) {
	t.Parallel()

	processor := newTestProcessor(&mockSummarizer{}, &mockReviewRepo{}, &mockJobQueue{}, &mockRecomputer{})

	job := queue.NewJob(queue.JobTypeProcessReview, uuid.New(), nil)
	if err := processor.ProcessReviewJob(context.Background(), job); err == nil {
		t.Error("Expected error for job without review_id")
	}
}

func TestProcessReviewJob_WrongUser(t *testing.T) {
	t.Parallel()

	reviewID := uuid.New()
	reviewRepo := &mockReviewRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
			return &models.ReviewSession{
				ID:     reviewID,
				UserID: uuid.New(),
				Status: models.ReviewStatusStarted,
			}, nil
		},
	}
	processor := newTestProcessor(&mockSummarizer{}, reviewRepo, &mockJobQueue{}, &mockRecomputer{})

	job := queue.NewJob(queue.JobTypeProcessReview, uuid.New(), &reviewID)
	if err := processor.ProcessReviewJob(context.Background(), job); err == nil {
		t.Error("Expected error when review belongs to another user")
	}
}

func TestProcessReviewJob_AlreadyFinished(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reviewID := uuid.New()
	reviewRepo := &mockReviewRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
			return &models.ReviewSession{
				ID:     reviewID,
				UserID: userID,
				Status: models.ReviewStatusCompleted,
			}, nil
		},
	}
	summarizer := &mockSummarizer{}
	processor := newTestProcessor(summarizer, reviewRepo, &mockJobQueue{}, &mockRecomputer{})

	job := queue.NewJob(queue.JobTypeProcessReview, userID, &reviewID)
	if err := processor.ProcessReviewJob(context.Background(), job); err != nil {
		t.Fatalf("Expected redelivery of finished review to be a no-op, got %v", err)
	}
	if summarizer.calls != 0 {
		t.Error("Expected no summarizer call for an already finished review")
	}
	if len(reviewRepo.statusUpdates) != 0 {
		t.Error("Expected no status updates for an already finished review")
	}
}

func TestProcessJob_AcksOnSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reviewID := uuid.New()
	reviewRepo := &mockReviewRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
			return &models.ReviewSession{
				ID:        reviewID,
				UserID:    userID,
				Mode:      models.ReviewModeAutostart,
				Status:    models.ReviewStatusStarted,
				StartedAt: time.Now(),
			}, nil
		},
	}
	processor := newTestProcessor(&mockSummarizer{}, reviewRepo, &mockJobQueue{}, &mockRecomputer{})

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeProcessReview, userID, &reviewID)}
	if err := processor.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !msg.acked {
		t.Error("Expected message to be acked")
	}
	if msg.nacked {
		t.Error("Expected message not to be nacked")
	}
}

func TestProcessJob_RateLimited_ReenqueuesWithDelay(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reviewID := uuid.New()
	reviewRepo := &mockReviewRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
			return &models.ReviewSession{
				ID:        reviewID,
				UserID:    userID,
				Mode:      models.ReviewModeDelegate,
				Status:    models.ReviewStatusStarted,
				StartedAt: time.Now(),
			}, nil
		},
	}
	summarizer := &mockSummarizer{
		summarizeFunc: func(ctx context.Context, input ai.ReviewInput) (string, error) {
			return "", &ai.APIError{StatusCode: 429, Type: "rate_limit_error", Message: "slow down"}
		},
	}
	jobQueue := &mockJobQueue{}
	processor := newTestProcessor(summarizer, reviewRepo, jobQueue, &mockRecomputer{})

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeProcessReview, userID, &reviewID)}
	if err := processor.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("Expected rate limited job to be handled, got %v", err)
	}

	if !msg.acked {
		t.Error("Expected original message to be acked before delayed retry")
	}
	if len(jobQueue.enqueued) != 1 {
		t.Fatalf("Expected one delayed job, got %d", len(jobQueue.enqueued))
	}
	delayed := jobQueue.enqueued[0]
	if delayed.NotBefore == nil || !delayed.NotBefore.After(time.Now()) {
		t.Error("Expected delayed job to have a future NotBefore")
	}
	if delayed.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", delayed.RetryCount)
	}
}

func TestProcessJob_ExhaustedRetries_DeadLetters(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reviewID := uuid.New()
	reviewRepo := &mockReviewRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
			return nil, errors.New("connection reset")
		},
	}
	processor := newTestProcessor(&mockSummarizer{}, reviewRepo, &mockJobQueue{}, &mockRecomputer{})

	job := queue.NewJob(queue.JobTypeProcessReview, userID, &reviewID)
	job.RetryCount = job.MaxRetries
	msg := &mockMessage{job: job}

	if err := processor.ProcessJob(context.Background(), msg); err == nil {
		t.Error("Expected error when retries are exhausted")
	}
	if !msg.nacked || msg.requeue {
		t.Error("Expected message to be nacked without requeue")
	}
}

func TestProcessJob_TransientError_Requeues(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	reviewID := uuid.New()
	reviewRepo := &mockReviewRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
			return nil, errors.New("connection reset")
		},
	}
	processor := newTestProcessor(&mockSummarizer{}, reviewRepo, &mockJobQueue{}, &mockRecomputer{})

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeProcessReview, userID, &reviewID)}
	if err := processor.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("Expected transient error to be swallowed after requeue, got %v", err)
	}
	if !msg.nacked || !msg.requeue {
		t.Error("Expected message to be nacked with requeue")
	}
}

func TestProcessJob_RecomputePatterns(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	recomputer := &mockRecomputer{}
	processor := newTestProcessor(&mockSummarizer{}, &mockReviewRepo{}, &mockJobQueue{}, recomputer)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeRecomputePatterns, userID, nil)}
	if err := processor.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !msg.acked {
		t.Error("Expected message to be acked")
	}
	if len(recomputer.calls) != 1 || recomputer.calls[0] != userID {
		t.Errorf("Expected one recompute for %s, got %v", userID, recomputer.calls)
	}
}

func TestProcessJob_UnknownType_DeadLetters(t *testing.T) {
	t.Parallel()

	processor := newTestProcessor(&mockSummarizer{}, &mockReviewRepo{}, &mockJobQueue{}, &mockRecomputer{})

	msg := &mockMessage{job: queue.NewJob(queue.JobType("mystery"), uuid.New(), nil)}
	if err := processor.ProcessJob(context.Background(), msg); err == nil {
		t.Error("Expected error for unknown job type")
	}
	if !msg.nacked || msg.requeue {
		t.Error("Expected message to be nacked without requeue")
	}
}
