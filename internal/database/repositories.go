package database

import (
	"context"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/review"
	"github.com/google/uuid"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error)
	GetOpenByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepositoryInterface defines the interface for project repository operations
type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepositoryInterface defines the interface for settings repository operations
type SettingsRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSettings, error)
	Upsert(ctx context.Context, settings *models.ReviewSettings) error
}

// PatternRepositoryInterface defines the interface for pattern repository operations
type PatternRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.TimingPattern, error)
	GetPredictedTime(ctx context.Context, userID uuid.UUID) (*models.PredictedTime, error)
	Upsert(ctx context.Context, pattern *models.TimingPattern) error
	UpsertPredictedTime(ctx context.Context, predicted *models.PredictedTime) error
}

// ReviewRepositoryInterface defines the interface for review repository operations
type ReviewRepositoryInterface interface {
	Create(ctx context.Context, session *models.ReviewSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error)
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSession, error)
	GetRecentByUserID(ctx context.Context, userID uuid.UUID, lookback time.Duration) ([]*models.ReviewSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, summary *string) error
}

// CalendarRepositoryInterface defines the interface for calendar repository operations
type CalendarRepositoryInterface interface {
	Create(ctx context.Context, event *models.CalendarEvent) error
	GetByUserIDInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.CalendarEvent, error)
	HasConflicts(ctx context.Context, userID uuid.UUID, from, to time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface     = (*TaskRepository)(nil)
	_ ProjectRepositoryInterface  = (*ProjectRepository)(nil)
	_ SettingsRepositoryInterface = (*SettingsRepository)(nil)
	_ PatternRepositoryInterface  = (*PatternRepository)(nil)
	_ ReviewRepositoryInterface   = (*ReviewRepository)(nil)
	_ CalendarRepositoryInterface = (*CalendarRepository)(nil)
)

// Ensure the repositories satisfy the trigger session's read interfaces
var (
	_ review.SettingsSource = (*SettingsRepository)(nil)
	_ review.TaskSource     = (*TaskRepository)(nil)
	_ review.ProjectSource  = (*ProjectRepository)(nil)
	_ review.PatternSource  = (*PatternRepository)(nil)
	_ review.HistorySource  = (*ReviewRepository)(nil)
	_ review.ConflictSource = (*CalendarRepository)(nil)
	_ review.ReviewRecorder = (*ReviewRepository)(nil)
)
