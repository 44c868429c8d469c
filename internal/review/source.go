package review

import (
	"context"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The session depends on narrow read-only views of the data layer. The
// database repositories satisfy these directly; tests substitute fakes.

// SettingsSource returns a user's review preferences.
type SettingsSource interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSettings, error)
}

// TaskSource returns a user's open tasks.
type TaskSource interface {
	GetOpenByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
}

// ProjectSource returns a user's projects.
type ProjectSource interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
}

// PatternSource returns learned timing patterns and the overall predicted time.
type PatternSource interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.TimingPattern, error)
	GetPredictedTime(ctx context.Context, userID uuid.UUID) (*models.PredictedTime, error)
}

// HistorySource returns the user's most recent completed review session, or
// nil when none exists.
type HistorySource interface {
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSession, error)
}

// ConflictSource answers whether the user has a meeting overlapping a window.
type ConflictSource interface {
	HasConflicts(ctx context.Context, userID uuid.UUID, from, to time.Time) (bool, error)
}

// Source bundles the read-only views the session polls each tick.
type Source struct {
	Settings  SettingsSource
	Tasks     TaskSource
	Projects  ProjectSource
	Patterns  PatternSource
	History   HistorySource
	Conflicts ConflictSource

	// Logger records degraded best-effort lookups. Optional; nil is quiet.
	Logger *zap.Logger
}

// tickData is one consistent load of external inputs. now is the tick time
// localized to the user's timezone; all later window math uses it.
type tickData struct {
	settings     *models.ReviewSettings
	now          time.Time
	resolved     ResolvedTime
	lastReviewAt *time.Time
	context      Context
}

// load gathers a snapshot of external inputs for one tick. A nil result with
// a nil error means the data layer is not ready yet; the tick is skipped
// silently rather than surfaced as an error.
func (s Source) load(ctx context.Context, userID uuid.UUID, now time.Time) (*tickData, error) {
	settings, err := s.Settings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, nil
	}

	// A 19:00 setting means 19:00 on the user's clock, not the server's.
	// Every weekday, window, and same-day comparison below runs on local time.
	now = now.In(settings.Location())

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Pattern and prediction lookups are best-effort; the resolver falls back
	// to the configured setting without them.
	patterns, err := s.Patterns.GetByUserID(ctx, userID)
	if err != nil {
		logger.Debug("timing_pattern_lookup_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		patterns = nil
	}
	predicted, err := s.Patterns.GetPredictedTime(ctx, userID)
	if err != nil {
		logger.Debug("predicted_time_lookup_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		predicted = nil
	}

	resolved := ResolveSmartTime(settings.EveningReviewTime, patterns, predicted, now.Weekday())

	tasks, err := s.Tasks.GetOpenByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.Projects.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	reviewCtx := BuildContext(tasks, projects)

	// Conflicts are checked for the 2-hour block starting at the effective
	// time; a review displaced by a meeting should not race its tail end.
	windowStart := time.Date(now.Year(), now.Month(), now.Day(),
		resolved.Hour, resolved.Minute, 0, 0, now.Location())
	conflict, err := s.Conflicts.HasConflicts(ctx, userID, windowStart, windowStart.Add(2*time.Hour))
	if err != nil {
		return nil, err
	}
	reviewCtx.HasCalendarConflict = conflict

	data := &tickData{
		settings: settings,
		now:      now,
		resolved: resolved,
		context:  reviewCtx,
	}

	latest, err := s.History.GetLatestByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Only a finished review counts as today's review. An abandoned or
	// still-running session must not suppress the prompt for the day.
	if latest != nil && latest.Status == models.ReviewStatusCompleted {
		when := latest.StartedAt
		if latest.CompletedAt != nil {
			when = *latest.CompletedAt
		}
		data.lastReviewAt = &when
	}

	return data, nil
}
