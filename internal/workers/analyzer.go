package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PatternLookback is how much review history feeds the timing aggregates.
const PatternLookback = 90 * 24 * time.Hour

// PatternAnalyzer recomputes a user's timing patterns from review history.
// The trigger evaluator reads the aggregates; it never sees raw history.
type PatternAnalyzer struct {
	reviewRepo   database.ReviewRepositoryInterface
	patternRepo  database.PatternRepositoryInterface
	settingsRepo database.SettingsRepositoryInterface
	logger       *zap.Logger
}

// NewPatternAnalyzer creates a new pattern analyzer
func NewPatternAnalyzer(
	reviewRepo database.ReviewRepositoryInterface,
	patternRepo database.PatternRepositoryInterface,
	settingsRepo database.SettingsRepositoryInterface,
	logger *zap.Logger,
) *PatternAnalyzer {
	return &PatternAnalyzer{
		reviewRepo:   reviewRepo,
		patternRepo:  patternRepo,
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// weekdayAccumulator collects per-weekday sums before rates are derived.
type weekdayAccumulator struct {
	samples      int
	minutesTotal int
	completed    int
	unattended   int
}

// Recompute rebuilds the user's weekday patterns and overall predicted time
// from recent review history. Weekdays with no history keep their previous
// aggregates; stale rows age out through the sample-count thresholds instead
// of being deleted.
func (a *PatternAnalyzer) Recompute(ctx context.Context, userID uuid.UUID) error {
	sessions, err := a.reviewRepo.GetRecentByUserID(ctx, userID, PatternLookback)
	if err != nil {
		return fmt.Errorf("failed to get review history: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	loc := time.UTC
	if settings, err := a.settingsRepo.GetByUserID(ctx, userID); err == nil && settings != nil {
		loc = settings.Location()
	}

	byWeekday := make(map[int]*weekdayAccumulator)
	totalMinutes := 0
	totalSamples := 0

	for _, session := range sessions {
		started := session.StartedAt.In(loc)
		day := int(started.Weekday())

		acc := byWeekday[day]
		if acc == nil {
			acc = &weekdayAccumulator{}
			byWeekday[day] = acc
		}

		minutes := started.Hour()*60 + started.Minute()
		acc.samples++
		acc.minutesTotal += minutes
		totalSamples++
		totalMinutes += minutes

		if session.Status == models.ReviewStatusCompleted {
			acc.completed++
		}
		if session.Unattended() {
			acc.unattended++
		}
	}

	now := time.Now()
	for day, acc := range byWeekday {
		avgMinutes := acc.minutesTotal / acc.samples
		avgClock := models.FormatClock(avgMinutes/60, avgMinutes%60)
		completionRate := float64(acc.completed) / float64(acc.samples)
		autoRate := float64(acc.unattended) / float64(acc.samples)

		pattern := &models.TimingPattern{
			UserID:           userID,
			DayOfWeek:        day,
			AverageStartTime: &avgClock,
			CompletionRate:   &completionRate,
			AutoProcessRate:  &autoRate,
			SampleCount:      acc.samples,
			UpdatedAt:        now,
		}
		if err := a.patternRepo.Upsert(ctx, pattern); err != nil {
			return fmt.Errorf("failed to upsert pattern for weekday %d: %w", day, err)
		}
	}

	avgMinutes := totalMinutes / totalSamples
	predicted := &models.PredictedTime{
		UserID:        userID,
		PredictedTime: models.FormatClock(avgMinutes/60, avgMinutes%60),
		SampleCount:   totalSamples,
	}
	if err := a.patternRepo.UpsertPredictedTime(ctx, predicted); err != nil {
		return fmt.Errorf("failed to upsert predicted time: %w", err)
	}

	a.logger.Info("patterns_recomputed",
		zap.String("user_id", userID.String()),
		zap.Int("sessions", totalSamples),
		zap.Int("weekdays", len(byWeekday)),
		zap.String("predicted_time", predicted.PredictedTime),
	)

	return nil
}
