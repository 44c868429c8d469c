package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
)

// PatternRepository handles timing pattern database operations
type PatternRepository struct {
	db *DB
}

// NewPatternRepository creates a new pattern repository
func NewPatternRepository(db *DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// GetByUserID retrieves all weekday patterns for a user
func (r *PatternRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.TimingPattern, error) {
	query := `
		SELECT user_id, day_of_week, average_start_time, completion_rate, auto_process_rate, sample_count, updated_at
		FROM timing_patterns
		WHERE user_id = $1
		ORDER BY day_of_week
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timing patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.TimingPattern
	for rows.Next() {
		pattern := &models.TimingPattern{}
		var avgStart sql.NullString
		var completionRate, autoRate sql.NullFloat64

		err := rows.Scan(
			&pattern.UserID,
			&pattern.DayOfWeek,
			&avgStart,
			&completionRate,
			&autoRate,
			&pattern.SampleCount,
			&pattern.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timing pattern: %w", err)
		}

		if avgStart.Valid {
			pattern.AverageStartTime = &avgStart.String
		}
		if completionRate.Valid {
			pattern.CompletionRate = &completionRate.Float64
		}
		if autoRate.Valid {
			pattern.AutoProcessRate = &autoRate.Float64
		}

		patterns = append(patterns, pattern)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timing patterns: %w", err)
	}

	return patterns, nil
}

// GetPredictedTime retrieves the overall predicted review time for a user.
// Returns nil when no prediction has been computed yet.
func (r *PatternRepository) GetPredictedTime(ctx context.Context, userID uuid.UUID) (*models.PredictedTime, error) {
	predicted := &models.PredictedTime{}
	query := `
		SELECT user_id, predicted_time, sample_count
		FROM predicted_times
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&predicted.UserID,
		&predicted.PredictedTime,
		&predicted.SampleCount,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get predicted time: %w", err)
	}

	return predicted, nil
}

// Upsert creates or replaces one weekday pattern
func (r *PatternRepository) Upsert(ctx context.Context, pattern *models.TimingPattern) error {
	query := `
		INSERT INTO timing_patterns (user_id, day_of_week, average_start_time, completion_rate, auto_process_rate, sample_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, day_of_week) DO UPDATE SET
			average_start_time = EXCLUDED.average_start_time,
			completion_rate = EXCLUDED.completion_rate,
			auto_process_rate = EXCLUDED.auto_process_rate,
			sample_count = EXCLUDED.sample_count,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		pattern.UserID,
		pattern.DayOfWeek,
		pattern.AverageStartTime,
		pattern.CompletionRate,
		pattern.AutoProcessRate,
		pattern.SampleCount,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert timing pattern: %w", err)
	}

	return nil
}

// UpsertPredictedTime creates or replaces the overall predicted time
func (r *PatternRepository) UpsertPredictedTime(ctx context.Context, predicted *models.PredictedTime) error {
	query := `
		INSERT INTO predicted_times (user_id, predicted_time, sample_count, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			predicted_time = EXCLUDED.predicted_time,
			sample_count = EXCLUDED.sample_count,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		predicted.UserID,
		predicted.PredictedTime,
		predicted.SampleCount,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert predicted time: %w", err)
	}

	return nil
}
