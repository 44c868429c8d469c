package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
)

// SettingsRepository handles review settings database operations
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetByUserID retrieves a user's review settings. Returns nil when the user
// has never saved settings; callers are expected to apply defaults.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSettings, error) {
	settings := &models.ReviewSettings{}
	query := `
		SELECT user_id, evening_review_time, auto_delegate, timezone, created_at, updated_at
		FROM review_settings
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.EveningReviewTime,
		&settings.AutoDelegate,
		&settings.Timezone,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review settings: %w", err)
	}

	return settings, nil
}

// Upsert creates or replaces a user's review settings
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.ReviewSettings) error {
	query := `
		INSERT INTO review_settings (user_id, evening_review_time, auto_delegate, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			evening_review_time = EXCLUDED.evening_review_time,
			auto_delegate = EXCLUDED.auto_delegate,
			timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		settings.UserID,
		settings.EveningReviewTime,
		settings.AutoDelegate,
		settings.Timezone,
		now,
		now,
	).Scan(&settings.CreatedAt, &settings.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert review settings: %w", err)
	}

	return nil
}

// Delete removes a user's review settings
func (r *SettingsRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM review_settings WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete review settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("review settings not found")
	}

	return nil
}
