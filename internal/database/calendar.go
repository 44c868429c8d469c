package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
)

// CalendarRepository handles calendar event database operations
type CalendarRepository struct {
	db *DB
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db *DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Create creates a new calendar event
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (id, user_id, title, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.UserID,
		event.Title,
		event.StartsAt,
		event.EndsAt,
		time.Now(),
	).Scan(&event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}

	return nil
}

// GetByUserIDInWindow retrieves events overlapping the [from, to) window
func (r *CalendarRepository) GetByUserIDInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.CalendarEvent, error) {
	query := `
		SELECT id, user_id, title, starts_at, ends_at, created_at
		FROM calendar_events
		WHERE user_id = $1 AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []*models.CalendarEvent
	for rows.Next() {
		event := &models.CalendarEvent{}
		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Title,
			&event.StartsAt,
			&event.EndsAt,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar events: %w", err)
	}

	return events, nil
}

// HasConflicts reports whether any event overlaps the [from, to) window
func (r *CalendarRepository) HasConflicts(ctx context.Context, userID uuid.UUID, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM calendar_events
			WHERE user_id = $1 AND starts_at < $3 AND ends_at > $2
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check calendar conflicts: %w", err)
	}

	return exists, nil
}

// Delete deletes a calendar event by ID
func (r *CalendarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("calendar event not found")
	}

	return nil
}
