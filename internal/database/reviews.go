package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
)

// ReviewRepository handles review session database operations
type ReviewRepository struct {
	db *DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review session
func (r *ReviewRepository) Create(ctx context.Context, session *models.ReviewSession) error {
	query := `
		INSERT INTO review_sessions (id, user_id, mode, status, summary, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Mode,
		session.Status,
		session.Summary,
		session.StartedAt,
		session.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review session: %w", err)
	}

	return nil
}

// GetByID retrieves a review session by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewSession, error) {
	query := `
		SELECT id, user_id, mode, status, summary, started_at, completed_at
		FROM review_sessions
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestByUserID retrieves the most recent completed review session for a
// user. Abandoned and still-running sessions are skipped; they are not review
// history. Returns nil when the user has no completed reviews.
func (r *ReviewRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*models.ReviewSession, error) {
	query := `
		SELECT id, user_id, mode, status, summary, started_at, completed_at
		FROM review_sessions
		WHERE user_id = $1 AND status = $2
		ORDER BY started_at DESC
		LIMIT 1
	`
	session, err := r.scanOne(r.db.QueryRowContext(ctx, query, userID, models.ReviewStatusCompleted))
	if err != nil && err == errReviewNotFound {
		return nil, nil
	}
	return session, err
}

// GetRecentByUserID retrieves review sessions started within the lookback window
func (r *ReviewRepository) GetRecentByUserID(ctx context.Context, userID uuid.UUID, lookback time.Duration) ([]*models.ReviewSession, error) {
	query := `
		SELECT id, user_id, mode, status, summary, started_at, completed_at
		FROM review_sessions
		WHERE user_id = $1 AND started_at >= $2
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, time.Now().Add(-lookback))
	if err != nil {
		return nil, fmt.Errorf("failed to query review sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.ReviewSession
	for rows.Next() {
		session := &models.ReviewSession{}
		var summary sql.NullString
		var completedAt sql.NullTime

		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Mode,
			&session.Status,
			&summary,
			&session.StartedAt,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review session: %w", err)
		}

		if summary.Valid {
			session.Summary = &summary.String
		}
		if completedAt.Valid {
			session.CompletedAt = &completedAt.Time
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review sessions: %w", err)
	}

	return sessions, nil
}

// UpdateStatus transitions a review session's status, setting completed_at
// and the summary for terminal states
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, summary *string) error {
	query := `
		UPDATE review_sessions
		SET status = $2, summary = COALESCE($3, summary), completed_at = $4
		WHERE id = $1
	`

	var completedAt sql.NullTime
	if status == models.ReviewStatusCompleted || status == models.ReviewStatusAbandoned {
		completedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query, id, status, summary, completedAt)
	if err != nil {
		return fmt.Errorf("failed to update review session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("review session not found")
	}

	return nil
}

var errReviewNotFound = fmt.Errorf("review session not found")

func (r *ReviewRepository) scanOne(row *sql.Row) (*models.ReviewSession, error) {
	session := &models.ReviewSession{}
	var summary sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Mode,
		&session.Status,
		&summary,
		&session.StartedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review session: %w", err)
	}

	if summary.Valid {
		session.Summary = &summary.String
	}
	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}

	return session, nil
}
