package models

import (
	"time"

	"github.com/google/uuid"
)

// CalendarEvent represents a synced calendar entry used for conflict checks
type CalendarEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps reports whether the event overlaps the [from, to) window.
func (e *CalendarEvent) Overlaps(from, to time.Time) bool {
	return e.StartsAt.Before(to) && e.EndsAt.After(from)
}
