package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultEveningReviewTime is used when a user has not configured a review time
const DefaultEveningReviewTime = "19:00"

// ReviewSettings holds a user's evening review preferences
type ReviewSettings struct {
	UserID            uuid.UUID `json:"user_id"`
	EveningReviewTime string    `json:"evening_review_time"` // "HH:MM", 24-hour
	AutoDelegate      bool      `json:"auto_delegate"`
	Timezone          string    `json:"timezone"` // IANA name, e.g. "Europe/Berlin"
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Location resolves the user's timezone, falling back to UTC.
func (s *ReviewSettings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseClock parses an "HH:MM" string into hour and minute.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q: expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock time %q: hour out of range", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock time %q: minute out of range", value)
	}
	return hour, minute, nil
}

// FormatClock renders hour and minute as "HH:MM".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
