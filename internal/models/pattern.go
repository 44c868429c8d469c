package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MinPatternSamples is the minimum number of observations before a weekday
	// pattern is shown as a learning insight at all.
	MinPatternSamples = 2
	// AuthoritativePatternSamples is the minimum number of observations before a
	// weekday pattern may override the configured review time.
	AuthoritativePatternSamples = 3
	// DelegateHeavyRate is the auto-process rate above which a weekday is
	// considered delegate-heavy.
	DelegateHeavyRate = 0.5
)

// TimingPattern aggregates a user's historical review behavior for one weekday.
// CompletionRate and AutoProcessRate are independent fractions; a day can have
// neither when past reviews were abandoned.
type TimingPattern struct {
	UserID           uuid.UUID `json:"user_id"`
	DayOfWeek        int       `json:"day_of_week"` // 0 = Sunday, matching time.Weekday
	AverageStartTime *string   `json:"average_start_time,omitempty"` // "HH:MM"
	CompletionRate   *float64  `json:"completion_rate,omitempty"`    // [0,1]
	AutoProcessRate  *float64  `json:"auto_process_rate,omitempty"`  // [0,1]
	SampleCount      int       `json:"sample_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsAuthoritative reports whether this pattern has enough samples and data to
// override the configured review time.
func (p *TimingPattern) IsAuthoritative() bool {
	return p != nil && p.SampleCount >= AuthoritativePatternSamples && p.AverageStartTime != nil
}

// IsDelegateHeavy reports whether the user usually delegates reviews on this weekday.
func (p *TimingPattern) IsDelegateHeavy() bool {
	return p != nil && p.AutoProcessRate != nil && *p.AutoProcessRate > DelegateHeavyRate
}

// PredictedTime is the overall (weekday-independent) predicted review start,
// derived from recent review history.
type PredictedTime struct {
	UserID        uuid.UUID `json:"user_id"`
	PredictedTime string    `json:"predicted_time"` // "HH:MM"
	SampleCount   int       `json:"sample_count"`
}
