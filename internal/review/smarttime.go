package review

import (
	"time"

	"github.com/cepho/cepho-api/internal/models"
)

// TimeSource identifies which input won when resolving the effective review time
type TimeSource string

const (
	// TimeSourcePatternDelegate means a delegate-heavy weekday pattern won
	TimeSourcePatternDelegate TimeSource = "pattern_delegate"
	// TimeSourcePatternTypical means a weekday pattern won
	TimeSourcePatternTypical TimeSource = "pattern_typical"
	// TimeSourcePredicted means the overall predicted time won
	TimeSourcePredicted TimeSource = "predicted"
	// TimeSourceConfigured means the user's static setting (or its default) won
	TimeSourceConfigured TimeSource = "configured"
)

// ResolvedTime is the effective review trigger time plus a human-readable justification
type ResolvedTime struct {
	Hour   int        `json:"hour"`
	Minute int        `json:"minute"`
	Reason string     `json:"reason"`
	Source TimeSource `json:"source"`
}

// Clock renders the resolved time as "HH:MM".
func (r ResolvedTime) Clock() string {
	return models.FormatClock(r.Hour, r.Minute)
}

// ResolveSmartTime combines the user's configured review time, learned weekday
// patterns, and the overall predicted time into a single effective trigger
// time. Priority order, first match wins:
//
//  1. An authoritative pattern for today's weekday (enough samples, has an
//     average start time), preferring the delegate-flavored reason when the
//     user usually hands the review off on that day.
//  2. The overall predicted time from recent review history.
//  3. The configured setting, falling back to the documented default.
//
// Pure function of its inputs; malformed clock strings fall through to the
// next priority rather than erroring.
func ResolveSmartTime(setting string, patterns []*models.TimingPattern, predicted *models.PredictedTime, weekday time.Weekday) ResolvedTime {
	for _, p := range patterns {
		if p == nil || p.DayOfWeek != int(weekday) || !p.IsAuthoritative() {
			continue
		}
		hour, minute, err := models.ParseClock(*p.AverageStartTime)
		if err != nil {
			continue
		}
		if p.IsDelegateHeavy() {
			return ResolvedTime{
				Hour:   hour,
				Minute: minute,
				Reason: "you usually delegate your review around this time on this day",
				Source: TimeSourcePatternDelegate,
			}
		}
		return ResolvedTime{
			Hour:   hour,
			Minute: minute,
			Reason: "you typically start your review around this time on this day",
			Source: TimeSourcePatternTypical,
		}
	}

	if predicted != nil {
		if hour, minute, err := models.ParseClock(predicted.PredictedTime); err == nil {
			return ResolvedTime{
				Hour:   hour,
				Minute: minute,
				Reason: "based on your recent review patterns",
				Source: TimeSourcePredicted,
			}
		}
	}

	if setting == "" {
		setting = models.DefaultEveningReviewTime
	}
	hour, minute, err := models.ParseClock(setting)
	if err != nil {
		hour, minute, _ = models.ParseClock(models.DefaultEveningReviewTime)
	}
	return ResolvedTime{
		Hour:   hour,
		Minute: minute,
		Reason: "your configured review time",
		Source: TimeSourceConfigured,
	}
}
