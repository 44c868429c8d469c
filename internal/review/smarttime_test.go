package review

import (
	"testing"
	"time"

	"github.com/cepho/cepho-api/internal/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func pattern(day int, avg string, samples int, autoRate float64) *models.TimingPattern {
	return &models.TimingPattern{
		DayOfWeek:        day,
		AverageStartTime: strPtr(avg),
		AutoProcessRate:  f64Ptr(autoRate),
		SampleCount:      samples,
	}
}

func TestResolveSmartTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setting    string
		patterns   []*models.TimingPattern
		predicted  *models.PredictedTime
		weekday    time.Weekday
		wantHour   int
		wantMinute int
		wantSource TimeSource
	}{
		{
			name:       "authoritative pattern wins over predicted and setting",
			setting:    "19:00",
			patterns:   []*models.TimingPattern{pattern(2, "20:30", 5, 0.1)},
			predicted:  &models.PredictedTime{PredictedTime: "18:00"},
			weekday:    time.Tuesday,
			wantHour:   20,
			wantMinute: 30,
			wantSource: TimeSourcePatternTypical,
		},
		{
			name:       "delegate heavy pattern gets delegate source",
			setting:    "19:00",
			patterns:   []*models.TimingPattern{pattern(5, "21:15", 4, 0.8)},
			weekday:    time.Friday,
			wantHour:   21,
			wantMinute: 15,
			wantSource: TimeSourcePatternDelegate,
		},
		{
			name:       "pattern for another weekday is ignored",
			setting:    "19:00",
			patterns:   []*models.TimingPattern{pattern(1, "20:00", 5, 0.1)},
			weekday:    time.Wednesday,
			wantHour:   19,
			wantMinute: 0,
			wantSource: TimeSourceConfigured,
		},
		{
			name:       "pattern below sample threshold falls through to predicted",
			setting:    "19:00",
			patterns:   []*models.TimingPattern{pattern(3, "20:00", 2, 0.1)},
			predicted:  &models.PredictedTime{PredictedTime: "18:45"},
			weekday:    time.Wednesday,
			wantHour:   18,
			wantMinute: 45,
			wantSource: TimeSourcePredicted,
		},
		{
			name:       "predicted wins over setting without patterns",
			setting:    "19:00",
			predicted:  &models.PredictedTime{PredictedTime: "17:30"},
			weekday:    time.Monday,
			wantHour:   17,
			wantMinute: 30,
			wantSource: TimeSourcePredicted,
		},
		{
			name:       "configured setting when nothing learned",
			setting:    "18:15",
			weekday:    time.Monday,
			wantHour:   18,
			wantMinute: 15,
			wantSource: TimeSourceConfigured,
		},
		{
			name:       "empty setting falls back to documented default",
			setting:    "",
			weekday:    time.Sunday,
			wantHour:   19,
			wantMinute: 0,
			wantSource: TimeSourceConfigured,
		},
		{
			name:       "malformed pattern clock falls through",
			setting:    "19:00",
			patterns:   []*models.TimingPattern{pattern(4, "not-a-time", 5, 0.1)},
			weekday:    time.Thursday,
			wantHour:   19,
			wantMinute: 0,
			wantSource: TimeSourceConfigured,
		},
		{
			name:       "malformed predicted clock falls through to setting",
			setting:    "19:00",
			predicted:  &models.PredictedTime{PredictedTime: "25:99"},
			weekday:    time.Monday,
			wantHour:   19,
			wantMinute: 0,
			wantSource: TimeSourceConfigured,
		},
		{
			name:       "malformed setting falls back to default",
			setting:    "late evening",
			weekday:    time.Monday,
			wantHour:   19,
			wantMinute: 0,
			wantSource: TimeSourceConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolveSmartTime(tt.setting, tt.patterns, tt.predicted, tt.weekday)
			if got.Hour != tt.wantHour || got.Minute != tt.wantMinute {
				t.Errorf("expected %02d:%02d, got %02d:%02d", tt.wantHour, tt.wantMinute, got.Hour, got.Minute)
			}
			if got.Source != tt.wantSource {
				t.Errorf("expected source %q, got %q", tt.wantSource, got.Source)
			}
			if got.Reason == "" {
				t.Error("expected a non-empty reason")
			}
		})
	}
}

func TestResolvedTimeClock(t *testing.T) {
	t.Parallel()

	r := ResolvedTime{Hour: 9, Minute: 5}
	if got := r.Clock(); got != "09:05" {
		t.Errorf("expected 09:05, got %q", got)
	}
}
