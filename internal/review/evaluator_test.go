package review

import (
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluate(t *testing.T) {
	t.Parallel()

	// Tuesday 19:30 local, inside a 19:00 trigger window.
	now := time.Date(2026, 3, 10, 19, 30, 0, 0, time.UTC)
	effective := ResolvedTime{Hour: 19, Minute: 0, Source: TimeSourceConfigured}
	relevant := Context{PendingTasks: 3, ActiveProjects: 1}

	tests := []struct {
		name       string
		snapshot   Snapshot
		wantShow   bool
		wantReason string
	}{
		{
			name: "shows inside window with pending work",
			snapshot: Snapshot{
				Now:       now,
				Effective: effective,
				Context:   relevant,
			},
			wantShow:   true,
			wantReason: ReasonShow,
		},
		{
			name: "responded is terminal for the day",
			snapshot: Snapshot{
				Now:          now,
				Effective:    effective,
				HasResponded: true,
				Context:      relevant,
			},
			wantReason: ReasonAlreadyResponded,
		},
		{
			name: "review completed earlier today suppresses the prompt",
			snapshot: Snapshot{
				Now:          now,
				Effective:    effective,
				LastReviewAt: timePtr(now.Add(-4 * time.Hour)),
				Context:      relevant,
			},
			wantReason: ReasonReviewedToday,
		},
		{
			name: "review completed yesterday does not suppress",
			snapshot: Snapshot{
				Now:          now,
				Effective:    effective,
				LastReviewAt: timePtr(now.AddDate(0, 0, -1)),
				Context:      relevant,
			},
			wantShow:   true,
			wantReason: ReasonShow,
		},
		{
			name: "calendar conflict defers before the window check",
			snapshot: Snapshot{
				Now:       now,
				Effective: effective,
				Context:   Context{PendingTasks: 3, HasCalendarConflict: true},
			},
			wantReason: ReasonConflictDeferred,
		},
		{
			name: "before the window",
			snapshot: Snapshot{
				Now:       time.Date(2026, 3, 10, 18, 59, 0, 0, time.UTC),
				Effective: effective,
				Context:   relevant,
			},
			wantReason: ReasonOutsideWindow,
		},
		{
			name: "window start is inclusive",
			snapshot: Snapshot{
				Now:       time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC),
				Effective: effective,
				Context:   relevant,
			},
			wantShow:   true,
			wantReason: ReasonShow,
		},
		{
			name: "window end is exclusive",
			snapshot: Snapshot{
				Now:       time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC),
				Effective: effective,
				Context:   relevant,
			},
			wantReason: ReasonOutsideWindow,
		},
		{
			name: "nothing to review",
			snapshot: Snapshot{
				Now:       now,
				Effective: effective,
				Context:   Context{ActiveProjects: 2},
			},
			wantReason: ReasonNothingToReview,
		},
		{
			name: "outstanding items alone are enough",
			snapshot: Snapshot{
				Now:       now,
				Effective: effective,
				Context:   Context{OutstandingItems: 1},
			},
			wantShow:   true,
			wantReason: ReasonShow,
		},
		{
			name: "already visible does not re-show",
			snapshot: Snapshot{
				Now:           now,
				Effective:     effective,
				PromptVisible: true,
				Context:       relevant,
			},
			wantReason: ReasonAlreadyVisible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Evaluate(tt.snapshot)
			if got.Show != tt.wantShow {
				t.Errorf("expected show=%v, got %v", tt.wantShow, got.Show)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, got.Reason)
			}
		})
	}
}

func TestSameDayUsesLocation(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// 23:30 UTC on March 10 is already March 11 in Berlin.
	lastReview := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	nowBerlin := time.Date(2026, 3, 11, 19, 15, 0, 0, berlin)

	if !sameDay(lastReview, nowBerlin) {
		t.Error("expected late UTC review to count as today in Berlin")
	}
}
