package review

import (
	"time"
)

// Snapshot is the consistent set of inputs for one evaluation tick. The
// session assembles it under its lock so the decision and the resulting state
// write cannot interleave with countdown expiry or user actions.
type Snapshot struct {
	Now           time.Time
	Effective     ResolvedTime
	PromptVisible bool
	HasResponded  bool
	LastReviewAt  *time.Time
	Context       Context
}

// Decision is the outcome of one evaluation tick.
type Decision struct {
	Show   bool
	Reason string
}

// Decision reasons, used for structured logging and the prompt-state endpoint.
const (
	ReasonAlreadyResponded = "already_responded"
	ReasonReviewedToday    = "already_reviewed_today"
	ReasonConflictDeferred = "calendar_conflict_deferred"
	ReasonOutsideWindow    = "outside_trigger_window"
	ReasonNothingToReview  = "nothing_to_review"
	ReasonAlreadyVisible   = "prompt_already_visible"
	ReasonShow             = "show_prompt"
)

// Evaluate runs the trigger predicate over a snapshot. Guard order matters:
//
//  1. Responded today: terminal until the new-day reset.
//  2. Reviewed today: a completed review suppresses the prompt for the day.
//  3. Calendar conflict: defer this tick, retry on the next one. This is a
//     "busy, try later" deferral, not a dismissal.
//  4. One-hour trigger window starting at the effective time.
//  5. Relevance: no pending or outstanding items means nothing to review.
//
// Evaluate is pure; the caller applies the decision to its state.
func Evaluate(s Snapshot) Decision {
	if s.HasResponded {
		return Decision{Reason: ReasonAlreadyResponded}
	}

	if s.LastReviewAt != nil && sameDay(*s.LastReviewAt, s.Now) {
		return Decision{Reason: ReasonReviewedToday}
	}

	if s.Context.HasCalendarConflict {
		return Decision{Reason: ReasonConflictDeferred}
	}

	windowStart := time.Date(s.Now.Year(), s.Now.Month(), s.Now.Day(),
		s.Effective.Hour, s.Effective.Minute, 0, 0, s.Now.Location())
	windowEnd := windowStart.Add(time.Hour)
	if s.Now.Before(windowStart) || !s.Now.Before(windowEnd) {
		return Decision{Reason: ReasonOutsideWindow}
	}

	if !s.Context.Relevant() {
		return Decision{Reason: ReasonNothingToReview}
	}

	if s.PromptVisible {
		return Decision{Reason: ReasonAlreadyVisible}
	}

	return Decision{Show: true, Reason: ReasonShow}
}

// sameDay reports whether a and b fall on the same calendar day in b's location.
func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
