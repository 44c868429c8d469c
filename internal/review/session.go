package review

import (
	"context"
	"sync"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultEvaluatorInterval is the period of the trigger evaluation tick.
	DefaultEvaluatorInterval = 60 * time.Second
	// AutoStartDelaySeconds is the countdown started when the prompt becomes
	// visible. When it reaches zero the review auto-starts unattended.
	AutoStartDelaySeconds = 3600
)

// TriggerState is the state machine's memory for one user for one day.
type TriggerState struct {
	PromptVisible    bool `json:"prompt_visible"`
	HasResponded     bool `json:"has_responded"`
	CountdownSeconds *int `json:"countdown_seconds,omitempty"`
}

// LaunchFunc hands a review off in the given mode and returns the redirect path.
type LaunchFunc func(ctx context.Context, userID uuid.UUID, mode models.ReviewMode) (string, error)

// Session owns the evening-review trigger state for one user. All transitions
// go through one mutex, so each evaluator tick reads a consistent snapshot,
// decides, then writes; a countdown expiring concurrently with a tick cannot
// leave contradictory state.
type Session struct {
	userID   uuid.UUID
	source   Source
	launch   LaunchFunc
	logger   *zap.Logger
	interval time.Duration
	clock    func() time.Time

	mu          sync.Mutex
	state       TriggerState
	resolved    *ResolvedTime
	lastReason  string
	location    *time.Location
	lastTouched time.Time
}

// NewSession creates a session with all state cleared.
func NewSession(userID uuid.UUID, source Source, launch LaunchFunc, interval time.Duration, logger *zap.Logger) *Session {
	if interval <= 0 || interval > DefaultEvaluatorInterval {
		interval = DefaultEvaluatorInterval
	}
	return &Session{
		userID:      userID,
		source:      source,
		launch:      launch,
		logger:      logger,
		interval:    interval,
		clock:       time.Now,
		location:    time.UTC,
		lastTouched: time.Now(),
	}
}

// Run drives the session's timers until ctx is cancelled: the evaluator tick,
// the one-second countdown tick, and the explicit local-midnight reset.
// Cancelling ctx stops all three; no other cleanup is needed.
func (s *Session) Run(ctx context.Context) {
	evalTicker := time.NewTicker(s.interval)
	defer evalTicker.Stop()
	countdownTicker := time.NewTicker(time.Second)
	defer countdownTicker.Stop()
	midnight := time.NewTimer(s.untilMidnight())
	defer midnight.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-evalTicker.C:
			s.tick(ctx)
		case <-countdownTicker.C:
			s.countdownTick(ctx)
		case <-midnight.C:
			s.ResetForNewDay()
			// Re-arm from the current clock so DST shifts and suspend/resume
			// converge on the next real midnight.
			midnight.Reset(s.untilMidnight())
		}
	}
}

// tick runs one evaluation: load a consistent snapshot of external inputs,
// apply the guard chain, and show the prompt if everything passes. Missing
// external data skips the tick silently.
func (s *Session) tick(ctx context.Context) {
	now := s.clock()

	data, err := s.source.load(ctx, s.userID, now)
	if err != nil {
		s.logger.Debug("trigger_tick_load_failed",
			zap.String("user_id", s.userID.String()),
			zap.Error(err),
		)
		return
	}
	if data == nil {
		// Settings not provisioned yet; nothing to do.
		return
	}

	s.mu.Lock()
	s.resolved = &data.resolved
	s.location = data.settings.Location()

	// data.now is the tick time in the user's timezone; the evaluator's
	// window and same-day checks must run on the user's clock.
	decision := Evaluate(Snapshot{
		Now:           data.now,
		Effective:     data.resolved,
		PromptVisible: s.state.PromptVisible,
		HasResponded:  s.state.HasResponded,
		LastReviewAt:  data.lastReviewAt,
		Context:       data.context,
	})
	s.lastReason = decision.Reason

	if decision.Show {
		s.state.PromptVisible = true
		countdown := AutoStartDelaySeconds
		s.state.CountdownSeconds = &countdown
	}
	autoDelegate := data.settings.AutoDelegate
	s.mu.Unlock()

	if decision.Show {
		s.logger.Info("review_prompt_shown",
			zap.String("user_id", s.userID.String()),
			zap.String("effective_time", data.resolved.Clock()),
			zap.String("time_source", string(data.resolved.Source)),
			zap.Int("pending_tasks", data.context.PendingTasks),
			zap.Int("outstanding_items", data.context.OutstandingItems),
		)
		if autoDelegate {
			// Users who opted into hands-off evenings skip the prompt wait.
			if _, err := s.Delegate(ctx); err != nil {
				s.logger.Error("auto_delegate_failed",
					zap.String("user_id", s.userID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

// countdownTick decrements the auto-start countdown once per second while one
// is active. Reaching zero starts the review unattended. The countdown runs
// independently of prompt visibility: dismissing hides the prompt but the
// review still auto-starts unless the user accepts or delegates first.
func (s *Session) countdownTick(ctx context.Context) {
	s.mu.Lock()
	if s.state.CountdownSeconds == nil {
		s.mu.Unlock()
		return
	}
	remaining := *s.state.CountdownSeconds - 1
	if remaining > 0 {
		s.state.CountdownSeconds = &remaining
		s.mu.Unlock()
		return
	}
	s.state.CountdownSeconds = nil
	s.state.PromptVisible = false
	s.state.HasResponded = true
	s.mu.Unlock()

	s.logger.Info("review_auto_started",
		zap.String("user_id", s.userID.String()),
	)
	if _, err := s.launch(ctx, s.userID, models.ReviewModeAutostart); err != nil {
		s.logger.Error("auto_start_launch_failed",
			zap.String("user_id", s.userID.String()),
			zap.Error(err),
		)
	}
}

// Accept is the user choosing to run the review interactively. Idempotent:
// repeat calls keep the terminal state and do not launch a second session.
func (s *Session) Accept(ctx context.Context) (string, error) {
	return s.respond(ctx, models.ReviewModeInteractive)
}

// Delegate hands the review off to run unattended. Idempotent like Accept.
func (s *Session) Delegate(ctx context.Context) (string, error) {
	return s.respond(ctx, models.ReviewModeDelegate)
}

func (s *Session) respond(ctx context.Context, mode models.ReviewMode) (string, error) {
	s.mu.Lock()
	already := s.state.HasResponded
	s.state.PromptVisible = false
	s.state.HasResponded = true
	s.state.CountdownSeconds = nil
	s.lastTouched = s.clock()
	s.mu.Unlock()

	if already {
		return RedirectPath(mode), nil
	}
	return s.launch(ctx, s.userID, mode)
}

// Dismiss hides the prompt without responding. The countdown keeps running:
// a dismissed review still auto-starts later unless the user accepts or
// delegates first.
func (s *Session) Dismiss() {
	s.mu.Lock()
	s.state.PromptVisible = false
	s.lastTouched = s.clock()
	s.mu.Unlock()
}

// ResetForNewDay clears all trigger state at the local-midnight boundary.
func (s *Session) ResetForNewDay() {
	s.mu.Lock()
	s.state = TriggerState{}
	s.lastReason = ""
	s.mu.Unlock()

	s.logger.Info("trigger_state_reset",
		zap.String("user_id", s.userID.String()),
	)
}

// State returns a copy of the trigger state plus display info for the prompt
// endpoint: the resolved effective time and the last decision reason.
func (s *Session) State() (TriggerState, *ResolvedTime, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouched = s.clock()

	state := s.state
	if s.state.CountdownSeconds != nil {
		countdown := *s.state.CountdownSeconds
		state.CountdownSeconds = &countdown
	}
	var resolved *ResolvedTime
	if s.resolved != nil {
		r := *s.resolved
		resolved = &r
	}
	return state, resolved, s.lastReason
}

// IdleSince reports the last time a client touched this session.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// untilMidnight computes the duration to the next local midnight in the
// user's last-known timezone.
func (s *Session) untilMidnight() time.Duration {
	s.mu.Lock()
	loc := s.location
	s.mu.Unlock()

	now := s.clock().In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	d := next.Sub(now)
	if d <= 0 {
		d = time.Minute
	}
	return d
}
