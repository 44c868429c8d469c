package review

import (
	"context"
	"testing"
	"time"

	"github.com/cepho/cepho-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeSource implements every read interface from a fixed fixture.
type fakeSource struct {
	settings   *models.ReviewSettings
	tasks      []*models.Task
	projects   []*models.Project
	patterns   []*models.TimingPattern
	predicted  *models.PredictedTime
	lastReview *models.ReviewSession
	conflict   bool
}

func (f *fakeSource) GetByUserID(_ context.Context, _ uuid.UUID) (*models.ReviewSettings, error) {
	return f.settings, nil
}

func (f *fakeSource) GetOpenByUserID(_ context.Context, _ uuid.UUID) ([]*models.Task, error) {
	return f.tasks, nil
}

func (f *fakeSource) projectSource() fakeProjects { return fakeProjects{f} }
func (f *fakeSource) patternSource() fakePatterns { return fakePatterns{f} }
func (f *fakeSource) historySource() fakeHistory  { return fakeHistory{f} }
func (f *fakeSource) conflictSource() fakeConflicts {
	return fakeConflicts{f}
}

type fakeProjects struct{ f *fakeSource }

func (p fakeProjects) GetByUserID(_ context.Context, _ uuid.UUID) ([]*models.Project, error) {
	return p.f.projects, nil
}

type fakePatterns struct{ f *fakeSource }

func (p fakePatterns) GetByUserID(_ context.Context, _ uuid.UUID) ([]*models.TimingPattern, error) {
	return p.f.patterns, nil
}

func (p fakePatterns) GetPredictedTime(_ context.Context, _ uuid.UUID) (*models.PredictedTime, error) {
	return p.f.predicted, nil
}

type fakeHistory struct{ f *fakeSource }

func (h fakeHistory) GetLatestByUserID(_ context.Context, _ uuid.UUID) (*models.ReviewSession, error) {
	return h.f.lastReview, nil
}

type fakeConflicts struct{ f *fakeSource }

func (c fakeConflicts) HasConflicts(_ context.Context, _ uuid.UUID, _, _ time.Time) (bool, error) {
	return c.f.conflict, nil
}

func (f *fakeSource) source() Source {
	return Source{
		Settings:  f,
		Tasks:     f,
		Projects:  f.projectSource(),
		Patterns:  f.patternSource(),
		History:   f.historySource(),
		Conflicts: f.conflictSource(),
	}
}

// launchRecorder counts launches per mode.
type launchRecorder struct {
	calls []models.ReviewMode
}

func (l *launchRecorder) launch(_ context.Context, _ uuid.UUID, mode models.ReviewMode) (string, error) {
	l.calls = append(l.calls, mode)
	return RedirectPath(mode), nil
}

func pendingTasks() []*models.Task {
	return []*models.Task{
		{Status: models.TaskStatusPending},
		{Status: models.TaskStatusInProgress},
	}
}

func defaultSettings() *models.ReviewSettings {
	return &models.ReviewSettings{
		UserID:            uuid.New(),
		EveningReviewTime: "19:00",
		Timezone:          "UTC",
	}
}

// inWindow is Tuesday 19:05 UTC, inside a 19:00 trigger window.
var inWindow = time.Date(2026, 3, 10, 19, 5, 0, 0, time.UTC)

func newTestSession(t *testing.T, f *fakeSource, now time.Time) (*Session, *launchRecorder) {
	t.Helper()
	recorder := &launchRecorder{}
	s := NewSession(uuid.New(), f.source(), recorder.launch, time.Minute, zap.NewNop())
	s.clock = func() time.Time { return now }
	return s, recorder
}

func TestSessionShowsPromptAndStartsCountdown(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings(), tasks: pendingTasks()}
	s, recorder := newTestSession(t, f, inWindow)

	s.tick(context.Background())

	state, resolved, reason := s.State()
	if !state.PromptVisible {
		t.Fatal("expected prompt to be visible")
	}
	if state.CountdownSeconds == nil || *state.CountdownSeconds != AutoStartDelaySeconds {
		t.Errorf("expected countdown at %d seconds, got %v", AutoStartDelaySeconds, state.CountdownSeconds)
	}
	if reason != ReasonShow {
		t.Errorf("expected reason %q, got %q", ReasonShow, reason)
	}
	if resolved == nil || resolved.Clock() != "19:00" {
		t.Errorf("expected effective time 19:00, got %v", resolved)
	}
	if len(recorder.calls) != 0 {
		t.Errorf("expected no launch on show, got %v", recorder.calls)
	}
}

func TestSessionNotRelevantStaysQuiet(t *testing.T) {
	t.Parallel()

	f := &fakeSource{
		settings: defaultSettings(),
		projects: []*models.Project{{Status: models.ProjectStatusInProgress}},
	}
	s, _ := newTestSession(t, f, inWindow)

	s.tick(context.Background())

	state, _, reason := s.State()
	if state.PromptVisible {
		t.Error("expected prompt hidden when there is nothing to review")
	}
	if reason != ReasonNothingToReview {
		t.Errorf("expected reason %q, got %q", ReasonNothingToReview, reason)
	}
}

func TestSessionConflictDefersAndRetries(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings(), tasks: pendingTasks(), conflict: true}
	s, _ := newTestSession(t, f, inWindow)

	s.tick(context.Background())
	state, _, reason := s.State()
	if state.PromptVisible {
		t.Fatal("expected prompt deferred during a conflict")
	}
	if state.HasResponded {
		t.Fatal("deferral must not mark the user as responded")
	}
	if reason != ReasonConflictDeferred {
		t.Errorf("expected reason %q, got %q", ReasonConflictDeferred, reason)
	}

	// Meeting ends; the next tick inside the window shows the prompt.
	f.conflict = false
	s.tick(context.Background())
	state, _, _ = s.State()
	if !state.PromptVisible {
		t.Error("expected prompt after the conflict cleared")
	}
}

func TestSessionDismissKeepsCountdownRunning(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings(), tasks: pendingTasks()}
	s, recorder := newTestSession(t, f, inWindow)
	ctx := context.Background()

	s.tick(ctx)
	s.Dismiss()

	state, _, _ := s.State()
	if state.PromptVisible {
		t.Fatal("expected prompt hidden after dismiss")
	}
	if state.CountdownSeconds == nil {
		t.Fatal("dismiss must not cancel the countdown")
	}
	if state.HasResponded {
		t.Fatal("dismiss must not count as a response")
	}

	// Run the countdown to expiry; the review auto-starts despite the dismissal.
	for i := 0; i < AutoStartDelaySeconds; i++ {
		s.countdownTick(ctx)
	}

	state, _, _ = s.State()
	if state.CountdownSeconds != nil {
		t.Error("expected countdown cleared after expiry")
	}
	if !state.HasResponded {
		t.Error("expected auto-start to close the day")
	}
	if len(recorder.calls) != 1 || recorder.calls[0] != models.ReviewModeAutostart {
		t.Errorf("expected one autostart launch, got %v", recorder.calls)
	}
}

func TestSessionAcceptCancelsCountdownAndIsIdempotent(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings(), tasks: pendingTasks()}
	s, recorder := newTestSession(t, f, inWindow)
	ctx := context.Background()

	s.tick(ctx)

	path, err := s.Accept(ctx)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if path != "/review" {
		t.Errorf("expected redirect to /review, got %q", path)
	}

	state, _, _ := s.State()
	if state.PromptVisible || state.CountdownSeconds != nil {
		t.Error("expected accept to hide the prompt and cancel the countdown")
	}
	if !state.HasResponded {
		t.Error("expected accept to mark the user as responded")
	}

	// A second accept keeps the terminal state and does not launch again.
	if _, err := s.Accept(ctx); err != nil {
		t.Fatalf("repeat accept failed: %v", err)
	}
	if len(recorder.calls) != 1 {
		t.Errorf("expected exactly one launch, got %d", len(recorder.calls))
	}

	// Countdown ticks after accept are no-ops.
	s.countdownTick(ctx)
	if len(recorder.calls) != 1 {
		t.Errorf("expected no autostart after accept, got %v", recorder.calls)
	}
}

func TestSessionDelegateLaunchesDelegateMode(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings(), tasks: pendingTasks()}
	s, recorder := newTestSession(t, f, inWindow)
	ctx := context.Background()

	s.tick(ctx)

	path, err := s.Delegate(ctx)
	if err != nil {
		t.Fatalf("delegate failed: %v", err)
	}
	if path != "/review?delegate=true" {
		t.Errorf("expected delegate redirect, got %q", path)
	}
	if len(recorder.calls) != 1 || recorder.calls[0] != models.ReviewModeDelegate {
		t.Errorf("expected one delegate launch, got %v", recorder.calls)
	}
}

func TestSessionAutoDelegateSetting(t *testing.T) {
	t.Parallel()

	settings := defaultSettings()
	settings.AutoDelegate = true
	f := &fakeSource{settings: settings, tasks: pendingTasks()}
	s, recorder := newTestSession(t, f, inWindow)

	s.tick(context.Background())

	state, _, _ := s.State()
	if !state.HasResponded {
		t.Error("expected auto-delegate to respond immediately")
	}
	if len(recorder.calls) != 1 || recorder.calls[0] != models.ReviewModeDelegate {
		t.Errorf("expected one delegate launch, got %v", recorder.calls)
	}
}

func TestSessionSingleFirePerDay(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings(), tasks: pendingTasks()}
	s, recorder := newTestSession(t, f, inWindow)
	ctx := context.Background()

	s.tick(ctx)
	if _, err := s.Accept(ctx); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// Later ticks on the same day stay quiet even inside the window.
	s.clock = func() time.Time { return inWindow.Add(20 * time.Minute) }
	s.tick(ctx)
	s.tick(ctx)

	state, _, reason := s.State()
	if state.PromptVisible {
		t.Error("expected no second prompt on the same day")
	}
	if reason != ReasonAlreadyResponded {
		t.Errorf("expected reason %q, got %q", ReasonAlreadyResponded, reason)
	}
	if len(recorder.calls) != 1 {
		t.Errorf("expected one launch for the day, got %d", len(recorder.calls))
	}
}

func TestSessionResetForNewDayReArms(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings(), tasks: pendingTasks()}
	s, recorder := newTestSession(t, f, inWindow)
	ctx := context.Background()

	s.tick(ctx)
	if _, err := s.Accept(ctx); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	s.ResetForNewDay()

	state, _, _ := s.State()
	if state.PromptVisible || state.HasResponded || state.CountdownSeconds != nil {
		t.Fatalf("expected cleared state after reset, got %+v", state)
	}

	// Next evening the prompt fires again.
	s.clock = func() time.Time { return inWindow.AddDate(0, 0, 1) }
	s.tick(ctx)

	state, _, _ = s.State()
	if !state.PromptVisible {
		t.Error("expected prompt the next evening after reset")
	}
	if len(recorder.calls) != 1 {
		t.Errorf("expected still one launch, got %d", len(recorder.calls))
	}
}

func TestSessionSuppressedByReviewCompletedToday(t *testing.T) {
	t.Parallel()

	completed := inWindow.Add(-3 * time.Hour)
	f := &fakeSource{
		settings: defaultSettings(),
		tasks:    pendingTasks(),
		lastReview: &models.ReviewSession{
			Status:      models.ReviewStatusCompleted,
			StartedAt:   completed.Add(-10 * time.Minute),
			CompletedAt: &completed,
		},
	}
	s, _ := newTestSession(t, f, inWindow)

	s.tick(context.Background())

	state, _, reason := s.State()
	if state.PromptVisible {
		t.Error("expected no prompt after a review completed today")
	}
	if reason != ReasonReviewedToday {
		t.Errorf("expected reason %q, got %q", ReasonReviewedToday, reason)
	}
}

func TestSessionAbandonedReviewDoesNotSuppress(t *testing.T) {
	t.Parallel()

	// The user opened a review this morning and walked away. That is not a
	// completed review; the evening prompt still fires.
	abandoned := inWindow.Add(-9 * time.Hour)
	f := &fakeSource{
		settings: defaultSettings(),
		tasks:    pendingTasks(),
		lastReview: &models.ReviewSession{
			Status:      models.ReviewStatusAbandoned,
			StartedAt:   abandoned.Add(-10 * time.Minute),
			CompletedAt: &abandoned,
		},
	}
	s, _ := newTestSession(t, f, inWindow)

	s.tick(context.Background())

	state, _, reason := s.State()
	if !state.PromptVisible {
		t.Error("expected prompt despite an abandoned session earlier today")
	}
	if reason != ReasonShow {
		t.Errorf("expected reason %q, got %q", ReasonShow, reason)
	}
}

func TestSessionStartedReviewDoesNotSuppress(t *testing.T) {
	t.Parallel()

	f := &fakeSource{
		settings: defaultSettings(),
		tasks:    pendingTasks(),
		lastReview: &models.ReviewSession{
			Status:    models.ReviewStatusStarted,
			StartedAt: inWindow.Add(-2 * time.Hour),
		},
	}
	s, _ := newTestSession(t, f, inWindow)

	s.tick(context.Background())

	state, _, _ := s.State()
	if !state.PromptVisible {
		t.Error("expected prompt despite a stuck started session from today")
	}
}

func TestSessionEvaluatesOnUserClock(t *testing.T) {
	t.Parallel()

	settings := defaultSettings()
	settings.Timezone = "Asia/Tokyo"
	f := &fakeSource{settings: settings, tasks: pendingTasks()}

	// 19:05 on the server's UTC clock is 04:05 the next morning in Tokyo,
	// nowhere near the user's 19:00 window.
	s, _ := newTestSession(t, f, inWindow)
	s.tick(context.Background())

	state, _, reason := s.State()
	if state.PromptVisible {
		t.Fatal("expected no prompt at 04:05 on the user's clock")
	}
	if reason != ReasonOutsideWindow {
		t.Errorf("expected reason %q, got %q", ReasonOutsideWindow, reason)
	}

	// 10:05 UTC the same day is 19:05 in Tokyo, inside the window.
	s.clock = func() time.Time {
		return time.Date(2026, 3, 10, 10, 5, 0, 0, time.UTC)
	}
	s.tick(context.Background())

	state, _, reason = s.State()
	if !state.PromptVisible {
		t.Fatal("expected prompt at 19:05 on the user's clock")
	}
	if reason != ReasonShow {
		t.Errorf("expected reason %q, got %q", ReasonShow, reason)
	}
}

func TestSessionMissingSettingsSkipsTick(t *testing.T) {
	t.Parallel()

	f := &fakeSource{tasks: pendingTasks()}
	s, _ := newTestSession(t, f, inWindow)

	s.tick(context.Background())

	state, resolved, _ := s.State()
	if state.PromptVisible || resolved != nil {
		t.Error("expected an untouched session when settings are not provisioned")
	}
}

func TestSessionPatternOverridesWindow(t *testing.T) {
	t.Parallel()

	// Authoritative Tuesday pattern at 20:30 moves the window; 19:05 is now
	// outside it.
	f := &fakeSource{
		settings: defaultSettings(),
		tasks:    pendingTasks(),
		patterns: []*models.TimingPattern{pattern(2, "20:30", 5, 0.1)},
	}
	s, _ := newTestSession(t, f, inWindow)
	ctx := context.Background()

	s.tick(ctx)
	state, resolved, reason := s.State()
	if state.PromptVisible {
		t.Fatal("expected no prompt before the learned time")
	}
	if reason != ReasonOutsideWindow {
		t.Errorf("expected reason %q, got %q", ReasonOutsideWindow, reason)
	}
	if resolved == nil || resolved.Clock() != "20:30" {
		t.Errorf("expected effective time 20:30, got %v", resolved)
	}

	s.clock = func() time.Time {
		return time.Date(2026, 3, 10, 20, 45, 0, 0, time.UTC)
	}
	s.tick(ctx)
	state, _, _ = s.State()
	if !state.PromptVisible {
		t.Error("expected prompt inside the learned window")
	}
}

func TestManagerLifecycle(t *testing.T) {
	t.Parallel()

	f := &fakeSource{settings: defaultSettings()}
	recorder := &launchRecorder{}
	m := NewManager(f.source(), recorder.launch, time.Minute, time.Hour, zap.NewNop())

	userID := uuid.New()
	first := m.EnsureSession(userID)
	second := m.EnsureSession(userID)
	if first != second {
		t.Error("expected the same session for repeat calls")
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 session, got %d", m.Len())
	}

	m.EnsureSession(uuid.New())
	if m.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", m.Len())
	}

	m.Remove(userID)
	if m.Len() != 1 {
		t.Errorf("expected 1 session after removal, got %d", m.Len())
	}

	m.shutdown()
	if m.Len() != 0 {
		t.Errorf("expected no sessions after shutdown, got %d", m.Len())
	}
}
