package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager keeps one running Session per authenticated user. Sessions are
// created lazily on first contact and reaped after an idle TTL so the server
// does not tick forever for users who logged out.
type Manager struct {
	source   Source
	launch   LaunchFunc
	logger   *zap.Logger
	interval time.Duration
	idleTTL  time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*managedSession
}

type managedSession struct {
	session *Session
	cancel  context.CancelFunc
}

// NewManager creates a session manager.
func NewManager(source Source, launch LaunchFunc, interval, idleTTL time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		source:   source,
		launch:   launch,
		logger:   logger,
		interval: interval,
		idleTTL:  idleTTL,
		sessions: make(map[uuid.UUID]*managedSession),
	}
}

// EnsureSession returns the user's session, starting one if needed. The
// session's timers run on a background context detached from the request so
// the evaluator keeps ticking between requests.
func (m *Manager) EnsureSession(userID uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[userID]; ok {
		return existing.session
	}

	session := NewSession(userID, m.source, m.launch, m.interval, m.logger)
	ctx, cancel := context.WithCancel(context.Background())
	m.sessions[userID] = &managedSession{session: session, cancel: cancel}
	go session.Run(ctx)

	m.logger.Info("trigger_session_started",
		zap.String("user_id", userID.String()),
	)
	return session
}

// Remove stops and forgets a user's session, if any.
func (m *Manager) Remove(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[userID]; ok {
		existing.cancel()
		delete(m.sessions, userID)
	}
}

// Len reports the number of running sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until ctx is cancelled, then stops every session.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, managed := range m.sessions {
		if managed.session.IdleSince().Before(cutoff) {
			managed.cancel()
			delete(m.sessions, userID)
			m.logger.Info("trigger_session_reaped",
				zap.String("user_id", userID.String()),
			)
		}
	}
}

func (m *Manager) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, managed := range m.sessions {
		managed.cancel()
		delete(m.sessions, userID)
	}
}
