package services

import (
	"context"
	"sync"
	"time"

	"planner-bff/models"
	"planner-bff/repository"
	"planner-bff/utils/logger"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "planner_live_sessions",
	Help: "BFF sessions currently held in memory.",
})

// SessionManager is the registry of live sessions. Sessions missing from memory are
// rehydrated from client storage when the backend still accepts their cookies.
type SessionManager struct {
	newBackend   BackendFactory
	storageRepo  repository.StorageRepositoryInterface
	fetchTimeout time.Duration
	logger       logger.Logger

	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
}

// defaultFetchTimeout bounds the background positions fetch when no backend timeout is set
const defaultFetchTimeout = 10 * time.Second

func NewSessionManager(cfg *models.Config, newBackend BackendFactory, storageRepo repository.StorageRepositoryInterface, logger logger.Logger) *SessionManager {
	fetchTimeout := cfg.BackendTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &SessionManager{
		newBackend:   newBackend,
		storageRepo:  storageRepo,
		fetchTimeout: fetchTimeout,
		logger:       logger,
		sessions: expirable.NewLRU[string, *Session](cfg.SessionCacheSize, func(string, *Session) {
			liveSessions.Dec()
		}, cfg.SessionTTL),
	}
}

// Create registers a new anonymous session
func (m *SessionManager) Create() (*Session, error) {
	session, err := NewSession(uuid.New().String(), m.newBackend, m.storageRepo, m.logger)
	if err != nil {
		return nil, err
	}
	m.add(session)
	return session, nil
}

// Resume returns the live session or rebuilds it from client storage
func (m *SessionManager) Resume(ctx context.Context, sessionID string) (*Session, bool) {
	if session, ok := m.touch(sessionID); ok {
		return session, true
	}

	session, err := NewSession(sessionID, m.newBackend, m.storageRepo, m.logger)
	if err != nil {
		m.logger.Errorf("Failed to build session for rehydration: %v", err)
		return nil, false
	}

	restored, err := session.Auth.RestoreBackendCookies(ctx)
	if err != nil {
		m.logger.Warnf("Failed to read stored backend cookies: %v", err)
		return nil, false
	}
	if !restored {
		return nil, false
	}
	if err := session.Positions.Restore(ctx); err != nil {
		m.logger.Warnf("Failed to restore persisted context: %v", err)
	}
	if !session.Auth.CheckAuthStatus(ctx) {
		return nil, false
	}

	m.mu.Lock()
	if existing, ok := m.sessions.Peek(sessionID); ok {
		m.mu.Unlock()
		return existing, true
	}
	m.insertLocked(session)
	m.mu.Unlock()

	m.logger.Infof("Rehydrated session %s", shortID(sessionID))
	go m.warmPositions(session)
	return session, true
}

// Remove drops a session from memory
func (m *SessionManager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions.Remove(sessionID)
}

// Sessions lists the live sessions
func (m *SessionManager) Sessions() []*Session {
	return m.sessions.Values()
}

func (m *SessionManager) Len() int {
	return m.sessions.Len()
}

func (m *SessionManager) add(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLocked(session)
}

// insertLocked stores a session under its id. An entry already under that id, expired or
// not, is removed first so the eviction callback keeps the live gauge balanced.
func (m *SessionManager) insertLocked(session *Session) {
	m.sessions.Remove(session.ID)
	liveSessions.Inc()
	m.sessions.Add(session.ID, session)
}

// touch returns a live session and refreshes its TTL
func (m *SessionManager) touch(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions.Get(sessionID)
	if ok {
		m.sessions.Add(sessionID, session)
	}
	return session, ok
}

// warmPositions completes a rehydrated context so guards awaiting it can proceed
func (m *SessionManager) warmPositions(session *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), m.fetchTimeout)
	defer cancel()
	if err := session.Positions.FetchPositions(ctx); err != nil {
		m.logger.Warnf("Background positions fetch failed for session %s: %v", shortID(session.ID), err)
	}
}
