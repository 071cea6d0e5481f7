package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

var logger = log15.New("module", "session")

// Session IDs double as file names in the sessions directory.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Manager keeps trial sessions in memory, keyed by lower-cased ID, and
// writes them through to an optional persistence layer.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a memory-only session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// NewManagerWithPersistence creates a session manager that saves every
// created or touched session through persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	m := NewManager()
	m.persistence = persistence
	return m
}

// ValidateSessionID reports whether id can be used as a session key
func ValidateSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

func key(id string) string {
	return strings.ToLower(id)
}

// Create starts a new trial for config. An empty id picks a random one.
func (m *Manager) Create(id string, config *engine.MazeConfig) (*service.Session, error) {
	if id != "" {
		if err := ValidateSessionID(id); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
		for m.sessionExists(id) {
			id = m.generateSessionID()
		}
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = session
	logger.Debug("session created", "session", id, "maze", config.Name, "dim", config.Dim)

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			logger.Warn("failed to persist new session", "session", id, "err", err)
		}
	}

	return session, nil
}

// Get returns the session with id, loading it from persistence when it
// is not cached
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if ok {
		return session, nil
	}

	if m.persistence == nil || ValidateSessionID(id) != nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile.
	if cached, ok := m.sessions[key(id)]; ok {
		return cached, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.MazeConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return session, err
}

// List returns all cached sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and from persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))

	if m.persistence != nil && ValidateSessionID(id) == nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session from the cache, leaving its file
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed touches a session and saves it
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			logger.Warn("failed to persist session after access update", "session", id, "err", err)
		}
	}
	return nil
}

// Save writes a cached session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge.
// Persisted copies stay on disk and are reloaded on the next Get.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			removed++
		}
	}
	return removed
}

// StartCleanup runs CleanupExpiredSessions every interval until ctx is done.
// The returned channel is closed once the loop has exited.
func (m *Manager) StartCleanup(ctx context.Context, interval, maxAge time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.CleanupExpiredSessions(maxAge); n > 0 {
					logger.Info("evicted idle sessions", "count", n, "max_age", maxAge)
				}
			}
		}
	}()
	return done
}

// Count returns the number of cached sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a random 4-character hex ID
func (m *Manager) generateSessionID() string {
	b := make([]byte, 2)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (m *Manager) sessionExists(id string) bool {
	_, ok := m.sessions[key(id)]
	return ok
}

// LoadPersistedSessions caches every session found in persistence
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if m.sessionExists(id) {
			continue
		}
		session, err := m.persistence.Load(id)
		if err != nil {
			logger.Warn("failed to load persisted session", "session", id, "err", err)
			continue
		}
		m.sessions[key(id)] = session
		loaded++
	}

	if loaded > 0 {
		logger.Info("loaded persisted sessions", "count", loaded)
	}
	return nil
}

// SaveAllSessions writes every cached session to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessions := m.List()
	failed := 0
	for _, session := range sessions {
		if err := m.persistence.Save(session); err != nil {
			logger.Warn("failed to save session", "session", session.ID, "err", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}
