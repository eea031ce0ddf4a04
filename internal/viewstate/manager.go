package viewstate

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
)

// Options tune session lifetime and preference writes
type Options struct {
	TTL          time.Duration // idle sessions older than this are evicted
	WriteTimeout time.Duration // per preference write
}

// Manager holds the view sessions of all browsers, keyed by cookie id
// ⭐ SSOT: view sessions are created and evicted only here
type Manager struct {
	store   PreferenceStore
	opts    Options
	logger  *logger.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	writes  sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session registry
func NewManager(store PreferenceStore, opts Options, log *logger.Logger, rec *metrics.Recorder) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Manager{
		store:    store,
		opts:     opts,
		logger:   log.WithField("component", "viewstate"),
		metrics:  rec,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id when it exists and belongs to user. A
// session created for a different user (or before sign-in) is dropped.
func (m *Manager) Get(id string, user *auth.Session) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if token(s.user) != token(user) {
		m.Remove(id)
		return nil, false
	}
	return s, true
}

// GetOrCreate returns the session for id, creating a fresh one with a new
// id when none matches
func (m *Manager) GetOrCreate(id string, user *auth.Session) *Session {
	if s, ok := m.Get(id, user); ok {
		return s
	}
	return m.Create(user)
}

// Create registers a new visible session for user
func (m *Manager) Create(user *auth.Session) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		user:         user,
		store:        m.store,
		logger:       m.logger,
		metrics:      m.metrics,
		writeTimeout: m.opts.WriteTimeout,
		now:          m.now,
		writes:       &m.writes,
		visible:      true,
		lastSeen:     m.now(),
	}
	s.logger = m.logger.WithField("view_session", s.ID)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(n)
	return s
}

// Remove drops a session
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(n)
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// AnyVisible reports whether some session has its page in the foreground
func (m *Manager) AnyVisible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.Visible() {
			return true
		}
	}
	return false
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.opts.TTL)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(n)
	if removed > 0 {
		m.logger.WithFields(map[string]interface{}{
			"removed":   removed,
			"remaining": n,
		}).Info("Idle view sessions evicted")
	}
	return removed
}

// Wait blocks until every pending preference write has finished
func (m *Manager) Wait() {
	m.writes.Wait()
}

func token(s *auth.Session) string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}
