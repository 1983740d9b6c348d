package editor

import (
	"context"
	"sync"
	"time"
)

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Manager holds open sessions by id and expires idle ones.
type Manager struct {
	deps Deps
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	s       *Session
	touched time.Time
}

// NewManager creates a Manager. A ttl <= 0 uses DefaultSessionTTL.
func NewManager(deps Deps, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		deps:     deps.withDefaults(),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// SetClock replaces the idle clock.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Deps returns the collaborators sessions are opened with.
func (m *Manager) Deps() Deps {
	return m.deps
}

// Open starts and registers a session.
func (m *Manager) Open(ctx context.Context, opts OpenOptions) (*Session, error) {
	s, err := Open(ctx, m.deps, opts)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = &entry{s: s, touched: m.now()}
	m.mu.Unlock()
	m.deps.Logger.Debug("editor session opened", "session", s.ID(), "shell", string(opts.Shell), "pet", opts.PetID)
	return s, nil
}

// Get returns a session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.touched = m.now()
	return e.s, nil
}

// GetOwned is Get restricted to sessions opened for owner.
func (m *Manager) GetOwned(id, owner string) (*Session, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Owner() != owner {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close stops and forgets a session. Its draft is kept.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.s.Close()
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Expire closes sessions idle longer than the ttl and those already done.
// It returns the number closed.
func (m *Manager) Expire() int {
	var stale []*Session

	m.mu.Lock()
	cutoff := m.now().Add(-m.ttl)
	for id, e := range m.sessions {
		if e.touched.Before(cutoff) || e.s.IsDone() {
			stale = append(stale, e.s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.deps.Logger.Debug("editor sessions expired", "count", len(stale))
	}
	return len(stale)
}

// Run expires sessions every interval until ctx is done, then closes the rest.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			m.Expire()
		}
	}
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()
	for _, e := range all {
		e.s.Close()
	}
}
