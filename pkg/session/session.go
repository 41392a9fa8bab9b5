// Package session keeps one layer store per browser session.
//
// Sessions live in memory only and vanish on restart. Each session owns a
// [stack.Store] and a mutex; HTTP handlers run concurrently, so every access
// to the store goes through [Session.Do].
//
// # Usage
//
//	m := session.NewManager(session.WithTTL(30*time.Minute))
//	sess, created, err := m.GetOrCreate(cookieID)
//	sess.Do(func(st *stack.Store) { st.Dispatch(stack.AddTop) })
//
// Expired sessions are dropped lazily on lookup and in bulk by [Manager.Cleanup],
// which [Manager.Run] calls periodically.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// Default limits.
const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxSessions bounds memory use.
	DefaultMaxSessions = 1000

	// DefaultCleanupInterval is how often Run sweeps expired sessions.
	DefaultCleanupInterval = time.Minute
)

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Session is one visitor's state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	store    *stack.Store
}

// Do runs fn with exclusive access to the session's store.
func (s *Session) Do(fn func(st *stack.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

// State returns the current stack.
func (s *Session) State() stack.Stack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.State()
}

// LastSeen returns the time of the last lookup.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastSeen()) > ttl
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets the idle lifetime of sessions.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.max = n
		}
	}
}

// WithStoreOptions configures the store created for every new session.
func WithStoreOptions(opts ...stack.Option) Option {
	return func(m *Manager) { m.storeOpts = opts }
}

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// Manager is a concurrency-safe registry of sessions.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	max       int
	storeOpts []stack.Option
	clock     clockwork.Clock
}

// NewManager creates an empty registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
		max:      DefaultMaxSessions,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the idle lifetime of sessions.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Len returns the number of sessions, including expired ones not yet swept.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Create starts a new session. When the registry is full, expired sessions
// are swept first; if it is still full, TOO_MANY_SESSIONS is returned.
func (m *Manager) Create() (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if len(m.sessions) >= m.max {
		m.sweepLocked(now)
		if len(m.sessions) >= m.max {
			return nil, errors.New(errors.ErrCodeTooManySessions, "session limit of %d reached", m.max)
		}
	}

	s := &Session{
		ID:        id,
		CreatedAt: now,
		lastSeen:  now,
		store:     stack.NewStore(m.storeOpts...),
	}
	m.sessions[id] = s
	return s, nil
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session not found")
	}
	now := m.clock.Now()
	if s.expired(now, m.ttl) {
		delete(m.sessions, id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session expired")
	}
	s.touch(now)
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is empty,
// malformed, unknown or expired. created reports which case happened.
func (m *Manager) GetOrCreate(id string) (s *Session, created bool, err error) {
	if id != "" {
		if s, err := m.Get(id); err == nil {
			return s, false, nil
		}
	}
	s, err = m.Create()
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Cleanup removes expired sessions and returns how many were removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.clock.Now())
}

func (m *Manager) sweepLocked(now time.Time) int {
	n := 0
	for id, s := range m.sessions {
		if s.expired(now, m.ttl) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run calls Cleanup every interval until ctx is done. onSweep, if not nil,
// receives the number of removed sessions after each sweep.
func (m *Manager) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			n := m.Cleanup()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}
