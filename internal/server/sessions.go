package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "skillvet/internal/errors"
	"skillvet/internal/verify"
)

// sessionIdleTTL is how long a session may sit untouched before the registry
// evicts it.
const sessionIdleTTL = time.Hour

// managedSession pairs a session with the mutex serializing access to it.
type managedSession struct {
	mu       sync.Mutex
	session  *verify.Session
	lastUsed time.Time
}

// SessionRegistry hands out ids for in-flight verification sessions and
// serializes access to each one. A session already being driven by another
// request is reported busy rather than waited on, so an answer can never be
// scored twice.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession
	done     chan struct{}
}

// NewSessionRegistry creates an empty registry and starts its eviction loop.
func NewSessionRegistry() *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]*managedSession),
		done:     make(chan struct{}),
	}
	go r.evictionLoop(10 * time.Minute)
	return r
}

// Add registers a session and returns its id.
func (r *SessionRegistry) Add(s *verify.Session) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = &managedSession{session: s, lastUsed: time.Now()}
	r.mu.Unlock()

	return id
}

// With runs fn holding the session's lock. It returns SESSION_NOT_FOUND for
// unknown ids and SESSION_BUSY when another request holds the lock.
func (r *SessionRegistry) With(id string, fn func(*verify.Session) error) error {
	r.mu.RLock()
	managed, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return apperrors.NewValidationError(
			apperrors.ErrCodeSessionNotFound,
			"no session with this id",
			nil,
		).WithContext("sessionId", id)
	}

	if !managed.mu.TryLock() {
		return apperrors.NewValidationError(
			apperrors.ErrCodeSessionBusy,
			"session is handling another request",
			nil,
		).WithContext("sessionId", id)
	}
	defer managed.mu.Unlock()

	managed.lastUsed = time.Now()
	return fn(managed.session)
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the eviction loop.
func (r *SessionRegistry) Close() {
	close(r.done)
}

func (r *SessionRegistry) evictionLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.done:
			return
		}
	}
}

// evictIdle drops sessions untouched for longer than the idle TTL. Sessions
// currently locked by a request are left alone.
func (r *SessionRegistry) evictIdle() {
	cutoff := time.Now().Add(-sessionIdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, managed := range r.sessions {
		if !managed.mu.TryLock() {
			continue
		}
		stale := managed.lastUsed.Before(cutoff)
		managed.mu.Unlock()
		if stale {
			delete(r.sessions, id)
		}
	}
}
