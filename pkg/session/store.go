package session

import (
	"sync"
	"time"
)

// Store holds live sessions by ID. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int

	now func() time.Time
}

// NewStore creates a store. A non-positive ttl keeps sessions until they are
// deleted; a non-positive max removes the session limit.
func NewStore(ttl time.Duration, max int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// Create adds a new session. When the store is full it first drops expired
// sessions, then fails with ErrLimit.
func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		s.cleanupLocked()
		if len(s.sessions) >= s.max {
			return nil, ErrLimit
		}
	}
	sess := New()
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns the session with the given ID. Expired sessions are removed
// and reported as ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired(s.ttl, s.now()) {
		s.Delete(id)
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown ID returns ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Cleanup removes expired sessions and returns how many were dropped.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked()
}

func (s *Store) cleanupLocked() int {
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if sess.IsExpired(s.ttl, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of sessions, expired ones included until the next
// Cleanup.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
