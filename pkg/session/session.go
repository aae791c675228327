// Package session keeps interactive plotting sessions in memory.
//
// A [Session] owns one expression engine and one viewport, which is all the
// state a client builds up while editing functions and navigating a plot.
// Sessions are never persisted: they live in a [Store] until they are
// deleted or sit idle longer than the store's TTL.
//
// # Usage
//
//	store := session.NewStore(session.DefaultTTL, session.DefaultMaxSessions)
//	sess, err := store.Create()
//	if err != nil {
//	    return err
//	}
//	err = sess.Do(func(eng *expr.Engine, v *viewport.Viewport) error {
//	    eng.SetExpression(0, "sin(x)")
//	    return v.Zoom(2, 0, 0)
//	})
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/viewport"
)

// Default limits.
const (
	// DefaultTTL is how long a session may sit idle before it is dropped.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxSessions bounds the number of live sessions in a store.
	DefaultMaxSessions = 1000
)

var (
	// ErrNotFound is returned for unknown, deleted and expired sessions.
	ErrNotFound = ferrors.New(ferrors.ErrCodeSessionNotFound, "session not found")

	// ErrLimit is returned by Create when the store is full.
	ErrLimit = errors.New("too many sessions")
)

// Session is one client's engine and viewport. All access goes through Do,
// which serialises callers.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	lastUsed time.Time
	engine   *expr.Engine
	view     *viewport.Viewport
}

// New creates a session with an empty engine and the default viewport.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastUsed:  now,
		engine:    expr.NewEngine(),
		view:      viewport.Default(),
	}
}

// Do runs fn with exclusive access to the session state and marks the
// session as used.
func (s *Session) Do(fn func(eng *expr.Engine, v *viewport.Viewport) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return fn(s.engine, s.view)
}

// LastUsed returns the time of the last Do call.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// IsExpired reports whether the session has been idle longer than ttl.
// A non-positive ttl never expires.
func (s *Session) IsExpired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(s.LastUsed()) > ttl
}
