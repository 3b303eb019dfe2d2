// Package session tracks the visualizer sessions served over HTTP.
//
// A session pairs an id with a [visualizer.Controller]. At most one session
// is active at a time, mirroring a single visualizer tab: opening a session
// while one exists focuses the existing session instead of creating another.
// Sessions idle for longer than their TTL are closed by Cleanup.
//
//	store := session.NewMemoryStore(newController, session.DefaultTTL)
//	sess, created, err := store.Open(ctx)
//	...
//	store.Delete(ctx, sess.ID)
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/domgraph/pkg/visualizer"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrNoActive is returned when no session has been opened.
	ErrNoActive = errors.New("no active session")
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 30 * time.Minute

// Session is one visualizer.
type Session struct {
	ID         string                 `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	LastSeen   time.Time              `json:"last_seen"`
	Controller *visualizer.Controller `json:"-"`
}

// IsExpired reports whether the session has been idle longer than ttl.
func (s *Session) IsExpired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(s.LastSeen) > ttl
}

// Store holds sessions.
type Store interface {
	// Open returns the active session, creating one when none exists.
	// created reports whether a new session was made.
	Open(ctx context.Context) (sess *Session, created bool, err error)

	// Get returns a session by id and marks it as seen.
	Get(ctx context.Context, id string) (*Session, error)

	// Active returns the active session, or ErrNoActive.
	Active(ctx context.Context) (*Session, error)

	// Delete closes and removes a session. Missing ids are not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup closes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)

	// Close closes every session.
	Close() error
}

// Factory creates the controller for a new session.
type Factory func() *visualizer.Controller

// GenerateID returns a random session id.
func GenerateID() string {
	return uuid.NewString()
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	active   string
	factory  Factory
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore returns an empty store. A nil factory uses visualizer.New
// with default options; ttl <= 0 disables expiry.
func NewMemoryStore(factory Factory, ttl time.Duration) *MemoryStore {
	if factory == nil {
		factory = func() *visualizer.Controller { return visualizer.New() }
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Open(ctx context.Context) (*Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[s.active]; ok {
		sess.LastSeen = s.now()
		return sess, false, nil
	}
	now := s.now()
	sess := &Session{
		ID:         GenerateID(),
		CreatedAt:  now,
		LastSeen:   now,
		Controller: s.factory(),
	}
	s.sessions[sess.ID] = sess
	s.active = sess.ID
	return sess, true, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.LastSeen = s.now()
	return sess, nil
}

func (s *MemoryStore) Active(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[s.active]
	if !ok {
		return nil, ErrNoActive
	}
	sess.LastSeen = s.now()
	return sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		if s.active == id {
			s.active = ""
		}
	}
	s.mu.Unlock()

	if ok {
		sess.Controller.Close()
	}
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	now := s.now()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.IsExpired(s.ttl, now) {
			expired = append(expired, sess)
			delete(s.sessions, id)
			if s.active == id {
				s.active = ""
			}
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Controller.Close()
	}
	return len(expired), nil
}

// Len returns the number of open sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.active = ""
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Controller.Close()
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
