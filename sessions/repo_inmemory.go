package sessions

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// InMemoryRepo is a thread-safe in-memory implementation of Repo. Expiry
// is checked lazily on Get against the absolute and idle timeouts; a
// periodic sweep is not required for correctness.
type InMemoryRepo struct {
	mu       sync.Mutex
	sessions map[string]Session

	maxAge      time.Duration
	idleTimeout time.Duration
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory session repository.
func NewInMemoryRepo(maxAge, idleTimeout time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		sessions:    make(map[string]Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Upsert creates or updates a session.
func (r *InMemoryRepo) Upsert(sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = sessionID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = NowTimeFunc()
	}
	if session.LastSeenAt.IsZero() {
		session.LastSeenAt = session.CreatedAt
	}
	r.sessions[sessionID] = session
	return nil
}

// Get retrieves a session and touches its idle timer. A session past its
// absolute or idle timeout is removed and reported as expired.
func (r *InMemoryRepo) Get(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, apperrors.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, apperrors.ErrSessionNotFound
	}

	now := NowTimeFunc()
	if now.After(session.CreatedAt.Add(r.maxAge)) || now.After(session.LastSeenAt.Add(r.idleTimeout)) {
		delete(r.sessions, sessionID)
		return Session{}, apperrors.ErrSessionExpired
	}

	session.LastSeenAt = now
	r.sessions[sessionID] = session
	return session, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}
