package sessions

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-analytics-embed/internal/config"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
	"github.com/jrsteele09/go-analytics-embed/salesforce"
)

// Upstream is the subset of the platform client the manager needs.
type Upstream interface {
	Refresh(ctx context.Context, refreshToken string) (*salesforce.Token, error)
	Revoke(ctx context.Context, token string) error
}

// Manager owns the session token lifecycle: it decides when a session's
// access token needs refreshing and serialises refreshes per session.
type Manager struct {
	repo     Repo
	upstream Upstream
	config   config.SessionConfig

	// refreshGroup deduplicates concurrent refreshes per session ID.
	// Parallel use of the same refresh token invalidates it with most
	// OAuth providers, so single-flight here is load-bearing.
	refreshGroup singleflight.Group
}

// NewManager creates a new session lifecycle manager.
func NewManager(repo Repo, upstream Upstream, cfg config.SessionConfig) *Manager {
	return &Manager{
		repo:     repo,
		upstream: upstream,
		config:   cfg,
	}
}

// Create stores a newly authenticated session.
func (m *Manager) Create(session Session) error {
	if session.ID == "" {
		return fmt.Errorf("session ID is required")
	}
	return m.repo.Upsert(session.ID, session)
}

// Get retrieves a session without touching its token material.
func (m *Manager) Get(sessionID string) (Session, error) {
	return m.repo.Get(sessionID)
}

// EnsureValid returns the session with a usable access token, refreshing
// it first when its remaining lifetime is within the safety skew window or
// an upstream authorization failure was observed. Concurrent callers for
// the same session share one refresh outcome.
func (m *Manager) EnsureValid(ctx context.Context, sessionID string) (Session, error) {
	session, err := m.repo.Get(sessionID)
	if err != nil {
		return Session{}, err
	}
	if !m.needsRefresh(session) {
		return session, nil
	}

	result, err, _ := m.refreshGroup.Do(sessionID, func() (interface{}, error) {
		// Re-read under the flight: another caller may have finished the
		// refresh between our check and joining the group.
		current, err := m.repo.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if !m.needsRefresh(current) {
			return current, nil
		}
		return m.refresh(ctx, current)
	})
	if err != nil {
		return Session{}, err
	}
	return result.(Session), nil
}

// MarkNeedsReauth records an upstream authorization failure so the next
// EnsureValid attempts a refresh.
func (m *Manager) MarkNeedsReauth(sessionID string) {
	session, err := m.repo.Get(sessionID)
	if err != nil {
		return
	}
	session.NeedsReauth = true
	if err := m.repo.Upsert(sessionID, session); err != nil {
		log.Warn().Str("session_id", sessionID).Err(err).Msg("Failed to flag session for re-auth")
	}
}

// Revoke deletes the session locally and notifies the upstream
// best-effort; upstream failure does not block local revocation.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	session, err := m.repo.Get(sessionID)
	if err == nil && session.AccessToken != "" {
		if err := m.upstream.Revoke(ctx, session.AccessToken); err != nil {
			log.Warn().Str("session_id", sessionID).Err(err).Msg("Upstream token revocation failed")
		}
	}
	return m.repo.Delete(sessionID)
}

func (m *Manager) needsRefresh(session Session) bool {
	if session.NeedsReauth {
		return true
	}
	return !NowTimeFunc().Before(session.TokenExpiry.Add(-m.config.GetRefreshSkew()))
}

// refresh performs the upstream refresh with one bounded retry, persisting
// the outcome either way.
func (m *Manager) refresh(ctx context.Context, session Session) (Session, error) {
	if session.RefreshToken == "" {
		return m.failRefresh(session, fmt.Errorf("session has no refresh token"))
	}

	token, err := m.upstream.Refresh(ctx, session.RefreshToken)
	if err != nil {
		token, err = m.upstream.Refresh(ctx, session.RefreshToken)
	}
	if err != nil {
		return m.failRefresh(session, err)
	}

	session.AccessToken = token.AccessToken
	session.RefreshToken = token.RefreshToken
	session.TokenExpiry = token.Expiry
	if token.InstanceURL != "" {
		session.InstanceURL = token.InstanceURL
	}
	session.NeedsReauth = false

	if err := m.repo.Upsert(session.ID, session); err != nil {
		return Session{}, fmt.Errorf("storing refreshed session: %w", err)
	}

	log.Debug().Str("session_id", session.ID).Time("token_expiry", session.TokenExpiry).
		Msg("Refreshed session access token")
	return session, nil
}

func (m *Manager) failRefresh(session Session, cause error) (Session, error) {
	session.NeedsReauth = true
	if err := m.repo.Upsert(session.ID, session); err != nil {
		log.Warn().Str("session_id", session.ID).Err(err).Msg("Failed to persist re-auth flag")
	}
	log.Warn().Str("session_id", session.ID).Err(cause).Msg("Token refresh failed, session needs re-authentication")
	return Session{}, fmt.Errorf("%w: session %s: %v", apperrors.ErrTokenRefreshFailure, session.ID, cause)
}
