package sessions_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-analytics-embed/internal/config"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
	"github.com/jrsteele09/go-analytics-embed/salesforce"
	"github.com/jrsteele09/go-analytics-embed/sessions"
)

const testSessionID = "session-1"

// fakeUpstream counts Refresh and Revoke calls and can be told to fail the
// first N refresh attempts.
type fakeUpstream struct {
	mu           sync.Mutex
	refreshCalls int
	revokeCalls  int
	failNext     int
	revokeErr    error
	gate         chan struct{}
}

func (f *fakeUpstream) Refresh(_ context.Context, refreshToken string) (*salesforce.Token, error) {
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshCalls++
	if f.failNext > 0 {
		f.failNext--
		return nil, errors.New("upstream unavailable")
	}
	if refreshToken == "" {
		return nil, errors.New("missing refresh token")
	}
	return &salesforce.Token{
		AccessToken:  "refreshed-access-token",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(2 * time.Hour),
		InstanceURL:  "https://instance.example.com",
	}, nil
}

func (f *fakeUpstream) Revoke(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokeCalls++
	return f.revokeErr
}

func (f *fakeUpstream) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func newTestManager(upstream *fakeUpstream) (*sessions.Manager, *sessions.InMemoryRepo) {
	repo := sessions.NewInMemoryRepo(8*time.Hour, 30*time.Minute)
	return sessions.NewManager(repo, upstream, config.Sessions{}), repo
}

func seedSession(t *testing.T, repo *sessions.InMemoryRepo, expiry time.Time) {
	t.Helper()
	require.NoError(t, repo.Upsert(testSessionID, sessions.Session{
		ID:           testSessionID,
		AccessToken:  "original-access-token",
		RefreshToken: "refresh-token-1",
		TokenExpiry:  expiry,
		Industry:     "pharma",
	}))
}

func TestEnsureValidFreshTokenSkipsRefresh(t *testing.T) {
	upstream := &fakeUpstream{}
	manager, repo := newTestManager(upstream)
	seedSession(t, repo, time.Now().Add(time.Hour))

	session, err := manager.EnsureValid(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Equal(t, "original-access-token", session.AccessToken)
	require.Zero(t, upstream.calls())
}

func TestEnsureValidRefreshesWithinSkewWindow(t *testing.T) {
	upstream := &fakeUpstream{}
	manager, repo := newTestManager(upstream)
	seedSession(t, repo, time.Now().Add(30*time.Second)) // inside the 60s skew

	session, err := manager.EnsureValid(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Equal(t, "refreshed-access-token", session.AccessToken)
	require.Equal(t, "refresh-token-1", session.RefreshToken)
	require.Equal(t, "https://instance.example.com", session.InstanceURL)
	require.Equal(t, 1, upstream.calls())

	// The refreshed token must be persisted, not just returned.
	stored, err := repo.Get(testSessionID)
	require.NoError(t, err)
	require.Equal(t, "refreshed-access-token", stored.AccessToken)
}

func TestEnsureValidConcurrentCallersShareOneRefresh(t *testing.T) {
	upstream := &fakeUpstream{gate: make(chan struct{})}
	manager, repo := newTestManager(upstream)
	seedSession(t, repo, time.Now().Add(-time.Minute))

	const callers = 20
	results := make(chan string, callers)
	errs := make(chan error, callers)

	var started sync.WaitGroup
	started.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			started.Done()
			session, err := manager.EnsureValid(context.Background(), testSessionID)
			results <- session.AccessToken
			errs <- err
		}()
	}
	started.Wait()
	close(upstream.gate)

	for i := 0; i < callers; i++ {
		require.NoError(t, <-errs)
		require.Equal(t, "refreshed-access-token", <-results)
	}
	require.Equal(t, 1, upstream.calls())
}

func TestEnsureValidRetriesOnceOnFailure(t *testing.T) {
	upstream := &fakeUpstream{failNext: 1}
	manager, repo := newTestManager(upstream)
	seedSession(t, repo, time.Now().Add(-time.Minute))

	session, err := manager.EnsureValid(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Equal(t, "refreshed-access-token", session.AccessToken)
	require.Equal(t, 2, upstream.calls())
}

func TestEnsureValidRefreshFailureFlagsSession(t *testing.T) {
	upstream := &fakeUpstream{failNext: 2}
	manager, repo := newTestManager(upstream)
	seedSession(t, repo, time.Now().Add(-time.Minute))

	_, err := manager.EnsureValid(context.Background(), testSessionID)
	require.ErrorIs(t, err, apperrors.ErrTokenRefreshFailure)
	require.Equal(t, 2, upstream.calls()) // initial attempt plus one retry

	stored, err := repo.Get(testSessionID)
	require.NoError(t, err)
	require.True(t, stored.NeedsReauth)
	require.Equal(t, "original-access-token", stored.AccessToken)
}

func TestEnsureValidReauthFlagForcesRefresh(t *testing.T) {
	upstream := &fakeUpstream{}
	manager, repo := newTestManager(upstream)
	require.NoError(t, repo.Upsert(testSessionID, sessions.Session{
		ID:           testSessionID,
		AccessToken:  "original-access-token",
		RefreshToken: "refresh-token-1",
		TokenExpiry:  time.Now().Add(time.Hour),
		NeedsReauth:  true,
	}))

	session, err := manager.EnsureValid(context.Background(), testSessionID)
	require.NoError(t, err)
	require.False(t, session.NeedsReauth)
	require.Equal(t, 1, upstream.calls())
}

func TestEnsureValidMissingRefreshToken(t *testing.T) {
	upstream := &fakeUpstream{}
	manager, repo := newTestManager(upstream)
	require.NoError(t, repo.Upsert(testSessionID, sessions.Session{
		ID:          testSessionID,
		AccessToken: "original-access-token",
		TokenExpiry: time.Now().Add(-time.Minute),
	}))

	_, err := manager.EnsureValid(context.Background(), testSessionID)
	require.ErrorIs(t, err, apperrors.ErrTokenRefreshFailure)
	require.Zero(t, upstream.calls())
}

func TestEnsureValidUnknownSession(t *testing.T) {
	manager, _ := newTestManager(&fakeUpstream{})

	_, err := manager.EnsureValid(context.Background(), "nope")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestRevokeDeletesLocallyEvenWhenUpstreamFails(t *testing.T) {
	upstream := &fakeUpstream{revokeErr: errors.New("revocation endpoint down")}
	manager, repo := newTestManager(upstream)
	seedSession(t, repo, time.Now().Add(time.Hour))

	require.NoError(t, manager.Revoke(context.Background(), testSessionID))
	require.Equal(t, 1, upstream.revokeCalls)

	_, err := repo.Get(testSessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
