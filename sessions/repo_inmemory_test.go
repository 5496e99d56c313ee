package sessions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
	"github.com/jrsteele09/go-analytics-embed/sessions"
)

func withFrozenClock(t *testing.T) func(time.Time) {
	t.Helper()
	current := time.Now()
	sessions.NowTimeFunc = func() time.Time { return current }
	t.Cleanup(func() { sessions.NowTimeFunc = time.Now })
	return func(at time.Time) { current = at }
}

func TestRepoGetTouchesIdleTimer(t *testing.T) {
	setNow := withFrozenClock(t)
	start := sessions.NowTimeFunc()

	repo := sessions.NewInMemoryRepo(8*time.Hour, 30*time.Minute)
	require.NoError(t, repo.Upsert(testSessionID, sessions.Session{ID: testSessionID}))

	// Keep the session active across what would otherwise be two idle
	// timeouts.
	setNow(start.Add(25 * time.Minute))
	_, err := repo.Get(testSessionID)
	require.NoError(t, err)

	setNow(start.Add(50 * time.Minute))
	session, err := repo.Get(testSessionID)
	require.NoError(t, err)
	require.Equal(t, start.Add(50*time.Minute), session.LastSeenAt)
}

func TestRepoIdleTimeout(t *testing.T) {
	setNow := withFrozenClock(t)
	start := sessions.NowTimeFunc()

	repo := sessions.NewInMemoryRepo(8*time.Hour, 30*time.Minute)
	require.NoError(t, repo.Upsert(testSessionID, sessions.Session{ID: testSessionID}))

	setNow(start.Add(31 * time.Minute))
	_, err := repo.Get(testSessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)

	// Expired sessions are removed, so the next lookup reports not-found.
	_, err = repo.Get(testSessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestRepoAbsoluteTimeout(t *testing.T) {
	setNow := withFrozenClock(t)
	start := sessions.NowTimeFunc()

	repo := sessions.NewInMemoryRepo(8*time.Hour, 30*time.Minute)
	require.NoError(t, repo.Upsert(testSessionID, sessions.Session{ID: testSessionID}))

	// Touch the session every 20 minutes; the absolute cap still wins.
	for elapsed := 20 * time.Minute; elapsed < 8*time.Hour; elapsed += 20 * time.Minute {
		setNow(start.Add(elapsed))
		_, err := repo.Get(testSessionID)
		require.NoError(t, err)
	}

	setNow(start.Add(8*time.Hour + time.Minute))
	_, err := repo.Get(testSessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestRepoDeleteIsIdempotent(t *testing.T) {
	repo := sessions.NewInMemoryRepo(8*time.Hour, 30*time.Minute)
	require.NoError(t, repo.Upsert(testSessionID, sessions.Session{ID: testSessionID}))

	require.NoError(t, repo.Delete(testSessionID))
	require.NoError(t, repo.Delete(testSessionID))

	_, err := repo.Get(testSessionID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
