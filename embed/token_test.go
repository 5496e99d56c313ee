package embed_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-analytics-embed/embed"
	"github.com/jrsteele09/go-analytics-embed/internal/config"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

const (
	testSigningSecret = "embed-signing-secret-for-tests"
	testSessionID     = "session-1"
)

func newTestSigner(t *testing.T) *embed.TokenSigner {
	t.Helper()
	t.Setenv("SESSION_SIGNING_SECRET", testSigningSecret)
	return embed.NewTokenSigner(config.Embed{})
}

func TestMintAndValidate(t *testing.T) {
	signer := newTestSigner(t)

	token, err := signer.Mint(testSessionID, embed.ScopeDashboard)
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)
	require.Equal(t, embed.ScopeDashboard, token.Scope)
	require.WithinDuration(t, token.IssuedAt.Add(5*time.Minute), token.ExpiresAt, time.Second)

	sessionID, err := signer.Validate(token.Value, embed.ScopeDashboard)
	require.NoError(t, err)
	require.Equal(t, testSessionID, sessionID)
}

func TestMintRejectsUnknownScope(t *testing.T) {
	signer := newTestSigner(t)

	_, err := signer.Mint(testSessionID, embed.Scope("admin"))
	require.Error(t, err)
}

func TestValidateScopeMismatch(t *testing.T) {
	signer := newTestSigner(t)

	// A dashboard token is signed correctly but must still be refused on
	// the agent surface.
	token, err := signer.Mint(testSessionID, embed.ScopeDashboard)
	require.NoError(t, err)

	_, err = signer.Validate(token.Value, embed.ScopeAgent)
	require.ErrorIs(t, err, apperrors.ErrScopeMismatch)
}

func TestValidateExpiredToken(t *testing.T) {
	signer := newTestSigner(t)

	token, err := signer.Mint(testSessionID, embed.ScopeAgent)
	require.NoError(t, err)

	embed.NowTimeFunc = func() time.Time { return time.Now().Add(6 * time.Minute) }
	t.Cleanup(func() { embed.NowTimeFunc = time.Now })

	_, err = signer.Validate(token.Value, embed.ScopeAgent)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateWrongKey(t *testing.T) {
	signer := newTestSigner(t)

	token, err := signer.Mint(testSessionID, embed.ScopeDashboard)
	require.NoError(t, err)

	t.Setenv("SESSION_SIGNING_SECRET", "a-different-secret")
	other := embed.NewTokenSigner(config.Embed{})

	_, err = other.Validate(token.Value, embed.ScopeDashboard)
	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	signer := newTestSigner(t)

	claims := jwtlib.MapClaims{
		"sid":   testSessionID,
		"scope": "dashboard",
		"exp":   time.Now().Add(time.Minute).Unix(),
	}
	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = signer.Validate(unsigned, embed.ScopeDashboard)
	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateGarbage(t *testing.T) {
	signer := newTestSigner(t)

	_, err := signer.Validate("not-a-token", embed.ScopeDashboard)
	require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}
