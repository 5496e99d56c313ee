package embed

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jrsteele09/go-analytics-embed/internal/config"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Scope is the surface an embed token authorizes. The set is closed; a
// token is valid only for the scope it was minted with.
type Scope string

const (
	ScopeDashboard Scope = "dashboard"
	ScopeAgent     Scope = "agent"
)

func (s Scope) Valid() bool {
	return s == ScopeDashboard || s == ScopeAgent
}

// Token is a short-lived, scope-bound embedding grant. Tokens are
// stateless signed values; no store or revocation list backs them, the
// short TTL bounds exposure instead.
type Token struct {
	Value     string
	SessionID string
	Scope     Scope
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner mints and validates embed tokens with a server-held HMAC key.
type TokenSigner struct {
	secret []byte
	expiry time.Duration
}

// NewTokenSigner creates a signer keyed by the deployment's signing secret.
func NewTokenSigner(cfg config.EmbedConfig) *TokenSigner {
	return &TokenSigner{
		secret: []byte(cfg.GetSigningSecret()),
		expiry: cfg.GetEmbedTokenExpiry(),
	}
}

// Mint creates a signed embed token bound to a session and scope.
func (s *TokenSigner) Mint(sessionID string, scope Scope) (Token, error) {
	if !scope.Valid() {
		return Token{}, fmt.Errorf("unknown embed scope %q", scope)
	}

	now := NowTimeFunc()
	expiresAt := now.Add(s.expiry)
	claims := jwtlib.MapClaims{
		"sid":   sessionID,
		"scope": string(scope),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   uuid.New().String(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign embed token: %w", err)
	}

	return Token{
		Value:     signed,
		SessionID: sessionID,
		Scope:     scope,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate verifies signature and expiry, then checks the bound scope
// against the expected one. Scope mismatch is rejected even when the
// signature and expiry are otherwise valid.
func (s *TokenSigner) Validate(tokenValue string, expectedScope Scope) (string, error) {
	parsed, err := jwtlib.Parse(tokenValue, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", apperrors.ErrTokenInvalid
	}

	scope, _ := claims["scope"].(string)
	if Scope(scope) != expectedScope {
		return "", fmt.Errorf("%w: token scope %q, expected %q", apperrors.ErrScopeMismatch, scope, expectedScope)
	}

	sessionID, _ := claims["sid"].(string)
	if sessionID == "" {
		return "", apperrors.ErrTokenInvalid
	}
	return sessionID, nil
}
