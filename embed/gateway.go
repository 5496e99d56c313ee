package embed

import (
	"context"

	"github.com/jrsteele09/go-analytics-embed/industry"
	"github.com/jrsteele09/go-analytics-embed/sessions"
)

// SessionManager is the lifecycle surface the gateway depends on. The
// gateway never mutates a session directly; it only reads the outcome of
// EnsureValid.
type SessionManager interface {
	EnsureValid(ctx context.Context, sessionID string) (sessions.Session, error)
}

// Gateway issues and validates scoped embed tokens and decides the CSP
// framing policy for iframe delivery.
type Gateway struct {
	signer    *TokenSigner
	sessions  SessionManager
	resolver  *industry.Resolver
	overrides industry.Overrides
}

// NewGateway creates an embedding gateway. The overrides are the
// deployment-level settings merged over each industry template when
// deciding framing policy.
func NewGateway(signer *TokenSigner, sessionManager SessionManager, resolver *industry.Resolver, overrides industry.Overrides) *Gateway {
	return &Gateway{
		signer:    signer,
		sessions:  sessionManager,
		resolver:  resolver,
		overrides: overrides,
	}
}

// IssueToken mints an embed token for the session after making sure its
// upstream access token is valid, refreshing it if necessary.
func (g *Gateway) IssueToken(ctx context.Context, sessionID string, scope Scope) (Token, error) {
	session, err := g.sessions.EnsureValid(ctx, sessionID)
	if err != nil {
		return Token{}, err
	}
	return g.signer.Mint(session.ID, scope)
}

// ValidateToken verifies an embed token and returns the bound session ID.
func (g *Gateway) ValidateToken(tokenValue string, expectedScope Scope) (string, error) {
	return g.signer.Validate(tokenValue, expectedScope)
}

// CSPPolicyFor returns the frame-ancestors header value for an industry.
// Unknown or broken industries fall back to default-deny.
func (g *Gateway) CSPPolicyFor(industryID string) string {
	resolved, err := g.resolver.Resolve(industryID, g.overrides)
	if err != nil {
		return DefaultDenyPolicy
	}
	return CSPPolicy(resolved)
}
