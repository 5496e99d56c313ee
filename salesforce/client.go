package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-analytics-embed/internal/config"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

// defaultTokenValidity is assumed when the token endpoint omits expires_in.
// Salesforce frequently does; the session manager still needs an expiry to
// drive its refresh-skew check.
const defaultTokenValidity = 2 * time.Hour

// Token carries the upstream token material a session holds.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	InstanceURL  string
	IdentityURL  string
}

// Identity is the upstream's description of the authenticated user. It is
// treated as an opaque reference; only display fields are read.
type Identity struct {
	UserID      string `json:"user_id"`
	OrgID       string `json:"organization_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Client talks to the org's OAuth and embed endpoints. Endpoints are taken
// from the org's OIDC discovery document when available, falling back to
// the conventional /services/oauth2 paths.
type Client struct {
	config     config.SalesforceConfig
	httpClient *http.Client

	endpointMu    sync.RWMutex
	endpoint      *oauth2.Endpoint
	endpointGroup singleflight.Group
}

func NewClient(cfg config.SalesforceConfig) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.GetUpstreamTimeout()},
	}
}

// AuthCodeURL builds the upstream authorization URL for a login attempt.
// Only the S256 challenge method is ever sent.
func (c *Client) AuthCodeURL(ctx context.Context, state, codeChallenge string) string {
	return c.oauthConfig(ctx).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange redeems an authorization code with its PKCE verifier.
func (c *Client) Exchange(ctx context.Context, code, codeVerifier string) (*Token, error) {
	oauth2Token, err := c.oauthConfig(ctx).Exchange(
		c.httpContext(ctx),
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange rejected: %v", apperrors.ErrAuthFailure, err)
	}
	return tokenFromOAuth2(oauth2Token), nil
}

// Refresh exchanges a refresh token for fresh token material. The caller
// is responsible for serialising refreshes per session; concurrent use of
// the same refresh token invalidates it with most providers.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token available")
	}

	source := c.oauthConfig(ctx).TokenSource(c.httpContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	oauth2Token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}

	token := tokenFromOAuth2(oauth2Token)
	if token.RefreshToken == "" {
		// Upstream may omit the refresh token on rotation-less grants
		token.RefreshToken = refreshToken
	}
	return token, nil
}

// Revoke notifies the upstream that a token is no longer in use.
func (c *Client) Revoke(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.GetOrgURL()+"/services/oauth2/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke failed with status %d", resp.StatusCode)
	}
	return nil
}

// FetchIdentity resolves the identity URL returned with the token response.
func (c *Client) FetchIdentity(ctx context.Context, accessToken, identityURL string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identityURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity request failed with status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("parsing identity response: %w", err)
	}
	return &identity, nil
}

// FrontdoorURL mints a single-access frontdoor URL for dashboard embedding.
// When the singleaccess endpoint is unavailable it falls back to the
// classic frontdoor.jsp form.
func (c *Client) FrontdoorURL(ctx context.Context, accessToken, instanceURL string) string {
	fallback := instanceURL + "/secur/frontdoor.jsp?sid=" + url.QueryEscape(accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		instanceURL+"/services/oauth2/singleaccess", nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback
	}

	var frontdoor struct {
		FrontdoorURI string `json:"frontdoor_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&frontdoor); err != nil || frontdoor.FrontdoorURI == "" {
		return fallback
	}
	return frontdoor.FrontdoorURI
}

// AgentRequest forwards a request body to the org's analytics agent
// endpoint and returns the upstream response for the caller to relay.
func (c *Client) AgentRequest(ctx context.Context, accessToken, instanceURL string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		instanceURL+"/services/data/v58.0/analytics/agent", body)
	if err != nil {
		return nil, fmt.Errorf("building agent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) oauthConfig(ctx context.Context) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.config.GetClientID(),
		ClientSecret: c.config.GetClientSecret(),
		Endpoint:     c.endpoints(ctx),
		RedirectURL:  c.config.GetRedirectURL(),
		Scopes:       c.config.GetOAuthScopes(),
	}
}

// endpoints returns the org's authorization and token endpoints, cached
// after the first resolution. Discovery uses the org's well-known OIDC
// configuration; concurrent first calls are deduplicated.
func (c *Client) endpoints(ctx context.Context) oauth2.Endpoint {
	c.endpointMu.RLock()
	if c.endpoint != nil {
		endpoint := *c.endpoint
		c.endpointMu.RUnlock()
		return endpoint
	}
	c.endpointMu.RUnlock()

	result, _, _ := c.endpointGroup.Do("endpoints", func() (interface{}, error) {
		c.endpointMu.RLock()
		if c.endpoint != nil {
			endpoint := *c.endpoint
			c.endpointMu.RUnlock()
			return endpoint, nil
		}
		c.endpointMu.RUnlock()

		endpoint := c.discoverEndpoints(ctx)
		c.endpointMu.Lock()
		c.endpoint = &endpoint
		c.endpointMu.Unlock()
		return endpoint, nil
	})

	return result.(oauth2.Endpoint)
}

func (c *Client) discoverEndpoints(ctx context.Context) oauth2.Endpoint {
	orgURL := c.config.GetOrgURL()

	provider, err := oidc.NewProvider(c.httpContext(ctx), orgURL)
	if err != nil {
		log.Debug().Str("org_url", orgURL).Err(err).
			Msg("OIDC discovery unavailable, using conventional OAuth endpoints")
		return oauth2.Endpoint{
			AuthURL:  orgURL + "/services/oauth2/authorize",
			TokenURL: orgURL + "/services/oauth2/token",
		}
	}
	return provider.Endpoint()
}

// httpContext injects the bounded-timeout client into the oauth2 library.
func (c *Client) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func tokenFromOAuth2(oauth2Token *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		Expiry:       oauth2Token.Expiry,
	}
	if token.Expiry.IsZero() {
		token.Expiry = time.Now().Add(defaultTokenValidity)
	}
	if instanceURL, ok := oauth2Token.Extra("instance_url").(string); ok {
		token.InstanceURL = strings.TrimSuffix(instanceURL, "/")
	}
	if identityURL, ok := oauth2Token.Extra("id").(string); ok {
		token.IdentityURL = identityURL
	}
	return token
}
