package config

import (
	"strings"
	"time"
)

const (
	orgURLVar       = "SALESFORCE_ORG_URL"
	clientIDVar     = "SALESFORCE_CLIENT_ID"
	clientSecretVar = "SALESFORCE_CLIENT_SECRET"
	oauthScopesVar  = "SALESFORCE_OAUTH_SCOPES"
)

// defaultScopes covers API access, dashboard embedding and offline refresh.
const defaultScopes = "api web refresh_token offline_access lightning wave_api"

type SalesforceConfig interface {
	GetOrgURL() string
	GetClientID() string
	GetClientSecret() string
	GetOAuthScopes() []string
	GetRedirectURL() string
	GetUpstreamTimeout() time.Duration
}

type Salesforce struct{}

var _ SalesforceConfig = Salesforce{}

func (Salesforce) GetOrgURL() string {
	return strings.TrimSuffix(GetEnv(orgURLVar, ""), "/")
}

func (Salesforce) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

// GetClientSecret is empty for public-client PKCE deployments. When set, the
// deployment uses confidential-client PKCE and the secret is sent on exchange.
func (Salesforce) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

func (Salesforce) GetOAuthScopes() []string {
	return strings.Fields(GetEnv(oauthScopesVar, defaultScopes))
}

func (s Salesforce) GetRedirectURL() string {
	return EnvVars{}.GetAppURL() + "/callback"
}

func (Salesforce) GetUpstreamTimeout() time.Duration {
	return 30 * time.Second
}
