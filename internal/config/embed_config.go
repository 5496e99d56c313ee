package config

import (
	"os"
	"strings"
	"time"
)

const (
	signingSecretVar  = "SESSION_SIGNING_SECRET"
	dashboardIDVar    = "TABLEAU_DASHBOARD_ID"
	agentIDVar        = "AGENTFORCE_AGENT_ID"
	partnerEnabledVar = "PARTNER_EMBED_ENABLED"
	partnerOriginsVar = "PARTNER_ALLOWED_ORIGINS"
)

type EmbedConfig interface {
	GetSigningSecret() string
	GetEmbedTokenExpiry() time.Duration
	GetDefaultDashboardID() string
	GetDefaultAgentID() string
	GetPartnerEmbedOverride() *bool
	GetPartnerOrigins() []string
}

type Embed struct{}

var _ EmbedConfig = Embed{}

// GetSigningSecret returns the server-held key used to sign embed tokens.
func (Embed) GetSigningSecret() string {
	return GetEnv(signingSecretVar, "")
}

func (Embed) GetEmbedTokenExpiry() time.Duration {
	return 5 * time.Minute
}

func (Embed) GetDefaultDashboardID() string {
	return GetEnv(dashboardIDVar, "")
}

func (Embed) GetDefaultAgentID() string {
	return GetEnv(agentIDVar, "Analytics_and_Visualization")
}

// GetPartnerEmbedOverride reports the deployment's partner-embedding flag.
// nil means the variable is unset and the industry template's value wins.
func (Embed) GetPartnerEmbedOverride() *bool {
	value, ok := os.LookupEnv(partnerEnabledVar)
	if !ok || value == "" {
		return nil
	}
	enabled := strings.EqualFold(value, "true")
	return &enabled
}

func (Embed) GetPartnerOrigins() []string {
	origins := GetEnv(partnerOriginsVar, "")
	if origins == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
