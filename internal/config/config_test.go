package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-analytics-embed/internal/config"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

func setRequiredVars(t *testing.T) {
	t.Helper()
	t.Setenv("SALESFORCE_ORG_URL", "https://org.example.com")
	t.Setenv("SALESFORCE_CLIENT_ID", "client-1")
	t.Setenv("SESSION_SIGNING_SECRET", "secret-1")
}

func TestValidate(t *testing.T) {
	setRequiredVars(t)
	require.NoError(t, config.Validate(config.New()))
}

func TestValidateMissingVars(t *testing.T) {
	setRequiredVars(t)
	t.Setenv("SALESFORCE_ORG_URL", "")
	t.Setenv("SESSION_SIGNING_SECRET", "")

	err := config.Validate(config.New())
	require.ErrorIs(t, err, apperrors.ErrConfig)
	require.Contains(t, err.Error(), "SALESFORCE_ORG_URL")
	require.Contains(t, err.Error(), "SESSION_SIGNING_SECRET")
}

func TestPortNormalisation(t *testing.T) {
	c := config.New()
	require.Equal(t, ":8080", c.GetPort())

	t.Setenv("PORT", "9090")
	require.Equal(t, ":9090", c.GetPort())

	t.Setenv("PORT", ":7070")
	require.Equal(t, ":7070", c.GetPort())
}

func TestOrgURLTrimsTrailingSlash(t *testing.T) {
	t.Setenv("SALESFORCE_ORG_URL", "https://org.example.com/")
	require.Equal(t, "https://org.example.com", config.New().GetOrgURL())
}

func TestDefaultScopesIncludeRefresh(t *testing.T) {
	scopes := config.New().GetOAuthScopes()
	require.Contains(t, scopes, "refresh_token")
	require.Contains(t, scopes, "offline_access")
	require.Contains(t, scopes, "wave_api")
}

func TestRedirectURLFollowsAppURL(t *testing.T) {
	t.Setenv("APP_URL", "https://embed.example.com")
	require.Equal(t, "https://embed.example.com/callback", config.New().GetRedirectURL())
}

func TestPartnerEmbedOverride(t *testing.T) {
	c := config.New()
	require.Nil(t, c.GetPartnerEmbedOverride())

	t.Setenv("PARTNER_EMBED_ENABLED", "true")
	override := c.GetPartnerEmbedOverride()
	require.NotNil(t, override)
	require.True(t, *override)

	t.Setenv("PARTNER_EMBED_ENABLED", "false")
	override = c.GetPartnerEmbedOverride()
	require.NotNil(t, override)
	require.False(t, *override)
}

func TestPartnerOrigins(t *testing.T) {
	c := config.New()
	require.Nil(t, c.GetPartnerOrigins())

	t.Setenv("PARTNER_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, c.GetPartnerOrigins())
}

func TestSessionDurations(t *testing.T) {
	c := config.New()
	require.Equal(t, 10*time.Minute, c.GetAuthRequestExpiry())
	require.Equal(t, 8*time.Hour, c.GetMaxSessionAge())
	require.Equal(t, 30*time.Minute, c.GetSessionIdleTimeout())
	require.Equal(t, 60*time.Second, c.GetRefreshSkew())
}
