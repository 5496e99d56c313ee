package config

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

// Validate checks the environment inputs the service cannot run without.
// Per-industry template problems are not checked here; they fail only the
// affected industry at load time.
func Validate(c Config) error {
	var missing []string
	if c.GetOrgURL() == "" {
		missing = append(missing, orgURLVar)
	}
	if c.GetClientID() == "" {
		missing = append(missing, clientIDVar)
	}
	if c.GetSigningSecret() == "" {
		missing = append(missing, signingSecretVar)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required environment variables: %s",
			apperrors.ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}
