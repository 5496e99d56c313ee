package embed

import (
	"strings"

	"github.com/jrsteele09/go-analytics-embed/industry"
)

// DefaultDenyPolicy blocks all framing.
const DefaultDenyPolicy = "frame-ancestors 'none'"

// CSPPolicy builds the frame-ancestors directive for an industry's
// resolved configuration. Partner embedding must be enabled and at least
// one partner origin configured; anything else is default-deny.
func CSPPolicy(resolved industry.ResolvedConfig) string {
	if !resolved.PartnerEmbed || len(resolved.PartnerOrigins) == 0 {
		return DefaultDenyPolicy
	}
	return "frame-ancestors " + strings.Join(resolved.PartnerOrigins, " ")
}
