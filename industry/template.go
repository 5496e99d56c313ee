package industry

import "encoding/json"

// Template is one industry vertical's configuration preset. The four
// top-level keys are all required; everything below them is validated
// shallowly (see Resolver.Load).
type Template struct {
	Industry   string
	Meta       TemplateMeta
	Dashboard  DashboardConfig
	Agentforce AgentforceConfig
	DataModel  map[string]json.RawMessage
}

// TemplateMeta holds the display metadata under the "template" key.
type TemplateMeta struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	PartnerEmbed bool   `json:"partnerEmbed"`
	Compliance   bool   `json:"compliance"`
}

type DashboardConfig struct {
	ID      string            `json:"id"`
	Filters map[string]string `json:"filters"`
}

type AgentforceConfig struct {
	AgentID string   `json:"agentId"`
	Topics  []string `json:"topics"`
}

// Overrides are deployment-level settings merged over a template.
// Zero-valued fields leave the template's value in place; pointer fields
// distinguish "not set" from an explicit false.
type Overrides struct {
	DashboardID    string
	AgentID        string
	PartnerEmbed   *bool
	PartnerOrigins []string
	Compliance     *bool
}

// ResolvedConfig is the effective configuration for an industry after
// override-wins merging. It feeds the embedding gateway's scoping decisions.
type ResolvedConfig struct {
	Industry       string
	DisplayName    string
	DashboardID    string
	Filters        map[string]string
	AgentID        string
	Topics         []string
	PartnerEmbed   bool
	PartnerOrigins []string
	Compliance     bool
	DataModel      map[string]json.RawMessage
}
