package industry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

// requiredKeys are the top-level keys every template file must carry.
var requiredKeys = []string{"template", "dashboard", "agentforce", "dataModel"}

var industryIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Resolver loads per-industry template files and merges deployment
// overrides over them. Templates are immutable deployment artifacts, so
// successful loads are cached for the lifetime of the process.
type Resolver struct {
	source fs.FS

	mu    sync.RWMutex
	cache map[string]Template
}

func NewResolver(source fs.FS) *Resolver {
	return &Resolver{
		source: source,
		cache:  make(map[string]Template),
	}
}

// Load reads and validates the template for one industry. Validation is
// presence-only on the four required top-level keys; nested field
// correctness is intentionally not verified here.
func (r *Resolver) Load(industryID string) (Template, error) {
	if !industryIDPattern.MatchString(industryID) {
		return Template{}, fmt.Errorf("%w: %q", apperrors.ErrTemplateNotFound, industryID)
	}

	r.mu.RLock()
	cached, ok := r.cache[industryID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	data, err := fs.ReadFile(r.source, industryID+".json")
	if err != nil {
		return Template{}, fmt.Errorf("%w: %q", apperrors.ErrTemplateNotFound, industryID)
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return Template{}, fmt.Errorf("%w: %q: %v", apperrors.ErrTemplateInvalid, industryID, err)
	}
	for _, key := range requiredKeys {
		if _, ok := sections[key]; !ok {
			return Template{}, fmt.Errorf("%w: %q is missing required key %q", apperrors.ErrTemplateInvalid, industryID, key)
		}
	}

	tmpl := Template{Industry: industryID}
	if err := json.Unmarshal(sections["template"], &tmpl.Meta); err != nil {
		return Template{}, fmt.Errorf("%w: %q: template: %v", apperrors.ErrTemplateInvalid, industryID, err)
	}
	if err := json.Unmarshal(sections["dashboard"], &tmpl.Dashboard); err != nil {
		return Template{}, fmt.Errorf("%w: %q: dashboard: %v", apperrors.ErrTemplateInvalid, industryID, err)
	}
	if err := json.Unmarshal(sections["agentforce"], &tmpl.Agentforce); err != nil {
		return Template{}, fmt.Errorf("%w: %q: agentforce: %v", apperrors.ErrTemplateInvalid, industryID, err)
	}
	if err := json.Unmarshal(sections["dataModel"], &tmpl.DataModel); err != nil {
		return Template{}, fmt.Errorf("%w: %q: dataModel: %v", apperrors.ErrTemplateInvalid, industryID, err)
	}

	r.mu.Lock()
	r.cache[industryID] = tmpl
	r.mu.Unlock()

	return tmpl, nil
}

// Resolve merges overrides over the industry's template, field by field,
// with override-wins precedence. Fields absent from the overrides keep the
// template's value.
func (r *Resolver) Resolve(industryID string, overrides Overrides) (ResolvedConfig, error) {
	tmpl, err := r.Load(industryID)
	if err != nil {
		return ResolvedConfig{}, err
	}

	resolved := ResolvedConfig{
		Industry:     tmpl.Industry,
		DisplayName:  tmpl.Meta.DisplayName,
		DashboardID:  tmpl.Dashboard.ID,
		Filters:      tmpl.Dashboard.Filters,
		AgentID:      tmpl.Agentforce.AgentID,
		Topics:       tmpl.Agentforce.Topics,
		PartnerEmbed: tmpl.Meta.PartnerEmbed,
		Compliance:   tmpl.Meta.Compliance,
		DataModel:    tmpl.DataModel,
	}

	if overrides.DashboardID != "" {
		resolved.DashboardID = overrides.DashboardID
	}
	if overrides.AgentID != "" {
		resolved.AgentID = overrides.AgentID
	}
	if overrides.PartnerEmbed != nil {
		resolved.PartnerEmbed = *overrides.PartnerEmbed
	}
	if len(overrides.PartnerOrigins) > 0 {
		resolved.PartnerOrigins = overrides.PartnerOrigins
	}
	if overrides.Compliance != nil {
		resolved.Compliance = *overrides.Compliance
	}

	return resolved, nil
}

// List enumerates the configured industry IDs. It is used for discovery
// and startup validation, not runtime gating.
func (r *Resolver) List() ([]string, error) {
	entries, err := fs.Glob(r.source, "*.json")
	if err != nil {
		return nil, fmt.Errorf("listing industry templates: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		id := strings.TrimSuffix(entry, ".json")
		if industryIDPattern.MatchString(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
