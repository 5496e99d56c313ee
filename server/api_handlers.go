package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type embedConfigResponse struct {
	AuthCredential     string            `json:"authCredential"`
	OrgURL             string            `json:"orgUrl"`
	DashboardID        string            `json:"dashboardId"`
	DashboardFilters   map[string]string `json:"dashboardFilters,omitempty"`
	AgentID            string            `json:"agentId"`
	PartnerIntegration bool              `json:"partnerIntegration"`
}

// EmbedConfigHandler provides the client-side embedding configuration
// (GET /api/embed-config): a short-lived frontdoor credential plus the
// session industry's resolved dashboard and agent identifiers.
func (s *Server) EmbedConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := sessionIDFromContext(r.Context())
		session, err := s.sessions.EnsureValid(r.Context(), sessionID)
		if err != nil {
			s.writeSessionError(w, sessionID, err)
			return
		}

		resolved, err := s.resolver.Resolve(session.Industry, s.overrides)
		if err != nil {
			log.Error().Str("session_id", sessionID).Str("industry", session.Industry).
				Err(err).Msg("Failed to resolve industry configuration")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Configuration error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedConfigResponse{
			AuthCredential:     s.upstream.FrontdoorURL(r.Context(), session.AccessToken, session.InstanceURL),
			OrgURL:             session.InstanceURL,
			DashboardID:        resolved.DashboardID,
			DashboardFilters:   resolved.Filters,
			AgentID:            resolved.AgentID,
			PartnerIntegration: resolved.PartnerEmbed,
		})
	}
}

// AgentProxyHandler relays a request to the platform's analytics agent
// endpoint (POST /api/agent-proxy). An upstream 401 flags the session for
// refresh on its next use.
func (s *Server) AgentProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := sessionIDFromContext(r.Context())
		session, err := s.sessions.EnsureValid(r.Context(), sessionID)
		if err != nil {
			s.writeSessionError(w, sessionID, err)
			return
		}

		resp, err := s.upstream.AgentRequest(r.Context(), session.AccessToken, session.InstanceURL, r.Body)
		if err != nil {
			log.Error().Str("session_id", sessionID).Err(err).Msg("Agent proxy request failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Service unavailable"})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			s.sessions.MarkNeedsReauth(sessionID)
		}

		w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)
	}
}

// IndustriesHandler enumerates the configured industries
// (GET /api/industries); used for discovery, not runtime gating.
func (s *Server) IndustriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		industries, err := s.resolver.List()
		if err != nil {
			log.Error().Err(err).Msg("Failed to list industries")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string][]string{"industries": industries})
	}
}

// HealthHandler is the liveness endpoint (GET /health).
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	}
}
