package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-analytics-embed/embed"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

type embedTokenResponse struct {
	Token     string `json:"token"`
	Scope     string `json:"scope"`
	ExpiresIn int    `json:"expires_in"`
	EmbedURL  string `json:"embed_url,omitempty"`
}

// EmbedTokenHandler mints a scoped embed token for the authenticated
// session (GET /embed/dashboard, GET /embed/agent).
func (s *Server) EmbedTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := embed.ScopeDashboard
		if r.URL.Path == RouteEmbedAgent {
			scope = embed.ScopeAgent
		}

		sessionID := sessionIDFromContext(r.Context())
		token, err := s.gateway.IssueToken(r.Context(), sessionID, scope)
		if err != nil {
			s.writeSessionError(w, sessionID, err)
			return
		}

		response := embedTokenResponse{
			Token:     token.Value,
			Scope:     string(token.Scope),
			ExpiresIn: int(time.Until(token.ExpiresAt).Seconds()),
		}
		if scope == embed.ScopeDashboard {
			response.EmbedURL = s.config.GetAppURL() + RoutePartnerDashboard + "?embed_token=" + token.Value
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

// PartnerDashboardHandler is the partner CRM iframe entrypoint
// (GET /partner/dashboard). It authenticates with an embed token rather
// than the session cookie, since the iframe is served into a third-party
// origin, and emits the per-industry frame-ancestors policy.
func (s *Server) PartnerDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenValue := r.URL.Query().Get("embed_token")
		if tokenValue == "" {
			http.Error(w, "Missing embed token", http.StatusUnauthorized)
			return
		}

		sessionID, err := s.gateway.ValidateToken(tokenValue, embed.ScopeDashboard)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrScopeMismatch):
				http.Error(w, "Embed token not valid for this surface", http.StatusForbidden)
			case errors.Is(err, apperrors.ErrTokenExpired):
				http.Error(w, "Embed token expired", http.StatusUnauthorized)
			default:
				http.Error(w, "Invalid embed token", http.StatusUnauthorized)
			}
			return
		}

		session, err := s.sessions.Get(sessionID)
		if err != nil {
			http.Error(w, "Session no longer valid", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Security-Policy", s.gateway.CSPPolicyFor(session.Industry))
		s.servePage(w, "partner.html")
	}
}

// writeSessionError maps the session/token taxonomy onto API responses.
// Anything requiring the user to sign in again is a 401 carrying the
// login path.
func (s *Server) writeSessionError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrSessionExpired),
		errors.Is(err, apperrors.ErrTokenRefreshFailure):
		ClearSessionCookie(w)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "Re-authentication required",
			"login": RouteLogin,
		})
	default:
		log.Error().Str("session_id", sessionID).Err(err).Msg("Embed request failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
	}
}
