package server

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
	"github.com/jrsteele09/go-analytics-embed/sessions"
)

const contentTypeHTML = "text/html; charset=utf-8"

// CallbackHandler completes the OAuth flow (GET|POST /callback). The state
// is consumed exactly once; a duplicate or late callback is sent back to
// the login entrypoint rather than retried.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			log.Warn().Str("state", state).Str("oauth_error", errorParam).Msg("Authorization rejected upstream")
			authFailurePage(w, http.StatusBadRequest, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc))
			return
		}

		if code == "" || state == "" {
			authFailurePage(w, http.StatusBadRequest, "Missing code or state parameter")
			return
		}

		request, err := s.authRequests.Consume(state)
		if err != nil {
			// Absent, expired or already redeemed; start over
			log.Warn().Str("state", state).Msg("Callback with invalid state")
			http.Redirect(w, r, RouteLogin, http.StatusFound)
			return
		}

		token, err := s.upstream.Exchange(r.Context(), code, request.CodeVerifier)
		if err != nil {
			if errors.Is(err, apperrors.ErrAuthFailure) {
				log.Warn().Str("state", state).Err(err).Msg("Code exchange rejected")
				authFailurePage(w, http.StatusBadRequest, "Authentication failed")
				return
			}
			log.Error().Str("state", state).Err(err).Msg("Code exchange failed")
			authFailurePage(w, http.StatusInternalServerError, "Authentication failed")
			return
		}

		session := sessions.Session{
			ID:           uuid.New().String(),
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenExpiry:  token.Expiry,
			InstanceURL:  token.InstanceURL,
			IdentityURL:  token.IdentityURL,
			Industry:     request.Industry,
			CreatedAt:    time.Now(),
		}

		// User identity is informational; failure to resolve it does not
		// block the login
		if token.IdentityURL != "" {
			if identity, err := s.upstream.FetchIdentity(r.Context(), token.AccessToken, token.IdentityURL); err == nil {
				session.UserID = identity.UserID
				session.UserName = identity.DisplayName
			} else {
				log.Warn().Str("session_id", session.ID).Err(err).Msg("Failed to fetch user identity")
			}
		}

		if err := s.sessions.Create(session); err != nil {
			log.Error().Str("state", state).Err(err).Msg("Failed to create session")
			authFailurePage(w, http.StatusInternalServerError, "Failed to create session")
			return
		}

		SetSessionCookie(w, r, session.ID, int(s.config.GetMaxSessionAge().Seconds()))
		log.Info().Str("state", state).Str("session_id", session.ID).
			Str("industry", session.Industry).Msg("Session established")
		http.Redirect(w, r, RouteDashboard, http.StatusFound)
	}
}

// LogoutHandler revokes the session and clears the cookie (GET /logout).
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			if err := s.sessions.Revoke(r.Context(), cookie.Value); err != nil {
				log.Warn().Str("session_id", cookie.Value).Err(err).Msg("Failed to revoke session")
			}
		}
		ClearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func authFailurePage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Sign-in problem</title></head>
<body>
<h1>Sign-in problem</h1>
<p>%s</p>
<p><a href="%s">Sign in again</a></p>
</body>
</html>`, html.EscapeString(message), RouteLogin)
}
