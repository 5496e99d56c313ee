package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-analytics-embed/authflow"
	apperrors "github.com/jrsteele09/go-analytics-embed/internal/errors"
)

// LoginHandler initiates the upstream OAuth flow with PKCE (GET /login).
// Concurrent logins are independent; each attempt gets its own verifier
// and state.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		industryID := r.URL.Query().Get("industry")
		if industryID == "" {
			industryID = s.config.GetIndustry()
		}

		if _, err := s.resolver.Load(industryID); err != nil {
			if errors.Is(err, apperrors.ErrTemplateNotFound) {
				http.Error(w, "Unknown industry", http.StatusNotFound)
				return
			}
			log.Error().Str("industry", industryID).Err(err).Msg("Industry template failed to load")
			http.Error(w, "Industry configuration error", http.StatusInternalServerError)
			return
		}

		// 32 random bytes base64url-encode to a 43 character verifier,
		// the minimum the PKCE grammar allows
		codeVerifier := generateRandomString(32)
		codeChallenge := generateCodeChallenge(codeVerifier)
		state := generateRandomString(32)

		now := time.Now()
		request := authflow.Request{
			State:         state,
			CodeVerifier:  codeVerifier,
			CodeChallenge: codeChallenge,
			RedirectURI:   s.config.GetRedirectURL(),
			Industry:      industryID,
			CreatedAt:     now,
			ExpiresAt:     now.Add(s.config.GetAuthRequestExpiry()),
		}
		if err := s.authRequests.Put(state, request); err != nil {
			log.Error().Err(err).Msg("Failed to store authorization request")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info().Str("state", state).Str("industry", industryID).Msg("Starting authorization flow")
		http.Redirect(w, r, s.upstream.AuthCodeURL(r.Context(), state, codeChallenge), http.StatusFound)
	}
}
