package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed static/*
var staticFiles embed.FS

func FileServerHandler() http.Handler {
	return http.FileServer(http.FS(StaticFilesFS()))
}

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}

	return subFS
}

// servePage writes one of the embedded HTML shells. The HTML surface is a
// thin external collaborator; anything dynamic goes through the JSON API.
func (s *Server) servePage(w http.ResponseWriter, name string) {
	data, err := fs.ReadFile(StaticFilesFS(), name)
	if err != nil {
		log.Error().Str("page", name).Err(err).Msg("Missing embedded page")
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	_, _ = w.Write(data)
}

// IndexHandler renders the landing page, or sends an already
// authenticated user straight to the dashboard.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			if _, err := s.sessions.Get(cookie.Value); err == nil {
				http.Redirect(w, r, RouteDashboard, http.StatusFound)
				return
			}
		}
		s.servePage(w, "index.html")
	}
}

// DashboardHandler renders the main analytics surface (GET /dashboard).
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.servePage(w, "dashboard.html")
	}
}
