package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/jrsteele09/go-analytics-embed/authflow"
	"github.com/jrsteele09/go-analytics-embed/embed"
	"github.com/jrsteele09/go-analytics-embed/industry"
	"github.com/jrsteele09/go-analytics-embed/internal/config"
	"github.com/jrsteele09/go-analytics-embed/salesforce"
	"github.com/jrsteele09/go-analytics-embed/sessions"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	handler    http.Handler
	routes     []string
	fileServer http.Handler
	config     config.Config

	resolver     *industry.Resolver
	authRequests authflow.Repo
	sessions     *sessions.Manager
	gateway      *embed.Gateway
	upstream     *salesforce.Client
	overrides    industry.Overrides
}

// New wires the HTTP surface over explicitly constructed components; the
// server owns no stores itself.
func New(
	cfg config.Config,
	resolver *industry.Resolver,
	authRequests authflow.Repo,
	sessionManager *sessions.Manager,
	gateway *embed.Gateway,
	upstream *salesforce.Client,
) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		config:       cfg,
		resolver:     resolver,
		authRequests: authRequests,
		sessions:     sessionManager,
		gateway:      gateway,
		upstream:     upstream,
		overrides:    DeploymentOverrides(cfg),
	}
	s.env = cfg.GetEnv()
	s.fileServer = FileServerHandler()

	s.initRoutes()
	s.logRoutes()

	s.handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.GetAllowedOrigins(),
		AllowedMethods:   cfg.GetAllowedMethods(),
		AllowedHeaders:   cfg.GetAllowedHeaders(),
		AllowCredentials: true,
	})(s.mux)

	return s
}

// DeploymentOverrides maps the environment inputs onto the template
// override structure used by the resolver and the embedding gateway.
func DeploymentOverrides(cfg config.Config) industry.Overrides {
	return industry.Overrides{
		DashboardID:    cfg.GetDefaultDashboardID(),
		AgentID:        cfg.GetDefaultAgentID(),
		PartnerEmbed:   cfg.GetPartnerEmbedOverride(),
		PartnerOrigins: cfg.GetPartnerOrigins(),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
