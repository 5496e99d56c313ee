package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware()...))

	// LOGIN / LOGOUT
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleware()...)) // For form_post response mode
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// App surfaces (require an authenticated session)
	s.RegisterRouteFunc("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleware(s.RequireSession())...))

	// Embed token issuance (session-authenticated)
	s.RegisterRouteFunc("GET "+RouteEmbedDashboard, ChainMiddleware(s.EmbedTokenHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteFunc("GET "+RouteEmbedAgent, ChainMiddleware(s.EmbedTokenHandler(), s.APIMiddleware(s.RequireSession())...))

	// Partner iframe entrypoint (embed-token-authenticated; the handler
	// replaces the default-deny framing policy with the resolved
	// per-industry one)
	s.RegisterRouteFunc("GET "+RoutePartnerDashboard, ChainMiddleware(s.PartnerDashboardHandler(), s.HTMLMiddleware()...))

	// Session-authenticated API
	s.RegisterRouteFunc("GET "+RouteAPIEmbedConfig, ChainMiddleware(s.EmbedConfigHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteFunc("POST "+RouteAPIAgentProxy, ChainMiddleware(s.AgentProxyHandler(), s.APIMiddleware(s.RequireSession())...))

	// Public API
	s.RegisterRouteFunc("GET "+RouteAPIIndustries, ChainMiddleware(s.IndustriesHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// Static assets
	s.RegisterRouteFunc("GET "+RouteStaticAssets,
		ChainMiddleware(http.StripPrefix("/static/", s.fileServer).ServeHTTP, s.HTMLMiddleware()...))
}
