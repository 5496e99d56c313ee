package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin    = "/login"
	RouteCallback = "/callback"
	RouteLogout   = "/logout"

	// App Routes
	RouteDashboard = "/dashboard"

	// Embedding Routes
	RouteEmbedDashboard   = "/embed/dashboard"
	RouteEmbedAgent       = "/embed/agent"
	RoutePartnerDashboard = "/partner/dashboard"

	// API Routes
	RouteAPIEmbedConfig = "/api/embed-config"
	RouteAPIAgentProxy  = "/api/agent-proxy"
	RouteAPIIndustries  = "/api/industries"

	// Service Routes
	RouteHealth = "/health"

	// Static Asset Routes (patterns)
	RouteStaticAssets = "/static/{file}"
)
