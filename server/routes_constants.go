package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Identity routes
	RouteAuthCheck  = "/auth/check"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Operational routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Entry point and static assets
	RouteIndex  = "/"
	RouteStatic = "/static/*"
)
