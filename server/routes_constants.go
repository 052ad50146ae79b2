package server

// Route path constants
const (
	// Auth
	RouteAuthRequest  = "/api/v1/auth/request/{provider}"
	RouteAuthCallback = "/api/v1/auth/callback/{provider}"
	RouteAuthRefresh  = "/api/v1/auth/refresh"
	RouteAuthMe       = "/api/v1/auth/me"
	RouteAuthSignOut  = "/api/v1/auth/signout"

	// Tenant users
	RouteUsers = "/api/v1/users/{subdomain}"
	RouteUser  = "/api/v1/users/{subdomain}/{userID}"

	// Campaigns
	RouteCampaigns = "/api/v1/campaigns/{subdomain}"
	RouteCampaign  = "/api/v1/campaigns/{subdomain}/{campaignID}"

	RouteContact = "/api/v1/contact"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
