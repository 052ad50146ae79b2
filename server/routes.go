package server

import (
	"github.com/jrsteele09/go-tenant-auth/auth"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthRequest, ChainMiddleware(s.RequestLoginHandler(), s.RateLimitedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.RateLimitedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.RateLimitedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthSignOut, ChainMiddleware(s.SignOutHandler(), s.APIMiddleware()...))

	// USERS
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.APIMiddleware(s.RequireTenant(auth.ManagerOnly))...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), s.APIMiddleware(s.RequireTenant(auth.ManagerOnly))...))
	s.RegisterRouteHandler("PUT "+RouteUser, ChainMiddleware(s.UpdateUserHandler(), s.APIMiddleware(s.RequireTenant(auth.ManagerOnly))...))

	// CAMPAIGNS
	s.RegisterRouteHandler("GET "+RouteCampaigns, ChainMiddleware(s.ListCampaignsHandler(), s.APIMiddleware(s.RequireTenant(auth.VisitorOrAbove))...))
	s.RegisterRouteHandler("POST "+RouteCampaigns, ChainMiddleware(s.CreateCampaignHandler(), s.APIMiddleware(s.RequireTenant(auth.AnalystOrAbove))...))
	s.RegisterRouteHandler("PUT "+RouteCampaign, ChainMiddleware(s.UpdateCampaignHandler(), s.APIMiddleware(s.RequireTenant(auth.AnalystOrAbove))...))
	s.RegisterRouteHandler("DELETE "+RouteCampaign, ChainMiddleware(s.DeleteCampaignHandler(), s.APIMiddleware(s.RequireTenant(auth.AnalystOrAbove))...))

	s.RegisterRouteHandler("POST "+RouteContact, ChainMiddleware(s.ContactHandler(), s.RateLimitedMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.handler())
}
