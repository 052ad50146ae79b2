package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jrsteele09/go-tenant-auth/auth"
	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/jrsteele09/go-tenant-auth/internal/telemetry"
	"github.com/jrsteele09/go-tenant-auth/management"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Deps are the services the routes are served from.
type Deps struct {
	Auth       *auth.AuthenticationService
	Management *management.Service
	Contact    *management.Contact
	// Ready reports whether the backing store answers. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	env        string
	local      bool
	mux        *http.ServeMux
	handler    http.Handler
	routes     []string
	config     config.Config
	auth       *auth.AuthenticationService
	guard      *auth.Guard
	management *management.Service
	contact    *management.Contact
	ready      func(ctx context.Context) error
	metrics    *metrics
	rateLimit  func(http.Handler) http.Handler
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[server.New] config is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("[server.New] authentication service is required")
	}
	if deps.Management == nil {
		return nil, errors.New("[server.New] management service is required")
	}
	if deps.Contact == nil {
		return nil, errors.New("[server.New] contact service is required")
	}

	s := &Server{
		env:        cfg.GetEnv(),
		local:      cfg.IsLocal(),
		mux:        http.NewServeMux(),
		config:     cfg,
		auth:       deps.Auth,
		guard:      deps.Auth.Guard(),
		management: deps.Management,
		contact:    deps.Contact,
		ready:      deps.Ready,
		metrics:    newMetrics(),
	}
	if limit := cfg.GetRateLimitPerMinute(); limit > 0 {
		s.rateLimit = httprate.LimitByIP(limit, time.Minute)
	}

	s.initRoutes()
	s.handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.GetAllowedOrigins(),
		AllowedMethods:   cfg.GetAllowedMethods(),
		AllowedHeaders:   cfg.GetAllowedHeaders(),
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	})(telemetry.Handler(s.mux, "tenant-auth"))
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RegisterRouteHandler mounts handler on pattern and counts its requests under that pattern.
func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, s.metrics.instrument(pattern, handler))
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.RegisterRouteHandler(pattern, http.HandlerFunc(handler))
}

func (s *Server) logRoutes() {
	if !s.local {
		return
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
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
