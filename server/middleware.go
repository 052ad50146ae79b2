package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jrsteele09/go-tenant-auth/auth"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/rs/zerolog/log"
)

type contextKey int

const principalKey contextKey = iota

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is the standard chain for JSON routes; mw runs after it.
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.NoStoreMiddleware,
	}
	return append(chainedMiddleWare, mw...)
}

// RateLimitedMiddleware is APIMiddleware with the per-IP limit in front of the handler.
func (s *Server) RateLimitedMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return s.APIMiddleware(s.RateLimitMiddleware)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		if s.local {
			logRoute(r.Method, r.URL.Path+" "+statusColor(rec.status)+http.StatusText(rec.status)+ResetColor)
			return
		}
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Str("path", r.URL.Path).Msg("recovered from panic")
				writeError(w, r, apperrors.ErrInternal)
			}
		}()
		next(w, r)
	}
}

// NoStoreMiddleware keeps tokens and profiles out of shared caches.
func (s *Server) NoStoreMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next(w, r)
	}
}

func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.rateLimit == nil {
		return next
	}
	return s.rateLimit(next).ServeHTTP
}

// RequireTenant authorizes the bearer token against the {subdomain} path
// segment and makes the principal available to the handler.
func (s *Server) RequireTenant(policy auth.Policy) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			accessToken, err := bearerToken(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			principal, err := s.guard.Authorize(r.Context(), accessToken, r.PathValue("subdomain"), policy)
			if err != nil {
				log.Debug().Err(err).Str("policy", policy.Name).Str("path", r.URL.Path).Msg("authorization rejected")
				writeError(w, r, err)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
		}
	}
}

func principalFrom(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalKey).(*auth.Principal)
	return p
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
