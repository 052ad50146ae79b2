package server

import (
	"net/http"

	"github.com/jrsteele09/go-tenant-auth/auth"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/providers"
)

type loginRequestBody struct {
	Email             string `json:"email"`
	CustomerSubdomain string `json:"customer_subdomain"`
	CallbackURL       string `json:"callback_url"`
}

type callbackRequestBody struct {
	Token             string `json:"token"`
	CustomerSubdomain string `json:"customer_subdomain"`
	CallbackURL       string `json:"callback_url"`
}

// RequestLoginHandler starts a login with the {provider} path segment.
func (s *Server) RequestLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := providers.ParseTag(r.PathValue("provider"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		var body loginRequestBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}

		redirect, err := s.auth.RequestLogin(r.Context(), auth.LoginRequest{
			Provider:        tag,
			Email:           body.Email,
			TenantSubdomain: body.CustomerSubdomain,
			CallbackURL:     body.CallbackURL,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, redirect)
	}
}

// CallbackHandler redeems a magic link token or a federated authorization code.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := providers.ParseTag(r.PathValue("provider"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		var body callbackRequestBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}

		tokens, err := s.auth.CompleteLogin(r.Context(), auth.CallbackRequest{
			Provider:        tag,
			Token:           body.Token,
			TenantSubdomain: body.CustomerSubdomain,
			CallbackURL:     body.CallbackURL,
		})
		s.metrics.login(string(tag), err)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tokens)
	}
}

// RefreshHandler takes the refresh token as the bearer credential.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken, err := bearerToken(r)
		if err != nil {
			writeError(w, r, apperrors.ErrInvalidRefreshToken)
			return
		}
		access, err := s.auth.Refresh(r.Context(), refreshToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, access)
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken, err := bearerToken(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		profile, err := s.auth.CurrentAccount(r.Context(), accessToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken, err := bearerToken(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		account, err := s.guard.Authenticate(r.Context(), accessToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.auth.SignOut(r.Context(), account.ID); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Signed out"})
	}
}

// HealthHandler reports ok once the backing store answers.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ready != nil {
			if err := s.ready(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
	}
}
