package auth

import (
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/internal/utils"
)

// ValidEmail reports whether email looks like a deliverable address.
func ValidEmail(email string) bool {
	return utils.IsEmail(email)
}

// ValidateCallbackURL requires an absolute http(s) URL.
func ValidateCallbackURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperrors.Invalid("callback_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return apperrors.Invalid("callback_url must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperrors.Invalid("callback_url must use http or https")
	}
	return nil
}

func (r LoginRequest) Validate() error {
	if r.Provider == "" {
		return apperrors.ErrUnsupportedProvider
	}
	if strings.TrimSpace(r.TenantSubdomain) == "" {
		return apperrors.Invalid("customer_subdomain is required")
	}
	if !r.Provider.Federated() && !ValidEmail(r.Email) {
		return apperrors.Invalid("a valid email is required")
	}
	return ValidateCallbackURL(r.CallbackURL)
}

func (r CallbackRequest) Validate() error {
	if r.Provider == "" {
		return apperrors.ErrUnsupportedProvider
	}
	if strings.TrimSpace(r.Token) == "" {
		return apperrors.Invalid("token is required")
	}
	if r.Provider.Federated() {
		if strings.TrimSpace(r.TenantSubdomain) == "" {
			return apperrors.Invalid("customer_subdomain is required")
		}
		return ValidateCallbackURL(r.CallbackURL)
	}
	return nil
}
