// Package management maintains the tenant records behind the role checks:
// tenant users with their bindings, and campaigns.
package management

import (
	"strings"

	"github.com/jrsteele09/go-tenant-auth/campaigns"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/internal/utils"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
)

const minNameLength = 3

// Service implements the user and campaign management operations. Callers
// authorize the request before calling it.
type Service struct {
	users     users.Repo
	campaigns campaigns.Repo
}

func NewService(usersRepo users.Repo, campaignsRepo campaigns.Repo) (*Service, error) {
	if usersRepo == nil {
		return nil, errors.New("[management.NewService] Users repo is required")
	}
	if campaignsRepo == nil {
		return nil, errors.New("[management.NewService] Campaigns repo is required")
	}
	return &Service{users: usersRepo, campaigns: campaignsRepo}, nil
}

// realTenant rejects the pseudo-tenants, which own neither users nor campaigns.
func realTenant(tenant *tenants.Tenant) error {
	if tenant == nil || tenant.IsPseudo() {
		return apperrors.ErrTenantNotFound
	}
	return nil
}

func validName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= minNameLength && utils.IsASCII(name)
}
