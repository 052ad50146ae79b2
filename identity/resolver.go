// Package identity decides whether an account may sign in to a tenant.
package identity

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
)

// Access is the outcome of a successful resolution. Binding is nil for the
// pseudo-tenants.
type Access struct {
	Account *users.Account
	Tenant  *tenants.Tenant
	Binding *users.TenantBinding
}

type Resolver struct {
	users   users.Repo
	tenants tenants.Repo
}

func NewResolver(usersRepo users.Repo, tenantsRepo tenants.Repo) (*Resolver, error) {
	if usersRepo == nil {
		return nil, errors.New("[identity.NewResolver] Users repo is required")
	}
	if tenantsRepo == nil {
		return nil, errors.New("[identity.NewResolver] Tenants repo is required")
	}
	return &Resolver{users: usersRepo, tenants: tenantsRepo}, nil
}

// ResolveTenant returns the tenant for subdomain or ErrTenantNotFound.
func (r *Resolver) ResolveTenant(ctx context.Context, subdomain string) (*tenants.Tenant, error) {
	t, err := tenants.Lookup(ctx, r.tenants, subdomain)
	if err != nil {
		return nil, errors.Wrap(err, "[Resolver.ResolveTenant]")
	}
	if t == nil {
		return nil, apperrors.ErrTenantNotFound
	}
	return t, nil
}

// ResolveAccount returns the account registered under email or ErrAccountNotFound.
func (r *Resolver) ResolveAccount(ctx context.Context, email string) (*users.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ErrAccountNotFound
	}
	a, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "[Resolver.ResolveAccount] GetByEmail")
	}
	if a == nil {
		return nil, apperrors.ErrAccountNotFound
	}
	return a, nil
}

// ResolveTenantAccess checks, in order, that the tenant exists, the account
// exists and the account may enter the tenant. It has no side effects.
func (r *Resolver) ResolveTenantAccess(ctx context.Context, email, subdomain string) (*Access, error) {
	tenant, err := r.ResolveTenant(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	account, err := r.ResolveAccount(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.Admit(ctx, account, tenant)
}

// Admit applies the tenant rules to an already resolved account.
func (r *Resolver) Admit(ctx context.Context, account *users.Account, tenant *tenants.Tenant) (*Access, error) {
	access := &Access{Account: account, Tenant: tenant}

	switch {
	case tenant.IsAdmin():
		if !account.IsSuperuser {
			return nil, apperrors.ErrNotSuperuser
		}
		return access, nil
	case tenant.IsHome():
		return access, nil
	}

	binding, err := r.users.GetBinding(ctx, account.ID, tenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Resolver.Admit] GetBinding")
	}
	if binding == nil {
		return nil, apperrors.ErrNoAccessToTenant
	}
	if !binding.IsActive() {
		return nil, apperrors.ErrAccountNotActiveForTenant
	}
	access.Binding = binding
	return access, nil
}
