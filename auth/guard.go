package auth

import (
	"context"
	"slices"

	"github.com/jrsteele09/go-tenant-auth/identity"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/sessions"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
)

// Policy lists what a protected operation accepts.
type Policy struct {
	Name string
	// Roles allowed inside a real tenant. Empty means any role.
	Roles []users.Role
	// SuperuserRoles restricts which superuser tiers pass. Empty means any tier.
	SuperuserRoles []users.SuperuserRole
	// RequireSuperuser rejects every account that is not a superuser.
	RequireSuperuser bool
}

var (
	AnyRole            = Policy{Name: "any"}
	ManagerOnly        = Policy{Name: "manager", Roles: []users.Role{users.RoleManager}}
	AnalystOrAbove     = Policy{Name: "analyst", Roles: []users.Role{users.RoleAnalyst, users.RoleManager}}
	OperationOrManager = Policy{Name: "operation", Roles: []users.Role{users.RoleOperation, users.RoleManager}}
	VisitorOrAbove     = Policy{Name: "visitor", Roles: []users.Role{users.RoleVisitor, users.RoleAnalyst, users.RoleManager}}
	SuperuserOnly      = Policy{Name: "superuser", RequireSuperuser: true}
)

// Principal is an authorized caller. Binding is nil for superusers and the pseudo-tenants.
type Principal struct {
	Account *users.Account
	Tenant  *tenants.Tenant
	Binding *users.TenantBinding
}

// Guard authenticates access tokens and authorizes them against tenants.
type Guard struct {
	tokens   *token.Manager
	users    users.Repo
	sessions sessions.Repo
	resolver *identity.Resolver
}

func NewGuard(tokens *token.Manager, usersRepo users.Repo, sessionsRepo sessions.Repo, resolver *identity.Resolver) (*Guard, error) {
	if tokens == nil {
		return nil, errors.New("[NewGuard] token manager is required")
	}
	if usersRepo == nil {
		return nil, errors.New("[NewGuard] Users repo is required")
	}
	if sessionsRepo == nil {
		return nil, errors.New("[NewGuard] Sessions repo is required")
	}
	if resolver == nil {
		return nil, errors.New("[NewGuard] resolver is required")
	}
	return &Guard{tokens: tokens, users: usersRepo, sessions: sessionsRepo, resolver: resolver}, nil
}

// Authenticate returns the account behind accessToken. The account must hold
// an active session, so signing out invalidates outstanding access tokens.
func (g *Guard) Authenticate(ctx context.Context, accessToken string) (*users.Account, error) {
	accountID, err := g.tokens.Verify(accessToken)
	if err != nil {
		return nil, apperrors.ErrInvalidAccessToken
	}

	account, err := g.users.GetByID(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "[Guard.Authenticate] GetByID")
	}
	if account == nil {
		return nil, apperrors.ErrAccountNotFound
	}

	active, err := g.sessions.FindActive(ctx, account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Guard.Authenticate] FindActive")
	}
	if active == nil {
		return nil, apperrors.ErrNotSignedIn
	}
	return account, nil
}

// Authorize authenticates accessToken and checks the account against the
// tenant addressed by subdomain and the policy.
func (g *Guard) Authorize(ctx context.Context, accessToken, subdomain string, policy Policy) (*Principal, error) {
	account, err := g.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	tenant, err := g.resolver.ResolveTenant(ctx, subdomain)
	if err != nil {
		return nil, err
	}

	if account.IsSuperuser {
		if !account.HasSuperuserRole(policy.SuperuserRoles...) {
			return nil, apperrors.ErrSuperuserTierTooLow
		}
		return &Principal{Account: account, Tenant: tenant}, nil
	}
	if policy.RequireSuperuser {
		return nil, apperrors.ErrNotSuperuser
	}

	access, err := g.resolver.Admit(ctx, account, tenant)
	if err != nil {
		return nil, err
	}
	if access.Binding != nil && len(policy.Roles) > 0 && !slices.Contains(policy.Roles, access.Binding.Role) {
		return nil, apperrors.ErrRoleNotAllowed
	}
	return &Principal{Account: access.Account, Tenant: access.Tenant, Binding: access.Binding}, nil
}
