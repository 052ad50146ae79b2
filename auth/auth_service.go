package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/jrsteele09/go-tenant-auth/identity"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/providers"
	"github.com/jrsteele09/go-tenant-auth/sessions"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const stateLength = 32

// Repos holds all repository dependencies for the AuthenticationService
type Repos struct {
	Users    users.Repo
	Tenants  tenants.Repo
	Sessions sessions.Repo
}

// AuthenticationService runs the login, refresh and sign out flows for every provider.
type AuthenticationService struct {
	repos     Repos
	tokens    *token.Manager
	email     *providers.EmailProvider
	federated *providers.Registry
	resolver  *identity.Resolver
	guard     *Guard
	nowTime   func() time.Time
}

// AuthenticationServiceOption defines a function type to modify the AuthenticationService instance.
type AuthenticationServiceOption func(*AuthenticationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthenticationServiceOption {
	return func(as *AuthenticationService) {
		as.nowTime = nowFunc
	}
}

// NewAuthenticationService initializes a new AuthenticationService with required dependencies.
// A nil registry disables the federated providers.
func NewAuthenticationService(
	repos Repos,
	tokens *token.Manager,
	email *providers.EmailProvider,
	federated *providers.Registry,
	options ...AuthenticationServiceOption,
) (*AuthenticationService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAuthenticationService] Users repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[NewAuthenticationService] Tenants repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewAuthenticationService] Sessions repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAuthenticationService] token manager is required")
	}
	if email == nil {
		return nil, errors.New("[NewAuthenticationService] email provider is required")
	}
	if federated == nil {
		federated = providers.NewRegistry()
	}

	resolver, err := identity.NewResolver(repos.Users, repos.Tenants)
	if err != nil {
		return nil, errors.Wrap(err, "[NewAuthenticationService]")
	}
	guard, err := NewGuard(tokens, repos.Users, repos.Sessions, resolver)
	if err != nil {
		return nil, errors.Wrap(err, "[NewAuthenticationService]")
	}

	as := &AuthenticationService{
		repos:     repos,
		tokens:    tokens,
		email:     email,
		federated: federated,
		resolver:  resolver,
		guard:     guard,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(as)
	}
	return as, nil
}

// Guard returns the guard sharing this service's repositories.
func (as *AuthenticationService) Guard() *Guard {
	return as.guard
}

// RequestLogin starts a login. For the email provider the account must be
// admitted to the tenant before a link is sent, and the link is bound to a new
// session. Federated providers only need the tenant to exist.
func (as *AuthenticationService) RequestLogin(ctx context.Context, req LoginRequest) (*LoginRedirect, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Provider.Federated() {
		return as.requestFederated(ctx, req)
	}

	access, err := as.resolver.ResolveTenantAccess(ctx, req.Email, req.TenantSubdomain)
	if err != nil {
		return nil, err
	}

	link, err := as.email.IssueLink(access.Account.Email)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.RequestLogin] IssueLink")
	}

	now := as.nowTime()
	if _, err := as.issueSession(ctx, access, &sessions.MagicLink{
		Token:       link,
		RequestedAt: now,
		ExpiresAt:   now.Add(as.email.MaxAge()),
	}); err != nil {
		return nil, err
	}

	as.email.Deliver(ctx, providers.Delivery{
		To:          access.Account.Email,
		AccountName: access.Account.Name,
		TenantName:  access.Tenant.Name,
		CallbackURL: req.CallbackURL,
		Token:       link,
	})

	log.Info().Str("account_id", access.Account.ID).Str("tenant", access.Tenant.Subdomain).Msg("magic link issued")
	return &LoginRedirect{Message: MagicLinkSentMessage}, nil
}

func (as *AuthenticationService) requestFederated(ctx context.Context, req LoginRequest) (*LoginRedirect, error) {
	provider, err := as.federated.Federated(req.Provider)
	if err != nil {
		return nil, err
	}
	if _, err := as.resolver.ResolveTenant(ctx, req.TenantSubdomain); err != nil {
		return nil, err
	}

	state, err := generateState()
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.RequestLogin] generateState")
	}
	return &LoginRedirect{
		RedirectURL: provider.AuthCodeURL(req.CallbackURL, state),
		State:       state,
	}, nil
}

// CompleteLogin finishes a login and returns the session's tokens.
func (as *AuthenticationService) CompleteLogin(ctx context.Context, req CallbackRequest) (*TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Provider.Federated() {
		return as.completeFederated(ctx, req)
	}
	return as.completeMagicLink(ctx, req)
}

func (as *AuthenticationService) completeMagicLink(ctx context.Context, req CallbackRequest) (*TokenPair, error) {
	if req.TenantSubdomain != "" {
		if _, err := as.resolver.ResolveTenant(ctx, req.TenantSubdomain); err != nil {
			return nil, err
		}
	}

	id, err := as.email.Verify(req.Token)
	if err != nil {
		return nil, err
	}

	account, err := as.resolver.ResolveAccount(ctx, id.Email)
	if err != nil {
		return nil, err
	}

	session, err := as.repos.Sessions.FindByMagicLinkToken(ctx, req.Token)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.CompleteLogin] FindByMagicLinkToken")
	}
	if session == nil || session.MagicLink == nil || session.AccountID != account.ID {
		return nil, apperrors.ErrMagicLinkNotFound
	}
	if session.Revoked {
		return nil, apperrors.ErrMagicLinkRevoked
	}
	if session.MagicLink.Used() {
		return nil, apperrors.ErrMagicLinkUsed
	}
	now := as.nowTime()
	if session.MagicLink.Expired(now) {
		return nil, apperrors.ErrMagicLinkExpired
	}

	if err := as.repos.Sessions.MarkMagicLinkUsed(ctx, session.ID, now); err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.CompleteLogin] MarkMagicLinkUsed")
	}

	accessToken, err := as.tokens.IssueAccessToken(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.CompleteLogin] IssueAccessToken")
	}
	log.Info().Str("account_id", account.ID).Str("session_id", session.ID).Msg("magic link redeemed")
	return &TokenPair{AccessToken: accessToken, RefreshToken: session.RefreshToken}, nil
}

func (as *AuthenticationService) completeFederated(ctx context.Context, req CallbackRequest) (*TokenPair, error) {
	provider, err := as.federated.Federated(req.Provider)
	if err != nil {
		return nil, err
	}
	tenant, err := as.resolver.ResolveTenant(ctx, req.TenantSubdomain)
	if err != nil {
		return nil, err
	}

	id, err := provider.Identify(ctx, req.Token, req.CallbackURL)
	if err != nil {
		return nil, err
	}

	account, err := as.resolver.ResolveAccount(ctx, id.Email)
	if err != nil {
		return nil, err
	}
	access, err := as.resolver.Admit(ctx, account, tenant)
	if err != nil {
		return nil, err
	}

	pair, err := as.issueSession(ctx, access, nil)
	if err != nil {
		return nil, err
	}
	log.Info().Str("account_id", account.ID).Str("provider", string(id.Provider)).Str("tenant", tenant.Subdomain).Msg("federated login")
	return pair, nil
}

// issueSession replaces every session of the account with a new one and
// returns its tokens.
func (as *AuthenticationService) issueSession(ctx context.Context, access *identity.Access, magicLink *sessions.MagicLink) (*TokenPair, error) {
	accountID := access.Account.ID

	refreshToken, err := as.tokens.IssueRefreshToken(accountID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.issueSession] IssueRefreshToken")
	}

	now := as.nowTime()
	session := &sessions.Session{
		AccountID:        accountID,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(as.tokens.RefreshTokenExpiry()),
		CreatedAt:        now,
		MagicLink:        magicLink,
	}
	if err := as.repos.Sessions.RevokeAllAndCreate(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.issueSession] RevokeAllAndCreate")
	}

	accessToken, err := as.tokens.IssueAccessToken(accountID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.issueSession] IssueAccessToken")
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh mints a new access token from an unrevoked, unexpired refresh token.
// The refresh token itself is not rotated.
func (as *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*AccessToken, error) {
	accountID, err := as.tokens.Verify(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	session, err := as.repos.Sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.Refresh] FindByRefreshToken")
	}
	if session == nil || session.AccountID != accountID {
		return nil, apperrors.ErrRefreshTokenNotFound
	}
	if session.Revoked {
		return nil, apperrors.ErrRefreshTokenRevoked
	}
	now := as.nowTime()
	if session.RefreshExpired(now) {
		return nil, apperrors.ErrRefreshTokenExpired
	}

	if err := as.repos.Sessions.TouchActivity(ctx, session.ID, now); err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.Refresh] TouchActivity")
	}

	accessToken, err := as.tokens.IssueAccessToken(accountID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.Refresh] IssueAccessToken")
	}
	return &AccessToken{AccessToken: accessToken}, nil
}

// SignOut revokes every session of the account.
func (as *AuthenticationService) SignOut(ctx context.Context, accountID string) error {
	if err := as.repos.Sessions.RevokeAll(ctx, accountID); err != nil {
		return errors.Wrap(err, "[AuthenticationService.SignOut] RevokeAll")
	}
	log.Info().Str("account_id", accountID).Msg("signed out")
	return nil
}

// CurrentAccount returns the profile of the account behind accessToken.
func (as *AuthenticationService) CurrentAccount(ctx context.Context, accessToken string) (*AccountProfile, error) {
	account, err := as.guard.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	bindings, err := as.repos.Users.ListBindings(ctx, account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[AuthenticationService.CurrentAccount] ListBindings")
	}

	profile := &AccountProfile{
		ID:            account.ID,
		Email:         account.Email,
		Name:          account.Name,
		Phone:         account.Phone,
		IsSuperuser:   account.IsSuperuser,
		SuperuserRole: account.SuperuserRole,
		Tenants:       make([]TenantMembership, 0, len(bindings)),
	}
	for _, b := range bindings {
		t, err := as.repos.Tenants.Get(ctx, b.TenantID)
		if err != nil {
			return nil, errors.Wrap(err, "[AuthenticationService.CurrentAccount] Tenants.Get")
		}
		if t == nil {
			log.Warn().Str("tenant_id", b.TenantID).Str("account_id", account.ID).Msg("binding references a missing tenant")
			continue
		}
		profile.Tenants = append(profile.Tenants, TenantMembership{
			TenantID:  t.ID,
			Name:      t.Name,
			Subdomain: t.Subdomain,
			Status:    b.Status,
			Role:      b.Role,
			CreatedAt: b.CreatedAt,
			UpdatedAt: b.UpdatedAt,
		})
	}
	return profile, nil
}

func generateState() (string, error) {
	b := make([]byte, stateLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
