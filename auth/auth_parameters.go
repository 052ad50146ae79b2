package auth

import (
	"time"

	"github.com/jrsteele09/go-tenant-auth/providers"
	"github.com/jrsteele09/go-tenant-auth/users"
)

const MagicLinkSentMessage = "Magic link email sent"

// LoginRequest starts a login with one provider.
type LoginRequest struct {
	Provider        providers.Tag
	Email           string // Email provider only
	TenantSubdomain string
	// CallbackURL receives the user after the provider step. For the email
	// provider the magic link token is appended to it.
	CallbackURL string
}

// LoginRedirect is returned by RequestLogin. Federated providers fill
// RedirectURL and State; the email provider fills Message.
type LoginRedirect struct {
	RedirectURL string `json:"redirect_url,omitempty"`
	State       string `json:"state,omitempty"`
	Message     string `json:"message,omitempty"`
}

// CallbackRequest completes a login. Token is the magic link token for the
// email provider or the authorization code for federated providers.
type CallbackRequest struct {
	Provider        providers.Tag
	Token           string
	TenantSubdomain string
	CallbackURL     string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
}

// TenantMembership describes one tenant binding of the current account.
type TenantMembership struct {
	TenantID  string     `json:"tenant_id"`
	Name      string     `json:"name"`
	Subdomain string     `json:"subdomain"`
	Status    string     `json:"status"`
	Role      users.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AccountProfile is the signed in account together with its tenants.
type AccountProfile struct {
	ID            string              `json:"id"`
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	Phone         *string             `json:"phone,omitempty"`
	IsSuperuser   bool                `json:"is_superuser"`
	SuperuserRole users.SuperuserRole `json:"superuser_role,omitempty"`
	Tenants       []TenantMembership  `json:"tenants"`
}
