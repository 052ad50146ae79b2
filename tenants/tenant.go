package tenants

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// HomeSubdomain lets any existing account sign in without a tenant binding.
	HomeSubdomain = "home"
	// AdminSubdomain is reserved for superusers.
	AdminSubdomain = "admin"
)

// Tenant is a customer organisation addressed by its subdomain.
type Tenant struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Subdomain    string    `json:"subdomain" db:"subdomain"`
	ContactEmail string    `json:"contact_email,omitempty" db:"contact_email"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsPseudo reports whether t is one of the synthesised home/admin tenants.
func (t *Tenant) IsPseudo() bool {
	return IsPseudoSubdomain(t.Subdomain)
}

func (t *Tenant) IsAdmin() bool {
	return t.Subdomain == AdminSubdomain
}

func (t *Tenant) IsHome() bool {
	return t.Subdomain == HomeSubdomain
}

func IsPseudoSubdomain(subdomain string) bool {
	return subdomain == HomeSubdomain || subdomain == AdminSubdomain
}

func pseudoTenant(subdomain string) *Tenant {
	name := "Home"
	if subdomain == AdminSubdomain {
		name = "Admin"
	}
	return &Tenant{ID: subdomain, Name: name, Subdomain: subdomain}
}

// Lookup resolves subdomain to a tenant, synthesising the pseudo-tenants.
// A nil tenant with a nil error means no such tenant.
func Lookup(ctx context.Context, repo Repo, subdomain string) (*Tenant, error) {
	subdomain = strings.TrimSpace(subdomain)
	if subdomain == "" {
		return nil, nil
	}
	if IsPseudoSubdomain(subdomain) {
		return pseudoTenant(subdomain), nil
	}
	t, err := repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, errors.Wrap(err, "[tenants.Lookup] GetBySubdomain")
	}
	return t, nil
}
