package tenants

import "context"

// Repo stores real tenants. Lookups return (nil, nil) when nothing matches.
type Repo interface {
	Upsert(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, tenantID string) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	List(ctx context.Context, offset, limit int) ([]*Tenant, error)
}
