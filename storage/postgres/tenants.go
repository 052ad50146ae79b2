package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/pkg/errors"
)

const tenantColumns = `id, name, subdomain, contact_email, created_at, updated_at`

type TenantRepo struct {
	pool *pgxpool.Pool
}

var _ tenants.Repo = (*TenantRepo)(nil)

func NewTenantRepo(pool *pgxpool.Pool) *TenantRepo {
	return &TenantRepo{pool: pool}
}

func (r *TenantRepo) Upsert(ctx context.Context, tenant *tenants.Tenant) error {
	if tenants.IsPseudoSubdomain(tenant.Subdomain) {
		return errors.Errorf("[TenantRepo.Upsert] %q is a reserved subdomain", tenant.Subdomain)
	}
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}

	var stored tenants.Tenant
	if _, err := get(ctx, r.pool, &stored, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, subdomain = EXCLUDED.subdomain,
			contact_email = EXCLUDED.contact_email, updated_at = EXCLUDED.updated_at
		RETURNING `+tenantColumns,
		tenant.ID, tenant.Name, tenant.Subdomain, tenant.ContactEmail, time.Now().UTC(),
	); err != nil {
		return errors.Wrap(err, "[TenantRepo.Upsert]")
	}
	*tenant = stored
	return nil
}

func (r *TenantRepo) Get(ctx context.Context, tenantID string) (*tenants.Tenant, error) {
	return r.getTenant(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, tenantID)
}

func (r *TenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*tenants.Tenant, error) {
	return r.getTenant(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE subdomain = $1`, subdomain)
}

func (r *TenantRepo) getTenant(ctx context.Context, query, arg string) (*tenants.Tenant, error) {
	var t tenants.Tenant
	found, err := get(ctx, r.pool, &t, query, arg)
	if err != nil {
		return nil, errors.Wrap(err, "[TenantRepo.getTenant]")
	}
	if !found {
		return nil, nil
	}
	return &t, nil
}

// List pages tenants ordered by subdomain. A limit of zero returns every row after offset.
func (r *TenantRepo) List(ctx context.Context, offset, limit int) ([]*tenants.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY subdomain OFFSET $1`
	args := []any{offset}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var list []*tenants.Tenant
	if err := selectAll(ctx, r.pool, &list, query, args...); err != nil {
		return nil, errors.Wrap(err, "[TenantRepo.List]")
	}
	return list, nil
}
