package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
)

const (
	accountColumns = `id, email, name, phone, is_superuser, superuser_role, created_at, updated_at`
	bindingColumns = `account_id, tenant_id, role, status, campaign_ids, created_at, updated_at`
)

type UserRepo struct {
	pool *pgxpool.Pool
}

var _ users.Repo = (*UserRepo)(nil)

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Upsert inserts or updates an account. Without an id the row is matched by email.
func (r *UserRepo) Upsert(ctx context.Context, account *users.Account) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email, name = EXCLUDED.name, phone = EXCLUDED.phone,
			is_superuser = EXCLUDED.is_superuser, superuser_role = EXCLUDED.superuser_role,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + accountColumns
	id := account.ID
	if id == "" {
		id = uuid.New().String()
		query = `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name, phone = EXCLUDED.phone,
			is_superuser = EXCLUDED.is_superuser, superuser_role = EXCLUDED.superuser_role,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + accountColumns
	}

	var stored users.Account
	if _, err := get(ctx, r.pool, &stored, query,
		id, account.Email, account.Name, account.Phone,
		account.IsSuperuser, string(account.SuperuserRole), now,
	); err != nil {
		return errors.Wrap(err, "[UserRepo.Upsert]")
	}
	*account = stored
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.Account, error) {
	return r.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.Account, error) {
	return r.getAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *UserRepo) getAccount(ctx context.Context, query string, arg string) (*users.Account, error) {
	var a users.Account
	found, err := get(ctx, r.pool, &a, query, arg)
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.getAccount]")
	}
	if !found {
		return nil, nil
	}
	return &a, nil
}

func (r *UserRepo) GetBinding(ctx context.Context, accountID, tenantID string) (*users.TenantBinding, error) {
	var b users.TenantBinding
	found, err := get(ctx, r.pool, &b,
		`SELECT `+bindingColumns+` FROM tenant_bindings WHERE account_id = $1 AND tenant_id = $2`,
		accountID, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "[UserRepo.GetBinding]")
	}
	if !found {
		return nil, nil
	}
	return &b, nil
}

func (r *UserRepo) ListBindings(ctx context.Context, accountID string) ([]*users.TenantBinding, error) {
	var list []*users.TenantBinding
	if err := selectAll(ctx, r.pool, &list,
		`SELECT `+bindingColumns+` FROM tenant_bindings WHERE account_id = $1 ORDER BY created_at`,
		accountID); err != nil {
		return nil, errors.Wrap(err, "[UserRepo.ListBindings]")
	}
	return list, nil
}

func (r *UserRepo) ListTenantBindings(ctx context.Context, tenantID string) ([]*users.TenantBinding, error) {
	var list []*users.TenantBinding
	if err := selectAll(ctx, r.pool, &list,
		`SELECT `+bindingColumns+` FROM tenant_bindings WHERE tenant_id = $1 ORDER BY created_at`,
		tenantID); err != nil {
		return nil, errors.Wrap(err, "[UserRepo.ListTenantBindings]")
	}
	return list, nil
}

func (r *UserRepo) CreateBinding(ctx context.Context, binding *users.TenantBinding) error {
	now := time.Now().UTC()
	if binding.Status == "" {
		binding.Status = users.StatusActive
	}
	_, err := exec(ctx, r.pool,
		`INSERT INTO tenant_bindings (`+bindingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		binding.AccountID, binding.TenantID, string(binding.Role), binding.Status, campaignIDs(binding.CampaignIDs), now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrBindingExists
		}
		return errors.Wrap(err, "[UserRepo.CreateBinding]")
	}
	binding.CreatedAt = now
	binding.UpdatedAt = now
	return nil
}

func (r *UserRepo) UpdateBinding(ctx context.Context, binding *users.TenantBinding) error {
	now := time.Now().UTC()
	tag, err := exec(ctx, r.pool,
		`UPDATE tenant_bindings SET role = $3, status = $4, campaign_ids = $5, updated_at = $6
		 WHERE account_id = $1 AND tenant_id = $2`,
		binding.AccountID, binding.TenantID, string(binding.Role), binding.Status, campaignIDs(binding.CampaignIDs), now)
	if err != nil {
		return errors.Wrap(err, "[UserRepo.UpdateBinding]")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBindingNotFound
	}
	binding.UpdatedAt = now
	return nil
}

// campaignIDs keeps NULL out of the NOT NULL array column.
func campaignIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
