package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-tenant-auth/campaigns"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/pkg/errors"
)

const campaignColumns = `id, tenant_id, name, announcer, description, budget, target_gender,
	target_age_min, target_age_max, target_audience_size, start_date, end_date, created_at, updated_at`

type CampaignRepo struct {
	pool *pgxpool.Pool
}

var _ campaigns.Repo = (*CampaignRepo)(nil)

func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

func (r *CampaignRepo) Create(ctx context.Context, c *campaigns.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := exec(ctx, r.pool, `INSERT INTO campaigns (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		c.ID, c.TenantID, c.Name, c.Announcer, c.Description, c.Budget, string(c.TargetGender),
		c.TargetAgeMin, c.TargetAgeMax, c.TargetAudienceSize, c.StartDate, c.EndDate, now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrCampaignExists
		}
		return errors.Wrap(err, "[CampaignRepo.Create]")
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (r *CampaignRepo) Update(ctx context.Context, c *campaigns.Campaign) error {
	now := time.Now().UTC()
	tag, err := exec(ctx, r.pool, `UPDATE campaigns SET
			name = $3, announcer = $4, description = $5, budget = $6, target_gender = $7,
			target_age_min = $8, target_age_max = $9, target_audience_size = $10,
			start_date = $11, end_date = $12, updated_at = $13
		WHERE id = $1 AND tenant_id = $2`,
		c.ID, c.TenantID, c.Name, c.Announcer, c.Description, c.Budget, string(c.TargetGender),
		c.TargetAgeMin, c.TargetAgeMax, c.TargetAudienceSize, c.StartDate, c.EndDate, now)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrCampaignExists
		}
		return errors.Wrap(err, "[CampaignRepo.Update]")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCampaignNotFound
	}
	c.UpdatedAt = now
	return nil
}

func (r *CampaignRepo) Get(ctx context.Context, tenantID, campaignID string) (*campaigns.Campaign, error) {
	return r.getCampaign(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE tenant_id = $1 AND id = $2`, tenantID, campaignID)
}

func (r *CampaignRepo) GetByName(ctx context.Context, tenantID, name string) (*campaigns.Campaign, error) {
	return r.getCampaign(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE tenant_id = $1 AND lower(name) = lower($2)`, tenantID, name)
}

func (r *CampaignRepo) getCampaign(ctx context.Context, query string, args ...any) (*campaigns.Campaign, error) {
	var c campaigns.Campaign
	found, err := get(ctx, r.pool, &c, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "[CampaignRepo.getCampaign]")
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

func (r *CampaignRepo) List(ctx context.Context, tenantID string) ([]*campaigns.Campaign, error) {
	var list []*campaigns.Campaign
	if err := selectAll(ctx, r.pool, &list,
		`SELECT `+campaignColumns+` FROM campaigns WHERE tenant_id = $1 ORDER BY name`, tenantID); err != nil {
		return nil, errors.Wrap(err, "[CampaignRepo.List]")
	}
	return list, nil
}

func (r *CampaignRepo) Delete(ctx context.Context, tenantID, campaignID string) error {
	tag, err := exec(ctx, r.pool, `DELETE FROM campaigns WHERE tenant_id = $1 AND id = $2`, tenantID, campaignID)
	if err != nil {
		return errors.Wrap(err, "[CampaignRepo.Delete]")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCampaignNotFound
	}
	return nil
}
