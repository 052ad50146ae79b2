package management

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-tenant-auth/campaigns"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type CreateCampaignInput struct {
	Name               string                 `json:"name"`
	Announcer          string                 `json:"announcer"`
	Description        string                 `json:"description"`
	Budget             *float64               `json:"budget"`
	TargetGender       campaigns.TargetGender `json:"target_gender"`
	TargetAgeMin       int                    `json:"target_age_min"`
	TargetAgeMax       int                    `json:"target_age_max"`
	TargetAudienceSize int                    `json:"target_audience_size"`
	StartDate          time.Time              `json:"start_date"`
	EndDate            *time.Time             `json:"end_date"`
}

// UpdateCampaignInput replaces the targeting and schedule of a campaign. Name
// and start date are fixed at creation.
type UpdateCampaignInput struct {
	Budget             *float64               `json:"budget"`
	TargetGender       campaigns.TargetGender `json:"target_gender"`
	TargetAgeMin       int                    `json:"target_age_min"`
	TargetAgeMax       int                    `json:"target_age_max"`
	TargetAudienceSize int                    `json:"target_audience_size"`
	EndDate            *time.Time             `json:"end_date"`
}

func validTargeting(gender campaigns.TargetGender, ageMin, ageMax, audience int) bool {
	return gender.Valid() && ageMin >= 0 && ageMax >= ageMin && audience >= 0
}

func validEndDate(start time.Time, end *time.Time) bool {
	return end == nil || end.After(start)
}

// ListCampaigns returns the tenant's campaigns. A visitor binding limits the
// list to the campaigns bound to it; a nil binding sees everything.
func (s *Service) ListCampaigns(ctx context.Context, tenant *tenants.Tenant, binding *users.TenantBinding) ([]*campaigns.Campaign, error) {
	if err := realTenant(tenant); err != nil {
		return nil, err
	}

	list, err := s.campaigns.List(ctx, tenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.ListCampaigns] List")
	}
	if binding == nil || binding.Role != users.RoleVisitor {
		return list, nil
	}

	visible := make([]*campaigns.Campaign, 0, len(list))
	for _, c := range list {
		if binding.CanSeeCampaign(c.ID) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (s *Service) CreateCampaign(ctx context.Context, tenant *tenants.Tenant, in CreateCampaignInput) (*campaigns.Campaign, error) {
	if err := realTenant(tenant); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if !validName(name) {
		return nil, apperrors.ErrInvalidCampaignName
	}
	if !validTargeting(in.TargetGender, in.TargetAgeMin, in.TargetAgeMax, in.TargetAudienceSize) {
		return nil, apperrors.ErrInvalidCampaignInput
	}
	if in.StartDate.IsZero() || !validEndDate(in.StartDate, in.EndDate) {
		return nil, apperrors.ErrInvalidCampaignEndDate
	}

	existing, err := s.campaigns.GetByName(ctx, tenant.ID, name)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CreateCampaign] GetByName")
	}
	if existing != nil {
		return nil, apperrors.ErrCampaignExists
	}

	c := &campaigns.Campaign{
		TenantID:           tenant.ID,
		Name:               name,
		Announcer:          in.Announcer,
		Description:        in.Description,
		Budget:             in.Budget,
		TargetGender:       in.TargetGender,
		TargetAgeMin:       in.TargetAgeMin,
		TargetAgeMax:       in.TargetAgeMax,
		TargetAudienceSize: in.TargetAudienceSize,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		if errors.Is(err, apperrors.ErrCampaignExists) {
			return nil, apperrors.ErrCampaignExists
		}
		return nil, errors.Wrap(err, "[Service.CreateCampaign] Create")
	}
	log.Info().Str("campaign_id", c.ID).Str("tenant", tenant.Subdomain).Msg("campaign created")
	return c, nil
}

func (s *Service) UpdateCampaign(ctx context.Context, tenant *tenants.Tenant, campaignID string, in UpdateCampaignInput) (*campaigns.Campaign, error) {
	if err := realTenant(tenant); err != nil {
		return nil, err
	}

	c, err := s.campaigns.Get(ctx, tenant.ID, campaignID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateCampaign] Get")
	}
	if c == nil {
		return nil, apperrors.ErrCampaignNotFound
	}
	if !validTargeting(in.TargetGender, in.TargetAgeMin, in.TargetAgeMax, in.TargetAudienceSize) {
		return nil, apperrors.ErrInvalidCampaignInput
	}
	if !validEndDate(c.StartDate, in.EndDate) {
		return nil, apperrors.ErrInvalidCampaignEndDate
	}

	c.Budget = in.Budget
	c.TargetGender = in.TargetGender
	c.TargetAgeMin = in.TargetAgeMin
	c.TargetAgeMax = in.TargetAgeMax
	c.TargetAudienceSize = in.TargetAudienceSize
	c.EndDate = in.EndDate
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateCampaign] Update")
	}
	return c, nil
}

func (s *Service) DeleteCampaign(ctx context.Context, tenant *tenants.Tenant, campaignID string) error {
	if err := realTenant(tenant); err != nil {
		return err
	}
	if err := s.campaigns.Delete(ctx, tenant.ID, campaignID); err != nil {
		if errors.Is(err, apperrors.ErrCampaignNotFound) {
			return apperrors.ErrCampaignNotFound
		}
		return errors.Wrap(err, "[Service.DeleteCampaign] Delete")
	}
	log.Info().Str("campaign_id", campaignID).Str("tenant", tenant.Subdomain).Msg("campaign deleted")
	return nil
}
