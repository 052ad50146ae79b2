package fakecampaignrepo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-tenant-auth/campaigns"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
)

var _ campaigns.Repo = (*FakeCampaignRepo)(nil)

type FakeCampaignRepo struct {
	campaigns map[string]*campaigns.Campaign
	lock      sync.RWMutex
}

func NewFakeCampaignRepo() campaigns.Repo {
	return &FakeCampaignRepo{
		campaigns: make(map[string]*campaigns.Campaign),
	}
}

func (cr *FakeCampaignRepo) Create(_ context.Context, campaign *campaigns.Campaign) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}
	if _, ok := cr.campaigns[campaign.ID]; ok {
		return errors.New("campaign already exists")
	}
	now := time.Now().UTC()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now
	stored := *campaign
	cr.campaigns[campaign.ID] = &stored
	return nil
}

func (cr *FakeCampaignRepo) Update(_ context.Context, campaign *campaigns.Campaign) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	existing, ok := cr.campaigns[campaign.ID]
	if !ok || existing.TenantID != campaign.TenantID {
		return errors.New("not found")
	}
	campaign.CreatedAt = existing.CreatedAt
	campaign.UpdatedAt = time.Now().UTC()
	stored := *campaign
	cr.campaigns[campaign.ID] = &stored
	return nil
}

func (cr *FakeCampaignRepo) Get(_ context.Context, tenantID, campaignID string) (*campaigns.Campaign, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	c, ok := cr.campaigns[campaignID]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	found := *c
	return &found, nil
}

func (cr *FakeCampaignRepo) GetByName(_ context.Context, tenantID, name string) (*campaigns.Campaign, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	for _, c := range cr.campaigns {
		if c.TenantID == tenantID && strings.EqualFold(c.Name, name) {
			found := *c
			return &found, nil
		}
	}
	return nil, nil
}

func (cr *FakeCampaignRepo) List(_ context.Context, tenantID string) ([]*campaigns.Campaign, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	list := make([]*campaigns.Campaign, 0)
	for _, c := range cr.campaigns {
		if c.TenantID == tenantID {
			found := *c
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list, nil
}

func (cr *FakeCampaignRepo) Delete(_ context.Context, tenantID, campaignID string) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	c, ok := cr.campaigns[campaignID]
	if !ok || c.TenantID != tenantID {
		return apperrors.ErrCampaignNotFound
	}
	delete(cr.campaigns, campaignID)
	return nil
}
