package campaigns

import (
	"context"
	"time"
)

type TargetGender string

const (
	TargetMale   TargetGender = "male"
	TargetFemale TargetGender = "female"
	TargetBoth   TargetGender = "both"
)

func (g TargetGender) Valid() bool {
	return g == TargetMale || g == TargetFemale || g == TargetBoth
}

// Campaign is an advertising campaign record owned by one tenant.
type Campaign struct {
	ID                 string       `json:"id" db:"id"`
	TenantID           string       `json:"-" db:"tenant_id"`
	Name               string       `json:"name" db:"name"`
	Announcer          string       `json:"announcer" db:"announcer"`
	Description        string       `json:"description,omitempty" db:"description"`
	Budget             *float64     `json:"budget,omitempty" db:"budget"`
	TargetGender       TargetGender `json:"target_gender" db:"target_gender"`
	TargetAgeMin       int          `json:"target_age_min" db:"target_age_min"`
	TargetAgeMax       int          `json:"target_age_max" db:"target_age_max"`
	TargetAudienceSize int          `json:"target_audience_size" db:"target_audience_size"`
	StartDate          time.Time    `json:"start_date" db:"start_date"`
	EndDate            *time.Time   `json:"end_date,omitempty" db:"end_date"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// Repo stores campaigns scoped by tenant. Lookups return (nil, nil) when nothing matches.
type Repo interface {
	Create(ctx context.Context, campaign *Campaign) error
	Update(ctx context.Context, campaign *Campaign) error
	Get(ctx context.Context, tenantID, campaignID string) (*Campaign, error)
	// GetByName matches name case-insensitively within the tenant.
	GetByName(ctx context.Context, tenantID, name string) (*Campaign, error)
	List(ctx context.Context, tenantID string) ([]*Campaign, error)
	// Delete fails with ErrCampaignNotFound when the tenant has no such campaign.
	Delete(ctx context.Context, tenantID, campaignID string) error
}
