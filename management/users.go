package management

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/internal/utils"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TenantUser is an account seen through its binding to one tenant.
type TenantUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone"`
	Status      string     `json:"status"`
	Role        users.Role `json:"role"`
	CampaignIDs []string   `json:"campaign_ids"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newTenantUser(a *users.Account, b *users.TenantBinding) TenantUser {
	ids := b.CampaignIDs
	if ids == nil {
		ids = []string{}
	}
	return TenantUser{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Phone:       a.Phone,
		Status:      b.Status,
		Role:        b.Role,
		CampaignIDs: ids,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type CreateUserInput struct {
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Role        users.Role `json:"role"`
	CampaignIDs []string   `json:"campaign_ids"`
}

type UpdateUserInput struct {
	Role        users.Role `json:"role"`
	CampaignIDs []string   `json:"campaign_ids"`
	// Status is optional; empty keeps the current status.
	Status string `json:"status,omitempty"`
}

// ListTenantUsers returns every account bound to tenant.
func (s *Service) ListTenantUsers(ctx context.Context, tenant *tenants.Tenant) ([]TenantUser, error) {
	if err := realTenant(tenant); err != nil {
		return nil, err
	}

	bindings, err := s.users.ListTenantBindings(ctx, tenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.ListTenantUsers] ListTenantBindings")
	}

	list := make([]TenantUser, 0, len(bindings))
	for _, b := range bindings {
		a, err := s.users.GetByID(ctx, b.AccountID)
		if err != nil {
			return nil, errors.Wrap(err, "[Service.ListTenantUsers] GetByID")
		}
		if a == nil {
			log.Warn().Str("account_id", b.AccountID).Str("tenant_id", tenant.ID).Msg("binding references a missing account")
			continue
		}
		list = append(list, newTenantUser(a, b))
	}
	return list, nil
}

// CreateTenantUser binds an account to tenant, creating the account when the
// email is not registered yet.
func (s *Service) CreateTenantUser(ctx context.Context, tenant *tenants.Tenant, in CreateUserInput) (*TenantUser, error) {
	if err := realTenant(tenant); err != nil {
		return nil, err
	}
	if !validName(in.Name) {
		return nil, apperrors.ErrInvalidUserName
	}
	if !utils.IsEmail(in.Email) {
		return nil, apperrors.ErrInvalidUserEmail
	}
	if err := s.validateRole(ctx, tenant, in.Role, in.CampaignIDs); err != nil {
		return nil, err
	}

	account, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CreateTenantUser] GetByEmail")
	}
	if account == nil {
		account = &users.Account{Email: in.Email, Name: in.Name}
		if in.Phone != "" {
			account.Phone = utils.Ptr(in.Phone)
		}
		if err := s.users.Upsert(ctx, account); err != nil {
			return nil, errors.Wrap(err, "[Service.CreateTenantUser] Upsert")
		}
		log.Info().Str("account_id", account.ID).Msg("account created")
	}

	binding := &users.TenantBinding{
		AccountID:   account.ID,
		TenantID:    tenant.ID,
		Role:        in.Role,
		Status:      users.StatusActive,
		CampaignIDs: visitorCampaigns(in.Role, in.CampaignIDs),
	}
	if err := s.users.CreateBinding(ctx, binding); err != nil {
		if errors.Is(err, apperrors.ErrBindingExists) {
			return nil, apperrors.ErrBindingExists
		}
		return nil, errors.Wrap(err, "[Service.CreateTenantUser] CreateBinding")
	}

	u := newTenantUser(account, binding)
	return &u, nil
}

// UpdateTenantUser changes the role, campaigns or status of an existing binding.
func (s *Service) UpdateTenantUser(ctx context.Context, tenant *tenants.Tenant, accountID string, in UpdateUserInput) (*TenantUser, error) {
	if err := realTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.validateRole(ctx, tenant, in.Role, in.CampaignIDs); err != nil {
		return nil, err
	}
	if in.Status != "" && in.Status != users.StatusActive && in.Status != users.StatusInactive {
		return nil, apperrors.Invalid("status must be %q or %q", users.StatusActive, users.StatusInactive)
	}

	account, err := s.users.GetByID(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateTenantUser] GetByID")
	}
	if account == nil {
		return nil, apperrors.ErrUserNotFound
	}

	binding, err := s.users.GetBinding(ctx, account.ID, tenant.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateTenantUser] GetBinding")
	}
	if binding == nil {
		return nil, apperrors.ErrBindingNotFound
	}

	binding.Role = in.Role
	binding.CampaignIDs = visitorCampaigns(in.Role, in.CampaignIDs)
	if in.Status != "" {
		binding.Status = in.Status
	}
	if err := s.users.UpdateBinding(ctx, binding); err != nil {
		if errors.Is(err, apperrors.ErrBindingNotFound) {
			return nil, apperrors.ErrBindingNotFound
		}
		return nil, errors.Wrap(err, "[Service.UpdateTenantUser] UpdateBinding")
	}

	u := newTenantUser(account, binding)
	return &u, nil
}

// validateRole requires visitors to name at least one campaign, all owned by tenant.
func (s *Service) validateRole(ctx context.Context, tenant *tenants.Tenant, role users.Role, campaignIDs []string) error {
	if !role.Valid() {
		return apperrors.ErrInvalidRole
	}
	if role != users.RoleVisitor {
		return nil
	}
	if len(campaignIDs) == 0 {
		return apperrors.ErrInvalidRole
	}

	owned, err := s.campaigns.List(ctx, tenant.ID)
	if err != nil {
		return errors.Wrap(err, "[Service.validateRole] List")
	}
	ids := make([]string, 0, len(owned))
	for _, c := range owned {
		ids = append(ids, c.ID)
	}
	if !utils.Subset(campaignIDs, ids) {
		return apperrors.ErrCampaignNotAssociated
	}
	return nil
}

// visitorCampaigns drops campaign restrictions from roles that see every campaign.
func visitorCampaigns(role users.Role, ids []string) []string {
	if role != users.RoleVisitor {
		return nil
	}
	return ids
}
