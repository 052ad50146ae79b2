package users

import (
	"slices"
	"time"
)

// Role is an account's role inside one tenant.
type Role string

const (
	RoleManager   Role = "MANAGER"   // Full access to the tenant, manages users
	RoleAnalyst   Role = "ANALYST"   // Access to all tenant campaigns and metrics
	RoleOperation Role = "OPERATION" // Operational access
	RoleVisitor   Role = "VISITOR"   // Restricted to the campaigns bound to it
)

var validRoles = []Role{RoleManager, RoleAnalyst, RoleOperation, RoleVisitor}

func (r Role) Valid() bool {
	return slices.Contains(validRoles, r)
}

// SuperuserRole is the platform tier of a superuser.
type SuperuserRole string

const (
	SuperuserAdmin SuperuserRole = "ADMIN"
	SuperuserStaff SuperuserRole = "STAFF"
)

func (s SuperuserRole) Valid() bool {
	return s == SuperuserAdmin || s == SuperuserStaff
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Account is a person identified by email, independent of any tenant.
type Account struct {
	ID            string        `json:"id" db:"id"`
	Email         string        `json:"email" db:"email"`
	Name          string        `json:"name" db:"name"`
	Phone         *string       `json:"phone,omitempty" db:"phone"`
	IsSuperuser   bool          `json:"is_superuser" db:"is_superuser"`
	SuperuserRole SuperuserRole `json:"superuser_role,omitempty" db:"superuser_role"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// HasSuperuserRole reports whether a is a superuser holding one of roles. No roles means any tier.
func (a *Account) HasSuperuserRole(roles ...SuperuserRole) bool {
	if !a.IsSuperuser {
		return false
	}
	return len(roles) == 0 || slices.Contains(roles, a.SuperuserRole)
}

// TenantBinding grants an account a role inside a tenant.
type TenantBinding struct {
	AccountID   string    `json:"account_id" db:"account_id"`
	TenantID    string    `json:"tenant_id" db:"tenant_id"`
	Role        Role      `json:"role" db:"role"`
	Status      string    `json:"status" db:"status"`
	CampaignIDs []string  `json:"campaign_ids,omitempty" db:"campaign_ids"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (b *TenantBinding) IsActive() bool {
	return b.Status == StatusActive
}

// CanSeeCampaign reports whether the binding grants visibility of campaignID.
// Only visitors are restricted.
func (b *TenantBinding) CanSeeCampaign(campaignID string) bool {
	if b.Role != RoleVisitor {
		return true
	}
	return slices.Contains(b.CampaignIDs, campaignID)
}
