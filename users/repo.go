package users

import "context"

// Repo stores accounts and their tenant bindings. Lookups return (nil, nil)
// when nothing matches.
type Repo interface {
	Upsert(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)

	GetBinding(ctx context.Context, accountID, tenantID string) (*TenantBinding, error)
	ListBindings(ctx context.Context, accountID string) ([]*TenantBinding, error)
	ListTenantBindings(ctx context.Context, tenantID string) ([]*TenantBinding, error)
	// CreateBinding fails with ErrBindingExists when the pair is already bound.
	CreateBinding(ctx context.Context, binding *TenantBinding) error
	// UpdateBinding fails with ErrBindingNotFound when the pair is not bound.
	UpdateBinding(ctx context.Context, binding *TenantBinding) error
}
