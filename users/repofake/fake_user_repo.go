package fakeuserrepo

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type bindingKey struct {
	accountID string
	tenantID  string
}

type FakeUserRepo struct {
	users    map[string]*users.Account
	emailIds map[string]string // email to account id
	bindings map[bindingKey]*users.TenantBinding
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.Repo {
	return &FakeUserRepo{
		users:    make(map[string]*users.Account),
		emailIds: make(map[string]string),
		bindings: make(map[bindingKey]*users.TenantBinding),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, account *users.Account) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if id, ok := ur.emailIds[account.Email]; ok && id != account.ID {
		if account.ID != "" {
			return errors.New("email already registered")
		}
		account.ID = id
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if existing, ok := ur.users[account.ID]; ok && existing.Email != account.Email {
		delete(ur.emailIds, existing.Email)
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	stored := *account
	ur.users[account.ID] = &stored
	ur.emailIds[account.Email] = account.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[email]
	if !ok {
		return nil, nil
	}
	found := *ur.users[id]
	return &found, nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	a, ok := ur.users[id]
	if !ok {
		return nil, nil
	}
	found := *a
	return &found, nil
}

func (ur *FakeUserRepo) GetBinding(_ context.Context, accountID, tenantID string) (*users.TenantBinding, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	b, ok := ur.bindings[bindingKey{accountID, tenantID}]
	if !ok {
		return nil, nil
	}
	return copyBinding(b), nil
}

func (ur *FakeUserRepo) ListBindings(_ context.Context, accountID string) ([]*users.TenantBinding, error) {
	return ur.filterBindings(func(b *users.TenantBinding) bool { return b.AccountID == accountID }), nil
}

func (ur *FakeUserRepo) ListTenantBindings(_ context.Context, tenantID string) ([]*users.TenantBinding, error) {
	return ur.filterBindings(func(b *users.TenantBinding) bool { return b.TenantID == tenantID }), nil
}

func (ur *FakeUserRepo) filterBindings(match func(*users.TenantBinding) bool) []*users.TenantBinding {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.TenantBinding, 0)
	for _, b := range ur.bindings {
		if match(b) {
			list = append(list, copyBinding(b))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].AccountID+list[i].TenantID < list[j].AccountID+list[j].TenantID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (ur *FakeUserRepo) CreateBinding(_ context.Context, binding *users.TenantBinding) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.users[binding.AccountID]; !ok {
		return errors.New("account not found")
	}
	key := bindingKey{binding.AccountID, binding.TenantID}
	if _, ok := ur.bindings[key]; ok {
		return apperrors.ErrBindingExists
	}
	now := time.Now().UTC()
	if binding.CreatedAt.IsZero() {
		binding.CreatedAt = now
	}
	binding.UpdatedAt = now
	if binding.Status == "" {
		binding.Status = users.StatusActive
	}
	ur.bindings[key] = copyBinding(binding)
	return nil
}

func (ur *FakeUserRepo) UpdateBinding(_ context.Context, binding *users.TenantBinding) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := bindingKey{binding.AccountID, binding.TenantID}
	existing, ok := ur.bindings[key]
	if !ok {
		return apperrors.ErrBindingNotFound
	}
	binding.CreatedAt = existing.CreatedAt
	binding.UpdatedAt = time.Now().UTC()
	ur.bindings[key] = copyBinding(binding)
	return nil
}

func copyBinding(b *users.TenantBinding) *users.TenantBinding {
	c := *b
	c.CampaignIDs = slices.Clone(b.CampaignIDs)
	return &c
}
