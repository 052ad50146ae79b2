package fakesessionrepo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	order    []string // session ids in creation order
	lock     sync.RWMutex
}

func NewFakeSessionRepo() sessions.Repo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Create(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	return sr.create(session)
}

func (sr *FakeSessionRepo) create(session *sessions.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if _, ok := sr.sessions[session.ID]; ok {
		return errors.New("session already exists")
	}
	for _, s := range sr.sessions {
		if s.RefreshToken == session.RefreshToken {
			return errors.New("refresh token already stored")
		}
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	sr.sessions[session.ID] = copySession(session)
	sr.order = append(sr.order, session.ID)
	return nil
}

func (sr *FakeSessionRepo) RevokeAll(_ context.Context, accountID string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()
	sr.revokeAll(accountID)
	return nil
}

func (sr *FakeSessionRepo) revokeAll(accountID string) {
	for _, s := range sr.sessions {
		if s.AccountID == accountID {
			s.Revoked = true
		}
	}
}

func (sr *FakeSessionRepo) RevokeAllAndCreate(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	revoked := make([]string, 0)
	for id, s := range sr.sessions {
		if s.AccountID == session.AccountID && !s.Revoked {
			revoked = append(revoked, id)
		}
	}
	sr.revokeAll(session.AccountID)
	if err := sr.create(session); err != nil {
		for _, id := range revoked {
			sr.sessions[id].Revoked = false
		}
		return err
	}
	return nil
}

func (sr *FakeSessionRepo) FindActive(_ context.Context, accountID string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.newest(func(s *sessions.Session) bool {
		return s.AccountID == accountID && !s.Revoked
	}), nil
}

func (sr *FakeSessionRepo) FindByRefreshToken(_ context.Context, refreshToken string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.newest(func(s *sessions.Session) bool {
		return s.RefreshToken == refreshToken
	}), nil
}

func (sr *FakeSessionRepo) FindByMagicLinkToken(_ context.Context, token string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.newest(func(s *sessions.Session) bool {
		return s.MagicLink != nil && s.MagicLink.Token == token
	}), nil
}

func (sr *FakeSessionRepo) MarkMagicLinkUsed(_ context.Context, sessionID string, at time.Time) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	s, ok := sr.sessions[sessionID]
	if !ok || s.MagicLink == nil {
		return errors.New("not found")
	}
	if s.MagicLink.UsedAt != nil {
		return apperrors.ErrMagicLinkUsed
	}
	used := at
	s.MagicLink.UsedAt = &used
	return nil
}

func (sr *FakeSessionRepo) TouchActivity(_ context.Context, sessionID string, at time.Time) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	s, ok := sr.sessions[sessionID]
	if !ok {
		return errors.New("not found")
	}
	last := at
	s.LastUsedAt = &last
	return nil
}

func (sr *FakeSessionRepo) newest(match func(*sessions.Session) bool) *sessions.Session {
	for i := len(sr.order) - 1; i >= 0; i-- {
		s := sr.sessions[sr.order[i]]
		if match(s) {
			return copySession(s)
		}
	}
	return nil
}

func copySession(s *sessions.Session) *sessions.Session {
	c := *s
	if s.MagicLink != nil {
		ml := *s.MagicLink
		c.MagicLink = &ml
	}
	return &c
}
