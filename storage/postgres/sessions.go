package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/sessions"
	"github.com/pkg/errors"
)

const sessionColumns = `id, account_id, refresh_token, refresh_expires_at, revoked, last_used_at,
	magic_link_token, magic_link_requested_at, magic_link_expires_at, magic_link_used_at, created_at`

// sessionRow flattens the optional magic link into nullable columns.
type sessionRow struct {
	ID                   string     `db:"id"`
	AccountID            string     `db:"account_id"`
	RefreshToken         string     `db:"refresh_token"`
	RefreshExpiresAt     time.Time  `db:"refresh_expires_at"`
	Revoked              bool       `db:"revoked"`
	LastUsedAt           *time.Time `db:"last_used_at"`
	MagicLinkToken       *string    `db:"magic_link_token"`
	MagicLinkRequestedAt *time.Time `db:"magic_link_requested_at"`
	MagicLinkExpiresAt   *time.Time `db:"magic_link_expires_at"`
	MagicLinkUsedAt      *time.Time `db:"magic_link_used_at"`
	CreatedAt            time.Time  `db:"created_at"`
}

func (r *sessionRow) session() *sessions.Session {
	s := &sessions.Session{
		ID:               r.ID,
		AccountID:        r.AccountID,
		RefreshToken:     r.RefreshToken,
		RefreshExpiresAt: r.RefreshExpiresAt,
		Revoked:          r.Revoked,
		LastUsedAt:       r.LastUsedAt,
		CreatedAt:        r.CreatedAt,
	}
	if r.MagicLinkToken != nil {
		s.MagicLink = &sessions.MagicLink{
			Token:  *r.MagicLinkToken,
			UsedAt: r.MagicLinkUsedAt,
		}
		if r.MagicLinkRequestedAt != nil {
			s.MagicLink.RequestedAt = *r.MagicLinkRequestedAt
		}
		if r.MagicLinkExpiresAt != nil {
			s.MagicLink.ExpiresAt = *r.MagicLinkExpiresAt
		}
	}
	return s
}

type SessionRepo struct {
	pool *pgxpool.Pool
}

var _ sessions.Repo = (*SessionRepo)(nil)

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, session *sessions.Session) error {
	if err := insertSession(ctx, r.pool, session); err != nil {
		return errors.Wrap(err, "[SessionRepo.Create]")
	}
	return nil
}

func (r *SessionRepo) RevokeAll(ctx context.Context, accountID string) error {
	if _, err := exec(ctx, r.pool, `UPDATE sessions SET revoked = TRUE WHERE account_id = $1 AND NOT revoked`, accountID); err != nil {
		return errors.Wrap(err, "[SessionRepo.RevokeAll]")
	}
	return nil
}

// RevokeAllAndCreate locks the account row so concurrent logins for one
// account serialise and the last one to commit is the only active session.
func (r *SessionRepo) RevokeAllAndCreate(ctx context.Context, session *sessions.Session) error {
	err := withTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, session.AccountID); err != nil {
			return errors.Wrap(err, "lock account")
		}
		if _, err := tx.Exec(ctx, `UPDATE sessions SET revoked = TRUE WHERE account_id = $1 AND NOT revoked`, session.AccountID); err != nil {
			return errors.Wrap(err, "revoke")
		}
		return insertSession(ctx, tx, session)
	})
	if err != nil {
		return errors.Wrap(err, "[SessionRepo.RevokeAllAndCreate]")
	}
	return nil
}

func insertSession(ctx context.Context, db DBTX, s *sessions.Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	var token *string
	var requestedAt, expiresAt, usedAt *time.Time
	if s.MagicLink != nil {
		token = &s.MagicLink.Token
		requestedAt = &s.MagicLink.RequestedAt
		expiresAt = &s.MagicLink.ExpiresAt
		usedAt = s.MagicLink.UsedAt
	}

	_, err := exec(ctx, db, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.AccountID, s.RefreshToken, s.RefreshExpiresAt, s.Revoked, s.LastUsedAt,
		token, requestedAt, expiresAt, usedAt, s.CreatedAt)
	return err
}

func (r *SessionRepo) FindActive(ctx context.Context, accountID string) (*sessions.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE account_id = $1 AND NOT revoked ORDER BY created_at DESC LIMIT 1`, accountID)
}

func (r *SessionRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (*sessions.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = $1`, refreshToken)
}

func (r *SessionRepo) FindByMagicLinkToken(ctx context.Context, token string) (*sessions.Session, error) {
	return r.findOne(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE magic_link_token = $1 ORDER BY created_at DESC LIMIT 1`, token)
}

func (r *SessionRepo) findOne(ctx context.Context, query, arg string) (*sessions.Session, error) {
	var row sessionRow
	found, err := get(ctx, r.pool, &row, query, arg)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionRepo.findOne]")
	}
	if !found {
		return nil, nil
	}
	return row.session(), nil
}

// MarkMagicLinkUsed only succeeds for the first caller.
func (r *SessionRepo) MarkMagicLinkUsed(ctx context.Context, sessionID string, at time.Time) error {
	tag, err := exec(ctx, r.pool, `UPDATE sessions SET magic_link_used_at = $2
		WHERE id = $1 AND magic_link_token IS NOT NULL AND magic_link_used_at IS NULL`, sessionID, at)
	if err != nil {
		return errors.Wrap(err, "[SessionRepo.MarkMagicLinkUsed]")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMagicLinkUsed
	}
	return nil
}

func (r *SessionRepo) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	tag, err := exec(ctx, r.pool, `UPDATE sessions SET last_used_at = $2 WHERE id = $1`, sessionID, at)
	if err != nil {
		return errors.Wrap(err, "[SessionRepo.TouchActivity]")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("[SessionRepo.TouchActivity] session %s not found", sessionID)
	}
	return nil
}
