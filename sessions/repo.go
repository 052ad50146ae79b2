package sessions

import (
	"context"
	"time"
)

// Repo stores sessions. Lookups return (nil, nil) when nothing matches.
type Repo interface {
	// Create stores a new session without touching existing ones.
	Create(ctx context.Context, session *Session) error

	// RevokeAll marks every session of accountID revoked. Idempotent.
	RevokeAll(ctx context.Context, accountID string) error

	// RevokeAllAndCreate revokes every session of the account and stores
	// session as one atomic step, so concurrent logins leave one active session.
	RevokeAllAndCreate(ctx context.Context, session *Session) error

	// FindActive returns a non-revoked session of accountID.
	FindActive(ctx context.Context, accountID string) (*Session, error)

	FindByRefreshToken(ctx context.Context, refreshToken string) (*Session, error)

	// FindByMagicLinkToken returns the most recently created session carrying token.
	FindByMagicLinkToken(ctx context.Context, token string) (*Session, error)

	// MarkMagicLinkUsed fails with ErrMagicLinkUsed when the link was already redeemed.
	MarkMagicLinkUsed(ctx context.Context, sessionID string, at time.Time) error

	TouchActivity(ctx context.Context, sessionID string, at time.Time) error
}
