package sessions

import "time"

// MagicLink is the pending email login attached to a session.
type MagicLink struct {
	Token       string     `db:"magic_link_token"`
	RequestedAt time.Time  `db:"magic_link_requested_at"`
	ExpiresAt   time.Time  `db:"magic_link_expires_at"`
	UsedAt      *time.Time `db:"magic_link_used_at"`
}

func (m *MagicLink) Used() bool {
	return m.UsedAt != nil
}

// Expired reports whether the stored expiry has passed at now.
func (m *MagicLink) Expired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// Session is the durable record behind a refresh token. An account holds at
// most one session that is not revoked.
type Session struct {
	ID               string     `db:"id"`
	AccountID        string     `db:"account_id"`
	RefreshToken     string     `db:"refresh_token"`
	RefreshExpiresAt time.Time  `db:"refresh_token_expires_at"`
	Revoked          bool       `db:"revoked"`
	LastUsedAt       *time.Time `db:"last_used_at"`
	CreatedAt        time.Time  `db:"created_at"`
	MagicLink        *MagicLink `db:"-"`
}

// RefreshExpired reports whether the refresh token lifetime has passed at now.
func (s *Session) RefreshExpired(now time.Time) bool {
	return now.After(s.RefreshExpiresAt)
}
