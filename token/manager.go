package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 30 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Manager mints and verifies the stateless access and refresh tokens. It never
// consults storage; revocation is enforced by the session store.
type Manager struct {
	signer             Signer
	issuer             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// WithIssuer adds an iss claim to minted tokens and requires it on verification.
func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer: signer,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if m.refreshTokenExpiry <= 0 {
		m.refreshTokenExpiry = DefaultRefreshTokenExpiry
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

func (m *Manager) RefreshTokenExpiry() time.Duration {
	return m.refreshTokenExpiry
}

// IssueAccessToken mints a short lived token for accountID.
func (m *Manager) IssueAccessToken(accountID string) (string, error) {
	signed, err := m.issue(accountID, m.accessTokenExpiry)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.IssueAccessToken]")
	}
	return signed, nil
}

// IssueRefreshToken mints a long lived token for accountID. Each call yields a distinct token.
func (m *Manager) IssueRefreshToken(accountID string) (string, error) {
	signed, err := m.issue(accountID, m.refreshTokenExpiry)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.IssueRefreshToken]")
	}
	return signed, nil
}

func (m *Manager) issue(accountID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", errors.New("account id is required")
	}
	now := m.nowFunc()
	claims := jwt.MapClaims{
		"sub": accountID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.New().String(),
	}
	if m.issuer != "" {
		claims["iss"] = m.issuer
	}
	return m.signer.Sign(claims)
}

// Verify checks the signature and expiry of raw and returns the account id it was minted for.
func (m *Manager) Verify(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrInvalidToken
	}

	options := []jwt.ParserOption{
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		options = append(options, jwt.WithIssuer(m.issuer))
	}

	claims, err := Parse(m.signer, raw, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
