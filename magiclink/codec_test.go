package magiclink_test

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/magiclink"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/stretchr/testify/require"
)

const (
	secretStr     = "1234"
	testSalt      = "salt"
	testUserEmail = "john.doe@example.com"
)

func newTestCodec(t *testing.T, now *time.Time) *magiclink.Codec {
	t.Helper()
	c, err := magiclink.NewCodec(secretStr, testSalt, magiclink.WithNowFunc(func() time.Time { return *now }))
	require.NoError(t, err)
	return c
}

func TestIssueVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, &now)
	require.Equal(t, magiclink.DefaultMaxAge, c.MaxAge())

	signed, err := c.Issue(testUserEmail)
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	email, err := c.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, testUserEmail, email)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, &now)

	signed, err := c.Issue(testUserEmail)
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = c.Verify(signed)
	require.ErrorIs(t, err, apperrors.ErrMagicLinkExpired)
}

func TestVerifyTampered(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, &now)

	signed, err := c.Issue(testUserEmail)
	require.NoError(t, err)

	dot := strings.LastIndex(signed, ".")
	swap := "A"
	if signed[dot+1] == 'A' {
		swap = "B"
	}
	_, err = c.Verify(signed[:dot+1] + swap + signed[dot+2:])
	require.ErrorIs(t, err, apperrors.ErrMagicLinkInvalidSignature)

	_, err = c.Verify("garbage")
	require.ErrorIs(t, err, apperrors.ErrMagicLinkInvalidSignature)
}

func TestSaltSeparatesKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, &now)
	other, err := magiclink.NewCodec(secretStr, "other-salt", magiclink.WithNowFunc(func() time.Time { return now }))
	require.NoError(t, err)

	signed, err := other.Issue(testUserEmail)
	require.NoError(t, err)
	_, err = c.Verify(signed)
	require.ErrorIs(t, err, apperrors.ErrMagicLinkInvalidSignature)
}

func TestAccessTokensDoNotVerifyAsMagicLinks(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCodec(t, &now)
	m := token.New(token.NewHMACSigner(secretStr), token.WithNowFunc(func() time.Time { return now }))

	access, err := m.IssueAccessToken(testUserEmail)
	require.NoError(t, err)
	_, err = c.Verify(access)
	require.ErrorIs(t, err, apperrors.ErrMagicLinkInvalidSignature)
}

func TestNewCodecValidates(t *testing.T) {
	_, err := magiclink.NewCodec("", testSalt)
	require.Error(t, err)
	_, err = magiclink.NewCodec(secretStr, "")
	require.Error(t, err)
}
