package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SECRET_KEY": "s3cr3t",
	}))
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.True(t, c.IsLocal())
	require.Equal(t, 15*time.Minute, c.GetAccessTokenTTL())
	require.Equal(t, 30*24*time.Hour, c.GetRefreshTokenTTL())
	require.Equal(t, 15*time.Minute, c.GetMagicLinkTTL())
	require.Equal(t, 10*time.Second, c.GetProviderTimeout())
	require.Equal(t, "common", c.GetMicrosoftTenant())
	require.NotEmpty(t, c.GetMagicLinkSalt())
	require.Equal(t, []string{"http://localhost:5173"}, c.GetAllowedOrigins())
	require.False(t, c.GetGoogleCredentials().Configured())
	require.Equal(t, "log", c.GetEmailTransport())
}

func TestLoadOverrides(t *testing.T) {
	c, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SECRET_KEY":           "s3cr3t",
		"PORT":                 ":9000",
		"ENVIRONMENT":          "production",
		"GOOGLE_CLIENT_ID":     "gid",
		"GOOGLE_CLIENT_SECRET": "gsecret",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com,https://b.example.com",
		"MAGIC_LINK_SALT":      "pepper",
	}))
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.False(t, c.IsLocal())
	require.True(t, c.GetGoogleCredentials().Configured())
	require.Equal(t, "pepper", c.GetMagicLinkSalt())
	require.Len(t, c.GetAllowedOrigins(), 2)
}

func TestLoadRequiresSecret(t *testing.T) {
	_, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
}

func TestDefaultSecretRejectedOutsideLocal(t *testing.T) {
	_, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SECRET_KEY":  "changethis",
		"ENVIRONMENT": "staging",
	}))
	require.Error(t, err)

	_, err = config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SECRET_KEY": "changethis",
	}))
	require.NoError(t, err)
}
