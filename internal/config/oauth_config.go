package config

import "time"

// ProviderCredentials are the OAuth client credentials registered with a federated provider.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

func (p ProviderCredentials) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type OAuthConfig interface {
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetMagicLinkTTL() time.Duration
	GetProviderTimeout() time.Duration
	GetGoogleCredentials() ProviderCredentials
	GetMicrosoftCredentials() ProviderCredentials
	GetMicrosoftTenant() string
}

type OAuth struct {
	AccessTokenTTL        time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	RefreshTokenTTL       time.Duration `env:"REFRESH_TOKEN_TTL,default=720h"`
	MagicLinkTTL          time.Duration `env:"MAGIC_LINK_TTL,default=15m"`
	ProviderTimeout       time.Duration `env:"PROVIDER_TIMEOUT,default=10s"`
	GoogleClientID        string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string        `env:"GOOGLE_CLIENT_SECRET"`
	MicrosoftClientID     string        `env:"MICROSOFT_CLIENT_ID"`
	MicrosoftClientSecret string        `env:"MICROSOFT_CLIENT_SECRET"`
	MicrosoftTenant       string        `env:"MICROSOFT_TENANT,default=common"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetAccessTokenTTL() time.Duration {
	return o.AccessTokenTTL
}

func (o OAuth) GetRefreshTokenTTL() time.Duration {
	return o.RefreshTokenTTL
}

func (o OAuth) GetMagicLinkTTL() time.Duration {
	return o.MagicLinkTTL
}

func (o OAuth) GetProviderTimeout() time.Duration {
	return o.ProviderTimeout
}

func (o OAuth) GetGoogleCredentials() ProviderCredentials {
	return ProviderCredentials{ClientID: o.GoogleClientID, ClientSecret: o.GoogleClientSecret}
}

func (o OAuth) GetMicrosoftCredentials() ProviderCredentials {
	return ProviderCredentials{ClientID: o.MicrosoftClientID, ClientSecret: o.MicrosoftClientSecret}
}

func (o OAuth) GetMicrosoftTenant() string {
	return o.MicrosoftTenant
}
