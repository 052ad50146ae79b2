package config

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
)

const insecureSecret = "changethis"

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	EmailConfig
}

// Settings is populated from the process environment. Each embedded group
// satisfies one of the config interfaces.
type Settings struct {
	EnvVars
	Cors
	OAuth
	Security
	Email
}

var _ Config = Settings{}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration through the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var s Settings
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &s, Lookuper: lookuper}); err != nil {
		return nil, errors.Wrap(err, "[config.Load] process environment")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.SecretKey == insecureSecret {
		if !s.IsLocal() {
			return errors.Errorf("[config.Load] SECRET_KEY is %q, set a real secret for %s", insecureSecret, s.Environment)
		}
		log.Warn().Msg("SECRET_KEY is the default value, change it before deploying")
	}
	if s.AccessTokenTTL <= 0 || s.RefreshTokenTTL <= 0 || s.MagicLinkTTL <= 0 {
		return errors.New("[config.Load] token lifetimes must be positive")
	}
	return nil
}
