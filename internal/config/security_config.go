package config

const defaultMagicLinkSalt = "tenant-auth.magic-link"

type SecurityConfig interface {
	GetSecretKey() string
	GetMagicLinkSalt() string
	GetRateLimitPerMinute() int
}

type Security struct {
	SecretKey          string `env:"SECRET_KEY,required"`
	MagicLinkSalt      string `env:"MAGIC_LINK_SALT"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE,default=100"`
}

var _ SecurityConfig = Security{}

func (s Security) GetSecretKey() string {
	return s.SecretKey
}

func (s Security) GetMagicLinkSalt() string {
	if s.MagicLinkSalt == "" {
		return defaultMagicLinkSalt
	}
	return s.MagicLinkSalt
}

// GetRateLimitPerMinute is the per-client request budget on the auth routes. Zero disables limiting.
func (s Security) GetRateLimitPerMinute() int {
	return s.RateLimitPerMinute
}
