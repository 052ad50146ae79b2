package main

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-tenant-auth/auth"
	"github.com/jrsteele09/go-tenant-auth/campaigns"
	fakecampaignrepo "github.com/jrsteele09/go-tenant-auth/campaigns/repofake"
	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/jrsteele09/go-tenant-auth/internal/telemetry"
	"github.com/jrsteele09/go-tenant-auth/magiclink"
	"github.com/jrsteele09/go-tenant-auth/management"
	"github.com/jrsteele09/go-tenant-auth/notifier"
	"github.com/jrsteele09/go-tenant-auth/providers"
	"github.com/jrsteele09/go-tenant-auth/sessions"
	fakesessionrepo "github.com/jrsteele09/go-tenant-auth/sessions/repofakes"
	"github.com/jrsteele09/go-tenant-auth/storage/postgres"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	tenantrepofakes "github.com/jrsteele09/go-tenant-auth/tenants/repofakes"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/users"
	fakeuserrepo "github.com/jrsteele09/go-tenant-auth/users/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// stores are the repositories behind every service.
type stores struct {
	pool      *pgxpool.Pool
	users     users.Repo
	tenants   tenants.Repo
	sessions  sessions.Repo
	campaigns campaigns.Repo
}

// openStores connects to Postgres when DATABASE_URL is set and falls back to
// in-memory repositories otherwise. migrate applies pending migrations.
func openStores(ctx context.Context, cfg config.Config, migrate bool) (*stores, error) {
	if cfg.GetDatabaseURL() == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory storage")
		return &stores{
			users:     fakeuserrepo.NewFakeUserRepo(),
			tenants:   tenantrepofakes.NewFakeTenantRepo(),
			sessions:  fakesessionrepo.NewFakeSessionRepo(),
			campaigns: fakecampaignrepo.NewFakeCampaignRepo(),
		}, nil
	}

	pool, err := postgres.Open(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &stores{
		pool:      pool,
		users:     postgres.NewUserRepo(pool),
		tenants:   postgres.NewTenantRepo(pool),
		sessions:  postgres.NewSessionRepo(pool),
		campaigns: postgres.NewCampaignRepo(pool),
	}, nil
}

func (s *stores) ready(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return postgres.Ping(ctx, s.pool)
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

type app struct {
	auth       *auth.AuthenticationService
	management *management.Service
	contact    *management.Contact
}

func buildApp(ctx context.Context, cfg config.Config, st *stores) (*app, error) {
	n, err := buildNotifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	codec, err := magiclink.NewCodec(cfg.GetSecretKey(), cfg.GetMagicLinkSalt(), magiclink.WithMaxAge(cfg.GetMagicLinkTTL()))
	if err != nil {
		return nil, err
	}
	email, err := providers.NewEmailProvider(codec, n)
	if err != nil {
		return nil, err
	}
	tokens := token.New(
		token.NewHMACSigner(cfg.GetSecretKey()),
		token.WithTokenExpiry(cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL()),
	)

	authService, err := auth.NewAuthenticationService(
		auth.Repos{Users: st.users, Tenants: st.tenants, Sessions: st.sessions},
		tokens,
		email,
		buildFederated(ctx, cfg),
	)
	if err != nil {
		return nil, err
	}
	mgmt, err := management.NewService(st.users, st.campaigns)
	if err != nil {
		return nil, err
	}
	contact, err := management.NewContact(n, cfg.GetEmailFrom(), cfg.GetEmailTestUser())
	if err != nil {
		return nil, err
	}
	return &app{auth: authService, management: mgmt, contact: contact}, nil
}

func buildNotifier(ctx context.Context, cfg config.Config) (notifier.Notifier, error) {
	switch cfg.GetEmailTransport() {
	case "ses":
		accessKeyID, secretAccessKey := cfg.GetAWSStaticCredentials()
		ses, err := notifier.NewSES(ctx, notifier.SESConfig{
			Region:          cfg.GetAWSRegion(),
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			FromEmail:       cfg.GetEmailFrom(),
			FromName:        cfg.GetEmailFromName(),
		})
		if err != nil {
			return nil, err
		}
		return ses, nil
	case "log", "":
		return notifier.LogNotifier{}, nil
	default:
		return nil, errors.Errorf("unknown EMAIL_TRANSPORT %q", cfg.GetEmailTransport())
	}
}

// buildFederated registers the OAuth providers whose credentials are configured.
func buildFederated(ctx context.Context, cfg config.Config) *providers.Registry {
	client := &http.Client{
		Timeout:   cfg.GetProviderTimeout(),
		Transport: telemetry.Transport(nil),
	}

	var federated []providers.Federated
	if creds := cfg.GetGoogleCredentials(); creds.Configured() {
		federated = append(federated, providers.NewGoogle(creds,
			providers.WithHTTPClient(client),
			providers.WithIDTokenVerifier(providers.NewGoogleIDTokenVerifier(ctx, creds.ClientID)),
		))
	}
	if creds := cfg.GetMicrosoftCredentials(); creds.Configured() {
		federated = append(federated, providers.NewMicrosoft(creds, cfg.GetMicrosoftTenant(), providers.WithHTTPClient(client)))
	}
	for _, p := range federated {
		log.Info().Str("provider", string(p.Tag())).Msg("federated provider enabled")
	}
	return providers.NewRegistry(federated...)
}
