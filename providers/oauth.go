package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout  = 10 * time.Second
	maxProfileBytes = 1 << 20
)

// ProfileDecoder extracts the identity from a provider profile response.
type ProfileDecoder func(body []byte) (*Identity, error)

// OAuthProvider performs the authorization code exchange with x/oauth2 and
// reads the account email from the provider's profile endpoint.
type OAuthProvider struct {
	tag          Tag
	clientID     string
	clientSecret string
	endpoint     oauth2.Endpoint
	scopes       []string
	authParams   []oauth2.AuthCodeOption
	profileURL   string
	decode       ProfileDecoder
	httpClient   *http.Client
	verifier     *oidc.IDTokenVerifier
}

var _ Federated = (*OAuthProvider)(nil)

type Option func(*OAuthProvider)

// WithHTTPClient sets the client used for the token exchange and the profile call.
func WithHTTPClient(client *http.Client) Option {
	return func(p *OAuthProvider) {
		p.httpClient = client
	}
}

func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *OAuthProvider) {
		p.endpoint = endpoint
	}
}

func WithProfileURL(profileURL string) Option {
	return func(p *OAuthProvider) {
		p.profileURL = profileURL
	}
}

// WithIDTokenVerifier verifies an id_token returned with the access token and
// requires its email to match the profile email.
func WithIDTokenVerifier(verifier *oidc.IDTokenVerifier) Option {
	return func(p *OAuthProvider) {
		p.verifier = verifier
	}
}

func newOAuthProvider(p *OAuthProvider, options ...Option) *OAuthProvider {
	for _, opt := range options {
		opt(p)
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return p
}

func (p *OAuthProvider) Tag() Tag {
	return p.tag
}

func (p *OAuthProvider) config(callbackURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     p.endpoint,
		RedirectURL:  callbackURL,
		Scopes:       p.scopes,
	}
}

func (p *OAuthProvider) AuthCodeURL(callbackURL, state string) string {
	return p.config(callbackURL).AuthCodeURL(state, p.authParams...)
}

func (p *OAuthProvider) Identify(ctx context.Context, code, callbackURL string) (*Identity, error) {
	if strings.TrimSpace(code) == "" {
		return nil, p.fail(errors.New("empty authorization code"), "exchange")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	cfg := p.config(callbackURL)

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, p.fail(err, "exchange")
	}

	var idTokenEmail string
	if p.verifier != nil {
		if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
			idTokenEmail, err = p.verifyIDToken(ctx, raw)
			if err != nil {
				return nil, p.fail(err, "id_token")
			}
		}
	}

	body, err := p.fetchProfile(ctx, cfg.Client(ctx, tok))
	if err != nil {
		return nil, p.fail(err, "profile")
	}

	id, err := p.decode(body)
	if err != nil {
		return nil, p.fail(err, "profile")
	}
	if strings.TrimSpace(id.Email) == "" {
		return nil, p.fail(errors.New("profile has no email"), "profile")
	}
	if idTokenEmail != "" && !strings.EqualFold(idTokenEmail, id.Email) {
		return nil, p.fail(errors.Errorf("id_token email %q does not match profile", idTokenEmail), "id_token")
	}

	id.Provider = p.tag
	return id, nil
}

func (p *OAuthProvider) verifyIDToken(ctx context.Context, raw string) (string, error) {
	idToken, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return "", err
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", err
	}
	return claims.Email, nil
}

func (p *OAuthProvider) fetchProfile(ctx context.Context, client *http.Client) ([]byte, error) {
	client.Timeout = p.httpClient.Timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("profile status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// fail logs the provider detail and returns the normalized error.
func (p *OAuthProvider) fail(err error, stage string) error {
	log.Error().Err(err).Str("provider", string(p.tag)).Str("stage", stage).Msg("federated login failed")
	return apperrors.ErrProviderAuthFailed
}

func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "decode profile")
	}
	return nil
}
