package providers

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	GoogleIssuer     = "https://accounts.google.com"
	GoogleJWKSURL    = "https://www.googleapis.com/oauth2/v3/certs"
	googleProfileURL = "https://www.googleapis.com/oauth2/v1/userinfo"
)

// NewGoogle builds the Google provider. The profile email is authoritative.
func NewGoogle(creds config.ProviderCredentials, options ...Option) *OAuthProvider {
	return newOAuthProvider(&OAuthProvider{
		tag:          TagGoogle,
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
		endpoint:     google.Endpoint,
		scopes:       []string{"openid", "profile", "email"},
		authParams:   []oauth2.AuthCodeOption{oauth2.AccessTypeOffline},
		profileURL:   googleProfileURL,
		decode:       decodeGoogleProfile,
	}, options...)
}

// NewGoogleIDTokenVerifier checks Google id_tokens against the published keys.
// Keys are fetched lazily on first use.
func NewGoogleIDTokenVerifier(ctx context.Context, clientID string) *oidc.IDTokenVerifier {
	keySet := oidc.NewRemoteKeySet(ctx, GoogleJWKSURL)
	return oidc.NewVerifier(GoogleIssuer, keySet, &oidc.Config{ClientID: clientID})
}

func decodeGoogleProfile(body []byte) (*Identity, error) {
	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := decodeJSON(body, &profile); err != nil {
		return nil, err
	}
	return &Identity{Email: profile.Email, Name: profile.Name, Subject: profile.ID}, nil
}
