package providers

import (
	"encoding/json"

	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const microsoftProfileURL = "https://graph.microsoft.com/v1.0/me"

// NewMicrosoft builds the Microsoft identity platform provider for the given
// directory tenant ("common" accepts any account).
func NewMicrosoft(creds config.ProviderCredentials, directory string, options ...Option) *OAuthProvider {
	if directory == "" {
		directory = "common"
	}
	return newOAuthProvider(&OAuthProvider{
		tag:          TagMicrosoft,
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
		endpoint:     microsoft.AzureADEndpoint(directory),
		scopes:       []string{"User.Read", "openid", "email", "profile"},
		authParams:   []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_mode", "query")},
		profileURL:   microsoftProfileURL,
		decode:       decodeMicrosoftProfile,
	}, options...)
}

func decodeMicrosoftProfile(body []byte) (*Identity, error) {
	var profile struct {
		ID                string          `json:"id"`
		Mail              string          `json:"mail"`
		UserPrincipalName string          `json:"userPrincipalName"`
		DisplayName       string          `json:"displayName"`
		Error             json.RawMessage `json:"error"`
	}
	if err := decodeJSON(body, &profile); err != nil {
		return nil, err
	}
	if len(profile.Error) > 0 && string(profile.Error) != "null" {
		return nil, errors.Errorf("graph error: %s", string(profile.Error))
	}
	email := profile.Mail
	if email == "" {
		email = profile.UserPrincipalName
	}
	return &Identity{Email: email, Name: profile.DisplayName, Subject: profile.ID}, nil
}
