package providers_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-tenant-auth/internal/config"
	apperrors "github.com/jrsteele09/go-tenant-auth/internal/errors"
	"github.com/jrsteele09/go-tenant-auth/magiclink"
	"github.com/jrsteele09/go-tenant-auth/notifier/fakenotifier"
	"github.com/jrsteele09/go-tenant-auth/providers"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testClientID     = "client-id"
	testClientSecret = "client-secret"
	testCode         = "auth-code"
	testCallbackURL  = "https://app.example.com/callback/google"
	testUserEmail    = "john.doe@example.com"
	testIssuer       = "https://issuer.example.com"
)

type upstream struct {
	server     *httptest.Server
	profile    string
	status     int
	idToken    string
	lastForm   url.Values
	lastBearer string
}

func newUpstream(t *testing.T, profile string) *upstream {
	t.Helper()
	u := &upstream{profile: profile, status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		u.lastForm = r.PostForm
		if r.PostForm.Get("code") != testCode {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		resp := map[string]any{
			"access_token": "upstream-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if u.idToken != "" {
			resp["id_token"] = u.idToken
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		u.lastBearer = r.Header.Get("Authorization")
		w.WriteHeader(u.status)
		_, _ = w.Write([]byte(u.profile))
	})
	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) options(extra ...providers.Option) []providers.Option {
	return append([]providers.Option{
		providers.WithEndpoint(oauth2.Endpoint{
			AuthURL:   u.server.URL + "/auth",
			TokenURL:  u.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		providers.WithProfileURL(u.server.URL + "/profile"),
		providers.WithHTTPClient(u.server.Client()),
	}, extra...)
}

func testCredentials() config.ProviderCredentials {
	return config.ProviderCredentials{ClientID: testClientID, ClientSecret: testClientSecret}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		in        string
		want      providers.Tag
		federated bool
		err       error
	}{
		{"email", providers.TagEmail, false, nil},
		{"Google", providers.TagGoogle, true, nil},
		{" microsoft ", providers.TagMicrosoft, true, nil},
		{"github", "", false, apperrors.ErrUnsupportedProvider},
		{"", "", false, apperrors.ErrUnsupportedProvider},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := providers.ParseTag(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.federated, got.Federated())
		})
	}
}

func TestRegistry(t *testing.T) {
	google := providers.NewGoogle(testCredentials())
	r := providers.NewRegistry(google, nil)

	p, err := r.Federated(providers.TagGoogle)
	require.NoError(t, err)
	require.Equal(t, providers.TagGoogle, p.Tag())

	_, err = r.Federated(providers.TagMicrosoft)
	require.ErrorIs(t, err, apperrors.ErrUnsupportedProvider)
}

func TestGoogleAuthCodeURL(t *testing.T) {
	p := providers.NewGoogle(testCredentials())
	raw := p.AuthCodeURL(testCallbackURL, "state-1")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testCallbackURL, q.Get("redirect_uri"))
	require.Equal(t, "state-1", q.Get("state"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "openid profile email", q.Get("scope"))
}

func TestMicrosoftAuthCodeURL(t *testing.T) {
	p := providers.NewMicrosoft(testCredentials(), "")
	raw := p.AuthCodeURL(testCallbackURL, "state-2")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "login.microsoftonline.com", u.Host)
	require.True(t, strings.HasPrefix(u.Path, "/common/"))
	require.Equal(t, "query", u.Query().Get("response_mode"))
	require.Contains(t, u.Query().Get("scope"), "User.Read")
}

func TestGoogleIdentify(t *testing.T) {
	up := newUpstream(t, `{"id":"g-1","email":"john.doe@example.com","name":"John Doe"}`)
	p := providers.NewGoogle(testCredentials(), up.options()...)

	id, err := p.Identify(context.Background(), testCode, testCallbackURL)
	require.NoError(t, err)
	require.Equal(t, testUserEmail, id.Email)
	require.Equal(t, "John Doe", id.Name)
	require.Equal(t, "g-1", id.Subject)
	require.Equal(t, providers.TagGoogle, id.Provider)
	require.Equal(t, testCallbackURL, up.lastForm.Get("redirect_uri"))
	require.Equal(t, "Bearer upstream-access", up.lastBearer)
}

func TestMicrosoftIdentify(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		email   string
		err     error
	}{
		{"mail", `{"id":"m-1","mail":"john.doe@example.com","displayName":"John"}`, testUserEmail, nil},
		{"principal name fallback", `{"id":"m-1","mail":null,"userPrincipalName":"jd@corp.example.com"}`, "jd@corp.example.com", nil},
		{"graph error", `{"error":{"code":"InvalidAuthenticationToken"}}`, "", apperrors.ErrProviderAuthFailed},
		{"no email", `{"id":"m-1"}`, "", apperrors.ErrProviderAuthFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newUpstream(t, tt.profile)
			p := providers.NewMicrosoft(testCredentials(), "common", up.options()...)

			id, err := p.Identify(context.Background(), testCode, testCallbackURL)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.email, id.Email)
			require.Equal(t, providers.TagMicrosoft, id.Provider)
		})
	}
}

func TestIdentifyFailuresAreNormalized(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		up := newUpstream(t, `{"email":"john.doe@example.com"}`)
		p := providers.NewGoogle(testCredentials(), up.options()...)
		_, err := p.Identify(context.Background(), "wrong", testCallbackURL)
		require.ErrorIs(t, err, apperrors.ErrProviderAuthFailed)
	})
	t.Run("empty code", func(t *testing.T) {
		up := newUpstream(t, `{"email":"john.doe@example.com"}`)
		p := providers.NewGoogle(testCredentials(), up.options()...)
		_, err := p.Identify(context.Background(), "", testCallbackURL)
		require.ErrorIs(t, err, apperrors.ErrProviderAuthFailed)
	})
	t.Run("profile status", func(t *testing.T) {
		up := newUpstream(t, `{"error":"unauthorized"}`)
		up.status = http.StatusUnauthorized
		p := providers.NewGoogle(testCredentials(), up.options()...)
		_, err := p.Identify(context.Background(), testCode, testCallbackURL)
		require.ErrorIs(t, err, apperrors.ErrProviderAuthFailed)
	})
	t.Run("malformed profile", func(t *testing.T) {
		up := newUpstream(t, `not json`)
		p := providers.NewGoogle(testCredentials(), up.options()...)
		_, err := p.Identify(context.Background(), testCode, testCallbackURL)
		require.ErrorIs(t, err, apperrors.ErrProviderAuthFailed)
	})
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, email string) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "g-1",
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestIDTokenVerification(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	verifier := oidc.NewVerifier(testIssuer, &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}, &oidc.Config{ClientID: testClientID})

	t.Run("matching email", func(t *testing.T) {
		up := newUpstream(t, `{"id":"g-1","email":"john.doe@example.com"}`)
		up.idToken = signIDToken(t, key, testUserEmail)
		p := providers.NewGoogle(testCredentials(), up.options(providers.WithIDTokenVerifier(verifier))...)

		id, err := p.Identify(context.Background(), testCode, testCallbackURL)
		require.NoError(t, err)
		require.Equal(t, testUserEmail, id.Email)
	})

	t.Run("mismatched email", func(t *testing.T) {
		up := newUpstream(t, `{"id":"g-1","email":"john.doe@example.com"}`)
		up.idToken = signIDToken(t, key, "someone.else@example.com")
		p := providers.NewGoogle(testCredentials(), up.options(providers.WithIDTokenVerifier(verifier))...)

		_, err := p.Identify(context.Background(), testCode, testCallbackURL)
		require.ErrorIs(t, err, apperrors.ErrProviderAuthFailed)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		up := newUpstream(t, `{"id":"g-1","email":"john.doe@example.com"}`)
		up.idToken = signIDToken(t, other, testUserEmail)
		p := providers.NewGoogle(testCredentials(), up.options(providers.WithIDTokenVerifier(verifier))...)

		_, err = p.Identify(context.Background(), testCode, testCallbackURL)
		require.ErrorIs(t, err, apperrors.ErrProviderAuthFailed)
	})
}

func TestEmailProvider(t *testing.T) {
	codec, err := magiclink.NewCodec("1234", "salt")
	require.NoError(t, err)
	n := fakenotifier.NewFakeNotifier()
	p, err := providers.NewEmailProvider(codec, n)
	require.NoError(t, err)
	require.Equal(t, providers.TagEmail, p.Tag())

	link, err := p.IssueLink(testUserEmail)
	require.NoError(t, err)

	id, err := p.Verify(link)
	require.NoError(t, err)
	require.Equal(t, testUserEmail, id.Email)

	p.Deliver(context.Background(), providers.Delivery{
		To:          testUserEmail,
		AccountName: "John Doe",
		TenantName:  "Acme",
		CallbackURL: "https://acme.example.com/login?token=",
		Token:       link,
	})
	msg, ok := n.Last()
	require.True(t, ok)
	require.Equal(t, testUserEmail, msg.To)
	require.Equal(t, "Acme - Login link", msg.Subject)
	require.Contains(t, msg.HTML, "https://acme.example.com/login?token="+link)
}

func TestEmailDeliveryFailureIsSwallowed(t *testing.T) {
	codec, err := magiclink.NewCodec("1234", "salt")
	require.NoError(t, err)
	n := fakenotifier.NewFakeNotifier()
	n.Err = context.DeadlineExceeded
	p, err := providers.NewEmailProvider(codec, n)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		p.Deliver(context.Background(), providers.Delivery{To: testUserEmail, TenantName: "Acme", Token: "t"})
	})
	require.Empty(t, n.Messages())
}
