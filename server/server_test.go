package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-tenant-auth/auth"
	"github.com/jrsteele09/go-tenant-auth/campaigns"
	fakecampaignrepo "github.com/jrsteele09/go-tenant-auth/campaigns/repofake"
	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/jrsteele09/go-tenant-auth/magiclink"
	"github.com/jrsteele09/go-tenant-auth/management"
	"github.com/jrsteele09/go-tenant-auth/notifier/fakenotifier"
	"github.com/jrsteele09/go-tenant-auth/providers"
	"github.com/jrsteele09/go-tenant-auth/server"
	fakesessionrepo "github.com/jrsteele09/go-tenant-auth/sessions/repofakes"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	tenantrepofakes "github.com/jrsteele09/go-tenant-auth/tenants/repofakes"
	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/jrsteele09/go-tenant-auth/users"
	fakeuserrepo "github.com/jrsteele09/go-tenant-auth/users/repofake"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

const (
	secretStr       = "1234"
	testSubdomain   = "acme"
	testManager     = "john.doe@example.com"
	testVisitor     = "visitor@example.com"
	testCallbackURL = "https://acme.example.com/login?token="
	testOrigin      = "https://app.example.com"
)

type testFixture struct {
	handler   http.Handler
	notifier  *fakenotifier.FakeNotifier
	users     users.Repo
	campaigns campaigns.Repo
	tenant    *tenants.Tenant
	campaign  *campaigns.Campaign
	readyErr  error
}

func setupTestFixture(t *testing.T, env map[string]string) *testFixture {
	t.Helper()
	ctx := context.Background()

	vars := map[string]string{
		"SECRET_KEY":            secretStr,
		"ENVIRONMENT":           "test",
		"CORS_ALLOWED_ORIGINS":  testOrigin,
		"RATE_LIMIT_PER_MINUTE": "0",
	}
	for k, v := range env {
		vars[k] = v
	}
	cfg, err := config.LoadWith(ctx, envconfig.MapLookuper(vars))
	require.NoError(t, err)

	ur := fakeuserrepo.NewFakeUserRepo()
	tr := tenantrepofakes.NewFakeTenantRepo()
	sr := fakesessionrepo.NewFakeSessionRepo()
	cr := fakecampaignrepo.NewFakeCampaignRepo()

	codec, err := magiclink.NewCodec(secretStr, "salt")
	require.NoError(t, err)
	n := fakenotifier.NewFakeNotifier()
	email, err := providers.NewEmailProvider(codec, n)
	require.NoError(t, err)

	authService, err := auth.NewAuthenticationService(
		auth.Repos{Users: ur, Tenants: tr, Sessions: sr},
		token.New(token.NewHMACSigner(secretStr)),
		email,
		nil,
	)
	require.NoError(t, err)
	mgmt, err := management.NewService(ur, cr)
	require.NoError(t, err)
	contact, err := management.NewContact(n, "hello@example.com", "qa@example.com")
	require.NoError(t, err)

	tenant := &tenants.Tenant{Name: "Acme", Subdomain: testSubdomain}
	require.NoError(t, tr.Upsert(ctx, tenant))
	c := &campaigns.Campaign{TenantID: tenant.ID, Name: "Spring launch", TargetGender: campaigns.TargetBoth, StartDate: time.Now().UTC()}
	require.NoError(t, cr.Create(ctx, c))
	other := &campaigns.Campaign{TenantID: tenant.ID, Name: "Autumn launch", TargetGender: campaigns.TargetBoth, StartDate: time.Now().UTC()}
	require.NoError(t, cr.Create(ctx, other))

	f := &testFixture{notifier: n, users: ur, campaigns: cr, tenant: tenant, campaign: c}
	f.bind(t, testManager, users.RoleManager, nil)
	f.bind(t, testVisitor, users.RoleVisitor, []string{c.ID})

	srv, err := server.New(cfg, server.Deps{
		Auth:       authService,
		Management: mgmt,
		Contact:    contact,
		Ready:      func(context.Context) error { return f.readyErr },
	})
	require.NoError(t, err)
	f.handler = srv
	return f
}

func (f *testFixture) bind(t *testing.T, email string, role users.Role, campaignIDs []string) {
	t.Helper()
	ctx := context.Background()
	a := &users.Account{Email: email, Name: "Test User"}
	require.NoError(t, f.users.Upsert(ctx, a))
	require.NoError(t, f.users.CreateBinding(ctx, &users.TenantBinding{
		AccountID:   a.ID,
		TenantID:    f.tenant.ID,
		Role:        role,
		Status:      users.StatusActive,
		CampaignIDs: campaignIDs,
	}))
}

func (f *testFixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}

// signIn runs the magic link flow over HTTP and returns the issued tokens.
func (f *testFixture) signIn(t *testing.T, email string) auth.TokenPair {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/auth/request/email", "", map[string]string{
		"email":              email,
		"customer_subdomain": testSubdomain,
		"callback_url":       testCallbackURL,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, auth.MagicLinkSentMessage, decode[auth.LoginRedirect](t, rec).Message)

	msg, ok := f.notifier.Last()
	require.True(t, ok)
	idx := strings.Index(msg.HTML, testCallbackURL)
	require.GreaterOrEqual(t, idx, 0)
	rest := msg.HTML[idx+len(testCallbackURL):]
	link := rest[:strings.IndexByte(rest, '"')]

	rec = f.do(t, http.MethodPost, "/api/v1/auth/callback/email", "", map[string]string{
		"token":              link,
		"customer_subdomain": testSubdomain,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[auth.TokenPair](t, rec)
}

func TestMagicLinkLoginOverHTTP(t *testing.T) {
	f := setupTestFixture(t, nil)
	tokens := f.signIn(t, testManager)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[auth.AccountProfile](t, rec)
	require.Equal(t, testManager, profile.Email)
	require.Len(t, profile.Tenants, 1)
	require.Equal(t, testSubdomain, profile.Tenants[0].Subdomain)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = f.do(t, http.MethodPost, "/api/v1/auth/refresh", tokens.RefreshToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decode[auth.AccessToken](t, rec).AccessToken)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/signout", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/auth/refresh", tokens.RefreshToken, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "The refresh token has been revoked.", detail(t, rec))
}

func TestAuthErrorsMapToStatus(t *testing.T) {
	f := setupTestFixture(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		body   any
		status int
		detail string
	}{
		{"unsupported provider", http.MethodPost, "/api/v1/auth/request/github", "", map[string]string{"email": testManager, "customer_subdomain": testSubdomain, "callback_url": testCallbackURL}, http.StatusBadRequest, "The login provider is not supported."},
		{"unknown tenant", http.MethodPost, "/api/v1/auth/request/email", "", map[string]string{"email": testManager, "customer_subdomain": "nope", "callback_url": testCallbackURL}, http.StatusNotFound, "Customer not found."},
		{"unknown account", http.MethodPost, "/api/v1/auth/request/email", "", map[string]string{"email": "ghost@example.com", "customer_subdomain": testSubdomain, "callback_url": testCallbackURL}, http.StatusNotFound, "A user with this email does not exist in the system."},
		{"federated not configured", http.MethodPost, "/api/v1/auth/request/google", "", map[string]string{"customer_subdomain": testSubdomain, "callback_url": testCallbackURL}, http.StatusBadRequest, "The login provider is not supported."},
		{"tampered magic link", http.MethodPost, "/api/v1/auth/callback/email", "", map[string]string{"token": "garbage"}, http.StatusBadRequest, "The token is invalid."},
		{"refresh without bearer", http.MethodPost, "/api/v1/auth/refresh", "", nil, http.StatusBadRequest, "The refresh token is invalid."},
		{"me without bearer", http.MethodGet, "/api/v1/auth/me", "", nil, http.StatusUnauthorized, "Could not validate credentials."},
		{"me with garbage", http.MethodGet, "/api/v1/auth/me", "garbage", nil, http.StatusUnauthorized, "Could not validate credentials."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.bearer, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			require.Equal(t, tt.detail, detail(t, rec))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	f := setupTestFixture(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/request/email", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid request body", detail(t, rec))
}

func TestMagicLinkIsSingleUseOverHTTP(t *testing.T) {
	f := setupTestFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/api/v1/auth/request/email", "", map[string]string{
		"email":              testManager,
		"customer_subdomain": testSubdomain,
		"callback_url":       testCallbackURL,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	msg, _ := f.notifier.Last()
	idx := strings.Index(msg.HTML, testCallbackURL)
	rest := msg.HTML[idx+len(testCallbackURL):]
	link := rest[:strings.IndexByte(rest, '"')]

	body := map[string]string{"token": link, "customer_subdomain": testSubdomain}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/auth/callback/email", "", body).Code)
	rec = f.do(t, http.MethodPost, "/api/v1/auth/callback/email", "", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "The token has already been used.", detail(t, rec))
}

func TestUserRoutes(t *testing.T) {
	f := setupTestFixture(t, nil)
	manager := f.signIn(t, testManager)
	visitor := f.signIn(t, testVisitor)

	rec := f.do(t, http.MethodGet, "/api/v1/users/acme", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]management.TenantUser](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/v1/users/acme", visitor.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "The user is not allowed to perform this action.", detail(t, rec))

	rec = f.do(t, http.MethodPost, "/api/v1/users/acme", manager.AccessToken, management.CreateUserInput{
		Email: "new.analyst@example.com",
		Name:  "New Analyst",
		Role:  users.RoleAnalyst,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[management.TenantUser](t, rec)

	rec = f.do(t, http.MethodPost, "/api/v1/users/acme", manager.AccessToken, management.CreateUserInput{
		Email: "new.analyst@example.com",
		Name:  "New Analyst",
		Role:  users.RoleAnalyst,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/v1/users/acme/"+created.ID, manager.AccessToken, management.UpdateUserInput{
		Role:        users.RoleVisitor,
		CampaignIDs: []string{f.campaign.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, users.RoleVisitor, decode[management.TenantUser](t, rec).Role)

	rec = f.do(t, http.MethodPut, "/api/v1/users/acme/missing", manager.AccessToken, management.UpdateUserInput{Role: users.RoleAnalyst})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users/globex", manager.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCampaignRoutes(t *testing.T) {
	f := setupTestFixture(t, nil)
	manager := f.signIn(t, testManager)
	visitor := f.signIn(t, testVisitor)

	rec := f.do(t, http.MethodGet, "/api/v1/campaigns/acme", visitor.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	visible := decode[[]campaigns.Campaign](t, rec)
	require.Len(t, visible, 1)
	require.Equal(t, f.campaign.ID, visible[0].ID)

	rec = f.do(t, http.MethodGet, "/api/v1/campaigns/acme", manager.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]campaigns.Campaign](t, rec), 2)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	in := management.CreateCampaignInput{
		Name:         "Summer sale",
		TargetGender: campaigns.TargetFemale,
		TargetAgeMax: 40,
		StartDate:    start,
	}
	rec = f.do(t, http.MethodPost, "/api/v1/campaigns/acme", visitor.AccessToken, in)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/campaigns/acme", manager.AccessToken, in)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[campaigns.Campaign](t, rec)

	end := start.Add(-time.Hour)
	rec = f.do(t, http.MethodPut, "/api/v1/campaigns/acme/"+created.ID, manager.AccessToken, management.UpdateCampaignInput{
		TargetGender: campaigns.TargetBoth,
		EndDate:      &end,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid campaign end date.", detail(t, rec))

	rec = f.do(t, http.MethodDelete, "/api/v1/campaigns/acme/"+created.ID, manager.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/v1/campaigns/acme/"+created.ID, manager.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactRoute(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/contact", "", management.ContactInput{Name: "Jane", Email: "jane@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, management.ContactSentMessage, decode[map[string]string](t, rec)["message"])

	f.notifier.Err = errors.New("ses unavailable")
	rec = f.do(t, http.MethodPost, "/api/v1/contact", "", management.ContactInput{Name: "Jane", Email: "jane@example.com"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Internal server error.", detail(t, rec))
}

func TestRateLimit(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"RATE_LIMIT_PER_MINUTE": "2"})
	body := management.ContactInput{Name: "Jane", Email: "qa@example.com"}

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/contact", "", body).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/v1/contact", "", body).Code)
	require.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/v1/contact", "", body).Code)

	// Routes outside the auth and contact group are not limited.
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", nil).Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := setupTestFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	f.readyErr = errors.New("db down")
	rec = f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `tenant_auth_http_requests_total{route="GET /healthz",status="503"} 1`)
}

func TestCORS(t *testing.T) {
	f := setupTestFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/me", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewValidates(t *testing.T) {
	_, err := server.New(nil, server.Deps{})
	require.Error(t, err)

	cfg, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{"SECRET_KEY": secretStr}))
	require.NoError(t, err)
	_, err = server.New(cfg, server.Deps{})
	require.Error(t, err)
}
