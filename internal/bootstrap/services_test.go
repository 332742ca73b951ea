package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookms/bookms-admin/config"
	"github.com/bookms/bookms-admin/internal/adapters/directory"
	"github.com/bookms/bookms-admin/internal/adapters/memory"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	httpx "github.com/bookms/bookms-admin/internal/http"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	var cfg config.AppConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}))
	cfg.Sanitize()
	cfg.Auth.BcryptCost = 4
	return &cfg
}

func TestBuildStorage(t *testing.T) {
	set, err := buildStorage(config.StorageConfig{Backend: config.StorageBackendMemory}, Infrastructure{})
	require.NoError(t, err)
	assert.IsType(t, &memory.StorageProvider{}, set.Provider)
	assert.NotNil(t, set.Memory)

	_, err = buildStorage(config.StorageConfig{Backend: config.StorageBackendRedis}, Infrastructure{})
	assert.Error(t, err)
}

func TestBuildCatalog(t *testing.T) {
	c, err := BuildCatalog(config.CatalogConfig{Backend: config.CatalogBackendMemory}, Infrastructure{})
	require.NoError(t, err)
	facets, err := c.Facets(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, facets.Categories)

	_, err = BuildCatalog(config.CatalogConfig{Backend: config.CatalogBackendPostgres}, Infrastructure{})
	assert.Error(t, err)
}

func TestBuildDirectory(t *testing.T) {
	dir, err := buildDirectory(config.AuthConfig{Directory: config.DirectoryBackendStatic, BcryptCost: 4}, Infrastructure{})
	require.NoError(t, err)
	require.IsType(t, &directory.Static{}, dir)

	acct, err := dir.FindByEmail(context.Background(), "admin@bookms.com")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleSuperAdmin, acct.Identity.Role)

	_, err = buildDirectory(config.AuthConfig{Directory: config.DirectoryBackendPostgres}, Infrastructure{})
	assert.Error(t, err)
}

func TestBuildSSO_Mock(t *testing.T) {
	cfg := testConfig(t)
	set, err := buildSSO(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, domainauth.SSOProviders(), set.Providers)
	assert.NotNil(t, set.Provider)
}

func TestBuildSSO_OAuthRequiresProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Mode = config.AuthModeOAuth
	_, err := buildSSO(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}

func TestCallbackURL(t *testing.T) {
	assert.Equal(t,
		"https://books.example.com/auth/sso/google/callback",
		callbackURL("https://books.example.com", domainauth.ProviderGoogle))
}

func TestDemoAccounts(t *testing.T) {
	cfg := testConfig(t)
	assert.Empty(t, demoAccounts(cfg))

	cfg.IsDev = true
	accts := demoAccounts(cfg)
	require.Len(t, accts, 3)
	for _, a := range accts {
		assert.NotEqual(t, "former@bookms.com", a.Email)
		assert.Equal(t, "password123", a.Password)
	}
}

func TestHealthChecks_NoBackends(t *testing.T) {
	assert.Empty(t, healthChecks(Infrastructure{}))
}

func TestBuildHTTPHandler_ServesDashboard(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.CompressionEnabled = true
	svcs, err := NewServices(context.Background(), &ServiceDeps{Config: cfg, Logger: testLogger()})
	require.NoError(t, err)

	h, err := buildHTTPHandler(httpHandlerConfig{
		Logger: testLogger(),
		HTTP:   cfg.HTTP,
		Services: httpx.RouterServices{
			Sessions: svcs.Sessions,
			Books:    svcs.Books,
			SSO:      svcs.SSO,
			Logger:   testLogger(),
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/books", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestBuildHTTPHandler_RequiresServices(t *testing.T) {
	_, err := buildHTTPHandler(httpHandlerConfig{Logger: testLogger()})
	assert.Error(t, err)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Addr = freeAddr(t)
	svcs, err := NewServices(context.Background(), &ServiceDeps{Config: cfg, Logger: testLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, &RunConfig{Config: cfg, Services: svcs, Logger: testLogger()})
	}()

	url := "http://" + cfg.HTTP.Addr + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test probe
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}
