package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookms/bookms-admin/internal/adapters/devauth"
	"github.com/bookms/bookms-admin/internal/adapters/directory"
	"github.com/bookms/bookms-admin/internal/adapters/memory"
	"github.com/bookms/bookms-admin/internal/devseed"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	fakes "github.com/bookms/bookms-admin/internal/mocks/auth"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
	"github.com/bookms/bookms-admin/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func requireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

type testApp struct {
	server   *httptest.Server
	manager  *service.SessionManager
	storage  *memory.StorageProvider
	metrics  *statsd.Recorder
	renderer *TemplateRenderer
}

func newSessionManager(t *testing.T, storage *memory.StorageProvider, metrics statsd.Sink) *service.SessionManager {
	t.Helper()
	dir, err := directory.NewStatic(directory.StaticOptions{
		Identities: devseed.Identities(),
		Password:   devseed.DemoPassword,
		Cost:       bcrypt.MinCost,
	})
	require.NoError(t, err)
	return service.NewSessionManager(service.SessionManagerOptions{
		Storage: storage,
		Auth: service.AuthDeps{
			Directory: dir,
			SSO:       devauth.NewProvider(devauth.Config{}),
			Tokens:    &fakes.SequentialTokens{},
		},
		Runtime: service.Runtime{Logger: discardLogger(), Metrics: metrics},
	})
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	renderer := requireTemplateRenderer(t)
	storage := memory.NewStorageProvider(memory.StorageOptions{})
	rec := &statsd.Recorder{}
	manager := newSessionManager(t, storage, rec)
	books := service.NewBookService(service.BookServiceOptions{
		Catalog: memory.NewCatalog(devseed.Books(), devseed.CategoryNames()),
		Backend: "memory",
	})
	handler, err := NewRouter(RouterServices{
		Sessions:     manager,
		Books:        books,
		SSO:          service.NewSSOFlow(service.SSOFlowOptions{Provider: devauth.NewProvider(devauth.Config{})}),
		SSOProviders: domainauth.SSOProviders(),
		Metrics:      rec,
		Logger:       discardLogger(),
		Renderer:     renderer,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, manager: manager, storage: storage, metrics: rec, renderer: renderer}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: a.server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type result struct {
	Status   int
	Header   http.Header
	Body     string
	Location string
}

func (b *browser) do(req *http.Request) result {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return result{Status: resp.StatusCode, Header: resp.Header, Body: string(body), Location: resp.Header.Get("Location")}
}

func (b *browser) get(path string, headers ...string) result {
	b.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) cookie(name string) string {
	b.t.Helper()
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *browser) csrfToken() string {
	b.t.Helper()
	if tok := b.cookie(DefaultCSRFCookieName); tok != "" {
		return tok
	}
	// Any GET mints the token.
	b.get("/api/session")
	tok := b.cookie(DefaultCSRFCookieName)
	require.NotEmpty(b.t, tok, "no csrf cookie")
	return tok
}

func (b *browser) postForm(path string, form url.Values, headers ...string) result {
	b.t.Helper()
	form.Set(DefaultCSRFCookieName, b.csrfToken())
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *browser) postJSON(path, body string) result {
	b.t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, b.base+path, strings.NewReader(body))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(DefaultCSRFHeaderName, b.csrfToken())
	return b.do(req)
}

func (b *browser) login(email string) {
	b.t.Helper()
	res := b.postForm("/login", url.Values{"email": {email}, "password": {devseed.DemoPassword}})
	require.Equal(b.t, http.StatusSeeOther, res.Status, res.Body)
}
