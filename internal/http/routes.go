package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	bookms "github.com/bookms/bookms-admin"
	"github.com/bookms/bookms-admin/internal/domain/access"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
	"github.com/bookms/bookms-admin/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions *service.SessionManager
	Books    BookLister
	// SSO is nil when no single sign-on provider is enabled.
	SSO          SSOFlow
	SSOProviders []domainauth.Provider
	Metrics      statsd.Sink
	Health       map[string]HealthCheck
	CookieDomain string
	// ClientMaxAge is the client cookie lifetime; zero makes it a browser-session cookie.
	ClientMaxAge time.Duration
	DemoAccounts []DemoAccount
	IsDev        bool         // Serve templates and static files from disk
	Logger       *slog.Logger // Logger for template and HTTP errors (optional)
	// Renderer overrides template loading (tests).
	Renderer *TemplateRenderer
}

// NewRouter creates the application handler: client identity, CSRF and
// session resolution around the route table.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if services.Books == nil {
		return nil, errors.New("book service is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := services.Metrics
	if metrics == nil {
		metrics = statsd.Discard
	}

	renderer := services.Renderer
	if renderer == nil {
		var err error
		if renderer, err = newRenderer(services.IsDev, logger); err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
	}

	ui := &UIHandlers{T: renderer, Catalog: services.Books, Logger: logger}
	auth := &AuthHandlers{
		T:            renderer,
		SSO:          services.SSO,
		Providers:    services.SSOProviders,
		CookieDomain: services.CookieDomain,
		DemoAccounts: services.DemoAccounts,
		Logger:       logger,
	}

	mux := http.NewServeMux()
	registerAuthRoutes(mux, auth, metrics)
	registerUIRoutes(mux, ui, metrics)
	registerAPIRoutes(mux, routeHandlers{ui: ui, auth: auth}, metrics)

	health := healthHandler(services.Health)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))
	mux.HandleFunc("/", ui.NotFound)

	var handler http.Handler = mux
	handler = Sessions(services.Sessions, logger)(handler)
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
	handler = ClientIdentity(ClientIdentityConfig{
		CookieDomain: services.CookieDomain,
		MaxAge:       services.ClientMaxAge,
	})(handler)
	return handler, nil
}

type routeHandlers struct {
	ui   *UIHandlers
	auth *AuthHandlers
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, metrics statsd.Sink) {
	publicOnly := PublicOnly(metrics)
	mux.Handle("GET "+access.LoginPath, publicOnly(http.HandlerFunc(h.LoginPage)))
	mux.Handle("POST "+access.LoginPath, publicOnly(http.HandlerFunc(h.Login)))
	mux.Handle("GET /auth/sso/{provider}", publicOnly(http.HandlerFunc(h.BeginSSO)))
	mux.HandleFunc("GET /auth/sso/{provider}/callback", h.SSOCallback)
	mux.HandleFunc("POST /logout", h.Logout)
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, metrics statsd.Sink) {
	mux.HandleFunc("GET /{$}", h.RedirectToBooks)
	mux.HandleFunc("GET "+access.DashboardPath, h.RedirectToBooks)
	mux.HandleFunc("GET "+access.DashboardPath+"/{$}", h.RedirectToBooks)
	mux.HandleFunc("GET "+access.ForbiddenPath, h.Forbidden)

	for _, route := range access.ProtectedRoutes() {
		var page http.Handler
		if route.Path == access.BooksPath {
			page = http.HandlerFunc(h.Books)
		} else {
			page = h.Placeholder(route)
		}
		mux.Handle("GET "+route.Path, RequireAccess(AccessConfig{Route: route, Metrics: metrics})(page))
	}
}

func registerAPIRoutes(mux *http.ServeMux, h routeHandlers, metrics statsd.Sink) {
	authenticated := func(path string, fn http.HandlerFunc) http.Handler {
		return RequireAccess(AccessConfig{Route: access.Route{Path: path}, Metrics: metrics})(fn)
	}
	mux.HandleFunc("GET /api/session", h.auth.APISession)
	mux.Handle("POST /api/login", PublicOnly(metrics)(http.HandlerFunc(h.auth.APILogin)))
	mux.HandleFunc("POST /api/logout", h.auth.APILogout)
	mux.Handle("GET /api/books", authenticated("/api/books", h.ui.APIBooks))
	mux.Handle("GET /api/books/facets", authenticated("/api/books/facets", h.ui.APIBookFacets))
}

// newRenderer loads templates from disk in development and from the embedded
// filesystem otherwise.
func newRenderer(isDev bool, logger *slog.Logger) (*TemplateRenderer, error) {
	var templateFS fs.FS
	if isDev {
		templateFS = os.DirFS(TemplatePathFromRoot)
	} else {
		sub, err := fs.Sub(bookms.TemplateFS, TemplatePathFromRoot)
		if err != nil {
			return nil, err
		}
		templateFS = sub
	}
	return NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
}

// staticHandler serves /static/* from disk in development and from the
// embedded filesystem otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	var files http.FileSystem
	if isDev {
		files = http.Dir("frontend/static")
	} else if sub, err := fs.Sub(bookms.StaticFS, "frontend/static"); err != nil {
		logger.Warn("embedded static assets unavailable, serving from disk", slog.Any("error", err))
		files = http.Dir("frontend/static")
	} else {
		files = http.FS(sub)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(files)), isDev)
}

// staticWithCacheHeaders disables caching in development and allows a short
// revalidated cache otherwise.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}
