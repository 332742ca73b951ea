package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/bookms/bookms-admin/config"
	"github.com/bookms/bookms-admin/internal/data"
	"github.com/bookms/bookms-admin/internal/devseed"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	httpx "github.com/bookms/bookms-admin/internal/http"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
	"github.com/bookms/bookms-admin/internal/service"
)

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Infra  Infrastructure
	Logger *slog.Logger
}

// ServiceContainer holds the application services and the adapters that need
// background work or closing.
type ServiceContainer struct {
	Sessions     *service.SessionManager
	Books        *service.BookService
	SSO          *service.SSOFlow
	SSOProviders []domainauth.Provider
	Metrics      *statsd.Client

	storage storageSet
}

// NewServices selects adapters per the configured backends and wires the services.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := buildMetrics(cfg.Observability.Metrics, logger)
	rt := service.Runtime{Logger: logger, Metrics: metricsSink(metrics)}

	storage, err := buildStorage(cfg.Storage, deps.Infra)
	if err != nil {
		return nil, err
	}
	catalogPort, err := BuildCatalog(cfg.Catalog, deps.Infra)
	if err != nil {
		return nil, err
	}
	dir, err := buildDirectory(cfg.Auth, deps.Infra)
	if err != nil {
		return nil, err
	}
	tokens, err := buildTokens(cfg.Tokens)
	if err != nil {
		return nil, err
	}
	sso, err := buildSSO(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.HTTP.BaseURL
	return &ServiceContainer{
		Sessions: service.NewSessionManager(service.SessionManagerOptions{
			Storage: storage.Provider,
			Auth: service.AuthDeps{
				Directory: dir,
				SSO:       sso.Provider,
				Tokens:    tokens,
			},
			Runtime: rt,
			IdleTTL: cfg.Storage.SessionIdleTTL,
		}),
		Books: service.NewBookService(service.BookServiceOptions{
			Catalog: catalogPort,
			Runtime: rt,
			Backend: string(cfg.Catalog.Backend),
		}),
		SSO: service.NewSSOFlow(service.SSOFlowOptions{
			Provider:    sso.Provider,
			CallbackURL: func(p domainauth.Provider) string { return callbackURL(baseURL, p) },
		}),
		SSOProviders: sso.Providers,
		Metrics:      metrics,
		storage:      storage,
	}, nil
}

// SeedDemoData upserts the demo accounts and catalog into Postgres.
func SeedDemoData(ctx context.Context, infra Infrastructure, cost int, logger *slog.Logger) error {
	if infra.DB == nil {
		return errors.New("seeding requires a database connection")
	}
	return devseed.Run(ctx, devseed.Targets{
		Accounts: data.NewAccountRepo(infra.DB),
		Catalog:  data.NewBookRepo(infra.DB),
		Cost:     cost,
	}, logger)
}

// demoAccounts lists the sign-in hints shown on the login page in development.
func demoAccounts(cfg *config.AppConfig) []httpx.DemoAccount {
	if !cfg.IsDev {
		return nil
	}
	var out []httpx.DemoAccount
	for _, id := range devseed.Identities() {
		if !id.Active {
			continue
		}
		out = append(out, httpx.DemoAccount{Email: id.Email, Password: devseed.DemoPassword, Role: id.Role.String()})
	}
	return out
}

// healthChecks probes the connected backends.
func healthChecks(infra Infrastructure) map[string]httpx.HealthCheck {
	checks := make(map[string]httpx.HealthCheck)
	if infra.DB != nil {
		checks["postgres"] = infra.DB.PingContext
	}
	if infra.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return infra.Redis.Ping(ctx).Err() }
	}
	return checks
}

// RunConfig contains everything RunWithShutdown needs.
type RunConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Infra    Infrastructure
	Logger   *slog.Logger
}

// RunWithShutdown serves HTTP and runs the background sweepers until SIGINT or
// SIGTERM, then shuts everything down gracefully.
func RunWithShutdown(ctx context.Context, cfg *RunConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return run(ctx, cfg)
}

func run(ctx context.Context, cfg *RunConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	svcs := cfg.Services

	handler, err := buildHTTPHandler(httpHandlerConfig{
		Logger: logger,
		HTTP:   cfg.Config.HTTP,
		Services: httpx.RouterServices{
			Sessions:     svcs.Sessions,
			Books:        svcs.Books,
			SSO:          svcs.SSO,
			SSOProviders: svcs.SSOProviders,
			Metrics:      metricsSink(svcs.Metrics),
			Health:       healthChecks(cfg.Infra),
			CookieDomain: cfg.Config.HTTP.CookieDomain,
			ClientMaxAge: cfg.Config.Storage.TTL,
			DemoAccounts: demoAccounts(cfg.Config),
			IsDev:        cfg.Config.IsDev,
			Logger:       logger,
		},
	})
	if err != nil {
		return fmt.Errorf("build http handler: %w", err)
	}
	server := newServer(handler, cfg.Config.HTTP.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdownHTTPServer(context.WithoutCancel(gctx), server, logger)
	})
	g.Go(func() error {
		return svcs.Sessions.Run(gctx, cfg.Config.Storage.SweepInterval)
	})
	if mem := svcs.storage.Memory; mem != nil {
		g.Go(func() error {
			return mem.RunSweeper(gctx, cfg.Config.Storage.SweepInterval, logger)
		})
	}

	err = g.Wait()
	if svcs.Metrics != nil {
		if cerr := svcs.Metrics.Close(); cerr != nil {
			logger.Warn("close statsd client failed", "error", cerr)
		}
	}
	return err
}
