package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/bookms/bookms-admin/config"
	"github.com/bookms/bookms-admin/internal/adapters/devauth"
	"github.com/bookms/bookms-admin/internal/adapters/directory"
	"github.com/bookms/bookms-admin/internal/adapters/jwt"
	"github.com/bookms/bookms-admin/internal/adapters/memory"
	"github.com/bookms/bookms-admin/internal/adapters/oidc"
	redisadapter "github.com/bookms/bookms-admin/internal/adapters/redis"
	"github.com/bookms/bookms-admin/internal/data"
	"github.com/bookms/bookms-admin/internal/devseed"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
	"github.com/bookms/bookms-admin/internal/ports"
)

// Infrastructure holds the shared connections. Either field may be nil when
// no configured backend needs it.
type Infrastructure struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// storageSet is the selected client storage plus the background sweep it needs.
type storageSet struct {
	Provider ports.StorageProvider
	// Memory is set when namespaces live in process and must be swept.
	Memory *memory.StorageProvider
}

func buildStorage(cfg config.StorageConfig, infra Infrastructure) (storageSet, error) {
	switch cfg.Backend {
	case config.StorageBackendRedis:
		if infra.Redis == nil {
			return storageSet{}, errors.New("redis storage selected but redis is not connected")
		}
		return storageSet{Provider: redisadapter.NewStorageProvider(infra.Redis, redisadapter.StorageOptions{
			Prefix: cfg.KeyPrefix,
			TTL:    cfg.TTL,
		})}, nil
	default:
		mem := memory.NewStorageProvider(memory.StorageOptions{TTL: cfg.TTL})
		return storageSet{Provider: mem, Memory: mem}, nil
	}
}

// BuildCatalog returns the configured book catalog.
func BuildCatalog(cfg config.CatalogConfig, infra Infrastructure) (ports.Catalog, error) {
	switch cfg.Backend {
	case config.CatalogBackendPostgres:
		if infra.DB == nil {
			return nil, errors.New("postgres catalog selected but database is not connected")
		}
		return data.NewBookRepo(infra.DB), nil
	default:
		return memory.NewCatalog(devseed.Books(), devseed.CategoryNames()), nil
	}
}

func buildDirectory(cfg config.AuthConfig, infra Infrastructure) (ports.Directory, error) {
	switch cfg.Directory {
	case config.DirectoryBackendPostgres:
		if infra.DB == nil {
			return nil, errors.New("postgres directory selected but database is not connected")
		}
		return data.NewAccountRepo(infra.DB), nil
	default:
		dir, err := directory.NewStatic(directory.StaticOptions{
			Identities: devseed.Identities(),
			Password:   devseed.DemoPassword,
			Cost:       cfg.BcryptCost,
		})
		if err != nil {
			return nil, fmt.Errorf("build static directory: %w", err)
		}
		return dir, nil
	}
}

// ssoProvider is what a single sign-on backend must offer: the redirect half
// and the token exchange.
type ssoProvider interface {
	ports.SSOProvider
	ports.SSOExchanger
}

type ssoSet struct {
	Provider  ssoProvider
	Providers []domainauth.Provider
}

// callbackURL is the absolute URL a provider redirects back to.
func callbackURL(baseURL string, p domainauth.Provider) string {
	return baseURL + "/auth/sso/" + string(p) + "/callback"
}

func buildSSO(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (ssoSet, error) {
	if cfg.Auth.Mode == config.AuthModeMock {
		emails := map[domainauth.Provider]string{}
		if e := strings.TrimSpace(cfg.Auth.DevAuth.GoogleEmail); e != "" {
			emails[domainauth.ProviderGoogle] = e
		}
		if e := strings.TrimSpace(cfg.Auth.DevAuth.MicrosoftEmail); e != "" {
			emails[domainauth.ProviderMicrosoft] = e
		}
		logger.WarnContext(ctx, "single sign-on is mocked; do not use AUTH_MODE=mock in production")
		return ssoSet{
			Provider:  devauth.NewProvider(devauth.Config{Emails: emails}),
			Providers: domainauth.SSOProviders(),
		}, nil
	}

	var providers []oidc.ProviderConfig
	add := func(name domainauth.Provider, pc config.OIDCProviderConfig) {
		if !pc.Configured() {
			return
		}
		providers = append(providers, oidc.ProviderConfig{
			Name:         name,
			IssuerURL:    pc.IssuerURL,
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  callbackURL(cfg.HTTP.BaseURL, name),
			Scopes:       pc.Scopes,
		})
	}
	add(domainauth.ProviderGoogle, cfg.Auth.Google)
	add(domainauth.ProviderMicrosoft, cfg.Auth.Microsoft)

	reg, err := oidc.NewRegistry(ctx, oidc.RegistryConfig{
		Providers:      providers,
		AllowedDomains: cfg.Auth.AllowedDomains,
	})
	if err != nil {
		return ssoSet{}, fmt.Errorf("build oidc registry: %w", err)
	}
	return ssoSet{Provider: reg, Providers: reg.Providers()}, nil
}

func buildTokens(cfg config.TokenConfig) (*jwt.Issuer, error) {
	issuer, err := jwt.NewIssuer(jwt.Options{
		Secret: []byte(cfg.Secret),
		Issuer: cfg.Issuer,
		TTL:    cfg.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("build token issuer: %w", err)
	}
	return issuer, nil
}

// buildMetrics returns the statsd client, or nil when metrics are disabled or
// the endpoint cannot be dialled.
func buildMetrics(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled:    true,
		Address:    cfg.StatsdAddress,
		Prefix:     cfg.Prefix,
		GlobalTags: cfg.Tags(),
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// metricsSink avoids handing out a typed-nil *statsd.Client as a Sink.
func metricsSink(c *statsd.Client) statsd.Sink {
	if c == nil {
		return statsd.Discard
	}
	return c
}
