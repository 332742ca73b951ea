package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication, SSO and token configuration
//   - backends.go: Session storage and catalog backends
//   - database.go: Postgres and Redis connections
//   - http.go: HTTP server configuration
//   - observability.go: Metrics
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, demo fallbacks).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth   AuthConfig
	Tokens TokenConfig `envPrefix:"TOKEN_"`

	Storage StorageConfig `envPrefix:"STORAGE_"`
	Catalog CatalogConfig `envPrefix:"CATALOG_"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Tokens.Sanitize()
	c.Storage.Sanitize()
	c.Observability.Sanitize()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// Validate reports settings that cannot work together. Call after Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Auth.Mode == AuthModeOAuth && len(c.Auth.EnabledProviders()) == 0 {
		errs = append(errs, errors.New("AUTH_MODE=oauth requires OIDC_GOOGLE_* or OIDC_MICROSOFT_* client settings"))
	}
	if !c.IsDev && c.Tokens.Secret == DevTokenSecret {
		errs = append(errs, errors.New("TOKEN_SECRET must be set outside development"))
	}
	if len(c.Tokens.Secret) < MinTokenSecretLength {
		errs = append(errs, fmt.Errorf("TOKEN_SECRET must be at least %d bytes", MinTokenSecretLength))
	}
	return errors.Join(errs...)
}

// NeedsPostgres reports whether any configured backend uses Postgres.
func (c *AppConfig) NeedsPostgres() bool {
	return c.Catalog.Backend == CatalogBackendPostgres || c.Auth.Directory == DirectoryBackendPostgres
}

// NeedsRedis reports whether any configured backend uses Redis.
func (c *AppConfig) NeedsRedis() bool {
	return c.Storage.Backend == StorageBackendRedis
}
