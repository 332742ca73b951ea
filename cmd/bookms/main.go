package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bookms/bookms-admin/config"
	"github.com/bookms/bookms-admin/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger(os.Getenv("LOG_LEVEL"))
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	cfgPtr := &cfg
	// .env may have set LOG_LEVEL after the bootstrap logger was created.
	logger = bootstrap.InitLogger(cfg.Observability.LogLevel)

	logStartupInfo(ctx, logger, cfgPtr)

	infra, err := bootstrap.ConnectInfrastructure(ctx, cfgPtr, logger)
	if err != nil {
		return err
	}
	defer func() { _ = infra.Close(ctx, logger) }()

	if infra.DB != nil {
		if cfg.Postgres.RunMigrationsOnStart {
			if err = bootstrap.RunMigrations(ctx, infra.DB, logger); err != nil {
				return err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
		if cfg.Catalog.SeedOnStart {
			if err = bootstrap.SeedDemoData(ctx, infra, cfg.Auth.BcryptCost, logger); err != nil {
				return err
			}
		}
	}

	services, err := bootstrap.NewServices(ctx, &bootstrap.ServiceDeps{
		Config: cfgPtr,
		Infra:  infra,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunWithShutdown(ctx, &bootstrap.RunConfig{
		Config:   cfgPtr,
		Services: services,
		Infra:    infra,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting bookms dashboard",
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev,
		"auth_mode", cfg.Auth.Mode,
		"directory", cfg.Auth.Directory,
		"storage", cfg.Storage.Backend,
		"catalog", cfg.Catalog.Backend,
		"sso_providers", cfg.Auth.EnabledProviders())
}
