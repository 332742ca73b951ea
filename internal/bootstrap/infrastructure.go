package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookms/bookms-admin/config"
)

const connectTimeout = 5 * time.Second

// ConnectInfrastructure connects only the backends the configuration selects.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (Infrastructure, error) {
	var infra Infrastructure

	if cfg.NeedsPostgres() || cfg.Catalog.SeedOnStart {
		db, err := OpenPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return infra, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db
	}

	if cfg.NeedsRedis() {
		client, err := OpenRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return infra, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close(ctx, logger))
		}
		infra.Redis = client
	}
	return infra, nil
}

// Close releases every open connection.
func (i Infrastructure) Close(ctx context.Context, logger *slog.Logger) error {
	var errs []error
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil && logger != nil {
		logger.ErrorContext(ctx, "closing infrastructure failed", "error", err)
	}
	return err
}

// verifyConnection pings a freshly opened connection within connectTimeout.
// An unreachable backend is closed before the error is returned.
func verifyConnection(ctx context.Context, ping func(context.Context) error, closeFn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	err := ping(ctx)
	if err == nil {
		return nil
	}
	if closeErr := closeFn(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close connection: %w", closeErr))
	}
	return err
}
