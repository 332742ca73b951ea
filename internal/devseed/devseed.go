// Package devseed provides the demo accounts and catalog used in development,
// and seeds them into Postgres.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/domain/catalog"
)

// AccountWriter persists accounts.
type AccountWriter interface {
	UpsertAccounts(ctx context.Context, accounts []domainauth.Account) error
}

// CatalogWriter persists the category reference list and books.
type CatalogWriter interface {
	UpsertCategories(ctx context.Context, cats []catalog.Category) error
	UpsertBooks(ctx context.Context, books []catalog.Book) error
}

// Targets bundles the stores Run writes to.
type Targets struct {
	Accounts AccountWriter
	Catalog  CatalogWriter
	// Cost is the bcrypt cost; zero uses bcrypt.DefaultCost.
	Cost int
}

// Run upserts the demo accounts, categories and books. Each step runs even if
// an earlier one failed; the failures are returned joined.
func Run(ctx context.Context, t Targets, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var errs []error
	if t.Accounts != nil {
		errs = append(errs, seedAccounts(ctx, t, logger))
	}
	if t.Catalog != nil {
		errs = append(errs, seedCatalog(ctx, t.Catalog, logger))
	}
	return errors.Join(errs...)
}

func seedAccounts(ctx context.Context, t Targets, logger *slog.Logger) error {
	cost := t.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	ids := Identities()
	accts := make([]domainauth.Account, len(ids))
	for i, id := range ids {
		accts[i] = domainauth.Account{Identity: id, PasswordHash: hash}
	}
	if err := t.Accounts.UpsertAccounts(ctx, accts); err != nil {
		logger.ErrorContext(ctx, "failed to seed accounts", "error", err)
		return err
	}
	logger.InfoContext(ctx, "seeded accounts", "count", len(accts))
	return nil
}

func seedCatalog(ctx context.Context, w CatalogWriter, logger *slog.Logger) error {
	cats := Categories()
	if err := w.UpsertCategories(ctx, cats); err != nil {
		logger.ErrorContext(ctx, "failed to seed categories", "error", err)
		return err
	}
	books := Books()
	if err := w.UpsertBooks(ctx, books); err != nil {
		logger.ErrorContext(ctx, "failed to seed books", "error", err)
		return err
	}
	logger.InfoContext(ctx, "seeded catalog", "categories", len(cats), "books", len(books))
	return nil
}
