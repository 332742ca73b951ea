package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bookms/bookms-admin/config"
	"github.com/bookms/bookms-admin/internal/bootstrap"
	"github.com/bookms/bookms-admin/internal/domain/catalog"
	"github.com/bookms/bookms-admin/internal/service"
)

type listBooksOptions struct {
	Filter catalog.Filter
	Page   catalog.PageRequest
	Facets bool
	outputOptions
}

func parseListBooksFlags(args []string) (listBooksOptions, error) {
	fs := newFlagSet("list-books")
	var opts listBooksOptions
	fs.StringVar(&opts.Filter.Term, "term", "", "Case-insensitive match on title, ISBN or author")
	fs.StringVar(&opts.Filter.Category, "category", catalog.All, "Category name or \"all\"")
	fs.StringVar(&opts.Filter.Year, "year", catalog.All, "Publication year or \"all\"")
	fs.IntVar(&opts.Page.Number, "page", 1, "1-based page number")
	fs.IntVar(&opts.Page.Size, "size", catalog.DefaultPageSize, "Page size")
	fs.BoolVar(&opts.Facets, "facets", false, "Print the category and year selector values instead")
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return listBooksOptions{}, err
	}
	return opts, nil
}

func runListBooks(cmdCtx *commandContext, args []string) error {
	opts, err := parseListBooksFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	infra := bootstrap.Infrastructure{}
	if cmdCtx.Config.Catalog.Backend == config.CatalogBackendPostgres {
		db, err := bootstrap.OpenPostgres(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer func() { _ = db.Close() }()
		infra.DB = db
	}
	books, err := newBookService(cmdCtx.Config.Catalog, infra)
	if err != nil {
		return err
	}
	return listBooks(ctx, cmdCtx, books, opts)
}

func newBookService(cfg config.CatalogConfig, infra bootstrap.Infrastructure) (*service.BookService, error) {
	c, err := bootstrap.BuildCatalog(cfg, infra)
	if err != nil {
		return nil, err
	}
	return service.NewBookService(service.BookServiceOptions{Catalog: c, Backend: string(cfg.Backend)}), nil
}

func listBooks(ctx context.Context, cmdCtx *commandContext, books *service.BookService, opts listBooksOptions) error {
	if opts.Facets {
		facets, err := books.Facets(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmdCtx.Out, facets, opts.Query)
	}
	listing, err := books.ListBooks(ctx, service.ListBooksInput{Filter: opts.Filter, Page: opts.Page})
	if err != nil {
		return err
	}
	return printJSON(cmdCtx.Out, listing.Page, opts.Query)
}
