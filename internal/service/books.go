package service

import (
	"context"
	"fmt"

	"github.com/bookms/bookms-admin/internal/domain/catalog"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/ports"
)

// BookServiceOptions groups dependencies for BookService.
type BookServiceOptions struct {
	Catalog ports.Catalog
	Runtime Runtime
	// Backend tags catalog timings.
	Backend string
}

// BookService serves the filtered, paginated book listing.
type BookService struct {
	catalog ports.Catalog
	rt      Runtime
	backend string
}

// NewBookService constructs a BookService.
func NewBookService(opts BookServiceOptions) *BookService {
	if opts.Catalog == nil {
		panic("Catalog is required")
	}
	return &BookService{catalog: opts.Catalog, rt: opts.Runtime.withDefaults(), backend: opts.Backend}
}

// ListBooksInput is one listing request.
type ListBooksInput struct {
	Filter catalog.Filter
	Page   catalog.PageRequest
	// PrevSignature is the signature of the filter the client last rendered.
	// When it differs from Filter's, the page resets to 1.
	PrevSignature string
}

// Listing is a rendered page plus the state the client echoes back next time.
type Listing struct {
	Filter    catalog.Filter
	Signature string
	Page      catalog.Page
}

// ListBooks normalizes the request, applies the page reset rule and queries the catalog.
func (s *BookService) ListBooks(ctx context.Context, in ListBooksInput) (Listing, error) {
	f := in.Filter.Normalize()
	req := in.Page.ResetOnChange(in.PrevSignature, f)

	start := s.rt.Now()
	res, err := s.catalog.ListBooks(ctx, f, req)
	s.rt.Metrics.Timing(MetricCatalogList, s.rt.Now().Sub(start), map[string]string{
		"backend": s.backend,
		"result":  catalogResult(err),
	})
	if err != nil {
		return Listing{}, fmt.Errorf("list books: %w", err)
	}
	return Listing{Filter: f, Signature: f.Signature(), Page: catalog.NewPage(res, req)}, nil
}

// Facets returns the values offered by the category and year selectors.
func (s *BookService) Facets(ctx context.Context) (catalog.Facets, error) {
	facets, err := s.catalog.Facets(ctx)
	if err != nil {
		return catalog.Facets{}, fmt.Errorf("book facets: %w", err)
	}
	return facets, nil
}

func catalogResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsCanceled(err):
		return "canceled"
	case apperrors.IsTimeout(err):
		return "timeout"
	case apperrors.IsUnavailable(err):
		return "unavailable"
	default:
		return "error"
	}
}
