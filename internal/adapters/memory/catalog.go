package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/bookms/bookms-admin/internal/domain/catalog"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/ports"
)

// Catalog serves a fixed, memory-resident book collection.
type Catalog struct {
	mu         sync.RWMutex
	books      []catalog.Book
	categories []string
}

var _ ports.Catalog = (*Catalog)(nil)

// NewCatalog copies books and the category reference list.
func NewCatalog(books []catalog.Book, categories []string) *Catalog {
	return &Catalog{
		books:      slices.Clone(books),
		categories: slices.Clone(categories),
	}
}

// ListBooks filters linearly and returns the requested window.
func (c *Catalog) ListBooks(ctx context.Context, f catalog.Filter, page catalog.PageRequest) (catalog.Result, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Result{}, apperrors.MapContextError(err)
	}
	c.mu.RLock()
	matched := f.Apply(c.books)
	c.mu.RUnlock()

	start, end := catalog.Window(len(matched), page)
	return catalog.Result{Records: matched[start:end], TotalCount: len(matched)}, nil
}

// Facets returns the configured categories and the years present in the collection.
func (c *Catalog) Facets(ctx context.Context) (catalog.Facets, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Facets{}, apperrors.MapContextError(err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return catalog.Facets{
		Categories: slices.Clone(c.categories),
		Years:      catalog.YearsOf(c.books),
	}, nil
}
