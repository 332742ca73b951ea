package ports

import (
	"context"

	"github.com/bookms/bookms-admin/internal/domain/catalog"
)

// Catalog lists books. Implementations apply catalog.Filter semantics and return
// the slice of matches selected by the page along with the total match count.
type Catalog interface {
	ListBooks(ctx context.Context, f catalog.Filter, page catalog.PageRequest) (catalog.Result, error)
	Facets(ctx context.Context) (catalog.Facets, error)
}
