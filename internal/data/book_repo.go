package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookms/bookms-admin/internal/data/pgxutil"
	"github.com/bookms/bookms-admin/internal/domain/catalog"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/ports"
)

const bookColumns = `id, title, isbn, published_year, categories, authors, status,
	created_at, updated_at, created_by, last_modified_by`

// BookRepo serves the catalog from Postgres.
type BookRepo struct {
	DB *sql.DB
}

var _ ports.Catalog = (*BookRepo)(nil)

// NewBookRepo creates a new BookRepo.
func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{DB: db}
}

type bookRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	ISBN           *string   `db:"isbn"`
	PublishedYear  *int32    `db:"published_year"`
	Categories     []string  `db:"categories"`
	Authors        []string  `db:"authors"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	CreatedBy      string    `db:"created_by"`
	LastModifiedBy string    `db:"last_modified_by"`
}

func (r bookRow) toDomain() catalog.Book {
	b := catalog.Book{
		ID:             r.ID,
		Title:          r.Title,
		Categories:     r.Categories,
		Authors:        r.Authors,
		Status:         catalog.Status(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		CreatedBy:      r.CreatedBy,
		LastModifiedBy: r.LastModifiedBy,
	}
	if r.ISBN != nil {
		b.ISBN = *r.ISBN
	}
	if r.PublishedYear != nil {
		b.PublishedYear = int(*r.PublishedYear)
	}
	return b
}

// bookWhere renders the filter as a WHERE clause with positional args.
// Term matching uses strpos over lowered text so user input needs no LIKE escaping.
func bookWhere(f catalog.Filter) (string, []any) {
	f = f.Normalize()
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Term != "" {
		p := next(strings.ToLower(f.Term))
		conds = append(conds, fmt.Sprintf(`(strpos(lower(title), %[1]s) > 0
			OR strpos(lower(coalesce(isbn, '')), %[1]s) > 0
			OR EXISTS (SELECT 1 FROM unnest(authors) AS a WHERE strpos(lower(a), %[1]s) > 0))`, p))
	}
	if f.Category != catalog.All {
		conds = append(conds, next(f.Category)+" = ANY(categories)")
	}
	if f.Year != catalog.All {
		conds = append(conds, "published_year::text = "+next(f.Year))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListBooks counts the matches and fetches the requested window in insertion order.
func (r *BookRepo) ListBooks(ctx context.Context, f catalog.Filter, page catalog.PageRequest) (catalog.Result, error) {
	where, args := bookWhere(f)
	page = page.Normalize()

	var res catalog.Result
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if err := conn.QueryRow(ctx, "SELECT count(*) FROM books"+where, args...).Scan(&res.TotalCount); err != nil {
			return err
		}
		start, end := catalog.Window(res.TotalCount, page)
		if start == end {
			return nil
		}
		q := fmt.Sprintf("SELECT %s FROM books%s ORDER BY created_at, id LIMIT %d OFFSET %d",
			bookColumns, where, end-start, start)
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		out, err := pgx.CollectRows(rows, pgx.RowToStructByName[bookRow])
		if err != nil {
			return err
		}
		res.Records = make([]catalog.Book, len(out))
		for i := range out {
			res.Records[i] = out[i].toDomain()
		}
		return nil
	})
	if err != nil {
		return catalog.Result{}, fmt.Errorf("list books: %w", apperrors.MapDBError(err))
	}
	return res, nil
}

// Facets returns the category reference list and the distinct publication years.
func (r *BookRepo) Facets(ctx context.Context) (catalog.Facets, error) {
	var out catalog.Facets
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT name FROM categories ORDER BY position, name`)
		if err != nil {
			return err
		}
		if out.Categories, err = pgx.CollectRows(rows, pgx.RowTo[string]); err != nil {
			return err
		}
		rows, err = conn.Query(ctx, `SELECT DISTINCT published_year FROM books
			WHERE published_year IS NOT NULL ORDER BY published_year DESC`)
		if err != nil {
			return err
		}
		years, err := pgx.CollectRows(rows, pgx.RowTo[int32])
		if err != nil {
			return err
		}
		out.Years = make([]int, len(years))
		for i, y := range years {
			out.Years[i] = int(y)
		}
		return nil
	})
	if err != nil {
		return catalog.Facets{}, fmt.Errorf("book facets: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// UpsertBooks inserts or replaces books in one transaction.
func (r *BookRepo) UpsertBooks(ctx context.Context, books []catalog.Book) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, b := range books {
			batch.Queue(`
				INSERT INTO books (`+bookColumns+`)
				VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, 0), $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (id) DO UPDATE SET
					title = EXCLUDED.title, isbn = EXCLUDED.isbn, published_year = EXCLUDED.published_year,
					categories = EXCLUDED.categories, authors = EXCLUDED.authors, status = EXCLUDED.status,
					updated_at = EXCLUDED.updated_at, last_modified_by = EXCLUDED.last_modified_by`,
				b.ID, b.Title, b.ISBN, b.PublishedYear, nonNil(b.Categories), nonNil(b.Authors), string(b.Status),
				b.CreatedAt, b.UpdatedAt, b.CreatedBy, b.LastModifiedBy)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("upsert books: %w", apperrors.MapDBError(err))
	}
	return nil
}

// UpsertCategories stores the category reference list; slice order becomes display order.
func (r *BookRepo) UpsertCategories(ctx context.Context, cats []catalog.Category) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, c := range cats {
			batch.Queue(`
				INSERT INTO categories (id, name, description, position) VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name, description = EXCLUDED.description, position = EXCLUDED.position`,
				c.ID, c.Name, c.Description, i)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("upsert categories: %w", apperrors.MapDBError(err))
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
