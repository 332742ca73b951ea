package httpx

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/bookms/bookms-admin/internal/domain/access"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/domain/catalog"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/http/validation"
	"github.com/bookms/bookms-admin/internal/service"
)

// booksResultsTarget is the element id htmx swaps when the filter changes.
const booksResultsTarget = "books-results"

// MaxSearchTermLength bounds the book search term.
const MaxSearchTermLength = 100

// BooksView is the model of the book listing page.
type BooksView struct {
	Filter     catalog.Filter
	Signature  string
	Page       catalog.Page
	Categories []string
	Years      []int
	// CanEdit shows the add/edit/delete controls (Admin and above).
	CanEdit bool
	// ShowAudit shows the created/modified columns (SuperAdmin only).
	ShowAudit bool
	PrevURL   string
	NextURL   string
}

// YearSelected reports whether y is the active year filter.
func (v BooksView) YearSelected(y int) bool { return v.Filter.Year == strconv.Itoa(y) }

func listBooksInput(r *http.Request) (service.ListBooksInput, error) {
	q := r.URL.Query()
	term := q.Get("term")
	if msg := validation.MaxLength("Search term", MaxSearchTermLength)(term); msg != "" {
		return service.ListBooksInput{}, apperrors.ValidationField("term", msg)
	}
	return service.ListBooksInput{
		Filter: catalog.Filter{
			Term:     term,
			Category: q.Get("category"),
			Year:     q.Get("year"),
		},
		Page: catalog.PageRequest{
			Number: parseIntQuery(r, "page", 1),
			Size:   parseIntQuery(r, "size", catalog.DefaultPageSize),
		},
		PrevSignature: q.Get("fsig"),
	}, nil
}

// booksPageURL links to page n of the listing, carrying the filter and its signature.
func booksPageURL(l service.Listing, n int) string {
	q := url.Values{}
	if l.Filter.Term != "" {
		q.Set("term", l.Filter.Term)
	}
	if l.Filter.Category != catalog.All {
		q.Set("category", l.Filter.Category)
	}
	if l.Filter.Year != catalog.All {
		q.Set("year", l.Filter.Year)
	}
	q.Set("page", strconv.Itoa(n))
	if l.Page.Size != catalog.DefaultPageSize {
		q.Set("size", strconv.Itoa(l.Page.Size))
	}
	q.Set("fsig", l.Signature)
	return access.BooksPath + "?" + q.Encode()
}

// Books renders the filterable book listing.
// GET /dashboard/books?term=&category=&year=&page=&size=&fsig=.
func (h *UIHandlers) Books(w http.ResponseWriter, r *http.Request) {
	in, err := listBooksInput(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	listing, err := h.Catalog.ListBooks(r.Context(), in)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	facets, err := h.Catalog.Facets(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	s := SessionFromContext(r.Context())
	view := BooksView{
		Filter:     listing.Filter,
		Signature:  listing.Signature,
		Page:       listing.Page,
		Categories: facets.Categories,
		Years:      facets.Years,
		CanEdit:    s.HasRole(domainauth.RoleAdmin),
		ShowAudit:  s.HasRole(domainauth.RoleSuperAdmin),
	}
	if listing.Page.HasPrev() {
		view.PrevURL = booksPageURL(listing, listing.Page.Number-1)
	}
	if listing.Page.HasNext() {
		view.NextURL = booksPageURL(listing, listing.Page.Number+1)
	}

	data := newPageData(r, PageMeta{Title: "Books - BookMS", PageTitle: "Books", CurrentPage: PageBooks})
	data.Data = view

	if WantsPartial(r) && HXTarget(r) == booksResultsTarget {
		SetHXPushURL(w, booksPageURL(listing, listing.Page.Number))
		if err := h.T.RenderFragment(w, booksResultsTarget, data); err != nil {
			h.serverError(w, r, err)
		}
		return
	}
	h.renderDashboardPage(w, r, data)
}

type booksResponse struct {
	Filter    catalog.Filter `json:"filter"`
	Signature string         `json:"signature"`
	Page      catalog.Page   `json:"page"`
}

// APIBooks returns the listing as JSON.
// GET /api/books?term=&category=&year=&page=&size=&fsig=.
func (h *UIHandlers) APIBooks(w http.ResponseWriter, r *http.Request) {
	in, err := listBooksInput(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	listing, err := h.Catalog.ListBooks(r.Context(), in)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, booksResponse{
		Filter:    listing.Filter,
		Signature: listing.Signature,
		Page:      listing.Page,
	})
}

// APIBookFacets returns the category and year selector values.
// GET /api/books/facets.
func (h *UIHandlers) APIBookFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.Catalog.Facets(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, facets)
}
