package httpx

import (
	"errors"
	"net/http"

	"github.com/bookms/bookms-admin/internal/domain/access"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
)

// PlaceholderView is the model of the pages that are not built out yet.
type PlaceholderView struct {
	Heading  string
	Message  string
	AddLabel string
	CanAdd   bool
}

type placeholderSpec struct {
	page     string
	addLabel string
	// addRole is the minimum role that sees the add button; zero hides it.
	addRole domainauth.Role
}

//nolint:gochecknoglobals // static read-only lookup
var placeholders = map[string]placeholderSpec{
	access.CategoriesPath: {page: PageCategories, addLabel: "Add Category", addRole: domainauth.RoleAdmin},
	access.AuthorsPath:    {page: PageAuthors, addLabel: "Add Author", addRole: domainauth.RoleAdmin},
	access.UsersPath:      {page: PageUsers, addLabel: "Invite User", addRole: domainauth.RoleAdmin},
	access.RolesPath:      {page: PageRoles},
}

// Placeholder renders a "Coming Soon" page for route.
func (h *UIHandlers) Placeholder(route access.Route) http.HandlerFunc {
	ph := placeholders[route.Path]
	return func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		data := newPageData(r, PageMeta{
			Title:       route.Title + " - BookMS",
			PageTitle:   route.Title,
			CurrentPage: ph.page,
		})
		data.Data = PlaceholderView{
			Heading:  route.Title,
			Message:  "Coming Soon",
			AddLabel: ph.addLabel,
			CanAdd:   ph.addLabel != "" && s.HasRole(ph.addRole),
		}
		h.renderDashboardPage(w, r, data)
	}
}

// Forbidden renders the access denied page.
// GET /forbidden.
func (h *UIHandlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, PageMeta{Title: "Access Denied - BookMS", PageTitle: "Access Denied", CurrentPage: PageForbidden})
	data.Status = http.StatusForbidden
	h.renderDashboardPage(w, r, data)
}

// RedirectToBooks sends / and /dashboard to the default dashboard page.
func (h *UIHandlers) RedirectToBooks(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, access.BooksPath, http.StatusFound)
}

// NotFound renders the 404 page for browsers and a JSON error for API clients.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("not found"),
		})
		return
	}
	data := newPageData(r, PageMeta{Title: "Page Not Found - BookMS", PageTitle: "Page Not Found", CurrentPage: PageNotFound})
	data.Status = http.StatusNotFound
	h.renderDashboardPage(w, r, data)
}
