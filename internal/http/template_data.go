package httpx

import (
	"net/http"
	"time"

	"github.com/bookms/bookms-admin/internal/domain/access"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/http/uiutil"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

type roleView struct {
	Label   string
	Variant string
}

func roleBadge(r domainauth.Role) roleView {
	switch r {
	case domainauth.RoleSuperAdmin:
		return roleView{Label: "Super Admin", Variant: "danger"}
	case domainauth.RoleAdmin:
		return roleView{Label: "Admin", Variant: "warning"}
	case domainauth.RoleUser:
		return roleView{Label: "User", Variant: "info"}
	default:
		return roleView{Label: uiutil.TitleCase(r.String()), Variant: "neutral"}
	}
}

// UserView is the signed-in identity as shown in the top bar and nav panel.
type UserView struct {
	Name      string
	Email     string
	Initials  string
	Role      roleView
	// LastLogin is when the current session was established.
	LastLogin *time.Time
}

// PageData is the root value passed to every layout template.
type PageData struct {
	PageMeta
	CSRFToken   string
	CurrentPath string
	User        *UserView
	Nav         []access.NavSection
	// Errors holds field validation messages keyed by form field name.
	Errors map[string]string
	// Error is a page-level message shown above the content.
	Error string
	// Data carries the page-specific view model.
	Data any
	// Status overrides the 200 response code.
	Status int
}

// HTTPStatus is the response code the renderer writes.
func (p PageData) HTTPStatus() int { return p.Status }

// Authenticated reports whether the page is rendered for a signed-in identity.
func (p PageData) Authenticated() bool { return p.User != nil }

// newPageData builds the layout data from the request's session and CSRF token.
func newPageData(r *http.Request, meta PageMeta) PageData {
	s := SessionFromContext(r.Context())
	data := PageData{
		PageMeta:    meta,
		CSRFToken:   GetCSRFToken(r),
		CurrentPath: r.URL.Path,
	}
	if s.Authenticated() {
		id := s.Identity
		data.User = &UserView{
			Name:      id.Name,
			Email:     id.Email,
			Initials:  id.Initials(),
			Role:      roleBadge(id.Role),
			LastLogin: id.LastLogin,
		}
		data.Nav = access.VisibleSections(s, access.NavEntries())
	}
	return data
}
