package access

import (
	"strings"

	"github.com/bookms/bookms-admin/internal/domain/auth"
)

// Well-known paths of the navigation surface.
const (
	RootPath       = "/"
	LoginPath      = "/login"
	ForbiddenPath  = "/forbidden"
	DashboardPath  = "/dashboard"
	BooksPath      = "/dashboard/books"
	CategoriesPath = "/dashboard/categories"
	AuthorsPath    = "/dashboard/authors"
	UsersPath      = "/dashboard/management/users"
	RolesPath      = "/dashboard/management/roles"
)

// Route is a protected page of the dashboard.
type Route struct {
	Path  string
	Title string
	// Required is nil for pages open to any signed-in identity.
	Required []auth.Role
}

var protectedRoutes = []Route{
	{Path: BooksPath, Title: "Books"},
	{Path: CategoriesPath, Title: "Categories"},
	{Path: AuthorsPath, Title: "Authors"},
	{Path: UsersPath, Title: "Users", Required: []auth.Role{auth.RoleAdmin, auth.RoleSuperAdmin}},
	{Path: RolesPath, Title: "Roles", Required: []auth.Role{auth.RoleSuperAdmin}},
}

// ProtectedRoutes returns the dashboard pages in declaration order.
func ProtectedRoutes() []Route {
	out := make([]Route, len(protectedRoutes))
	copy(out, protectedRoutes)
	return out
}

// LookupRoute finds the protected route for an exact path, ignoring a trailing slash.
func LookupRoute(path string) (Route, bool) {
	if path != RootPath {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range protectedRoutes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
