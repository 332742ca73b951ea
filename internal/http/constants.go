package httpx

// CurrentPage constants identify the page being rendered. Templates use them to
// pick the content section and to highlight the active navigation entry.
const (
	PageLogin      = "login"
	PageBooks      = "books"
	PageCategories = "categories"
	PageAuthors    = "authors"
	PageUsers      = "users"
	PageRoles      = "roles"
	PageForbidden  = "forbidden"
	PageNotFound   = "not-found"
)

// Template paths used for loading templates in tests and development.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Cookie names.
const (
	// ClientCookieName carries the client namespace id that selects the session.
	ClientCookieName = "bookms_client"

	ssoStateCookie = "sso_state"
	ssoNonceCookie = "sso_nonce"
	ssoFromCookie  = "sso_from"
)

// ToastEvent is the HX-Trigger event the layout listens on.
const ToastEvent = "showToast"

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLogin:      "login-content",
	PageBooks:      "books-content",
	PageCategories: "placeholder-content",
	PageAuthors:    "placeholder-content",
	PageUsers:      "placeholder-content",
	PageRoles:      "placeholder-content",
	PageForbidden:  "forbidden-content",
	PageNotFound:   "not-found-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Unknown pages render the not-found section.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "not-found-content"
}
