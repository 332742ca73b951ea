package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

// safeRedirectPath returns candidate when it is a same-origin relative path
// starting with a single "/", otherwise "".
func safeRedirectPath(candidate string) string {
	if candidate == "" || strings.ContainsAny(candidate, "\\\r\n") {
		return ""
	}
	if strings.HasPrefix(candidate, "//") {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return candidate
}

// postLoginPath picks where to land after signing in.
func postLoginPath(from string) string {
	p := safeRedirectPath(from)
	if p == "" || strings.HasPrefix(p, "/login") || strings.HasPrefix(p, "/auth/") {
		return "/dashboard"
	}
	return p
}

// loginURL builds /login?from=<path>.
func loginURL(from string) string {
	if from = safeRedirectPath(from); from == "" {
		return "/login"
	}
	return "/login?" + url.Values{"from": {from}}.Encode()
}

// isSecureRequest reports whether the request arrived over TLS, directly or
// through a proxy setting X-Forwarded-Proto.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}
