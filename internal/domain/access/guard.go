// Package access decides what a session may see: route guarding and navigation filtering.
// Everything here is a pure function of an auth.Session snapshot.
package access

import (
	"github.com/bookms/bookms-admin/internal/domain/auth"
)

// DecisionKind enumerates the outcomes of a guard evaluation.
type DecisionKind uint8

const (
	// Suspend means the session is still pending; render nothing yet.
	Suspend DecisionKind = iota
	// Allow means the protected content may render.
	Allow
	// RedirectLogin sends the caller to the sign-in entry point, remembering From.
	RedirectLogin
	// Forbidden sends the caller to the forbidden view.
	Forbidden
	// RedirectDashboard sends an already signed-in caller away from a public-only page.
	RedirectDashboard
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case Forbidden:
		return "forbidden"
	case RedirectDashboard:
		return "redirect_dashboard"
	default:
		return "suspend"
	}
}

// Decision is the result of Evaluate.
type Decision struct {
	Kind DecisionKind
	// From is the originally requested path; set only for RedirectLogin.
	From string
}

// Evaluate applies the route guard to a session snapshot.
//
// A nil required list means the route only needs an authenticated session. A non-nil
// list is checked with HasAnyRole, so an empty non-nil list admits nobody.
func Evaluate(s auth.Session, path string, required []auth.Role) Decision {
	switch {
	case s.Pending():
		return Decision{Kind: Suspend}
	case !s.Authenticated():
		return Decision{Kind: RedirectLogin, From: path}
	case required != nil && !s.HasAnyRole(required...):
		return Decision{Kind: Forbidden}
	default:
		return Decision{Kind: Allow}
	}
}

// EvaluatePublicOnly guards routes that only make sense for signed-out visitors,
// such as the login page.
func EvaluatePublicOnly(s auth.Session) Decision {
	switch {
	case s.Pending():
		return Decision{Kind: Suspend}
	case s.Authenticated():
		return Decision{Kind: RedirectDashboard}
	default:
		return Decision{Kind: Allow}
	}
}
