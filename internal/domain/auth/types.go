// Package auth contains domain-level types for identities, roles and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Provider records how a session was established.
type Provider string

const (
	ProviderEmail     Provider = "email"
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
)

// SSOProviders lists the providers that can be used for single sign-on.
func SSOProviders() []Provider {
	return []Provider{ProviderGoogle, ProviderMicrosoft}
}

// ParseSSOProvider validates a single sign-on provider name.
func ParseSSOProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SSOProviders(), p) {
		return p, nil
	}
	return "", fmt.Errorf("unsupported sso provider %q", s)
}

// DisplayName is the human-facing provider label.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGoogle:
		return "Google"
	case ProviderMicrosoft:
		return "Microsoft"
	case ProviderEmail:
		return "Email"
	default:
		return string(p)
	}
}

// Identity is an authenticated principal. It is the shape persisted under the
// currentUser storage key, so field names are part of the storage format.
type Identity struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Provider  Provider   `json:"provider,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	Active    bool       `json:"active"`
}

// Validate checks the fields a restored identity must carry to be trusted.
func (i Identity) Validate() error {
	switch {
	case strings.TrimSpace(i.ID) == "":
		return errors.New("identity id is empty")
	case strings.TrimSpace(i.Email) == "":
		return errors.New("identity email is empty")
	case !i.Role.Valid():
		return fmt.Errorf("identity role %d is invalid", uint8(i.Role))
	}
	return nil
}

// Initials returns up to two uppercase initials of the display name.
func (i Identity) Initials() string {
	var out []rune
	for _, part := range strings.Fields(i.Name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// Tokens are the two opaque values stored alongside the identity.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Status is the resolution state of a session.
type Status uint8

const (
	// StatusPending means the persisted session has not been read yet; no access
	// decision may be made.
	StatusPending Status = iota
	// StatusResolved means the session is known to be authenticated or not.
	StatusResolved
)

func (s Status) String() string {
	if s == StatusResolved {
		return "resolved"
	}
	return "pending"
}

// Session is a snapshot of a client's authentication state.
type Session struct {
	Identity *Identity
	Status   Status
}

// Pending reports whether the session is still unresolved.
func (s Session) Pending() bool { return s.Status == StatusPending }

// Authenticated reports whether the session is resolved and carries an identity.
func (s Session) Authenticated() bool {
	return s.Status == StatusResolved && s.Identity != nil
}

// HasRole reports whether the current identity's role is at least required.
func (s Session) HasRole(required Role) bool {
	if s.Identity == nil {
		return false
	}
	return s.Identity.Role.Satisfies(required)
}

// HasAnyRole reports whether HasRole holds for at least one of required.
// An empty list never matches.
func (s Session) HasAnyRole(required ...Role) bool {
	return slices.ContainsFunc(required, s.HasRole)
}

// Clone returns a copy that does not share the identity pointer.
func (s Session) Clone() Session {
	if s.Identity == nil {
		return s
	}
	id := *s.Identity
	if id.LastLogin != nil {
		t := *id.LastLogin
		id.LastLogin = &t
	}
	return Session{Identity: &id, Status: s.Status}
}

// Account is a directory entry: an identity and the bcrypt hash of its password.
type Account struct {
	Identity     Identity
	PasswordHash []byte
}
