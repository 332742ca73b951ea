// Package ports defines interfaces (hexagonal ports) for the dashboard's collaborators.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
)

// Directory looks up known accounts.
type Directory interface {
	// FindByEmail returns the account registered under email or a NotFound AppError.
	FindByEmail(ctx context.Context, email string) (domainauth.Account, error)
}

// SSOBeginInput carries inputs for starting a single sign-on redirect.
type SSOBeginInput struct {
	Provider    domainauth.Provider
	State       string
	Nonce       string
	RedirectURL string
}

// SSORedeemInput carries the authorization response returned to the callback.
type SSORedeemInput struct {
	Provider    domainauth.Provider
	Code        string
	RedirectURL string
}

// SSOProvider drives the browser side of single sign-on.
type SSOProvider interface {
	// Begin returns the URL the browser should be sent to.
	Begin(ctx context.Context, in SSOBeginInput) (authURL string, err error)

	// Redeem turns an authorization code into the external token handed to SSOExchanger.
	Redeem(ctx context.Context, in SSORedeemInput) (externalToken string, err error)
}

// SSOExchangeInput groups parameters for exchanging an external token.
type SSOExchangeInput struct {
	Provider domainauth.Provider
	Token    string
	// Nonce is checked against the token when non-empty.
	Nonce string
}

// SSOExchanger exchanges an external provider token for an identity.
type SSOExchanger interface {
	Exchange(ctx context.Context, in SSOExchangeInput) (domainauth.Identity, error)
}

// TokenIssuer mints the access/refresh token pair stored with a session.
type TokenIssuer interface {
	Issue(ctx context.Context, id domainauth.Identity) (domainauth.Tokens, error)
}
