// Package devauth provides a mock single sign-on provider for local development.
package devauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/ports"
)

// Config controls the mock provider.
type Config struct {
	// CallbackPath is the route that completes SSO; "{provider}" is substituted.
	// Defaults to /auth/sso/{provider}/callback.
	CallbackPath string
	// Emails overrides the synthesized address per provider.
	Emails map[domainauth.Provider]string
	Now    func() time.Time
}

// Provider implements ports.SSOProvider and ports.SSOExchanger without contacting
// an identity provider. Begin redirects straight back to our own callback and
// Exchange synthesizes a baseline identity for the provider.
type Provider struct {
	callbackPath string
	emails       map[domainauth.Provider]string
	now          func() time.Time
}

var (
	_ ports.SSOProvider  = (*Provider)(nil)
	_ ports.SSOExchanger = (*Provider)(nil)
)

// NewProvider constructs a mock provider.
func NewProvider(cfg Config) *Provider {
	emails := map[domainauth.Provider]string{
		domainauth.ProviderGoogle:    "user@gmail.com",
		domainauth.ProviderMicrosoft: "user@outlook.com",
	}
	for p, e := range cfg.Emails {
		emails[p] = e
	}
	callback := cfg.CallbackPath
	if callback == "" {
		callback = "/auth/sso/{provider}/callback"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{callbackPath: callback, emails: emails, now: now}
}

// Begin returns our own callback URL carrying a fixed code and the caller's state.
func (p *Provider) Begin(_ context.Context, in ports.SSOBeginInput) (string, error) {
	if _, ok := p.emails[in.Provider]; !ok {
		return "", fmt.Errorf("dev auth: unsupported provider %q", in.Provider)
	}
	path := p.callbackFor(in.Provider)
	q := url.Values{}
	q.Set("code", "dev")
	q.Set("state", in.State)
	return path + "?" + q.Encode(), nil
}

// Redeem returns the mock external token for the provider.
func (p *Provider) Redeem(_ context.Context, in ports.SSORedeemInput) (string, error) {
	if in.Code == "" {
		return "", errors.New("dev auth: missing authorization code")
	}
	return "mock-" + string(in.Provider) + "-id-token", nil
}

// Exchange accepts any non-empty token and returns a fresh User identity.
func (p *Provider) Exchange(ctx context.Context, in ports.SSOExchangeInput) (domainauth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	email, ok := p.emails[in.Provider]
	if !ok {
		return domainauth.Identity{}, fmt.Errorf("dev auth: unsupported provider %q", in.Provider)
	}
	if in.Token == "" {
		return domainauth.Identity{}, errors.New("dev auth: empty external token")
	}
	now := p.now().UTC()
	return domainauth.Identity{
		ID:        "sso-" + uuid.NewString(),
		Name:      in.Provider.DisplayName() + " User",
		Email:     email,
		Role:      domainauth.RoleUser,
		Provider:  in.Provider,
		LastLogin: &now,
		Active:    true,
	}, nil
}

func (p *Provider) callbackFor(provider domainauth.Provider) string {
	return strings.ReplaceAll(p.callbackPath, "{provider}", string(provider))
}
