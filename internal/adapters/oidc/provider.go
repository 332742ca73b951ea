// Package oidc provides the OpenID Connect single sign-on adapter for Google and Microsoft.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/ports"
)

// ProviderConfig describes one upstream identity provider.
type ProviderConfig struct {
	Name         domainauth.Provider
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// RegistryConfig holds the configured providers and shared options.
type RegistryConfig struct {
	Providers []ProviderConfig
	// AllowedDomains restricts sign-in to emails whose registrable domain
	// (eTLD+1) is listed. Empty allows any verified email.
	AllowedDomains []string
	HTTPClient     *http.Client // Optional, defaults to a 30s client
	Now            func() time.Time
}

type client struct {
	oauth    *oauth2.Config
	verifier *gooidc.IDTokenVerifier
}

// Registry implements ports.SSOProvider and ports.SSOExchanger over a set of
// OIDC providers, selected by the provider name on each call.
type Registry struct {
	clients    map[domainauth.Provider]client
	allowed    []string
	httpClient *http.Client
	now        func() time.Time
}

var (
	_ ports.SSOProvider  = (*Registry)(nil)
	_ ports.SSOExchanger = (*Registry)(nil)
)

// NewRegistry performs discovery for every configured provider.
func NewRegistry(ctx context.Context, cfg RegistryConfig) (*Registry, error) {
	if len(cfg.Providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	r := newRegistry(cfg)
	discoveryCtx := gooidc.ClientContext(ctx, r.httpClient)
	for _, pc := range cfg.Providers {
		if err := validateProviderConfig(pc); err != nil {
			return nil, err
		}
		op, err := gooidc.NewProvider(discoveryCtx, strings.TrimSuffix(pc.IssuerURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("oidc discovery for %s: %w", pc.Name, err)
		}
		r.add(pc, op.Endpoint(), op.Verifier(&gooidc.Config{ClientID: pc.ClientID, Now: r.now}))
	}
	return r, nil
}

func newRegistry(cfg RegistryConfig) *Registry {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	allowed := make([]string, 0, len(cfg.AllowedDomains))
	for _, d := range cfg.AllowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			allowed = append(allowed, d)
		}
	}
	return &Registry{
		clients:    make(map[domainauth.Provider]client),
		allowed:    allowed,
		httpClient: httpClient,
		now:        now,
	}
}

func (r *Registry) add(pc ProviderConfig, endpoint oauth2.Endpoint, verifier *gooidc.IDTokenVerifier) {
	scopes := pc.Scopes
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}
	r.clients[pc.Name] = client{
		oauth: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		verifier: verifier,
	}
}

func validateProviderConfig(pc ProviderConfig) error {
	switch {
	case pc.Name == "":
		return errors.New("provider name is required")
	case pc.IssuerURL == "":
		return fmt.Errorf("%s: issuer URL is required", pc.Name)
	case pc.ClientID == "":
		return fmt.Errorf("%s: client ID is required", pc.Name)
	case pc.ClientSecret == "":
		return fmt.Errorf("%s: client secret is required", pc.Name)
	}
	return nil
}

// Providers lists the configured provider names.
func (r *Registry) Providers() []domainauth.Provider {
	out := make([]domainauth.Provider, 0, len(r.clients))
	for p := range r.clients {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) lookup(p domainauth.Provider) (client, error) {
	c, ok := r.clients[p]
	if !ok {
		return client{}, fmt.Errorf("provider %q is not configured", p)
	}
	return c, nil
}

// Begin builds the provider authorization URL carrying state and nonce.
func (r *Registry) Begin(_ context.Context, in ports.SSOBeginInput) (string, error) {
	c, err := r.lookup(in.Provider)
	if err != nil {
		return "", err
	}
	if in.State == "" {
		return "", errors.New("state is required")
	}
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "select_account")}
	if in.Nonce != "" {
		opts = append(opts, gooidc.Nonce(in.Nonce))
	}
	if in.RedirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", in.RedirectURL))
	}
	return c.oauth.AuthCodeURL(in.State, opts...), nil
}

// Redeem exchanges the authorization code and returns the raw id_token.
func (r *Registry) Redeem(ctx context.Context, in ports.SSORedeemInput) (string, error) {
	c, err := r.lookup(in.Provider)
	if err != nil {
		return "", err
	}
	if in.Code == "" {
		return "", errors.New("authorization code is required")
	}
	var opts []oauth2.AuthCodeOption
	if in.RedirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", in.RedirectURL))
	}
	tok, err := c.oauth.Exchange(gooidc.ClientContext(ctx, r.httpClient), in.Code, opts...)
	if err != nil {
		return "", fmt.Errorf("exchange code for token: %w", err)
	}
	return idTokenFrom(tok)
}

// Exchange verifies the id_token and maps its claims onto a User identity.
func (r *Registry) Exchange(ctx context.Context, in ports.SSOExchangeInput) (domainauth.Identity, error) {
	c, err := r.lookup(in.Provider)
	if err != nil {
		return domainauth.Identity{}, err
	}
	if in.Token == "" {
		return domainauth.Identity{}, errors.New("id_token is required")
	}
	idTok, err := c.verifier.Verify(ctx, in.Token)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	var cl claims
	if err := idTok.Claims(&cl); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if in.Nonce != "" && cl.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}
	if err := r.checkDomain(cl.email()); err != nil {
		return domainauth.Identity{}, err
	}
	return cl.identity(in.Provider, r.now().UTC()), nil
}

// checkDomain enforces the registrable-domain allowlist.
func (r *Registry) checkDomain(email string) error {
	if email == "" {
		return errors.New("id_token carries no email")
	}
	if len(r.allowed) == 0 {
		return nil
	}
	_, host, ok := strings.Cut(email, "@")
	if !ok || host == "" {
		return fmt.Errorf("malformed email %q", email)
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return fmt.Errorf("resolve email domain: %w", err)
	}
	if !slices.Contains(r.allowed, domain) {
		return fmt.Errorf("email domain %q is not allowed", domain)
	}
	return nil
}

// claims is the union of the Google and Microsoft id_token shapes we read.
type claims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	EmailVerified     *bool  `json:"email_verified"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	Nonce             string `json:"nonce"`
}

func (c claims) email() string {
	if c.EmailVerified != nil && !*c.EmailVerified {
		return ""
	}
	// Microsoft personal accounts put the address in preferred_username.
	return strings.TrimSpace(firstNonEmpty(c.Email, c.PreferredUsername))
}

func (c claims) identity(p domainauth.Provider, now time.Time) domainauth.Identity {
	email := c.email()
	name := firstNonEmpty(c.Name, p.DisplayName()+" User")
	return domainauth.Identity{
		ID:        "sso-" + c.Subject,
		Name:      name,
		Email:     email,
		Role:      domainauth.RoleUser,
		Provider:  p,
		LastLogin: &now,
		Active:    true,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// idTokenFrom extracts the id_token from an oauth2.Token.
func idTokenFrom(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
