package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/ports"
)

const ssoSecretLength = 32

// SSOFlowOptions groups dependencies for SSOFlow.
type SSOFlowOptions struct {
	Provider ports.SSOProvider
	// CallbackURL builds the absolute redirect URL for a provider. Optional;
	// providers fall back to their configured redirect.
	CallbackURL func(domainauth.Provider) string
}

// SSOFlow drives the redirect half of single sign-on: it mints state and
// nonce, sends the browser to the provider and redeems the returned code.
type SSOFlow struct {
	provider    ports.SSOProvider
	callbackURL func(domainauth.Provider) string
}

// NewSSOFlow constructs an SSOFlow.
func NewSSOFlow(opts SSOFlowOptions) *SSOFlow {
	if opts.Provider == nil {
		panic("SSOProvider is required")
	}
	return &SSOFlow{provider: opts.Provider, callbackURL: opts.CallbackURL}
}

// SSOStart is what the browser needs to begin and later complete a flow.
type SSOStart struct {
	AuthURL string
	State   string
	Nonce   string
}

// Begin validates the provider and returns the authorization redirect.
func (f *SSOFlow) Begin(ctx context.Context, provider string) (SSOStart, error) {
	p, err := domainauth.ParseSSOProvider(provider)
	if err != nil {
		return SSOStart{}, apperrors.ValidationField("provider", err.Error())
	}
	state, err := randomString(ssoSecretLength)
	if err != nil {
		return SSOStart{}, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(ssoSecretLength)
	if err != nil {
		return SSOStart{}, fmt.Errorf("generate nonce: %w", err)
	}
	authURL, err := f.provider.Begin(ctx, ports.SSOBeginInput{
		Provider:    p,
		State:       state,
		Nonce:       nonce,
		RedirectURL: f.redirectFor(p),
	})
	if err != nil {
		return SSOStart{}, apperrors.SSOExchangeFailed(err)
	}
	return SSOStart{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CallbackInput is the provider's response plus the state we issued.
type CallbackInput struct {
	Provider      string
	Code          string
	State         string
	ExpectedState string
	Nonce         string
	// Error is the provider's error parameter, if any.
	Error string
}

// Complete checks state and redeems the code, yielding the credential to hand
// to SessionController.LoginWithSSO. Every failure is SSOExchangeFailed.
func (f *SSOFlow) Complete(ctx context.Context, in CallbackInput) (SSOCredential, error) {
	p, err := domainauth.ParseSSOProvider(in.Provider)
	if err != nil {
		return SSOCredential{}, apperrors.SSOExchangeFailed(err)
	}
	if in.Error != "" {
		return SSOCredential{}, apperrors.SSOExchangeFailed(fmt.Errorf("provider returned %q", in.Error))
	}
	if in.ExpectedState == "" || subtle.ConstantTimeCompare([]byte(in.State), []byte(in.ExpectedState)) != 1 {
		return SSOCredential{}, apperrors.SSOExchangeFailed(errors.New("state mismatch"))
	}
	token, err := f.provider.Redeem(ctx, ports.SSORedeemInput{
		Provider:    p,
		Code:        strings.TrimSpace(in.Code),
		RedirectURL: f.redirectFor(p),
	})
	if err != nil {
		return SSOCredential{}, apperrors.SSOExchangeFailed(err)
	}
	return SSOCredential{Provider: p, Token: token, Nonce: in.Nonce}, nil
}

func (f *SSOFlow) redirectFor(p domainauth.Provider) string {
	if f.callbackURL == nil {
		return ""
	}
	return f.callbackURL(p)
}

// randomString returns a URL-safe random string of exactly length characters.
func randomString(length int) (string, error) {
	b := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}
