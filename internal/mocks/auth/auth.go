// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/ports"
)

var (
	_ ports.SSOProvider  = (*FakeSSO)(nil)
	_ ports.SSOExchanger = (*FakeSSO)(nil)
	_ ports.TokenIssuer  = (*SequentialTokens)(nil)
	_ ports.Storage      = (*FaultyStorage)(nil)
)

// FakeSSO is a scriptable single sign-on provider. Unset funcs fall back to
// deterministic defaults.
type FakeSSO struct {
	BeginFunc    func(ctx context.Context, in ports.SSOBeginInput) (string, error)
	RedeemFunc   func(ctx context.Context, in ports.SSORedeemInput) (string, error)
	ExchangeFunc func(ctx context.Context, in ports.SSOExchangeInput) (domainauth.Identity, error)

	// Identity is returned by the default Exchange with Provider filled in.
	Identity domainauth.Identity
}

func (f *FakeSSO) Begin(ctx context.Context, in ports.SSOBeginInput) (string, error) {
	if f.BeginFunc != nil {
		return f.BeginFunc(ctx, in)
	}
	return fmt.Sprintf("https://idp.test/%s/authorize?state=%s&nonce=%s", in.Provider, in.State, in.Nonce), nil
}

func (f *FakeSSO) Redeem(ctx context.Context, in ports.SSORedeemInput) (string, error) {
	if f.RedeemFunc != nil {
		return f.RedeemFunc(ctx, in)
	}
	if in.Code == "" {
		return "", errors.New("missing code")
	}
	return "token-" + in.Code, nil
}

func (f *FakeSSO) Exchange(ctx context.Context, in ports.SSOExchangeInput) (domainauth.Identity, error) {
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, in)
	}
	id := f.Identity
	if id.ID == "" {
		id = domainauth.Identity{ID: "sso-fake", Name: "Fake User", Email: "fake@example.com", Role: domainauth.RoleUser, Active: true}
	}
	id.Provider = in.Provider
	return id, nil
}

// SequentialTokens issues predictable token pairs: access-1/refresh-1, access-2/...
type SequentialTokens struct {
	mu  sync.Mutex
	n   int
	Err error
}

func (s *SequentialTokens) Issue(_ context.Context, _ domainauth.Identity) (domainauth.Tokens, error) {
	if s.Err != nil {
		return domainauth.Tokens{}, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return domainauth.Tokens{
		AccessToken:  fmt.Sprintf("access-%d", s.n),
		RefreshToken: fmt.Sprintf("refresh-%d", s.n),
	}, nil
}

// FaultyStorage wraps a Storage and fails the operations whose error is set.
type FaultyStorage struct {
	ports.Storage
	GetErr     error
	ReplaceErr error
	ClearErr   error
}

func (f *FaultyStorage) Get(ctx context.Context, key string) (string, error) {
	if f.GetErr != nil {
		return "", f.GetErr
	}
	return f.Storage.Get(ctx, key)
}

func (f *FaultyStorage) Replace(ctx context.Context, entries map[string]string) error {
	if f.ReplaceErr != nil {
		return f.ReplaceErr
	}
	return f.Storage.Replace(ctx, entries)
}

func (f *FaultyStorage) Clear(ctx context.Context) error {
	if f.ClearErr != nil {
		return f.ClearErr
	}
	return f.Storage.Clear(ctx)
}
