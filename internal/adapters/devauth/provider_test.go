package devauth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/ports"
)

func TestProvider_BeginRedeemExchange(t *testing.T) {
	fixed := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	prov := NewProvider(Config{Now: func() time.Time { return fixed }})
	ctx := context.Background()

	authURL, err := prov.Begin(ctx, ports.SSOBeginInput{Provider: domainauth.ProviderGoogle, State: "st-1"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(authURL, "/auth/sso/google/callback?") {
		t.Fatalf("unexpected authURL: %s", authURL)
	}
	u, _ := url.Parse(authURL)
	if u.Query().Get("state") != "st-1" {
		t.Fatalf("state not propagated: %s", authURL)
	}

	token, err := prov.Redeem(ctx, ports.SSORedeemInput{Provider: domainauth.ProviderGoogle, Code: u.Query().Get("code")})
	if err != nil {
		t.Fatalf("Redeem error: %v", err)
	}
	if token != "mock-google-id-token" {
		t.Fatalf("unexpected token %q", token)
	}

	id, err := prov.Exchange(ctx, ports.SSOExchangeInput{Provider: domainauth.ProviderGoogle, Token: token})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if !strings.HasPrefix(id.ID, "sso-") || id.Email != "user@gmail.com" || id.Name != "Google User" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.Role != domainauth.RoleUser || id.Provider != domainauth.ProviderGoogle || !id.Active {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.LastLogin == nil || !id.LastLogin.Equal(fixed) {
		t.Fatalf("unexpected last login: %v", id.LastLogin)
	}
}

func TestProvider_ExchangeGeneratesUniqueIDs(t *testing.T) {
	prov := NewProvider(Config{})
	in := ports.SSOExchangeInput{Provider: domainauth.ProviderMicrosoft, Token: "t"}

	a, err := prov.Exchange(context.Background(), in)
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	b, err := prov.Exchange(context.Background(), in)
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %s twice", a.ID)
	}
	if a.Email != "user@outlook.com" {
		t.Fatalf("unexpected email %s", a.Email)
	}
}

func TestProvider_Failures(t *testing.T) {
	prov := NewProvider(Config{})
	ctx := context.Background()

	if _, err := prov.Exchange(ctx, ports.SSOExchangeInput{Provider: domainauth.ProviderGoogle}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := prov.Exchange(ctx, ports.SSOExchangeInput{Provider: "github", Token: "t"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := prov.Begin(ctx, ports.SSOBeginInput{Provider: "github"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := prov.Redeem(ctx, ports.SSORedeemInput{Provider: domainauth.ProviderGoogle}); err == nil {
		t.Fatal("expected error for missing code")
	}
}
