package auth

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRole_SatisfiesFollowsTotalOrder(t *testing.T) {
	for _, have := range Roles() {
		for _, want := range Roles() {
			s := Session{Identity: &Identity{ID: "1", Email: "a@b.c", Role: have}, Status: StatusResolved}
			if got, exp := s.HasRole(want), have >= want; got != exp {
				t.Errorf("HasRole(%s) with role %s = %v, want %v", want, have, got, exp)
			}
		}
	}
}

func TestRole_InvalidNeverSatisfies(t *testing.T) {
	if Role(0).Satisfies(RoleUser) {
		t.Fatalf("zero role must not satisfy User")
	}
	if RoleSuperAdmin.Satisfies(Role(9)) {
		t.Fatalf("unknown required role must not be satisfied")
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{"User": RoleUser, " admin ": RoleAdmin, "SUPERADMIN": RoleSuperAdmin}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestSession_HasAnyRole(t *testing.T) {
	admin := Session{Identity: &Identity{ID: "2", Email: "m@x", Role: RoleAdmin}, Status: StatusResolved}

	if admin.HasAnyRole() {
		t.Errorf("empty list must be false")
	}
	if !admin.HasAnyRole(RoleSuperAdmin, RoleAdmin) {
		t.Errorf("Admin should satisfy [SuperAdmin, Admin]")
	}
	if admin.HasAnyRole(RoleSuperAdmin) {
		t.Errorf("Admin should not satisfy [SuperAdmin]")
	}
	if (Session{Status: StatusResolved}).HasAnyRole(RoleUser) {
		t.Errorf("no identity must be false")
	}
}

func TestSession_States(t *testing.T) {
	var s Session
	if !s.Pending() || s.Authenticated() {
		t.Fatalf("zero session must be pending and unauthenticated")
	}
	s.Status = StatusResolved
	if s.Pending() || s.Authenticated() {
		t.Fatalf("resolved empty session must not be authenticated")
	}
}

func TestIdentity_JSONRoundTripUsesRoleNames(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	in := Identity{
		ID: "1", Name: "John Smith", Email: "admin@bookms.com",
		Role: RoleSuperAdmin, Provider: ProviderEmail, LastLogin: &ts, Active: true,
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["role"] != "SuperAdmin" {
		t.Fatalf("role encoded as %v", raw["role"])
	}

	var out Identity
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Role != RoleSuperAdmin || !out.LastLogin.Equal(ts) {
		t.Fatalf("unexpected identity: %+v", out)
	}
}

func TestIdentity_Validate(t *testing.T) {
	if err := (Identity{ID: "1", Email: "a@b", Role: RoleUser}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Identity{ID: "1", Email: "a@b"}).Validate(); err == nil {
		t.Fatalf("missing role must fail")
	}
	if err := (Identity{Email: "a@b", Role: RoleUser}).Validate(); err == nil {
		t.Fatalf("missing id must fail")
	}
}

func TestIdentity_Initials(t *testing.T) {
	if got := (Identity{Name: "jane doe"}).Initials(); got != "JD" {
		t.Fatalf("Initials() = %q", got)
	}
	if got := (Identity{Name: "Robert C. Martin"}).Initials(); got != "RC" {
		t.Fatalf("Initials() = %q", got)
	}
}

func TestParseSSOProvider(t *testing.T) {
	if p, err := ParseSSOProvider("Google"); err != nil || p != ProviderGoogle {
		t.Fatalf("ParseSSOProvider(Google) = %v, %v", p, err)
	}
	if _, err := ParseSSOProvider("email"); err == nil {
		t.Fatalf("email is not an sso provider")
	}
}
