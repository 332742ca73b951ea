package access

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookms/bookms-admin/internal/domain/auth"
)

func sessionWith(role auth.Role) auth.Session {
	return auth.Session{
		Identity: &auth.Identity{ID: "1", Email: "x@bookms.com", Role: role, Active: true},
		Status:   auth.StatusResolved,
	}
}

func TestEvaluate(t *testing.T) {
	superOnly := []auth.Role{auth.RoleSuperAdmin}

	tests := []struct {
		name     string
		session  auth.Session
		required []auth.Role
		want     Decision
	}{
		{
			name:    "pending suspends",
			session: auth.Session{},
			want:    Decision{Kind: Suspend},
		},
		{
			name:     "pending suspends even with identity",
			session:  auth.Session{Identity: &auth.Identity{Role: auth.RoleUser}},
			required: superOnly,
			want:     Decision{Kind: Suspend},
		},
		{
			name:    "unauthenticated redirects with from",
			session: auth.Session{Status: auth.StatusResolved},
			want:    Decision{Kind: RedirectLogin, From: RolesPath},
		},
		{
			name:    "authenticated without requirement",
			session: sessionWith(auth.RoleUser),
			want:    Decision{Kind: Allow},
		},
		{
			name:     "admin on superadmin route is forbidden",
			session:  sessionWith(auth.RoleAdmin),
			required: superOnly,
			want:     Decision{Kind: Forbidden},
		},
		{
			name:     "superadmin on superadmin route",
			session:  sessionWith(auth.RoleSuperAdmin),
			required: superOnly,
			want:     Decision{Kind: Allow},
		},
		{
			name:     "superadmin satisfies admin requirement",
			session:  sessionWith(auth.RoleSuperAdmin),
			required: []auth.Role{auth.RoleAdmin},
			want:     Decision{Kind: Allow},
		},
		{
			name:     "empty requirement admits nobody",
			session:  sessionWith(auth.RoleSuperAdmin),
			required: []auth.Role{},
			want:     Decision{Kind: Forbidden},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.session, RolesPath, tt.required))
		})
	}
}

func TestEvaluate_ReflectsLatestSnapshot(t *testing.T) {
	s := sessionWith(auth.RoleSuperAdmin)
	require.Equal(t, Allow, Evaluate(s, RolesPath, []auth.Role{auth.RoleSuperAdmin}).Kind)

	s.Identity = nil
	assert.Equal(t, RedirectLogin, Evaluate(s, RolesPath, []auth.Role{auth.RoleSuperAdmin}).Kind)
}

func TestEvaluatePublicOnly(t *testing.T) {
	assert.Equal(t, Suspend, EvaluatePublicOnly(auth.Session{}).Kind)
	assert.Equal(t, Allow, EvaluatePublicOnly(auth.Session{Status: auth.StatusResolved}).Kind)
	assert.Equal(t, RedirectDashboard, EvaluatePublicOnly(sessionWith(auth.RoleUser)).Kind)
}

func TestLookupRoute(t *testing.T) {
	r, ok := LookupRoute(UsersPath + "/")
	require.True(t, ok)
	assert.Equal(t, []auth.Role{auth.RoleAdmin, auth.RoleSuperAdmin}, r.Required)

	r, ok = LookupRoute(BooksPath)
	require.True(t, ok)
	assert.Nil(t, r.Required)

	_, ok = LookupRoute("/dashboard/unknown")
	assert.False(t, ok)
}

func labels(seq func(func(NavEntry) bool)) []string {
	var out []string
	for e := range seq {
		out = append(out, e.Label)
	}
	return out
}

func TestVisibleEntries(t *testing.T) {
	tests := []struct {
		role auth.Role
		want []string
	}{
		{auth.RoleUser, []string{"Books", "Categories", "Authors"}},
		{auth.RoleAdmin, []string{"Books", "Categories", "Authors", "Users"}},
		{auth.RoleSuperAdmin, []string{"Books", "Categories", "Authors", "Users", "Roles"}},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			seq := VisibleEntries(sessionWith(tt.role), NavEntries())
			assert.Equal(t, tt.want, labels(seq))
			// restartable
			assert.Equal(t, tt.want, labels(seq))
		})
	}
}

func TestVisibleEntries_NoIdentityKeepsUnrestricted(t *testing.T) {
	got := labels(VisibleEntries(auth.Session{Status: auth.StatusResolved}, NavEntries()))
	assert.Equal(t, []string{"Books", "Categories", "Authors"}, got)
}

func TestVisibleEntries_StopsEarly(t *testing.T) {
	var got []string
	for e := range VisibleEntries(sessionWith(auth.RoleSuperAdmin), NavEntries()) {
		got = append(got, e.Label)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"Books", "Categories"}, got)
}

func TestVisibleSections(t *testing.T) {
	user := VisibleSections(sessionWith(auth.RoleUser), NavEntries())
	require.Len(t, user, 1)
	assert.Equal(t, SectionLibrary, user[0].Title)

	super := VisibleSections(sessionWith(auth.RoleSuperAdmin), NavEntries())
	require.Len(t, super, 2)
	assert.Equal(t, SectionManagement, super[1].Title)
	assert.True(t, slices.ContainsFunc(super[1].Entries, func(e NavEntry) bool { return e.Path == RolesPath }))
}
