package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookms/bookms-admin/internal/adapters/devauth"
	"github.com/bookms/bookms-admin/internal/adapters/directory"
	"github.com/bookms/bookms-admin/internal/adapters/memory"
	"github.com/bookms/bookms-admin/internal/devseed"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/mocks"
	fakes "github.com/bookms/bookms-admin/internal/mocks/auth"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
	"github.com/bookms/bookms-admin/internal/ports"
)

var fixedNow = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

type harness struct {
	ctrl    *SessionController
	storage *memory.Storage
	metrics *statsd.Recorder
}

func testRuntime(rec *statsd.Recorder) Runtime {
	return Runtime{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: rec,
		Now:     func() time.Time { return fixedNow },
	}
}

func testDirectory(t *testing.T) *directory.Static {
	t.Helper()
	d, err := directory.NewStatic(directory.StaticOptions{
		Identities: devseed.Identities(),
		Password:   devseed.DemoPassword,
		Cost:       bcrypt.MinCost,
	})
	require.NoError(t, err)
	return d
}

func newHarness(t *testing.T, wrap func(ports.Storage) ports.Storage) harness {
	t.Helper()
	st := memory.NewStorageProvider(memory.StorageOptions{}).Open("client-1").(*memory.Storage)
	var storage ports.Storage = st
	if wrap != nil {
		storage = wrap(st)
	}
	rec := &statsd.Recorder{}
	c := NewSessionController(SessionControllerOptions{
		Storage: storage,
		Auth: AuthDeps{
			Directory: testDirectory(t),
			SSO:       devauth.NewProvider(devauth.Config{}),
			Tokens:    &fakes.SequentialTokens{},
		},
		Runtime: testRuntime(rec),
	})
	return harness{ctrl: c, storage: st, metrics: rec}
}

func TestSessionController_StartsPending(t *testing.T) {
	h := newHarness(t, nil)
	s := h.ctrl.Snapshot()
	assert.True(t, s.Pending())
	assert.False(t, s.Authenticated())
	assert.False(t, h.ctrl.HasRole(domainauth.RoleUser))
}

func TestSessionController_InitializeEmpty(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.Initialize(context.Background()))
	s := h.ctrl.Snapshot()
	assert.False(t, s.Pending())
	assert.False(t, s.Authenticated())
}

func TestSessionController_LoginPersistsAndRestores(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.ctrl.Initialize(ctx))

	id, err := h.ctrl.Login(ctx, "admin@bookms.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", id.Name)
	assert.Equal(t, domainauth.RoleSuperAdmin, id.Role)
	require.NotNil(t, id.LastLogin)
	assert.True(t, id.LastLogin.Equal(fixedNow))

	snap := h.storage.Snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, "access-1", snap[ports.StorageKeyAccessToken])
	assert.Equal(t, "refresh-1", snap[ports.StorageKeyRefreshToken])
	var stored domainauth.Identity
	require.NoError(t, json.Unmarshal([]byte(snap[ports.StorageKeyCurrentUser]), &stored))
	assert.Equal(t, id.Email, stored.Email)

	// A fresh controller over the same storage restores the identity.
	restored := NewSessionController(SessionControllerOptions{
		Storage: h.storage,
		Auth:    AuthDeps{Tokens: &fakes.SequentialTokens{}},
	})
	require.NoError(t, restored.Initialize(ctx))
	s := restored.Snapshot()
	require.True(t, s.Authenticated())
	assert.Equal(t, "1", s.Identity.ID)
	assert.True(t, restored.HasRole(domainauth.RoleAdmin))
	assert.True(t, restored.HasAnyRole(domainauth.RoleSuperAdmin))
}

func TestSessionController_LoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		check    func(error) bool
		message  string
	}{
		{"unknown email", "nobody@bookms.com", "password123", apperrors.IsInvalidCredentials, "Invalid credentials"},
		{"wrong password", "admin@bookms.com", "wrong-password", apperrors.IsInvalidCredentials, "Invalid credentials"},
		{"inactive account", "former@bookms.com", "password123", apperrors.IsAccountDisabled, "Account is deactivated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			ctx := context.Background()
			require.NoError(t, h.ctrl.Initialize(ctx))

			_, err := h.ctrl.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.Equal(t, tt.message, apperrors.UserMessage(err, ""))
			assert.Empty(t, h.storage.Snapshot())
			assert.False(t, h.ctrl.Snapshot().Authenticated())
		})
	}
}

func TestSessionController_EmailLookupIsCaseInsensitive(t *testing.T) {
	h := newHarness(t, nil)
	id, err := h.ctrl.Login(context.Background(), "  Manager@BookMS.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, id.Role)
}

func TestSessionController_FailedLoginKeepsPreviousSession(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.ctrl.Login(ctx, "manager@bookms.com", "password123")
	require.NoError(t, err)
	before := h.storage.Snapshot()

	_, err = h.ctrl.Login(ctx, "admin@bookms.com", "nope-nope")
	require.Error(t, err)
	assert.Equal(t, before, h.storage.Snapshot())
	assert.Equal(t, "2", h.ctrl.Snapshot().Identity.ID)
}

func TestSessionController_StorageFailureLeavesSessionUnchanged(t *testing.T) {
	var faulty *fakes.FaultyStorage
	h := newHarness(t, func(s ports.Storage) ports.Storage {
		faulty = &fakes.FaultyStorage{Storage: s, ReplaceErr: errors.New("disk full")}
		return faulty
	})
	ctx := context.Background()
	require.NoError(t, h.ctrl.Initialize(ctx))

	_, err := h.ctrl.Login(ctx, "admin@bookms.com", "password123")
	require.Error(t, err)
	assert.False(t, h.ctrl.Snapshot().Authenticated())
	assert.Empty(t, h.storage.Snapshot())
}

func TestSessionController_CanceledLoginLeavesSessionUnchanged(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.ctrl.Login(ctx, "admin@bookms.com", "password123")
	require.Error(t, err)
	assert.False(t, h.ctrl.Snapshot().Authenticated())
	assert.Empty(t, h.storage.Snapshot())
}

func TestSessionController_LoginWithSSO(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	id, err := h.ctrl.LoginWithSSO(ctx, SSOCredential{Provider: domainauth.ProviderGoogle, Token: "mock-google-id-token"})
	require.NoError(t, err)
	assert.Equal(t, "Google User", id.Name)
	assert.Equal(t, "user@gmail.com", id.Email)
	assert.Equal(t, domainauth.RoleUser, id.Role)
	assert.Equal(t, domainauth.ProviderGoogle, id.Provider)
	assert.Contains(t, h.storage.Snapshot(), ports.StorageKeyCurrentUser)
	assert.True(t, h.ctrl.HasRole(domainauth.RoleUser))
	assert.False(t, h.ctrl.HasRole(domainauth.RoleAdmin))
}

func TestSessionController_LoginWithSSOFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sso := mocks.NewMockSSOExchanger(ctrl)
	sso.EXPECT().
		Exchange(gomock.Any(), ports.SSOExchangeInput{Provider: domainauth.ProviderMicrosoft, Token: "t", Nonce: "n"}).
		Return(domainauth.Identity{}, errors.New("idp down"))

	st := memory.NewStorageProvider(memory.StorageOptions{}).Open("c")
	rec := &statsd.Recorder{}
	c := NewSessionController(SessionControllerOptions{
		Storage: st,
		Auth:    AuthDeps{SSO: sso, Tokens: &fakes.SequentialTokens{}},
		Runtime: testRuntime(rec),
	})

	_, err := c.LoginWithSSO(context.Background(), SSOCredential{Provider: domainauth.ProviderMicrosoft, Token: "t", Nonce: "n"})
	require.Error(t, err)
	assert.True(t, apperrors.IsSSOExchangeFailed(err))
	assert.Equal(t, "Single sign-on failed", apperrors.UserMessage(err, ""))

	_, err = c.LoginWithSSO(context.Background(), SSOCredential{Provider: domainauth.ProviderEmail, Token: "t"})
	assert.True(t, apperrors.IsSSOExchangeFailed(err))

	samples := rec.Named(MetricAuthLogin)
	require.Len(t, samples, 2)
	assert.Equal(t, "sso_failed", samples[0].Tags["result"])
	assert.Equal(t, "microsoft", samples[0].Tags["provider"])
}

func TestSessionController_Logout(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.ctrl.Login(ctx, "user@bookms.com", "password123")
	require.NoError(t, err)

	require.NoError(t, h.ctrl.Logout(ctx))
	assert.Empty(t, h.storage.Snapshot())
	s := h.ctrl.Snapshot()
	assert.False(t, s.Authenticated())
	assert.False(t, s.Pending())

	require.NoError(t, h.ctrl.Logout(ctx))
}

func TestSessionController_LogoutStorageFailureStillResets(t *testing.T) {
	var faulty *fakes.FaultyStorage
	h := newHarness(t, func(s ports.Storage) ports.Storage {
		faulty = &fakes.FaultyStorage{Storage: s}
		return faulty
	})
	ctx := context.Background()
	_, err := h.ctrl.Login(ctx, "user@bookms.com", "password123")
	require.NoError(t, err)

	faulty.ClearErr = errors.New("unreachable")
	require.Error(t, h.ctrl.Logout(ctx))
	assert.False(t, h.ctrl.Snapshot().Authenticated())
}

func TestSessionController_InitializeMalformed(t *testing.T) {
	tests := map[string]map[string]string{
		"bad json":      {ports.StorageKeyAccessToken: "tok", ports.StorageKeyCurrentUser: "{not json"},
		"missing email": {ports.StorageKeyAccessToken: "tok", ports.StorageKeyCurrentUser: `{"id":"1","role":"Admin"}`},
		"unknown role":  {ports.StorageKeyAccessToken: "tok", ports.StorageKeyCurrentUser: `{"id":"1","email":"a@b.c","role":"Owner"}`},
		"empty token":   {ports.StorageKeyAccessToken: "", ports.StorageKeyCurrentUser: `{"id":"1","email":"a@b.c","role":"User"}`},
	}
	for name, entries := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			ctx := context.Background()
			require.NoError(t, h.storage.Replace(ctx, entries))

			require.NoError(t, h.ctrl.Initialize(ctx))
			s := h.ctrl.Snapshot()
			assert.False(t, s.Pending())
			assert.False(t, s.Authenticated())
			assert.Empty(t, h.storage.Snapshot())
		})
	}
}

func TestSessionController_InitializeMissingUserKeepsStorage(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.storage.Replace(ctx, map[string]string{ports.StorageKeyAccessToken: "tok"}))

	require.NoError(t, h.ctrl.Initialize(ctx))
	assert.False(t, h.ctrl.Snapshot().Authenticated())
	assert.Len(t, h.storage.Snapshot(), 1)
}

func TestSessionController_InitializeStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().Get(gomock.Any(), ports.StorageKeyAccessToken).Return("", errors.New("connection refused"))

	c := NewSessionController(SessionControllerOptions{Storage: st, Auth: AuthDeps{Tokens: &fakes.SequentialTokens{}}})
	err := c.Initialize(context.Background())
	require.Error(t, err)
	s := c.Snapshot()
	assert.False(t, s.Pending())
	assert.False(t, s.Authenticated())

	// Later calls are no-ops.
	require.NoError(t, c.Initialize(context.Background()))
}

func TestSessionController_InitializeRunsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().Get(gomock.Any(), ports.StorageKeyAccessToken).Return("", ports.ErrStorageKeyNotFound).Times(1)

	c := NewSessionController(SessionControllerOptions{Storage: st, Auth: AuthDeps{Tokens: &fakes.SequentialTokens{}}})
	require.NoError(t, c.Initialize(context.Background()))
	require.NoError(t, c.Initialize(context.Background()))
}

func TestSessionController_DirectoryFailureIsNotInvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockDirectory(ctrl)
	dir.EXPECT().FindByEmail(gomock.Any(), "admin@bookms.com").Return(domainauth.Account{}, apperrors.New(apperrors.ErrCodeUnavailable, "down"))

	c := NewSessionController(SessionControllerOptions{
		Storage: memory.NewStorageProvider(memory.StorageOptions{}).Open("c"),
		Auth:    AuthDeps{Directory: dir, Tokens: &fakes.SequentialTokens{}},
	})
	_, err := c.Login(context.Background(), "admin@bookms.com", "password123")
	require.Error(t, err)
	assert.False(t, apperrors.IsInvalidCredentials(err))
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestSessionController_TokenIssueFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := mocks.NewMockTokenIssuer(ctrl)
	tokens.EXPECT().Issue(gomock.Any(), gomock.Any()).Return(domainauth.Tokens{}, errors.New("no entropy"))

	st := memory.NewStorageProvider(memory.StorageOptions{}).Open("c").(*memory.Storage)
	c := NewSessionController(SessionControllerOptions{
		Storage: st,
		Auth:    AuthDeps{Directory: testDirectory(t), Tokens: tokens},
	})
	_, err := c.Login(context.Background(), "admin@bookms.com", "password123")
	require.Error(t, err)
	assert.Empty(t, st.Snapshot())
}

func TestSessionController_Subscribe(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	var seen []domainauth.Session
	unsubscribe := h.ctrl.Subscribe(func(s domainauth.Session) {
		// Observers may read the controller.
		_ = h.ctrl.Snapshot()
		seen = append(seen, s)
	})

	require.NoError(t, h.ctrl.Initialize(ctx))
	_, err := h.ctrl.Login(ctx, "admin@bookms.com", "password123")
	require.NoError(t, err)
	require.NoError(t, h.ctrl.Logout(ctx))
	unsubscribe()
	unsubscribe()
	_, err = h.ctrl.Login(ctx, "admin@bookms.com", "password123")
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.False(t, seen[0].Authenticated())
	assert.True(t, seen[1].Authenticated())
	assert.False(t, seen[2].Authenticated())
}

func TestSessionController_SnapshotIsACopy(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.ctrl.Login(context.Background(), "admin@bookms.com", "password123")
	require.NoError(t, err)

	s := h.ctrl.Snapshot()
	s.Identity.Role = domainauth.RoleUser
	assert.True(t, h.ctrl.HasRole(domainauth.RoleSuperAdmin))
}

func TestSessionController_LoginMetrics(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.ctrl.Login(ctx, "admin@bookms.com", "password123")
	_, _ = h.ctrl.Login(ctx, "former@bookms.com", "password123")

	samples := h.metrics.Named(MetricAuthLogin)
	require.Len(t, samples, 2)
	assert.Equal(t, map[string]string{"result": "success", "provider": "email"}, samples[0].Tags)
	assert.Equal(t, "account_disabled", samples[1].Tags["result"])
}
