package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
	"github.com/bookms/bookms-admin/internal/ports"
)

// AuthDeps groups the collaborators used to establish a session.
type AuthDeps struct {
	Directory ports.Directory
	SSO       ports.SSOExchanger
	Tokens    ports.TokenIssuer
}

// Runtime groups the ambient dependencies shared by services. Zero values are usable.
type Runtime struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
	Now     func() time.Time
}

func (r Runtime) withDefaults() Runtime {
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
	if r.Metrics == nil {
		r.Metrics = statsd.Discard
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	return r
}

// SessionControllerOptions groups dependencies for SessionController.
type SessionControllerOptions struct {
	Storage ports.Storage
	Auth    AuthDeps
	Runtime Runtime
}

// SSOCredential is the external token produced by a provider redirect.
type SSOCredential struct {
	Provider domainauth.Provider
	Token    string
	// Nonce is verified by exchangers that support it.
	Nonce string
}

// SessionController owns one client's authentication state. It persists the
// identity to the client's storage namespace, restores it on Initialize and
// notifies subscribers of every transition. Operations are serialized.
type SessionController struct {
	storage ports.Storage
	auth    AuthDeps
	rt      Runtime

	// opMu serializes operations; mu guards the fields below it.
	opMu        sync.Mutex
	mu          sync.RWMutex
	session     domainauth.Session
	token       string
	initialized bool
	observers   map[int]func(domainauth.Session)
	nextObs     int
}

// NewSessionController constructs a pending controller.
func NewSessionController(opts SessionControllerOptions) *SessionController {
	if opts.Storage == nil {
		panic("Storage is required")
	}
	if opts.Auth.Tokens == nil {
		panic("TokenIssuer is required")
	}
	return &SessionController{
		storage:   opts.Storage,
		auth:      opts.Auth,
		rt:        opts.Runtime.withDefaults(),
		observers: make(map[int]func(domainauth.Session)),
	}
}

// Initialize restores the persisted session. Only the first call does any work.
// Malformed persisted data is purged and yields an unauthenticated session
// without an error; storage failures also resolve unauthenticated but are returned.
func (c *SessionController) Initialize(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.isInitialized() {
		return nil
	}
	return c.reload(ctx)
}

// Refresh initializes the controller on first use and afterwards reconciles
// the cached session with storage: when the access token was cleared or
// replaced outside this controller the session is restored again. A storage
// failure resolves unauthenticated and is returned.
func (c *SessionController) Refresh(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if !c.isInitialized() {
		return c.reload(ctx)
	}
	token, err := c.storage.Get(ctx, ports.StorageKeyAccessToken)
	switch {
	case errors.Is(err, ports.ErrStorageKeyNotFound):
		token = ""
	case err != nil:
		c.commit(domainauth.Session{Status: domainauth.StatusResolved}, "")
		return fmt.Errorf("read access token: %w", err)
	}

	c.mu.RLock()
	same := token == c.token
	c.mu.RUnlock()
	if same {
		return nil
	}
	return c.reload(ctx)
}

func (c *SessionController) isInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

func (c *SessionController) reload(ctx context.Context) error {
	id, token, err := c.restore(ctx)
	c.commit(domainauth.Session{Identity: id, Status: domainauth.StatusResolved}, token)
	return err
}

// restore returns the persisted identity (nil when absent) and the access
// token it was read under.
func (c *SessionController) restore(ctx context.Context) (*domainauth.Identity, string, error) {
	token, err := c.storage.Get(ctx, ports.StorageKeyAccessToken)
	if errors.Is(err, ports.ErrStorageKeyNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read access token: %w", err)
	}
	raw, err := c.storage.Get(ctx, ports.StorageKeyCurrentUser)
	if errors.Is(err, ports.ErrStorageKeyNotFound) {
		return nil, token, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read current user: %w", err)
	}

	id, decodeErr := decodeIdentity(token, raw)
	if decodeErr == nil {
		return &id, token, nil
	}
	malformed := apperrors.MalformedPersistedSession(decodeErr)
	c.rt.Logger.WarnContext(ctx, "discarding persisted session",
		slog.String("code", string(malformed.Code)),
		slog.Any("error", decodeErr))
	if clearErr := c.storage.Clear(ctx); clearErr != nil {
		c.rt.Logger.WarnContext(ctx, "failed to purge persisted session", slog.Any("error", clearErr))
	}
	return nil, "", nil
}

func decodeIdentity(token, raw string) (domainauth.Identity, error) {
	if token == "" {
		return domainauth.Identity{}, errors.New("access token is empty")
	}
	var id domainauth.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode current user: %w", err)
	}
	if err := id.Validate(); err != nil {
		return domainauth.Identity{}, err
	}
	return id, nil
}

// Login authenticates against the directory. Unknown emails and wrong
// passwords both yield InvalidCredentials; a deactivated account yields
// AccountDisabled. Storage and session are untouched on any failure.
func (c *SessionController) Login(ctx context.Context, email, password string) (domainauth.Identity, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	id, err := c.verifyPassword(ctx, email, password)
	if err != nil {
		c.countLogin(domainauth.ProviderEmail, err)
		return domainauth.Identity{}, err
	}
	id.Provider = domainauth.ProviderEmail
	out, err := c.establish(ctx, id)
	c.countLogin(domainauth.ProviderEmail, err)
	return out, err
}

func (c *SessionController) verifyPassword(ctx context.Context, email, password string) (domainauth.Identity, error) {
	if c.auth.Directory == nil {
		return domainauth.Identity{}, apperrors.Internal("no account directory configured")
	}
	acct, err := c.auth.Directory.FindByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return domainauth.Identity{}, apperrors.InvalidCredentials()
	}
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("find account: %w", err)
	}
	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		return domainauth.Identity{}, apperrors.InvalidCredentials()
	}
	if !acct.Identity.Active {
		return domainauth.Identity{}, apperrors.AccountDisabled()
	}
	return acct.Identity, nil
}

// LoginWithSSO exchanges an external provider token for an identity and
// establishes the session with the same persistence contract as Login.
func (c *SessionController) LoginWithSSO(ctx context.Context, cred SSOCredential) (domainauth.Identity, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	id, err := c.exchange(ctx, cred)
	if err != nil {
		c.countLogin(cred.Provider, err)
		return domainauth.Identity{}, err
	}
	out, err := c.establish(ctx, id)
	c.countLogin(cred.Provider, err)
	return out, err
}

func (c *SessionController) exchange(ctx context.Context, cred SSOCredential) (domainauth.Identity, error) {
	provider, err := domainauth.ParseSSOProvider(string(cred.Provider))
	if err != nil {
		return domainauth.Identity{}, apperrors.SSOExchangeFailed(err)
	}
	if c.auth.SSO == nil {
		return domainauth.Identity{}, apperrors.SSOExchangeFailed(errors.New("no sso exchanger configured"))
	}
	id, err := c.auth.SSO.Exchange(ctx, ports.SSOExchangeInput{Provider: provider, Token: cred.Token, Nonce: cred.Nonce})
	if err != nil {
		return domainauth.Identity{}, apperrors.SSOExchangeFailed(err)
	}
	id.Provider = provider
	if err := id.Validate(); err != nil {
		return domainauth.Identity{}, apperrors.SSOExchangeFailed(err)
	}
	return id, nil
}

// establish issues tokens, persists the three session keys together and only
// then swaps the in-memory session.
func (c *SessionController) establish(ctx context.Context, id domainauth.Identity) (domainauth.Identity, error) {
	now := c.rt.Now().UTC()
	id.LastLogin = &now

	tokens, err := c.auth.Tokens.Issue(ctx, id)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("issue tokens: %w", err)
	}
	user, err := json.Marshal(id)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("encode current user: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	if err := c.storage.Replace(ctx, map[string]string{
		ports.StorageKeyAccessToken:  tokens.AccessToken,
		ports.StorageKeyRefreshToken: tokens.RefreshToken,
		ports.StorageKeyCurrentUser:  string(user),
	}); err != nil {
		return domainauth.Identity{}, fmt.Errorf("persist session: %w", err)
	}

	stored := id
	c.commit(domainauth.Session{Identity: &stored, Status: domainauth.StatusResolved}, tokens.AccessToken)
	return id, nil
}

// Logout clears the storage namespace and resets to unauthenticated. The
// in-memory session is reset even when clearing storage fails. Idempotent.
func (c *SessionController) Logout(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	err := c.storage.Clear(ctx)
	c.commit(domainauth.Session{Status: domainauth.StatusResolved}, "")
	if err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	return nil
}

// commit swaps the session and notifies observers outside the state lock.
// token is the access token the session was read or written under.
func (c *SessionController) commit(s domainauth.Session, token string) {
	c.mu.Lock()
	c.session = s
	c.token = token
	c.initialized = true
	observers := make([]func(domainauth.Session), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(s.Clone())
	}
}

// Snapshot returns a copy of the current session.
func (c *SessionController) Snapshot() domainauth.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Clone()
}

// HasRole reports whether the current identity satisfies required.
func (c *SessionController) HasRole(required domainauth.Role) bool {
	return c.Snapshot().HasRole(required)
}

// HasAnyRole reports whether the current identity satisfies any of required.
func (c *SessionController) HasAnyRole(required ...domainauth.Role) bool {
	return c.Snapshot().HasAnyRole(required...)
}

// Subscribe registers fn for every subsequent session transition.
func (c *SessionController) Subscribe(fn func(domainauth.Session)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

func (c *SessionController) countLogin(p domainauth.Provider, err error) {
	c.rt.Metrics.Count(MetricAuthLogin, 1, map[string]string{
		"result":   loginResult(err),
		"provider": string(p),
	})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsInvalidCredentials(err):
		return "invalid_credentials"
	case apperrors.IsAccountDisabled(err):
		return "account_disabled"
	case apperrors.IsSSOExchangeFailed(err):
		return "sso_failed"
	default:
		return "error"
	}
}
