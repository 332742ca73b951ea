package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookms/bookms-admin/internal/ports"
)

// DefaultIdleTTL is how long an untouched controller stays cached.
const DefaultIdleTTL = 30 * time.Minute

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Storage ports.StorageProvider
	Auth    AuthDeps
	Runtime Runtime
	// IdleTTL evicts controllers not used for this long; zero uses DefaultIdleTTL.
	IdleTTL time.Duration
}

type managedController struct {
	ctrl     *SessionController
	lastUsed time.Time
}

// SessionManager hands out one SessionController per client namespace.
type SessionManager struct {
	storage ports.StorageProvider
	auth    AuthDeps
	rt      Runtime
	idleTTL time.Duration

	mu          sync.Mutex
	controllers map[string]*managedController
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	if opts.Storage == nil {
		panic("StorageProvider is required")
	}
	if opts.Auth.Tokens == nil {
		panic("TokenIssuer is required")
	}
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &SessionManager{
		storage:     opts.Storage,
		auth:        opts.Auth,
		rt:          opts.Runtime.withDefaults(),
		idleTTL:     ttl,
		controllers: make(map[string]*managedController),
	}
}

// Controller returns the client's controller, restoring it from storage on
// first use and reconciling it with storage on every later call, so a
// namespace cleared elsewhere (another replica, the admin CLI, expiry) is
// seen on the next request. A storage failure is returned together with the
// (resolved, unauthenticated) controller.
func (m *SessionManager) Controller(ctx context.Context, clientID string) (*SessionController, error) {
	if clientID == "" {
		return nil, errors.New("client id is required")
	}
	m.mu.Lock()
	mc, ok := m.controllers[clientID]
	if !ok {
		mc = &managedController{ctrl: m.newController(clientID)}
		m.controllers[clientID] = mc
	}
	mc.lastUsed = m.rt.Now()
	m.mu.Unlock()

	if err := mc.ctrl.Refresh(ctx); err != nil {
		return mc.ctrl, fmt.Errorf("initialize session for client: %w", err)
	}
	return mc.ctrl, nil
}

// Peek returns the cached controller without creating or initializing one.
func (m *SessionManager) Peek(clientID string) (*SessionController, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mc, ok := m.controllers[clientID]
	if !ok {
		return nil, false
	}
	return mc.ctrl, true
}

func (m *SessionManager) newController(clientID string) *SessionController {
	rt := m.rt
	rt.Logger = rt.Logger.With(slog.String("client_id", clientID))
	return NewSessionController(SessionControllerOptions{
		Storage: m.storage.Open(clientID),
		Auth:    m.auth,
		Runtime: rt,
	})
}

// Len reports the number of cached controllers.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controllers)
}

// Sweep drops controllers idle for longer than the TTL and returns how many
// were dropped. Persisted sessions survive and are restored on the next request.
func (m *SessionManager) Sweep() int {
	cutoff := m.rt.Now().Add(-m.idleTTL)
	m.mu.Lock()
	removed := 0
	for id, mc := range m.controllers {
		if mc.lastUsed.Before(cutoff) {
			delete(m.controllers, id)
			removed++
		}
	}
	active := len(m.controllers)
	m.mu.Unlock()

	m.rt.Metrics.Gauge(MetricSessionsActive, float64(active), nil)
	return removed
}

// Run sweeps on every interval tick until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.rt.Logger.DebugContext(ctx, "evicted idle session controllers", slog.Int("count", n))
			}
		}
	}
}
