// Package memory provides in-process adapters used in development and tests.
package memory

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/bookms/bookms-admin/internal/ports"
)

// StorageProvider keeps client namespaces in a map. Namespaces untouched for longer
// than the TTL are dropped by Sweep.
type StorageProvider struct {
	mu         sync.Mutex
	namespaces map[string]*namespace
	ttl        time.Duration
	now        func() time.Time
}

type namespace struct {
	values  map[string]string
	touched time.Time
}

var _ ports.StorageProvider = (*StorageProvider)(nil)

// StorageOptions configures a StorageProvider.
type StorageOptions struct {
	// TTL expires idle namespaces; zero keeps them forever.
	TTL time.Duration
	Now func() time.Time
}

// NewStorageProvider creates an empty in-memory provider.
func NewStorageProvider(opts StorageOptions) *StorageProvider {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &StorageProvider{
		namespaces: make(map[string]*namespace),
		ttl:        opts.TTL,
		now:        now,
	}
}

// Open returns the namespace for clientID.
func (p *StorageProvider) Open(clientID string) ports.Storage {
	return &Storage{provider: p, clientID: clientID}
}

// Len reports how many namespaces are held.
func (p *StorageProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.namespaces)
}

// Sweep drops namespaces idle for longer than the TTL and reports how many were removed.
func (p *StorageProvider) Sweep() int {
	if p.ttl <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-p.ttl)
	removed := 0
	for id, ns := range p.namespaces {
		if ns.touched.Before(cutoff) {
			delete(p.namespaces, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (p *StorageProvider) RunSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) error {
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
			if n := p.Sweep(); n > 0 && logger != nil {
				logger.DebugContext(ctx, "swept idle storage namespaces", "removed", n)
			}
		}
	}
}

// Storage is a single client's namespace.
type Storage struct {
	provider *StorageProvider
	clientID string
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := s.provider
	p.mu.Lock()
	defer p.mu.Unlock()

	ns, ok := p.namespaces[s.clientID]
	if !ok {
		return "", ports.ErrStorageKeyNotFound
	}
	val, ok := ns.values[key]
	if !ok {
		return "", ports.ErrStorageKeyNotFound
	}
	ns.touched = p.now()
	return val, nil
}

func (s *Storage) Replace(ctx context.Context, entries map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.provider
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(entries) == 0 {
		delete(p.namespaces, s.clientID)
		return nil
	}
	p.namespaces[s.clientID] = &namespace{values: maps.Clone(entries), touched: p.now()}
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.provider
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.namespaces, s.clientID)
	return nil
}

// Snapshot returns a copy of the namespace contents.
func (s *Storage) Snapshot() map[string]string {
	p := s.provider
	p.mu.Lock()
	defer p.mu.Unlock()

	ns, ok := p.namespaces[s.clientID]
	if !ok {
		return map[string]string{}
	}
	return maps.Clone(ns.values)
}
