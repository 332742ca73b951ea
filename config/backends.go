package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageBackend selects where per-client session keys are persisted.
type StorageBackend string

const (
	StorageBackendMemory StorageBackend = "memory"
	StorageBackendRedis  StorageBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (s *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*s = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: memory, redis)", v)
	}
}

// StorageConfig controls client session storage.
type StorageConfig struct {
	Backend StorageBackend `env:"BACKEND" envDefault:"memory"`

	// TTL expires client namespaces that have not been touched.
	TTL time.Duration `env:"TTL" envDefault:"24h"`

	// SweepInterval is how often idle memory namespaces and cached
	// session controllers are evicted.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	// SessionIdleTTL drops cached session controllers; their persisted
	// state is restored on the next request.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"bookms:storage:"`
}

// Sanitize applies guardrails to storage settings.
func (s *StorageConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StorageBackendMemory
	}
	if s.TTL < 0 {
		s.TTL = 0
	}
	if s.SweepInterval <= 0 {
		s.SweepInterval = time.Minute
	}
	if s.SessionIdleTTL <= 0 {
		s.SessionIdleTTL = 30 * time.Minute
	}
}

// CatalogBackend selects where books are read from.
type CatalogBackend string

const (
	CatalogBackendMemory   CatalogBackend = "memory"
	CatalogBackendPostgres CatalogBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for CatalogBackend.
func (c *CatalogBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "postgres":
		*c = CatalogBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid CatalogBackend: %q (valid options: memory, postgres)", v)
	}
}

// CatalogConfig controls the book catalog.
type CatalogConfig struct {
	Backend CatalogBackend `env:"BACKEND" envDefault:"memory"`
	// SeedOnStart loads the demo accounts and books into Postgres at startup.
	SeedOnStart bool `env:"SEED_ON_START" envDefault:"false"`
}
