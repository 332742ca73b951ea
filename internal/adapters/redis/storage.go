// Package redis provides Redis-based adapters for client storage namespaces.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookms/bookms-admin/internal/ports"
)

// DefaultKeyPrefix namespaces client storage hashes.
const DefaultKeyPrefix = "bookms:storage:"

// StorageProvider opens Redis-backed client namespaces. Each namespace is one hash,
// so a Replace or Clear touches a single key and is applied atomically.
type StorageProvider struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	// eachMaster runs fn against every node that owns part of the keyspace.
	eachMaster func(ctx context.Context, fn func(context.Context, redis.Cmdable) error) error
}

var _ ports.StorageProvider = (*StorageProvider)(nil)

// StorageOptions configures a StorageProvider.
type StorageOptions struct {
	Prefix string
	// TTL expires idle namespaces; zero keeps them forever.
	TTL time.Duration
}

// NewStorageProvider creates a Redis storage provider.
func NewStorageProvider(client redis.UniversalClient, opts StorageOptions) *StorageProvider {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	p := &StorageProvider{client: client, prefix: prefix, ttl: opts.TTL}
	p.eachMaster = func(ctx context.Context, fn func(context.Context, redis.Cmdable) error) error {
		return fn(ctx, client)
	}
	// SCAN only walks the node it is sent to, so a cluster is scanned master by master.
	if cluster, ok := client.(*redis.ClusterClient); ok {
		p.eachMaster = func(ctx context.Context, fn func(context.Context, redis.Cmdable) error) error {
			return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
				return fn(ctx, node)
			})
		}
	}
	return p
}

// Open returns the namespace for clientID.
func (p *StorageProvider) Open(clientID string) ports.Storage {
	return &Storage{provider: p, key: p.prefix + clientID}
}

// ListClients returns the ids of every stored namespace, sorted.
func (p *StorageProvider) ListClients(ctx context.Context) ([]string, error) {
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)
	err := p.eachMaster(ctx, func(ctx context.Context, node redis.Cmdable) error {
		ids, err := p.scanNode(ctx, node)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		for _, id := range ids {
			seen[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// scanNode walks one node's keyspace. SCAN may repeat keys; callers dedupe.
func (p *StorageProvider) scanNode(ctx context.Context, node redis.Cmdable) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := node.Scan(ctx, cursor, p.prefix+"*", 200).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, k := range keys {
			ids = append(ids, strings.TrimPrefix(k, p.prefix))
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

// Dump returns every key/value pair of a namespace.
func (p *StorageProvider) Dump(ctx context.Context, clientID string) (map[string]string, error) {
	vals, err := p.client.HGetAll(ctx, p.prefix+clientID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	return vals, nil
}

// Storage is a single client's namespace.
type Storage struct {
	provider *StorageProvider
	key      string
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.provider.client.HGet(ctx, s.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrStorageKeyNotFound
		}
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return val, nil
}

func (s *Storage) Replace(ctx context.Context, entries map[string]string) error {
	_, err := s.provider.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(entries) == 0 {
			return nil
		}
		fields := make(map[string]any, len(entries))
		for k, v := range entries {
			fields[k] = v
		}
		pipe.HSet(ctx, s.key, fields)
		if s.provider.ttl > 0 {
			pipe.Expire(ctx, s.key, s.provider.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace: %w", err)
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := s.provider.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
