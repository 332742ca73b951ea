package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/bookms/bookms-admin/config"
)

type redisTopology string

const (
	redisStandalone redisTopology = "standalone"
	redisSentinel   redisTopology = "sentinel"
	redisCluster    redisTopology = "cluster"
)

// redisTarget is a resolved Redis deployment: which client to build and the
// options to build it with.
type redisTarget struct {
	topology redisTopology
	opts     redis.UniversalOptions
}

// OpenRedis connects to the Redis deployment cfg describes and verifies it
// answers. Client namespaces and the session store share this client.
//
//nolint:ireturn // the topology decides between single, sentinel and cluster clients.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	target, err := resolveRedis(cfg)
	if err != nil {
		return nil, err
	}

	client := target.newClient()
	if pingErr := verifyConnection(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, client.Close); pingErr != nil {
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.InfoContext(ctx, "redis connected",
			"topology", string(target.topology),
			"addr", target.describe(),
		)
	}
	return client, nil
}

// resolveRedis picks the topology from cfg. A redis:// or rediss:// URI
// contributes credentials, database and TLS to every topology, and doubles as
// the cluster seed when no cluster nodes are listed.
func resolveRedis(cfg config.RedisConfig) (redisTarget, error) {
	t := redisTarget{
		topology: redisStandalone,
		opts:     redis.UniversalOptions{Password: cfg.Password},
	}
	uriAddr, err := t.applyURI(cfg.URI)
	if err != nil {
		return redisTarget{}, err
	}

	switch {
	case cfg.UseCluster:
		t.topology = redisCluster
		t.opts.Addrs = trimmedAddrs(cfg.ClusterNodes)
		if len(t.opts.Addrs) == 0 && uriAddr != "" {
			t.opts.Addrs = []string{uriAddr}
		}
		if len(t.opts.Addrs) == 0 {
			return redisTarget{}, errors.New("redis cluster needs REDIS_CLUSTER_NODES or REDIS_URI")
		}
	case cfg.UseSentinel:
		t.topology = redisSentinel
		t.opts.Addrs = trimmedAddrs(cfg.SentinelNodes)
		t.opts.MasterName = strings.TrimSpace(cfg.SentinelMasterName)
		t.opts.SentinelPassword = cfg.SentinelPassword
		if len(t.opts.Addrs) == 0 {
			return redisTarget{}, errors.New("redis sentinel needs at least one REDIS_SENTINEL_NODES entry")
		}
		if t.opts.MasterName == "" {
			return redisTarget{}, errors.New("redis sentinel needs REDIS_SENTINEL_MASTER_NAME")
		}
	default:
		if uriAddr == "" {
			return redisTarget{}, errors.New("redis needs REDIS_URI")
		}
		t.opts.Addrs = []string{uriAddr}
	}
	return t, nil
}

// applyURI folds a URI into the options and returns its host:port. A bare
// address is returned as is.
func (t *redisTarget) applyURI(raw string) (string, error) {
	uri := strings.TrimSpace(raw)
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		return uri, nil
	}
	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return "", fmt.Errorf("parse redis url: %w", err)
	}
	t.opts.Username = parsed.Username
	if parsed.Password != "" {
		t.opts.Password = parsed.Password
	}
	t.opts.DB = parsed.DB
	t.opts.TLSConfig = parsed.TLSConfig
	return parsed.Addr, nil
}

//nolint:ireturn // see OpenRedis.
func (t redisTarget) newClient() redis.UniversalClient {
	switch t.topology {
	case redisCluster:
		return redis.NewClusterClient(t.opts.Cluster())
	case redisSentinel:
		return redis.NewFailoverClient(t.opts.Failover())
	default:
		return redis.NewClient(t.opts.Simple())
	}
}

// describe names the deployment for logs. Credentials never appear in Addrs.
func (t redisTarget) describe() string {
	addrs := strings.Join(t.opts.Addrs, ",")
	if t.topology == redisSentinel {
		return t.opts.MasterName + "@" + addrs
	}
	return addrs
}

func trimmedAddrs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, addr := range raw {
		if a := strings.TrimSpace(addr); a != "" {
			out = append(out, a)
		}
	}
	return out
}
