package tenantcache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

// ─── Memory ───

type memoryBackend struct{ c *gocache.Cache }

func newMemoryBackend(defaultTTL time.Duration) *memoryBackend {
	return &memoryBackend{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *memoryBackend) get(_ context.Context, key string) ([]byte, bool) {
	if v, ok := m.c.Get(key); ok {
		if b, ok := v.([]byte); ok {
			return b, true
		}
	}
	return nil, false
}

func (m *memoryBackend) set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *memoryBackend) delete(_ context.Context, key string) {
	m.c.Delete(key)
}

// ─── Redis ───

// RedisConfig conexión para el backend redis.
type RedisConfig struct {
	Addr   string
	DB     int
	Prefix string
}

type redisBackend struct {
	c      *rdb.Client
	prefix string
}

func newRedisBackend(cfg RedisConfig) *redisBackend {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "gatejohn"
	}
	return &redisBackend{
		c:      rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB}),
		prefix: prefix,
	}
}

func (r *redisBackend) key(k string) string { return fmt.Sprintf("%s:%s", r.prefix, k) }

func (r *redisBackend) get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.c.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *redisBackend) set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = r.c.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *redisBackend) delete(ctx context.Context, key string) {
	_ = r.c.Del(ctx, r.key(key)).Err()
}
