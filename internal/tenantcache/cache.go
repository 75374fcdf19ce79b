// Package tenantcache decora el TenantRepository con un cache TTL de
// resoluciones slug → tenant.
//
// Logins concurrentes del mismo tenant golpean el control plane una sola
// vez (singleflight). Los secretos NO se sirven desde acá con TTL largo:
// el TTL corto (default 30s) acota cuánto tarda una rotación de secreto
// en surtir efecto.
package tenantcache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	"github.com/dropDatabas3/gatejohn/internal/store"
)

// DefaultTTL para entradas de tenant.
const DefaultTTL = 30 * time.Second

// backend abstrae el almacenamiento del cache (memoria o redis).
type backend interface {
	get(ctx context.Context, key string) ([]byte, bool)
	set(ctx context.Context, key string, value []byte, ttl time.Duration)
	delete(ctx context.Context, key string)
}

// Repo envuelve un store.TenantRepository con cache + singleflight.
type Repo struct {
	inner   store.TenantRepository
	backend backend
	ttl     time.Duration
	sf      singleflight.Group
}

// Config configura el decorador.
type Config struct {
	// Kind: "memory" (default) o "redis".
	Kind string
	// TTL de las entradas; 0 = DefaultTTL.
	TTL time.Duration
	// Redis: conexión cuando Kind == "redis".
	Redis RedisConfig
}

// New crea el repo cacheado sobre inner.
func New(inner store.TenantRepository, cfg Config) *Repo {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	var b backend
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "redis":
		b = newRedisBackend(cfg.Redis)
	default:
		b = newMemoryBackend(ttl)
	}

	return &Repo{inner: inner, backend: b, ttl: ttl}
}

func cacheKey(slug string) string { return "tenant:slug:" + slug }

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*controlplane.Tenant, error) {
	slug = strings.TrimSpace(slug)

	if raw, ok := r.backend.get(ctx, cacheKey(slug)); ok {
		var t controlplane.Tenant
		if err := json.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
		// Entrada corrupta: descartarla y seguir al origen.
		r.backend.delete(ctx, cacheKey(slug))
	}

	v, err, _ := r.sf.Do(slug, func() (any, error) {
		t, err := r.inner.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(t); err == nil {
			r.backend.set(ctx, cacheKey(slug), raw, r.ttl)
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*controlplane.Tenant), nil
}

func (r *Repo) Create(ctx context.Context, tenant *controlplane.Tenant) error {
	if err := r.inner.Create(ctx, tenant); err != nil {
		return err
	}
	r.backend.delete(ctx, cacheKey(tenant.Slug))
	return nil
}

func (r *Repo) UpdateSSOSecret(ctx context.Context, slug string, secretEnc string) error {
	if err := r.inner.UpdateSSOSecret(ctx, slug, secretEnc); err != nil {
		return err
	}
	// Invalidar para que la rotación aplique en el próximo login.
	r.backend.delete(ctx, cacheKey(slug))
	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}
