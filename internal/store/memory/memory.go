// Package memory implementa el TenantRepository en memoria.
// Backend de desarrollo/tests; en producción el control plane vive en
// Postgres (store/pg).
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	"github.com/dropDatabas3/gatejohn/internal/store"
)

type Repo struct {
	mu     sync.RWMutex
	bySlug map[string]*controlplane.Tenant
}

func New() *Repo {
	return &Repo{bySlug: make(map[string]*controlplane.Tenant)}
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*controlplane.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.bySlug[strings.TrimSpace(slug)]
	if !ok {
		return nil, store.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *Repo) Create(ctx context.Context, tenant *controlplane.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySlug[tenant.Slug]; ok {
		return store.ErrConflict
	}
	now := time.Now()
	cp := *tenant
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.bySlug[cp.Slug] = &cp
	return nil
}

func (r *Repo) UpdateSSOSecret(ctx context.Context, slug string, secretEnc string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.bySlug[slug]
	if !ok {
		return store.ErrTenantNotFound
	}
	t.Settings.SSOSecretEnc = secretEnc
	t.UpdatedAt = time.Now()
	return nil
}

func (r *Repo) Ping(ctx context.Context) error { return nil }
