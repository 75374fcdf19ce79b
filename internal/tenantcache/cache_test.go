package tenantcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	"github.com/dropDatabas3/gatejohn/internal/store"
	"github.com/dropDatabas3/gatejohn/internal/store/memory"
)

// countingRepo cuenta las llamadas que llegan al origen.
type countingRepo struct {
	inner store.TenantRepository
	gets  atomic.Int64
}

func (c *countingRepo) GetBySlug(ctx context.Context, slug string) (*controlplane.Tenant, error) {
	c.gets.Add(1)
	return c.inner.GetBySlug(ctx, slug)
}
func (c *countingRepo) Create(ctx context.Context, t *controlplane.Tenant) error {
	return c.inner.Create(ctx, t)
}
func (c *countingRepo) UpdateSSOSecret(ctx context.Context, slug, enc string) error {
	return c.inner.UpdateSSOSecret(ctx, slug, enc)
}
func (c *countingRepo) Ping(ctx context.Context) error { return c.inner.Ping(ctx) }

func seedRepo(t *testing.T) *countingRepo {
	t.Helper()
	m := memory.New()
	if err := m.Create(context.Background(), &controlplane.Tenant{
		ID: "t1", Slug: "acme", Name: "Acme",
	}); err != nil {
		t.Fatal(err)
	}
	return &countingRepo{inner: m}
}

func TestGetBySlug_CachesHits(t *testing.T) {
	origin := seedRepo(t)
	repo := New(origin, Config{Kind: "memory", TTL: time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tn, err := repo.GetBySlug(ctx, "acme")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if tn.ID != "t1" {
			t.Fatalf("wrong tenant: %+v", tn)
		}
	}
	if got := origin.gets.Load(); got != 1 {
		t.Fatalf("origin hit %d times, want 1", got)
	}
}

func TestGetBySlug_SingleflightUnderConcurrency(t *testing.T) {
	origin := seedRepo(t)
	repo := New(origin, Config{Kind: "memory", TTL: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.GetBySlug(context.Background(), "acme")
		}()
	}
	wg.Wait()

	// Con cache frío y 32 goroutines, el origen debe verse muchísimo
	// menos de 32 veces; típicamente 1.
	if got := origin.gets.Load(); got > 3 {
		t.Fatalf("origin hit %d times under singleflight", got)
	}
}

func TestUpdateSSOSecret_InvalidatesEntry(t *testing.T) {
	origin := seedRepo(t)
	repo := New(origin, Config{Kind: "memory", TTL: time.Hour})
	ctx := context.Background()

	if _, err := repo.GetBySlug(ctx, "acme"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateSSOSecret(ctx, "acme", "nonce|ct"); err != nil {
		t.Fatal(err)
	}

	tn, err := repo.GetBySlug(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if tn.Settings.SSOSecretEnc != "nonce|ct" {
		t.Fatalf("stale cache entry after secret rotation: %+v", tn.Settings)
	}
	if got := origin.gets.Load(); got != 2 {
		t.Fatalf("origin gets = %d, want 2 (pre y post invalidación)", got)
	}
}

func TestGetBySlug_NotFoundPassesThrough(t *testing.T) {
	origin := seedRepo(t)
	repo := New(origin, Config{Kind: "memory"})

	if _, err := repo.GetBySlug(context.Background(), "nope"); !store.IsTenantNotFound(err) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}
