package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_AllowsUpToMax(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "ip1")
		if err != nil {
			t.Fatalf("hit %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d rejected, want allowed", i)
		}
	}

	res, err := l.Allow(ctx, "ip1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("hit 4 allowed, want rejected")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v, want > 0", res.RetryAfter)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "a"); !res.Allowed {
		t.Fatal("first hit for a rejected")
	}
	if res, _ := l.Allow(ctx, "b"); !res.Allowed {
		t.Fatal("first hit for b rejected")
	}
	if res, _ := l.Allow(ctx, "a"); res.Allowed {
		t.Fatal("second hit for a allowed, want rejected")
	}
}
