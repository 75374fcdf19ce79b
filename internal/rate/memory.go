package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: misma semántica de ventana fija que RedisLimiter pero
// sobre un contador en proceso. Para deployments de una sola réplica y
// para tests.
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	winStart := time.Now().UTC().Truncate(l.window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())

	// Add falla si la clave ya existe; en ambos casos el Increment
	// posterior opera sobre un contador vivo dentro de la ventana.
	_ = l.c.Add(k, int64(0), l.window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// La entrada expiró entre Add e Increment; reintentar una vez.
		_ = l.c.Add(k, int64(0), l.window)
		if hits, err = l.c.IncrementInt64(k, 1); err != nil {
			return Result{}, err
		}
	}

	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}
	ttl := time.Until(winStart.Add(l.window))
	if ttl < 0 {
		ttl = 0
	}

	res := Result{
		Allowed:     hits <= l.max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}
