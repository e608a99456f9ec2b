package ratelimit

import (
	"context"
	"fmt"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// StoreLimiter adapts a ulule/limiter store. Unlike FixedWindow, every
// attempt increments the store's counter, including rejected ones; the
// window boundary is unaffected.
type StoreLimiter struct {
	instance *limiter.Limiter
}

// NewStoreLimiter creates a limiter backed by the given store.
func NewStoreLimiter(store limiter.Store, limit int, window time.Duration) *StoreLimiter {
	rate := limiter.Rate{
		Period: window,
		Limit:  int64(limit),
	}
	return &StoreLimiter{instance: limiter.New(store, rate)}
}

// NewMemoryStoreLimiter creates a StoreLimiter over ulule's in-memory store,
// which evicts expired keys on its own cleanup interval.
func NewMemoryStoreLimiter(limit int, window time.Duration) *StoreLimiter {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "contact",
		CleanUpInterval: window,
	})
	return NewStoreLimiter(store, limit, window)
}

// TryAcquire implements Limiter.
func (l *StoreLimiter) TryAcquire(ctx context.Context, key string) (Decision, error) {
	lctx, err := l.instance.Get(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit store: %w", err)
	}

	return Decision{
		Allowed: !lctx.Reached,
		ResetAt: time.Unix(lctx.Reset, 0),
	}, nil
}
