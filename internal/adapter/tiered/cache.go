// Package tiered stacks the local and shared threshold caches.
package tiered

import (
	"context"
	"errors"
	"time"

	"github.com/greenlight-hq/greenlight/internal/port/cache"
)

// Cache reads through a local (in-process) tier into a shared (remote)
// tier, backfilling the local tier on a shared hit. Writes and deletes go
// to both tiers so an invalidation is never shadowed by a stale local copy.
type Cache struct {
	local       cache.Cache
	shared      cache.Cache
	backfillTTL time.Duration
}

// New builds the stack. backfillTTL bounds how long a shared-tier hit may
// live locally before it is re-fetched.
func New(local, shared cache.Cache, backfillTTL time.Duration) *Cache {
	return &Cache{local: local, shared: shared, backfillTTL: backfillTTL}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.local.Get(ctx, key)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	val, err = c.shared.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Backfill failure is invisible to the caller; the next Get simply
	// pays the shared-tier round trip again.
	_ = c.local.Set(ctx, key, val, c.backfillTTL)
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.shared.Set(ctx, key, value, ttl)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.local.Delete(ctx, key); err != nil {
		return err
	}
	return c.shared.Delete(ctx, key)
}
