// Package natskv is the shared tier of the threshold cache, backed by a
// JetStream key-value bucket so every engine replica observes a threshold
// update at the same time.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/greenlight-hq/greenlight/internal/port/cache"
)

// Cache adapts a JetStream KV bucket to the cache port.
type Cache struct {
	bucket jetstream.KeyValue
}

// New wraps an existing bucket. Entry expiry is governed by the bucket's
// MaxAge, configured where the bucket is created.
func New(bucket jetstream.KeyValue) *Cache {
	return &Cache{bucket: bucket}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := c.bucket.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return entry.Value(), nil
}

// Set writes the entry. The ttl parameter is ignored: per-key TTLs are not
// a KV feature, the bucket MaxAge applies instead.
func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if _, err := c.bucket.Put(ctx, key, value); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.bucket.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}
