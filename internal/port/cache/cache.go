// Package cache defines the port for the threshold cache tiers.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports that a key is not present. Adapters return it from Get
// instead of a found flag so a miss flows through the same error path as
// any other lookup failure.
var ErrMiss = errors.New("cache: miss")

// Cache is a byte-oriented key-value cache. Implementations must be safe
// for concurrent use. Get returns ErrMiss for an absent key; Delete of an
// absent key is a no-op.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
