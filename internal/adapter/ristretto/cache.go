// Package ristretto is the in-process tier of the threshold cache.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/greenlight-hq/greenlight/internal/port/cache"
)

const (
	// Threshold entries are small JSON blobs, so size the admission
	// counters assuming ~1KB per entry with 10 counters each.
	countersPerKB  = 10
	minCounters    = 1 << 10
	setBufferItems = 64
)

// Cache holds hot workspace thresholds in process memory, in front of the
// shared tier.
type Cache struct {
	inner *ristretto.Cache[string, []byte]
}

// New creates the in-process tier bounded to maxBytes of cached values.
func New(maxBytes int64) (*Cache, error) {
	counters := maxBytes / 1024 * countersPerKB
	if counters < minCounters {
		counters = minCounters
	}

	inner, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxBytes,
		BufferItems: setBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := c.inner.Get(key)
	if !ok {
		return nil, cache.ErrMiss
	}
	return val, nil
}

// Set stores value at the entry's byte length as its cost. Ristretto may
// reject an admission under memory pressure; that is not an error here.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.inner.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.inner.Del(key)
	return nil
}

// Close releases the cache's internal goroutines.
func (c *Cache) Close() {
	c.inner.Close()
}
