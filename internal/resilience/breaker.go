// Package resilience guards outbound calls such as notification webhooks.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker trips after a run of consecutive failures and rejects calls for
// a cooldown period. The first call after the cooldown is a probe: its
// failure re-trips the breaker immediately, its success resets it.
//
// State is derived rather than stored: the breaker is tripped while
// trippedAt is set, and probing once the cooldown has elapsed.
type Breaker struct {
	mu        sync.Mutex // guards all fields below
	failures  int
	trippedAt time.Time // zero while the circuit is closed
	probing   bool
	threshold int
	cooldown  time.Duration
	now       func() time.Time // for testing
}

// NewBreaker creates a breaker that trips after threshold consecutive
// failures and rejects calls for the given cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Execute runs fn unless the breaker is rejecting calls. fn runs outside
// the lock, so a slow webhook cannot serialize unrelated sends.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	if !b.trippedAt.IsZero() {
		if b.now().Sub(b.trippedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.probing = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		if b.probing || b.failures >= b.threshold {
			b.trippedAt = b.now()
		}
		b.probing = false
		return err
	}

	b.failures = 0
	b.trippedAt = time.Time{}
	b.probing = false
	return nil
}
