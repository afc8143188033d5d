// Package cache provides the opt-in snapshot cache used in front of the
// document stores.
package cache

import (
	"sync"
	"time"
)

// Snapshot holds a single value tagged with the fingerprint of the data it was
// built from. A value is served only while the TTL has not elapsed and the
// caller presents the same fingerprint; any other fingerprint means the backing
// data changed and the value is stale.
type Snapshot[V any] struct {
	mu          sync.RWMutex
	value       V
	fingerprint string
	timestamp   time.Time
	ttl         time.Duration
}

// New creates an empty Snapshot with the given TTL.
// The cache starts with a zero timestamp (expired).
func New[V any](ttl time.Duration) *Snapshot[V] {
	return &Snapshot[V]{ttl: ttl}
}

// Get returns the cached value if it is fresh and was built from data with the
// given fingerprint.
func (c *Snapshot[V]) Get(fingerprint string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isExpiredLocked() || c.fingerprint != fingerprint {
		var zero V
		return zero, false
	}
	return c.value, true
}

// Set stores a value and resets the TTL timer.
func (c *Snapshot[V]) Set(fingerprint string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.fingerprint = fingerprint
	c.timestamp = time.Now()
}

// Fingerprint returns the fingerprint of the cached value, or "" if empty.
func (c *Snapshot[V]) Fingerprint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fingerprint
}

// IsExpired checks if the cached value has outlived its TTL.
// An empty cache is considered expired.
func (c *Snapshot[V]) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isExpiredLocked()
}

// isExpiredLocked must be called with at least a read lock held.
func (c *Snapshot[V]) isExpiredLocked() bool {
	return c.timestamp.IsZero() || time.Since(c.timestamp) >= c.ttl
}

// Invalidate drops the cached value.
func (c *Snapshot[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	c.value = zero
	c.fingerprint = ""
	c.timestamp = time.Time{}
}
