package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/internal/cache"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/metrics"
)

// CachedStore serves a cached snapshot while its TTL holds and the backing
// data fingerprint is unchanged. Every caller receives its own deep copy.
type CachedStore struct {
	store   Store
	fp      Fingerprinter
	cache   *cache.Snapshot[*Snapshot]
	metrics *metrics.Metrics

	// loadMu serializes reloads so concurrent misses read the store once.
	loadMu sync.Mutex
}

// NewCachedStore wraps store. fp is usually the store itself.
func NewCachedStore(store Store, fp Fingerprinter, ttl time.Duration, m *metrics.Metrics) *CachedStore {
	return &CachedStore{
		store:   store,
		fp:      fp,
		cache:   cache.New[*Snapshot](ttl),
		metrics: m,
	}
}

// Load returns a copy of the cached snapshot or reloads it.
func (c *CachedStore) Load(ctx context.Context) (*Snapshot, error) {
	fingerprint, err := c.fp.Fingerprint(ctx)
	if err != nil {
		if !errors.IsDataUnavailable(err) {
			err = errors.NewDataUnavailable("fingerprint", err)
		}
		return nil, err
	}

	if snap, ok := c.cache.Get(fingerprint); ok {
		c.metrics.RecordCache(true)
		return snap.Clone(), nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Another caller may have refreshed the cache while we waited.
	if snap, ok := c.cache.Get(fingerprint); ok {
		c.metrics.RecordCache(true)
		return snap.Clone(), nil
	}
	c.metrics.RecordCache(false)

	snap, err := c.store.Load(ctx)
	if err != nil {
		// A failed reload must not leave the previous snapshot servable.
		c.cache.Invalidate()
		return nil, err
	}
	c.cache.Set(fingerprint, snap)
	logging.DebugContext(ctx, "snapshot_cached", "fingerprint", fingerprint)
	return snap.Clone(), nil
}
