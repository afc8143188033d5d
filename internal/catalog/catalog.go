// Package catalog loads the scripture library from its backing store.
//
// A Store returns a fresh Snapshot on every Load; nothing is shared between
// calls. DirStore reads the on-disk JSON layout, SQLiteStore reads a database
// produced by Import, and CachedStore reuses a snapshot until the TTL expires
// or the backing data changes.
package catalog

import (
	"context"
	"time"

	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/metrics"
)

// Store names used in metrics and logs.
const (
	StoreDir    = "dir"
	StoreSQLite = "sqlite"
)

// Store loads the full document set.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Fingerprinter is implemented by stores that can cheaply identify the
// current state of their backing data.
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (string, error)
}

// Snapshot is the document set as read by one Load.
type Snapshot struct {
	Categories []scripture.Category
	Scriptures []*scripture.Scripture
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Categories: append([]scripture.Category(nil), s.Categories...),
		Scriptures: make([]*scripture.Scripture, len(s.Scriptures)),
	}
	for i, sc := range s.Scriptures {
		c.Scriptures[i] = sc.Clone()
	}
	return c
}

// Options selects and configures a store.
type Options struct {
	// DataDir is the root of the JSON layout. Used when DBPath is empty.
	DataDir string

	// DBPath selects the SQLite store.
	DBPath string

	// CacheTTL enables the snapshot cache when positive.
	CacheTTL time.Duration

	// Workers bounds parallel file decoding in DirStore.
	Workers int

	Metrics *metrics.Metrics
}

// Open builds the store described by opts.
func Open(opts Options) Store {
	var (
		base Store
		fp   Fingerprinter
	)
	if opts.DBPath != "" {
		s := NewSQLiteStore(opts.DBPath, WithMetrics(opts.Metrics))
		base, fp = s, s
	} else {
		s := NewDirStore(opts.DataDir, WithMetrics(opts.Metrics), WithWorkers(opts.Workers))
		base, fp = s, s
	}
	if opts.CacheTTL <= 0 {
		return base
	}
	return NewCachedStore(base, fp, opts.CacheTTL, opts.Metrics)
}

// Option configures a store.
type Option func(*storeConfig)

type storeConfig struct {
	metrics *metrics.Metrics
	workers int
}

// WithMetrics records load metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *storeConfig) { c.metrics = m }
}

// WithWorkers sets the number of parallel decoders. Values below 1 select
// the default.
func WithWorkers(n int) Option {
	return func(c *storeConfig) { c.workers = n }
}

func newStoreConfig(opts []Option) storeConfig {
	var c storeConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
