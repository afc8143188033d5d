package catalog

import (
	"context"
	"database/sql"
	"encoding/hex"
	"os"
	"time"

	"github.com/zeebo/blake3"

	"github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/core/sqlite"
	"github.com/srikosa/srikosa/internal/logging"
)

const schema = `
CREATE TABLE categories (
	position         INTEGER PRIMARY KEY,
	slug             TEXT NOT NULL,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL,
	long_description TEXT
);
CREATE TABLE scriptures (
	position INTEGER PRIMARY KEY,
	slug     TEXT NOT NULL,
	document TEXT NOT NULL
);
CREATE INDEX idx_scriptures_slug ON scriptures(slug);
`

// SQLiteStore reads a catalog database written by Import. The database is
// opened read-only for every Load.
type SQLiteStore struct {
	path string
	cfg  storeConfig
}

// NewSQLiteStore returns a store over the database file at path.
func NewSQLiteStore(path string, opts ...Option) *SQLiteStore {
	return &SQLiteStore{path: path, cfg: newStoreConfig(opts)}
}

// Load reads all rows ordered by position and validates every document.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.load(ctx)
	s.cfg.metrics.RecordStoreLoad(StoreSQLite, time.Since(start), err)
	if err != nil {
		logging.StoreError(ctx, StoreSQLite, err, "path", s.path)
		return nil, err
	}
	logging.DebugContext(ctx, "store_loaded",
		"store", StoreSQLite,
		"categories", len(snap.Categories),
		"scriptures", len(snap.Scriptures),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}

func (s *SQLiteStore) load(ctx context.Context) (*Snapshot, error) {
	// sql.Open is lazy; a missing file would only surface on the first query
	// with a less helpful message.
	if _, err := os.Stat(s.path); err != nil {
		return nil, errors.NewDataUnavailable(s.path, errors.NewIO("stat", s.path, err))
	}
	db, err := sqlite.OpenReadOnly(s.path)
	if err != nil {
		return nil, errors.NewDataUnavailable(s.path, errors.NewIO("open", s.path, err))
	}
	defer db.Close()

	categories, err := queryCategories(ctx, db)
	if err != nil {
		return nil, errors.NewDataUnavailable(s.path, err)
	}
	scriptures, err := queryScriptures(ctx, db)
	if err != nil {
		return nil, errors.NewDataUnavailable(s.path, err)
	}
	return &Snapshot{Categories: categories, Scriptures: scriptures}, nil
}

func queryCategories(ctx context.Context, db *sql.DB) ([]scripture.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT slug, name, description, long_description FROM categories ORDER BY position`)
	if err != nil {
		return nil, errors.NewIO("query", "categories", err)
	}
	defer rows.Close()

	categories := []scripture.Category{}
	for rows.Next() {
		var (
			c    scripture.Category
			long sql.NullString
		)
		if err := rows.Scan(&c.Slug, &c.Name, &c.Description, &long); err != nil {
			return nil, errors.NewIO("scan", "categories", err)
		}
		c.LongDescription = long.String
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query", "categories", err)
	}
	return categories, nil
}

func queryScriptures(ctx context.Context, db *sql.DB) ([]*scripture.Scripture, error) {
	rows, err := db.QueryContext(ctx, `SELECT slug, document FROM scriptures ORDER BY position`)
	if err != nil {
		return nil, errors.NewIO("query", "scriptures", err)
	}
	defer rows.Close()

	scriptures := []*scripture.Scripture{}
	for rows.Next() {
		var slug, doc string
		if err := rows.Scan(&slug, &doc); err != nil {
			return nil, errors.NewIO("scan", "scriptures", err)
		}
		sc, err := scripture.DecodeScripture([]byte(doc))
		if err != nil {
			return nil, errors.Wrapf(err, "scripture %s", slug)
		}
		scriptures = append(scriptures, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query", "scriptures", err)
	}
	return scriptures, nil
}

// Fingerprint hashes the size and modification time of the database file and
// its write-ahead log, if any.
func (s *SQLiteStore) Fingerprint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := blake3.New()
	if err := hashStat(h, s.path); err != nil {
		return "", err
	}
	if _, err := os.Stat(s.path + "-wal"); err == nil {
		if err := hashStat(h, s.path+"-wal"); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
