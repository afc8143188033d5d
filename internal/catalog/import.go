package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/core/sqlite"
	"github.com/srikosa/srikosa/internal/logging"
)

// ImportStats reports what Import wrote.
type ImportStats struct {
	Categories int
	Scriptures int
	Verses     int
}

// Import loads src and writes it to a new SQLite database at dbPath in a
// single transaction. An existing file at dbPath is an error.
func Import(ctx context.Context, src Store, dbPath string) (ImportStats, error) {
	var stats ImportStats

	if _, err := os.Stat(dbPath); err == nil {
		return stats, errors.NewValidation("out", fmt.Sprintf("%s already exists", dbPath))
	}

	snap, err := src.Load(ctx)
	if err != nil {
		return stats, err
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		return stats, errors.NewIO("open", dbPath, err)
	}
	defer db.Close()

	if err := writeSnapshot(ctx, db, snap); err != nil {
		db.Close()
		os.Remove(dbPath)
		return stats, err
	}

	stats.Categories = len(snap.Categories)
	stats.Scriptures = len(snap.Scriptures)
	for _, s := range snap.Scriptures {
		stats.Verses += s.CountVerses()
	}
	logging.InfoContext(ctx, "catalog_imported",
		"path", dbPath,
		"categories", stats.Categories,
		"scriptures", stats.Scriptures,
		"verses", stats.Verses,
	)
	return stats, nil
}

func writeSnapshot(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewIO("begin transaction", "", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return errors.NewIO("create schema", "", err)
	}

	catStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO categories (position, slug, name, description, long_description) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.NewIO("prepare", "categories", err)
	}
	defer catStmt.Close()
	for i, c := range snap.Categories {
		long := sql.NullString{String: c.LongDescription, Valid: c.LongDescription != ""}
		if _, err := catStmt.ExecContext(ctx, i, c.Slug, c.Name, c.Description, long); err != nil {
			return errors.NewIO("insert category", c.Slug, err)
		}
	}

	docStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scriptures (position, slug, document) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.NewIO("prepare", "scriptures", err)
	}
	defer docStmt.Close()
	for i, s := range snap.Scriptures {
		doc, err := scripture.Encode(s)
		if err != nil {
			return errors.Wrapf(err, "encode scripture %s", s.Metadata.Slug)
		}
		if _, err := docStmt.ExecContext(ctx, i, s.Metadata.Slug, string(doc)); err != nil {
			return errors.NewIO("insert scripture", s.Metadata.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewIO("commit", "", err)
	}
	return nil
}
