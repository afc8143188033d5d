package catalog

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/workerpool"
)

// On-disk layout of a data directory.
const (
	CategoriesFile = "categories.json"
	ScripturesDir  = "scriptures"
)

// MaxDocumentSize bounds a single decompressed document.
const MaxDocumentSize = 256 << 20

// DirStore reads <root>/categories.json and <root>/scriptures/*.json.
// Documents may be xz-compressed with a .json.xz suffix.
type DirStore struct {
	root string
	cfg  storeConfig
}

// NewDirStore returns a store over the data directory root.
func NewDirStore(root string, opts ...Option) *DirStore {
	cfg := newStoreConfig(opts)
	if cfg.workers < 1 {
		cfg.workers = workerpool.DefaultWorkers
	}
	return &DirStore{root: root, cfg: cfg}
}

// Load reads and validates every document. Any failure fails the whole load.
func (d *DirStore) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap, err := d.load(ctx)
	d.cfg.metrics.RecordStoreLoad(StoreDir, time.Since(start), err)
	if err != nil {
		logging.StoreError(ctx, StoreDir, err, "root", d.root)
		return nil, err
	}
	logging.DebugContext(ctx, "store_loaded",
		"store", StoreDir,
		"categories", len(snap.Categories),
		"scriptures", len(snap.Scriptures),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}

func (d *DirStore) load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewDataUnavailable(d.root, err)
	}

	catPath, err := d.categoriesPath()
	if err != nil {
		return nil, err
	}
	data, err := readDocument(catPath)
	if err != nil {
		return nil, errors.NewDataUnavailable(catPath, err)
	}
	categories, err := scripture.DecodeCategories(data)
	if err != nil {
		return nil, errors.NewDataUnavailable(catPath, err)
	}

	files, err := d.scriptureFiles()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewDataUnavailable(d.root, err)
	}

	scriptures, err := workerpool.Map(d.cfg.workers, files, func(path string) (*scripture.Scripture, error) {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewDataUnavailable(path, err)
		}
		data, err := readDocument(path)
		if err != nil {
			return nil, errors.NewDataUnavailable(path, err)
		}
		s, err := scripture.DecodeScripture(data)
		if err != nil {
			return nil, errors.NewDataUnavailable(path, err)
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	if scriptures == nil {
		scriptures = []*scripture.Scripture{}
	}

	return &Snapshot{Categories: categories, Scriptures: scriptures}, nil
}

// categoriesPath prefers categories.json and falls back to categories.json.xz.
func (d *DirStore) categoriesPath() (string, error) {
	plain := filepath.Join(d.root, CategoriesFile)
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	}
	compressed := plain + ".xz"
	if _, err := os.Stat(compressed); err == nil {
		return compressed, nil
	}
	return "", errors.NewDataUnavailable(plain, errors.NewIO("stat", plain, fs.ErrNotExist))
}

// scriptureFiles lists scripture documents in lexical file-name order. As
// with the categories file, x.json shadows x.json.xz so a document is never
// loaded twice.
func (d *DirStore) scriptureFiles() ([]string, error) {
	dir := filepath.Join(d.root, ScripturesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewDataUnavailable(dir, errors.NewIO("read directory", dir, err))
	}
	plain := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			plain[e.Name()] = true
		}
	}
	// os.ReadDir returns entries sorted by file name.
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isDocument(name) {
			continue
		}
		if stem, ok := strings.CutSuffix(name, ".xz"); ok && plain[stem] {
			logging.Warn("shadowed_document", "file", filepath.Join(dir, name), "preferred", stem)
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// Fingerprint hashes the names, sizes and modification times of the data
// files. It changes whenever a document is added, removed or rewritten.
func (d *DirStore) Fingerprint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := blake3.New()
	catPath, err := d.categoriesPath()
	if err != nil {
		return "", err
	}
	if err := hashStat(h, catPath); err != nil {
		return "", err
	}
	files, err := d.scriptureFiles()
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if err := hashStat(h, f); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashStat(w io.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.NewDataUnavailable(path, errors.NewIO("stat", path, err))
	}
	_, err = fmt.Fprintf(w, "%s\x00%d\x00%d\n", filepath.Base(path), info.Size(), info.ModTime().UnixNano())
	return err
}

func isDocument(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.xz")
}

// readDocument reads a JSON document, decompressing .xz files.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	if !strings.HasSuffix(path, ".xz") {
		return data, nil
	}

	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewIO("decompress", path, err)
	}
	out, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.NewIO("decompress", path, err)
	}
	if len(out) > MaxDocumentSize {
		return nil, errors.NewIO("decompress", path, fmt.Errorf("document exceeds %d bytes", MaxDocumentSize))
	}
	return out, nil
}
