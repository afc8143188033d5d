package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/catalog"
	"github.com/srikosa/srikosa/internal/metrics"
)

func newTestEngine(snap *catalog.Snapshot) (*Engine, *memStore) {
	store := &memStore{snap: snap}
	return NewEngine(store), store
}

func TestSearchScripturePrefixFirst(t *testing.T) {
	e, _ := newTestEngine(testSnapshot())

	results, err := e.Search(context.Background(), "bhagavad")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, KindScripture, results[0].Type)
	assert.Equal(t, "Bhagavad Gita", results[0].Title)
	assert.Equal(t, "/scripture/bhagavad-gita", results[0].URL)

	// The commentary on verse 2 mentions "Bhagavad" too.
	require.Len(t, results, 2)
	assert.Equal(t, KindVerse, results[1].Type)
	assert.Equal(t, "/scripture/bhagavad-gita/verse/2", results[1].URL)
}

func TestSearchNoMatches(t *testing.T) {
	e, _ := newTestEngine(testSnapshot())

	results, err := e.Search(context.Background(), "xyzzy999")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchShortQuerySkipsStore(t *testing.T) {
	for _, q := range []string{"", "a", "  a  ", "   ", "ध"} {
		e, store := newTestEngine(testSnapshot())
		results, err := e.Search(context.Background(), q)
		require.NoError(t, err, "query %q", q)
		assert.Empty(t, results, "query %q", q)
		assert.Equal(t, int32(0), store.loads.Load(), "query %q should not load the store", q)
	}
}

func TestSearchShortQueryIgnoresBrokenStore(t *testing.T) {
	store := &memStore{err: errors.NewDataUnavailable("x", fmt.Errorf("broken"))}
	results, err := NewEngine(store).Search(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSnippetFallback(t *testing.T) {
	long := strings.Repeat("ज", 250)
	snap := &catalog.Snapshot{Scriptures: []*scripture.Scripture{{
		Metadata: scripture.Metadata{Slug: "s", Name: "S", Author: "A", Category: "C"},
		Content: scripture.Content{Sections: []*scripture.Section{
			{Title: "Only", Verses: []scripture.Verse{{
				Number: 4, OriginalText: long, IASTText: "jajaja", Commentaries: []scripture.Commentary{},
			}}},
		}},
	}}}
	e, _ := newTestEngine(snap)

	results, err := e.Search(context.Background(), "jaja")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, strings.Repeat("ज", 100)+"...", results[0].Content)
	assert.Equal(t, "S • Only", results[0].Subtitle)
}

func TestSearchDuplicateCategoryNames(t *testing.T) {
	snap := testSnapshot()
	snap.Categories = []scripture.Category{
		{Slug: "first", Name: "Dharma", Description: "one"},
		{Slug: "second", Name: "Dharma", Description: "two"},
	}
	e, _ := newTestEngine(snap)

	results, err := e.Search(context.Background(), "dharma")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 3)
	assert.Equal(t, "/first", results[0].URL)
	assert.Equal(t, "/second", results[1].URL)
	for _, r := range results[2:] {
		assert.NotEqual(t, KindCategory, r.Type)
	}
}

func TestSearchStoreFailure(t *testing.T) {
	cause := errors.NewParse("scripture", "metadata.slug", "required field missing")
	store := &memStore{err: errors.NewDataUnavailable("broken.json", cause)}

	results, err := NewEngine(store).Search(context.Background(), "dharma")
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, errors.IsDataUnavailable(err))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestSearchWrapsPlainStoreErrors(t *testing.T) {
	store := &memStore{err: fmt.Errorf("disk on fire")}
	_, err := NewEngine(store).Search(context.Background(), "dharma")
	require.Error(t, err)
	assert.True(t, errors.IsDataUnavailable(err))
}

func TestSearchCyclicSectionsFail(t *testing.T) {
	loop := &scripture.Section{Title: "Loop", Verses: []scripture.Verse{v(1, "dharma", "")}}
	loop.Sections = []*scripture.Section{loop}
	snap := &catalog.Snapshot{Scriptures: []*scripture.Scripture{{
		Metadata: scripture.Metadata{Slug: "loop", Name: "Loop", Author: "A", Category: "C"},
		Content:  scripture.Content{Sections: []*scripture.Section{loop}},
	}}}
	// Clone cannot copy a cyclic tree, so serve the snapshot directly.
	e := NewEngine(loadFunc(func() (*catalog.Snapshot, error) { return snap, nil }))

	_, err := e.Search(context.Background(), "dharma")
	require.Error(t, err)
	assert.True(t, errors.IsDataUnavailable(err))
}

type loadFunc func() (*catalog.Snapshot, error)

func (f loadFunc) Load(context.Context) (*catalog.Snapshot, error) { return f() }

func TestSearchSoundness(t *testing.T) {
	snap := testSnapshot()
	e, _ := newTestEngine(snap)

	for _, q := range []string{"dharma", "the", "field of", "sanjaya", "an", "yoga", "vyasa"} {
		results, err := e.Search(context.Background(), q)
		require.NoError(t, err)
		for _, r := range results {
			blob := blobFor(t, snap, r)
			assert.Contains(t, blob, NormalizeQuery(q), "result %s for %q", r.URL, q)
		}
	}
}

// blobFor finds the document behind a result and returns its field blob.
func blobFor(t *testing.T, snap *catalog.Snapshot, r Result) string {
	t.Helper()
	switch r.Type {
	case KindCategory:
		c, err := snap.FindCategory(r.Category)
		require.NoError(t, err)
		return Blob(CategoryFields(c))
	case KindScripture:
		s, err := snap.FindScripture(r.Scripture)
		require.NoError(t, err)
		return Blob(ScriptureFields(s))
	case KindVerse:
		s, err := snap.FindScripture(r.Scripture)
		require.NoError(t, err)
		var blobs []string
		require.NoError(t, scripture.Walk(s.Content.Sections, func(visit scripture.Visit) bool {
			if visit.Verse.Number == r.VerseNumber {
				blobs = append(blobs, Blob(VerseFields(visit.Verse)))
			}
			return true
		}))
		return strings.Join(blobs, "\x00")
	}
	t.Fatalf("unknown kind %v", r.Type)
	return ""
}

func TestSearchCompleteness(t *testing.T) {
	e, _ := newTestEngine(testSnapshot())

	results, err := e.Search(context.Background(), "iast")
	require.NoError(t, err)
	// Every verse has an IAST field starting with "iast"; there are four.
	require.Len(t, results, 4)

	seen := map[string]bool{}
	for _, r := range results {
		key := r.Subtitle + r.URL
		assert.False(t, seen[key], "duplicate result %s", key)
		seen[key] = true
	}
}

func TestSearchNestedSubtitle(t *testing.T) {
	e, _ := newTestEngine(testSnapshot())

	results, err := e.Search(context.Background(), "never born")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Bhagavad Gita • Chapter 2", results[0].Subtitle)
	assert.Equal(t, "The self is never born and never dies", results[0].Content)
}

func TestSearchIdempotent(t *testing.T) {
	e, _ := newTestEngine(testSnapshot())

	first, err := e.Search(context.Background(), "the")
	require.NoError(t, err)
	second, err := e.Search(context.Background(), "the")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchCaseInsensitive(t *testing.T) {
	e, _ := newTestEngine(testSnapshot())

	lower, err := e.Search(context.Background(), "tiruppavai")
	require.NoError(t, err)
	upper, err := e.Search(context.Background(), "  TIRUPPAVAI ")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
	require.Len(t, lower, 1)
	assert.Equal(t, "By Andal • Divya Prabandham", lower[0].Subtitle)
}

func TestSearchInsertionOrderAcrossKinds(t *testing.T) {
	e, _ := newTestEngine(testSnapshot())

	// "dharma" matches a category description and one verse, neither by title.
	results, err := e.Search(context.Background(), "dharma")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, KindCategory, results[0].Type)
	assert.Equal(t, KindVerse, results[1].Type)
}

// bigSnapshot holds one scripture with n verses spread over nested sections,
// every verse containing "dharma".
func bigSnapshot(n int) *catalog.Snapshot {
	root := &scripture.Section{Title: "Book"}
	cur := root
	for i := 1; i <= n; i++ {
		if i%7 == 0 {
			child := &scripture.Section{Title: fmt.Sprintf("Part %d", i)}
			cur.Sections = append(cur.Sections, child)
			cur = child
		}
		cur.Verses = append(cur.Verses, v(i, "dharma verse", ""))
	}
	return &catalog.Snapshot{Scriptures: []*scripture.Scripture{{
		Metadata: scripture.Metadata{Slug: "big", Name: "Big", Author: "A", Category: "C"},
		Content:  scripture.Content{Sections: []*scripture.Section{root}},
	}}}
}

func TestSearchTraversalCompleteness(t *testing.T) {
	snap := bigSnapshot(40)
	e, _ := newTestEngine(snap)

	resp, err := e.Run(context.Background(), "dharma")
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Total)
	assert.Len(t, resp.Results, 40)
	assert.Equal(t, snap.Scriptures[0].CountVerses(), resp.Total)
}

func TestSearchTruncation(t *testing.T) {
	e, _ := newTestEngine(bigSnapshot(120))

	resp, err := e.Run(context.Background(), "dharma")
	require.NoError(t, err)
	assert.Equal(t, 120, resp.Total)
	assert.Len(t, resp.Results, MaxResults)
	assert.Equal(t, "dharma", resp.Query)

	results, err := e.Search(context.Background(), "dharma")
	require.NoError(t, err)
	assert.Len(t, results, MaxResults)
	assert.Equal(t, "Verse 1", results[0].Title)
	assert.Equal(t, "Verse 50", results[49].Title)
}

func TestSearchParallelMatchesSerial(t *testing.T) {
	snap := testSnapshot()
	for i := 0; i < 10; i++ {
		extra := bigSnapshot(15).Scriptures[0]
		extra.Metadata.Slug = fmt.Sprintf("big-%d", i)
		snap.Scriptures = append(snap.Scriptures, extra)
	}

	serial, err := NewEngine(&memStore{snap: snap}, WithWorkers(1)).Run(context.Background(), "dharma")
	require.NoError(t, err)
	parallel, err := NewEngine(&memStore{snap: snap}, WithWorkers(8)).Run(context.Background(), "dharma")
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestSearchMetrics(t *testing.T) {
	m := metrics.New()
	e := NewEngine(&memStore{snap: testSnapshot()}, WithMetrics(m))
	ctx := context.Background()

	_, _ = e.Search(ctx, "a")
	_, _ = e.Search(ctx, "dharma")

	broken := NewEngine(&memStore{err: fmt.Errorf("boom")}, WithMetrics(m))
	_, _ = broken.Search(ctx, "dharma")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(metrics.OutcomeTooShort)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(metrics.OutcomeUnavailable)))
}

func TestSearchOverDirStore(t *testing.T) {
	root := t.TempDir()
	writeData(t, root)
	e := NewEngine(catalog.NewDirStore(root))

	results, err := e.Search(context.Background(), "gita")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/scripture/bhagavad-gita", results[0].URL)
}

func writeData(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, catalog.ScripturesDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, catalog.CategoriesFile),
		[]byte(`[{"slug": "itihasa", "name": "Itihasa", "description": "Epics"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, catalog.ScripturesDir, "bhagavad-gita.json"), []byte(`{
  "metadata": {"slug": "bhagavad-gita", "scripture_name": "Bhagavad Gita", "author": "Vyasa", "category": "Itihasa"},
  "content": {"sections": [{"title": "Chapter 1", "verses": [
    {"verse_number": 1, "original_text": "dharmakshetre", "iast_text": "dharmaksetre", "commentaries": []}
  ]}]}
}`), 0o644))
}
