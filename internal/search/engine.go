package search

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/catalog"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/metrics"
	"github.com/srikosa/srikosa/internal/workerpool"
)

// ErrQueryTooShort is returned by Validate for queries shorter than
// MinQueryLength. Search never returns it.
var ErrQueryTooShort error = &errors.ValidationError{
	Field:   "q",
	Message: "query must be at least 2 characters",
}

// Validate normalizes query and reports whether it is long enough to search.
func Validate(query string) (string, error) {
	q := NormalizeQuery(query)
	if !IsSearchable(q) {
		return q, ErrQueryTooShort
	}
	return q, nil
}

// Response is the outcome of a search together with the number of matches
// found before the result cap was applied.
type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}

// Engine runs searches against a catalog store.
type Engine struct {
	store   catalog.Store
	metrics *metrics.Metrics
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records search metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithWorkers sets how many scriptures have their verses scanned in
// parallel. Values below 1 select the default.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine returns an engine that loads documents from store on every search.
func NewEngine(store catalog.Store, opts ...Option) *Engine {
	e := &Engine{store: store, workers: workerpool.DefaultWorkers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the engine's document store.
func (e *Engine) Store() catalog.Store {
	return e.store
}

// Search returns up to MaxResults ranked results for query. Queries shorter
// than MinQueryLength return an empty list without reading the store. A store
// failure aborts the search with a data-unavailable error and no results.
func (e *Engine) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := e.Run(ctx, query)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Run is Search that also reports the total match count.
func (e *Engine) Run(ctx context.Context, query string) (*Response, error) {
	start := time.Now()

	q, err := Validate(query)
	if err != nil {
		e.metrics.RecordSearch(metrics.OutcomeTooShort, time.Since(start), 0)
		return &Response{Query: q, Results: []Result{}}, nil
	}

	snap, err := e.store.Load(ctx)
	if err != nil {
		return nil, e.fail(ctx, start, err)
	}

	matches, err := e.collect(snap, q)
	if err != nil {
		return nil, e.fail(ctx, start, err)
	}

	ranked := Rank(matches, q)
	total := len(ranked)
	if total > MaxResults {
		ranked = ranked[:MaxResults:MaxResults]
	}

	duration := time.Since(start)
	e.metrics.RecordSearch(metrics.OutcomeOK, duration, total)
	logging.SearchCompleted(ctx, utf8.RuneCountInString(q), total, len(ranked), duration)

	return &Response{Query: q, Results: ranked, Total: total}, nil
}

func (e *Engine) fail(ctx context.Context, start time.Time, err error) error {
	if !errors.IsDataUnavailable(err) {
		err = errors.NewDataUnavailable("store", err)
	}
	e.metrics.RecordSearch(metrics.OutcomeUnavailable, time.Since(start), 0)
	logging.WarnContext(ctx, "search_failed", "error", err.Error())
	return err
}

// collect gathers matches in insertion order: categories, scripture headers,
// then verses, each in store order.
func (e *Engine) collect(snap *catalog.Snapshot, q string) ([]Result, error) {
	results := []Result{}

	for i := range snap.Categories {
		c := &snap.Categories[i]
		if Match(q, Blob(CategoryFields(c))) {
			results = append(results, categoryResult(c))
		}
	}

	for _, s := range snap.Scriptures {
		if Match(q, Blob(ScriptureFields(s))) {
			results = append(results, scriptureResult(s))
		}
	}

	perScripture, err := workerpool.Map(e.workers, snap.Scriptures, func(s *scripture.Scripture) ([]Result, error) {
		return matchVerses(s, q)
	})
	if err != nil {
		return nil, err
	}
	for _, hits := range perScripture {
		results = append(results, hits...)
	}
	return results, nil
}

func matchVerses(s *scripture.Scripture, q string) ([]Result, error) {
	var hits []Result
	err := scripture.Walk(s.Content.Sections, func(v scripture.Visit) bool {
		if Match(q, Blob(VerseFields(v.Verse))) {
			hits = append(hits, verseResult(s, v))
		}
		return true
	})
	if err != nil {
		return nil, errors.NewDataUnavailable(s.Metadata.Slug, err)
	}
	return hits, nil
}
