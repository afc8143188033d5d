package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSearch(t *testing.T) {
	m := New()

	m.RecordSearch(OutcomeOK, 10*time.Millisecond, 12)
	m.RecordSearch(OutcomeOK, 5*time.Millisecond, 0)
	m.RecordSearch(OutcomeTooShort, 0, 0)
	m.RecordSearch(OutcomeUnavailable, time.Millisecond, 0)

	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(OutcomeOK)); got != 2 {
		t.Errorf("ok searches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues(OutcomeTooShort)); got != 1 {
		t.Errorf("too_short searches = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.SearchDuration); got != 1 {
		t.Errorf("duration collectors = %d, want 1", got)
	}
}

func TestRecordStoreLoad(t *testing.T) {
	m := New()

	m.RecordStoreLoad("dir", time.Millisecond, nil)
	m.RecordStoreLoad("dir", time.Millisecond, errors.New("boom"))
	m.RecordStoreLoad("sqlite", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.StoreLoadsTotal.WithLabelValues("dir", "success")); got != 1 {
		t.Errorf("dir success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreLoadsTotal.WithLabelValues("dir", "error")); got != 1 {
		t.Errorf("dir error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreLoadsTotal.WithLabelValues("sqlite", "success")); got != 1 {
		t.Errorf("sqlite success = %v, want 1", got)
	}
}

func TestRecordCache(t *testing.T) {
	m := New()
	m.RecordCache(true)
	m.RecordCache(true)
	m.RecordCache(false)

	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordSearch(OutcomeOK, time.Millisecond, 1)
	m.RecordStoreLoad("dir", time.Millisecond, nil)
	m.RecordCache(true)
}

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a := New()
	b := New()
	a.RecordCache(true)
	if got := testutil.ToFloat64(b.CacheHitsTotal); got != 0 {
		t.Errorf("registries share state: b hits = %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordSearch(OutcomeOK, time.Millisecond, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `srikosa_search_requests_total{outcome="ok"} 1`) {
		t.Errorf("metrics output missing search counter:\n%s", body)
	}
}
