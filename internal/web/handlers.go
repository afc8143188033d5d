package web

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	srkerrors "github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/catalog"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/search"
	"github.com/srikosa/srikosa/internal/validation"
)

// PageData is shared by every page template.
type PageData struct {
	Title string
	Query string // Echoed into the header search box
}

// CategoryCard is a category on the home page.
type CategoryCard struct {
	scripture.Category
	ScriptureCount int
}

// HomeData is the data for home.html.
type HomeData struct {
	PageData
	Categories []CategoryCard
}

// CategoryData is the data for category.html.
type CategoryData struct {
	PageData
	Category   *scripture.Category
	Scriptures []*scripture.Scripture
}

// ScriptureData is the data for scripture.html.
type ScriptureData struct {
	PageData
	Scripture  *scripture.Scripture
	VerseCount int
}

// VerseData is the data for verse.html.
type VerseData struct {
	PageData
	Ref *catalog.VerseRef
}

// SearchData is the data for search.html.
type SearchData struct {
	PageData
	Results  []search.Result
	Total    int
	TooShort bool
	Failed   bool
}

// ErrorData is the data for error.html.
type ErrorData struct {
	PageData
	Status  int
	Message string
	Ref     string
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.load(w, r)
	if !ok {
		return
	}

	cards := make([]CategoryCard, len(snap.Categories))
	for i, c := range snap.Categories {
		cards[i] = CategoryCard{
			Category:       c,
			ScriptureCount: len(snap.ScripturesByCategory(c.Name)),
		}
	}
	s.render(w, r, http.StatusOK, "home.html", HomeData{
		PageData:   PageData{Title: "Śrīkoṣa"},
		Categories: cards,
	})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("category")
	if err := validation.ValidateSlug(slug); err != nil {
		s.httpError(w, r, err, http.StatusNotFound)
		return
	}

	snap, ok := s.load(w, r)
	if !ok {
		return
	}
	c, err := snap.FindCategory(slug)
	if err != nil {
		s.httpError(w, r, err, http.StatusNotFound)
		return
	}
	s.render(w, r, http.StatusOK, "category.html", CategoryData{
		PageData:   PageData{Title: c.Name},
		Category:   c,
		Scriptures: snap.ScripturesByCategory(c.Name),
	})
}

func (s *Server) handleScripture(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if err := validation.ValidateSlug(slug); err != nil {
		s.httpError(w, r, err, http.StatusNotFound)
		return
	}

	snap, ok := s.load(w, r)
	if !ok {
		return
	}
	sc, err := snap.FindScripture(slug)
	if err != nil {
		s.httpError(w, r, err, http.StatusNotFound)
		return
	}
	s.render(w, r, http.StatusOK, "scripture.html", ScriptureData{
		PageData:   PageData{Title: sc.Metadata.Name},
		Scripture:  sc,
		VerseCount: sc.CountVerses(),
	})
}

func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if err := validation.ValidateSlug(slug); err != nil {
		s.httpError(w, r, err, http.StatusNotFound)
		return
	}
	n, err := validation.ParseVerseNumber(r.PathValue("n"))
	if err != nil {
		s.httpError(w, r, err, http.StatusNotFound)
		return
	}

	snap, ok := s.load(w, r)
	if !ok {
		return
	}
	ref, err := snap.FindVerse(slug, n)
	if err != nil {
		status := http.StatusNotFound
		if srkerrors.IsDataUnavailable(err) {
			status = http.StatusInternalServerError
		}
		s.httpError(w, r, err, status)
		return
	}
	s.render(w, r, http.StatusOK, "verse.html", VerseData{
		PageData: PageData{Title: fmt.Sprintf("%s • Verse %d", ref.Scripture.Metadata.Name, n)},
		Ref:      ref,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	data := SearchData{
		PageData: PageData{Title: "Search", Query: query},
		Results:  []search.Result{},
	}

	if _, err := search.Validate(query); err != nil {
		data.TooShort = true
		s.render(w, r, http.StatusOK, "search.html", data)
		return
	}

	resp, err := s.engine.Run(r.Context(), query)
	if err != nil {
		logging.ErrorContext(r.Context(), "search_error", "error", err.Error())
		data.Failed = true
		s.render(w, r, http.StatusInternalServerError, "search.html", data)
		return
	}
	data.Results = resp.Results
	data.Total = resp.Total
	s.render(w, r, http.StatusOK, "search.html", data)
}

// handleAPISearch returns the results as a bare JSON array. Any failure is a
// 500 with {"error":"Search failed"}.
func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := s.engine.Search(r.Context(), query)
	if err != nil {
		logging.ErrorContext(r.Context(), "search_error", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed"})
		return
	}

	body, err := json.Marshal(results)
	if err != nil {
		logging.ErrorContext(r.Context(), "search_encode_error", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed"})
		return
	}

	etag := contentETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// load reads the document set, answering the request itself on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*catalog.Snapshot, bool) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.httpError(w, r, err, http.StatusInternalServerError)
		return nil, false
	}
	return snap, true
}

// render executes a page template into a buffer so that a template failure
// never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logging.ErrorContext(r.Context(), "template_error", "template", name, "error", err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// httpError logs the detailed error server-side and renders a generic error
// page with a reference ID, so internal details are never disclosed.
func (s *Server) httpError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	errID := uuid.NewString()[:8]

	logging.ErrorContext(r.Context(), "http_error",
		"error_id", errID,
		"status_code", statusCode,
		"error", err.Error())

	var msg string
	switch {
	case statusCode == http.StatusNotFound:
		msg = "The page you were looking for does not exist."
	case errors.Is(err, srkerrors.ErrDataUnavailable):
		msg = "The scripture library is temporarily unavailable."
	default:
		msg = "Something went wrong."
	}

	s.render(w, r, statusCode, "error.html", ErrorData{
		PageData: PageData{Title: http.StatusText(statusCode)},
		Status:   statusCode,
		Message:  msg,
		Ref:      errID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// contentETag is a strong ETag derived from the BLAKE3 hash of body.
func contentETag(body []byte) string {
	sum := blake3.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
