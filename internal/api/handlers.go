package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	srkerrors "github.com/srikosa/srikosa/core/errors"
	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/validation"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata. Total is set on list responses only.
type APIMeta struct {
	Total     *int   `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// CategoryInfo is a category with the number of scriptures filed under it.
type CategoryInfo struct {
	scripture.Category
	Scriptures int `json:"scriptures"`
}

// CategoryDetail is a category with its scriptures.
type CategoryDetail struct {
	scripture.Category
	Scriptures []ScriptureInfo `json:"scriptures"`
}

// ScriptureInfo summarizes a scripture without its content tree.
type ScriptureInfo struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Year     string `json:"year,omitempty"`
	Verses   int    `json:"verses"`
}

// VerseInfo is a verse with its scripture and section label.
type VerseInfo struct {
	Scripture string          `json:"scripture"`
	Name      string          `json:"name"`
	Section   string          `json:"section"`
	Verse     scripture.Verse `json:"verse"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Categories int    `json:"categories"`
	Scriptures int    `json:"scriptures"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"name":    "Śrīkoṣa API",
		"version": s.cfg.Version,
		"endpoints": []string{
			"GET /health",
			"GET /categories",
			"GET /categories/{slug}",
			"GET /scriptures",
			"GET /scriptures/{slug}",
			"GET /scriptures/{slug}/verses/{n}",
			"GET /search?q=",
			"WS /ws/search",
		},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:     "healthy",
		Version:    s.cfg.Version,
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Categories: len(snap.Categories),
		Scriptures: len(snap.Scriptures),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	out := make([]CategoryInfo, len(snap.Categories))
	for i, c := range snap.Categories {
		out[i] = CategoryInfo{Category: c, Scriptures: len(snap.ScripturesByCategory(c.Name))}
	}
	respondList(w, out, len(out))
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if err := validation.ValidateSlug(slug); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid category slug")
		return
	}
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	c, err := snap.FindCategory(slug)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, CategoryDetail{
		Category:   *c,
		Scriptures: scriptureInfos(snap.ScripturesByCategory(c.Name)),
	})
}

func (s *Server) handleScriptures(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	out := scriptureInfos(snap.Scriptures)
	respondList(w, out, len(out))
}

func (s *Server) handleScripture(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if err := validation.ValidateSlug(slug); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid scripture slug")
		return
	}
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	sc, err := snap.FindScripture(slug)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, sc)
}

func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if err := validation.ValidateSlug(slug); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid scripture slug")
		return
	}
	n, err := validation.ParseVerseNumber(r.PathValue("n"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_VERSE", "Verse number must be a positive integer")
		return
	}
	snap, err := s.store.Load(r.Context())
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	ref, err := snap.FindVerse(slug, n)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respond(w, http.StatusOK, VerseInfo{
		Scripture: ref.Scripture.Metadata.Slug,
		Name:      ref.Scripture.Metadata.Name,
		Section:   ref.SectionLabel(),
		Verse:     *ref.Verse,
	})
}

// handleSearch returns the ranked results; meta.total is the match count
// before truncation. Short queries succeed with no results.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	resp, err := s.engine.Run(r.Context(), query)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondList(w, resp.Results, resp.Total)
}

func scriptureInfos(in []*scripture.Scripture) []ScriptureInfo {
	out := make([]ScriptureInfo, len(in))
	for i, sc := range in {
		out[i] = ScriptureInfo{
			Slug:     sc.Metadata.Slug,
			Name:     sc.Metadata.Name,
			Author:   sc.Metadata.Author,
			Category: sc.Metadata.Category,
			Year:     sc.Metadata.Year,
			Verses:   sc.CountVerses(),
		}
	}
	return out
}

// respondStoreError maps lookup and store failures onto the envelope. Data
// failures are logged in full but reported generically.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *srkerrors.NotFoundError
	switch {
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, "NOT_FOUND", nf.Error())
	case errors.Is(err, srkerrors.ErrDataUnavailable):
		logging.ErrorContext(r.Context(), "api_data_unavailable", "path", r.URL.Path, "error", err.Error())
		respondError(w, http.StatusServiceUnavailable, "DATA_UNAVAILABLE", "The scripture library is temporarily unavailable")
	default:
		logging.ErrorContext(r.Context(), "api_error", "path", r.URL.Path, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func respond(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: timestamp()},
	})
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeEnvelope(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Total: &total, Timestamp: timestamp()},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: timestamp()},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
