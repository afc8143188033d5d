// Package web provides the Śrīkoṣa web UI server.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/srikosa/srikosa/internal/catalog"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/metrics"
	"github.com/srikosa/srikosa/internal/search"
	"github.com/srikosa/srikosa/internal/server"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Config holds server configuration.
type Config struct {
	Port    int
	DataDir string // Reported at startup only
	TLS     server.TLSConfig
}

// Server serves the HTML pages and the search JSON endpoint.
type Server struct {
	cfg       Config
	engine    *search.Engine
	store     catalog.Store
	metrics   *metrics.Metrics
	templates *template.Template
	static    *staticFiles
}

// New parses the templates and static files and returns a Server that
// searches with engine and browses the engine's store.
func New(cfg Config, engine *search.Engine, m *metrics.Metrics) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	static, err := loadStaticFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	return &Server{
		cfg:       cfg,
		engine:    engine,
		store:     engine.Store(),
		metrics:   m,
		templates: tmpl,
		static:    static,
	}, nil
}

// Handler returns the routes wrapped in the middleware chain:
// request ID and access log, then timing, then security headers with CSP.
func (s *Server) Handler() http.Handler {
	cspConfig := server.WebUICSPConfig(s.cfg.TLS.Enabled)
	return logging.CombinedMiddleware(server.TimingMiddleware(server.SecurityHeadersWithCSP(cspConfig, s.routes())))
}

// Start validates cfg and serves the web UI until ctx is done.
func Start(ctx context.Context, cfg Config, engine *search.Engine, m *metrics.Metrics) error {
	if err := cfg.TLS.Validate(); err != nil {
		return err
	}

	s, err := New(cfg, engine, m)
	if err != nil {
		return err
	}

	protocol := "http"
	if cfg.TLS.Enabled {
		protocol = "https"
		logging.Info("TLS enabled", "cert_file", cfg.TLS.CertFile)
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "consider using TLS or reverse proxy for production")
	}
	logging.ServerStartup("web_ui", protocol, cfg.Port,
		"data_dir", server.AbsPath(cfg.DataDir))

	srv := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Port), s.Handler())
	return server.ListenAndServe(ctx, srv, cfg.TLS)
}

// cachedTemplateFuncs is initialized once at package load time.
var cachedTemplateFuncs = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"truncate": func(s string, n int) string {
		t := search.Truncate(s, n)
		if t == s {
			return s
		}
		return t + "..."
	},
	"kindLabel": kindLabel,
	// dict creates a map from key-value pairs for passing to templates.
	// Usage: {{template "name" dict "key1" val1 "key2" val2}}
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
}

// templateFuncs returns the cached template helper functions.
func templateFuncs() template.FuncMap {
	return cachedTemplateFuncs
}

// kindLabel is the badge text shown next to a search result.
func kindLabel(k search.Kind) string {
	switch k {
	case search.KindCategory:
		return "Category"
	case search.KindScripture:
		return "Scripture"
	case search.KindVerse:
		return "Verse"
	}
	panic(fmt.Sprintf("web: unknown result kind %d", k))
}

// routes configures all HTTP routes.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Browsing
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /{category}", s.handleCategory)
	mux.HandleFunc("GET /scripture/{slug}", s.handleScripture)
	mux.HandleFunc("GET /scripture/{slug}/verse/{n}", s.handleVerse)

	// Search
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /api/search", s.handleAPISearch)

	mux.HandleFunc("GET /static/{file}", s.handleStatic)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return mux
}
