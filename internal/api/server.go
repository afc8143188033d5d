// Package api provides the Śrīkoṣa REST API server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/srikosa/srikosa/internal/catalog"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/metrics"
	"github.com/srikosa/srikosa/internal/search"
	"github.com/srikosa/srikosa/internal/server"
)

// Server serves the JSON API and the live search socket.
type Server struct {
	cfg         Config
	engine      *search.Engine
	store       catalog.Store
	metrics     *metrics.Metrics
	live        *liveSearch
	rateLimiter *RateLimiter
	started     time.Time
}

// New validates cfg and returns a Server over engine and its store.
// Close releases the rate limiter.
func New(cfg Config, engine *search.Engine, m *metrics.Metrics) (*Server, error) {
	if err := cfg.TLS.Validate(); err != nil {
		return nil, fmt.Errorf("invalid TLS config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		store:   engine.Store(),
		metrics: m,
		live:    newLiveSearch(engine, cfg.WebSocket, cfg.AllowedOrigins),
		started: time.Now(),
	}
	if cfg.RateLimitRequests > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = DefaultBurstSize
		}
		s.rateLimiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         burst,
		})
	}
	return s, nil
}

// Close stops background work started by New.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Close()
	}
}

// Handler returns the routes wrapped in the middleware chain, outermost
// first: request ID and access log, CORS, rate limiting, timing,
// security headers.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = server.SecurityHeadersWithCSP(server.APICSPConfig(), s.routes())

	// Live search connections are long-lived; timing them is noise.
	timed := server.TimingMiddleware(handler)
	untimed := handler
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			untimed.ServeHTTP(w, r)
			return
		}
		timed.ServeHTTP(w, r)
	})

	if s.rateLimiter != nil {
		handler = s.rateLimiter.Middleware(handler)
	}
	handler = server.CORSMiddlewareWithConfig(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	return logging.CombinedMiddleware(handler)
}

// routes configures all HTTP routes.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("GET /categories/{slug}", s.handleCategory)
	mux.HandleFunc("GET /scriptures", s.handleScriptures)
	mux.HandleFunc("GET /scriptures/{slug}", s.handleScripture)
	mux.HandleFunc("GET /scriptures/{slug}/verses/{n}", s.handleVerse)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.Handle("GET /ws/search", s.live)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// Start serves the API until ctx is done.
func Start(ctx context.Context, cfg Config, engine *search.Engine, m *metrics.Metrics) error {
	s, err := New(cfg, engine, m)
	if err != nil {
		return err
	}
	defer s.Close()

	protocol, wsProtocol := "http", "ws"
	if cfg.TLS.Enabled {
		protocol, wsProtocol = "https", "wss"
		logging.Info("TLS enabled", "cert_file", cfg.TLS.CertFile)
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "consider using TLS or reverse proxy for production")
	}

	if s.rateLimiter != nil {
		logging.Info("rate limiting enabled",
			"requests_per_minute", s.rateLimiter.config.RequestsPerMinute,
			"burst_size", s.rateLimiter.config.BurstSize)
	}
	if len(cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(cfg.AllowedOrigins))
	} else {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "permissive",
			"note", "allowing all origins (*) - consider restricting for production")
	}
	logging.ServerStartup("rest_api", protocol, cfg.Port,
		"websocket_protocol", wsProtocol,
		"data_dir", server.AbsPath(cfg.DataDir))

	srv := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Port), s.Handler())
	return server.ListenAndServe(ctx, srv, cfg.TLS)
}
