package api

import "github.com/srikosa/srikosa/internal/server"

// DefaultBurstSize is used when rate limiting is enabled without a burst size.
const DefaultBurstSize = 10

// Config holds server configuration.
type Config struct {
	Port              int
	Version           string          // Reported by / and /health
	DataDir           string          // Reported at startup only
	RateLimitRequests int             // Requests per minute (0 = disabled)
	RateLimitBurst    int             // Burst size
	TLS               server.TLSConfig
	AllowedOrigins    []string        // CORS and websocket origins (empty = allow all)
	WebSocket         WebSocketConfig // Live search socket limits
}
