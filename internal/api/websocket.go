package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/search"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// WebSocketConfig holds live search socket limits.
type WebSocketConfig struct {
	// MaxMessageRate is the sustained number of queries per second per
	// connection; bursts of twice that are allowed.
	MaxMessageRate int

	// MaxMessageSize is the largest accepted client frame in bytes.
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the limits used when none are configured.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		MaxMessageRate: 10,
		MaxMessageSize: 4096,
	}
}

// SearchRequest is a client frame on /ws/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchReply answers one SearchRequest. Query echoes the request so clients
// can discard replies to superseded queries.
type SearchReply struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
	Total   int             `json:"total"`
	Error   string          `json:"error,omitempty"`
}

// liveSearch serves search-as-you-type over a websocket: one reply frame per
// request frame, in order.
type liveSearch struct {
	engine   *search.Engine
	cfg      WebSocketConfig
	upgrader websocket.Upgrader
	clients  atomic.Int64
}

func newLiveSearch(engine *search.Engine, cfg WebSocketConfig, allowedOrigins []string) *liveSearch {
	if cfg.MaxMessageRate <= 0 {
		cfg.MaxMessageRate = DefaultWebSocketConfig().MaxMessageRate
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = DefaultWebSocketConfig().MaxMessageSize
	}
	return &liveSearch{
		engine: engine,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// checkOrigin accepts every origin when none are configured, matching the
// CORS policy of the HTTP endpoints.
func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if isOriginAllowed(origin, allowed) {
			return true
		}
		logging.SecurityEvent("websocket_origin_rejected", "api", "origin", origin)
		return false
	}
}

// isOriginAllowed supports exact matches, "*" and "*.example.com" patterns.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		switch {
		case allowed == "*", origin == allowed:
			return true
		case strings.HasPrefix(allowed, "*."):
			if strings.HasSuffix(origin, allowed[1:]) {
				return true
			}
		}
	}
	return false
}

func (ls *liveSearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ls.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response.
		logging.WarnContext(r.Context(), "websocket_upgrade_failed", "error", err.Error())
		return
	}
	conn.SetReadLimit(ls.cfg.MaxMessageSize)

	logging.WebSocketEvent("client_connected", int(ls.clients.Add(1)),
		"remote_addr", getClientIP(r))
	defer func() {
		logging.WebSocketEvent("client_disconnected", int(ls.clients.Add(-1)))
	}()

	// The request context ends with the handshake; keep its values only.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	send := make(chan []byte, sendBuffer)
	done := make(chan struct{})
	go writePump(conn, send, done)

	ls.readPump(ctx, conn, send, done)
	close(send)
	<-done
}

// readPump answers frames until the client goes away, breaks the rate limit
// or the writer fails.
func (ls *liveSearch) readPump(ctx context.Context, conn *websocket.Conn, send chan<- []byte, done <-chan struct{}) {
	rate := float64(ls.cfg.MaxMessageRate)
	bucket := newTokenBucket(rate*2, rate)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.DebugContext(ctx, "websocket_closed", "error", err.Error())
			}
			return
		}

		if !bucket.allow() {
			logging.SecurityEvent("websocket_rate_limited", "api")
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Rate limit exceeded"),
				time.Now().Add(writeWait))
			return
		}

		reply, err := json.Marshal(ls.answer(ctx, data))
		if err != nil {
			logging.ErrorContext(ctx, "websocket_encode_error", "error", err.Error())
			return
		}
		select {
		case send <- reply:
		case <-done:
			return
		}
	}
}

func (ls *liveSearch) answer(ctx context.Context, data []byte) SearchReply {
	var req SearchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return SearchReply{Results: []search.Result{}, Error: "Invalid request"}
	}

	resp, err := ls.engine.Run(ctx, req.Query)
	if err != nil {
		logging.ErrorContext(ctx, "search_error", "error", err.Error())
		return SearchReply{Query: req.Query, Results: []search.Result{}, Error: "Search failed"}
	}
	return SearchReply{Query: req.Query, Results: resp.Results, Total: resp.Total}
}

// writePump owns all data writes to conn. It closes done and the connection
// when send is closed or a write fails.
func writePump(conn *websocket.Conn, send <-chan []byte, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	for {
		select {
		case message, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
