package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/market-monitor/internal/feed"
	"github.com/rickgao/market-monitor/internal/version"
)

// SymbolSource lists the symbols a dashboard can subscribe to.
type SymbolSource interface {
	GetSymbols(ctx context.Context) ([]string, error)
}

// Relay serves WebSocket dashboards backed by a feed Registry.
type Relay struct {
	cfg     Config
	reg     *feed.Registry
	symbols SymbolSource
	logger  *slog.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	closed   bool
}

// New creates a Relay.
func New(cfg Config, reg *feed.Registry, symbols SymbolSource, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.MinPollInterval <= 0 {
		cfg.MinPollInterval = def.MinPollInterval
	}
	if cfg.MaxPollInterval < cfg.MinPollInterval {
		cfg.MaxPollInterval = max(def.MaxPollInterval, cfg.MinPollInterval)
	}

	return &Relay{
		cfg:     cfg,
		reg:     reg,
		symbols: symbols,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: make(map[uuid.UUID]*session),
	}
}

// Handler returns the HTTP handler for /ws, /health and /debug/endpoints.
func (rl *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", rl.serveWS)
	mux.HandleFunc("/health", rl.serveHealth)
	mux.HandleFunc("/debug/endpoints", rl.serveEndpoints)
	return mux
}

// Sessions returns the number of open dashboard connections.
func (rl *Relay) Sessions() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.sessions)
}

// Close disconnects every session and releases its subscriptions.
func (rl *Relay) Close() {
	rl.mu.Lock()
	rl.closed = true
	sessions := make([]*session, 0, len(rl.sessions))
	for _, s := range rl.sessions {
		sessions = append(sessions, s)
	}
	rl.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	rl.logger.Info("relay closed", "sessions", len(sessions))
}

func (rl *Relay) serveWS(w http.ResponseWriter, r *http.Request) {
	rl.mu.Lock()
	closed := rl.closed
	rl.mu.Unlock()
	if closed {
		http.Error(w, "relay closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rl.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := newSession(rl, conn)
	if !rl.addSession(s) {
		// Close ran while the connection was upgrading.
		conn.Close()
		return
	}

	rl.logger.Info("dashboard connected", "session", s.id, "remote", r.RemoteAddr)

	go s.writePump()
	s.start(r.Context())
	go s.readPump()
}

// addSession registers s unless the relay has been closed. The check and the
// insert share one critical section with Close.
func (rl *Relay) addSession(s *session) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.closed {
		return false
	}
	rl.sessions[s.id] = s
	return true
}

func (rl *Relay) removeSession(s *session) {
	rl.mu.Lock()
	delete(rl.sessions, s.id)
	rl.mu.Unlock()
}

func (rl *Relay) serveHealth(w http.ResponseWriter, r *http.Request) {
	stats := rl.reg.Stats()

	health := struct {
		Status          string   `json:"status"`
		Version         string   `json:"version"`
		Sessions        int      `json:"sessions"`
		ActiveEndpoints []string `json:"active_endpoints"`
		PollIntervalMS  int64    `json:"poll_interval_ms"`
		Polls           int64    `json:"polls"`
		Failures        int64    `json:"failures"`
	}{
		Status:          "healthy",
		Version:         version.String(),
		Sessions:        rl.Sessions(),
		ActiveEndpoints: rl.reg.ActiveEndpoints(),
		PollIntervalMS:  rl.reg.PollInterval().Milliseconds(),
		Polls:           stats.Polls,
		Failures:        stats.Failures,
	}
	if stats.Polls > 0 && stats.Failures == stats.Polls {
		health.Status = "degraded"
	}

	rl.writeJSON(w, health)
}

func (rl *Relay) serveEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints := rl.reg.ActiveEndpoints()
	counts := make(map[string]int, len(endpoints))
	for _, ep := range endpoints {
		counts[ep] = rl.reg.SubscriberCount(ep)
	}

	rl.writeJSON(w, map[string]interface{}{
		"count":     len(endpoints),
		"endpoints": counts,
	})
}

func (rl *Relay) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rl.logger.Debug("failed to write response", "error", err)
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
