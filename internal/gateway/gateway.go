// Package gateway exposes the HTTP API the chat platform bridge calls.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/molubot/molubot/internal/bus"
	"github.com/molubot/molubot/internal/config"
	"github.com/molubot/molubot/internal/router"
	"github.com/molubot/molubot/internal/stats"
)

// Gateway serves the message endpoint and read-only stats queries.
// Message handling is synchronous; the HTTP caller needs the response.
type Gateway struct {
	cfg    config.GatewayConfig
	router *router.Router
	stats  *stats.Ledger
	server *http.Server
}

func New(cfg config.GatewayConfig, r *router.Router, statsLedger *stats.Ledger) *Gateway {
	return &Gateway{cfg: cfg, router: r, stats: statsLedger}
}

// Handler builds the HTTP routing table.
func (g *Gateway) Handler() http.Handler {
	m := mux.NewRouter()
	m.HandleFunc("/messages", g.handleMessage).Methods("POST")
	m.HandleFunc("/chat_stats/{room}", g.handleRoomStats).Methods("GET")
	m.HandleFunc("/chat_stats/{room}/{userId}", g.handleUserStats).Methods("GET")
	m.HandleFunc("/healthz", g.handleHealth).Methods("GET")
	return m
}

type messageRequest struct {
	UserID  string `json:"user_id"`
	Room    string `json:"room"`
	Message string `json:"message"`
}

type messageResponse struct {
	Response *string `json:"response"`
}

func (g *Gateway) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Room == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "user_id, room and message are required")
		return
	}

	resp := g.router.Handle(r.Context(), &bus.InboundMessage{
		Channel:   "http",
		SenderID:  req.UserID,
		Room:      req.Room,
		TraceID:   uuid.NewString(),
		Content:   req.Message,
		Timestamp: time.Now(),
	})
	writeJSON(w, http.StatusOK, messageResponse{Response: resp})
}

func (g *Gateway) handleRoomStats(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	summary, err := g.stats.RoomSummary(room)
	if err != nil {
		writeError(w, http.StatusNotFound, "no stats for room")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (g *Gateway) handleUserStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	summary, err := g.stats.UserSummary(vars["room"], vars["userId"])
	if err != nil {
		writeError(w, http.StatusNotFound, "no stats for user")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Start runs the HTTP server until the context is cancelled.
func (g *Gateway) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", g.cfg.Host, g.cfg.Port)
	g.server = &http.Server{
		Addr:         addr,
		Handler:      g.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", addr)
		errCh <- g.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return g.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
