// Package api provides the HTTP surface for TaskBell.
//
// It exposes the webhook endpoint the chat platform posts updates to, plus a
// health probe. Transport authentication is left to the deployment (path
// secret or reverse proxy), not handled here.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskbell/taskbell/internal/bot"
	"github.com/taskbell/taskbell/internal/models"
)

// DefaultAddr is the default listen address.
const DefaultAddr = ":8080"

const shutdownTimeout = 10 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server serves the webhook and health endpoints.
type Server struct {
	handler *bot.Handler
	srv     *http.Server
}

// NewServer creates the HTTP server around a bot handler.
func NewServer(h *bot.Handler, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{handler: h}
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhookHandler)
	mux.HandleFunc("/health", s.healthHandler)
	s.srv = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	slog.Info("API server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var upd models.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		slog.Warn("Webhook received malformed update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.handler.HandleUpdate(r.Context(), upd); err != nil {
		slog.Error("Failed to handle update", "error", err, "update_id", upd.UpdateID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
