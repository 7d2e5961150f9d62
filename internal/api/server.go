// Package api exposes the assistant over HTTP: an inbound-email webhook
// plus thread inspection endpoints for operators.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/freightdesk/internal/config"
	"github.com/ignite/freightdesk/internal/pkg/logger"
	"github.com/ignite/freightdesk/internal/queue"
	"github.com/ignite/freightdesk/internal/threadstore"
)

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	cfg    config.ServerConfig
	server *http.Server
}

// NewServer builds the API server.
func NewServer(cfg config.ServerConfig, store threadstore.Store, processor queue.Processor, q *queue.Queue, lockDB *sql.DB) *Server {
	handlers := NewHandlers(store, processor, q, lockDB)
	router := SetupRoutes(handlers, cfg.AllowedOrigins)

	return &Server{
		cfg: cfg,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logger.Info("api: listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
