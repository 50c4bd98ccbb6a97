package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"user-crud-service/cmd/api/di"
	ginrouter "user-crud-service/internal/adapter/gin/router"
	"user-crud-service/internal/config"
)

// Server wraps the HTTP server serving the Gin router.
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance with all routes and middleware wired.
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	router := ginrouter.SetupRouter(c.UserHandler, c.SystemHandler, ginrouter.Options{
		Development: cfg.App.IsDevelopment(),
		EnableCORS:  cfg.App.CORSEnabled,
		RateLimiter: c.RateLimiter,
	}, l)

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP: &http.Server{
			Addr:              net.JoinHostPort("", cfg.App.HTTPPort),
			Handler:           router,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))

	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}
