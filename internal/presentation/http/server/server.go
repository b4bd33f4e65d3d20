// Package server provides the HTTP server wiring
package server

import (
	"context"
	"net/http"

	"github.com/pulsekit/pulse-go/internal/application/container"
	"github.com/pulsekit/pulse-go/internal/presentation/http/routes"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// Server wraps the HTTP server with graceful shutdown support
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New creates a configured HTTP server
func New(port string, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		container: container,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
