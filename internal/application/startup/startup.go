// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/container"
	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/cleanup"
	"github.com/pulsekit/pulse-go/internal/presentation/http/server"
	"github.com/pulsekit/pulse-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `

  ▄▄▄▄  ▄  ▄ ▄▄   ▄▄▄ ▄▄▄▄
  ██▄▄█ ██ █ ██   ██▄ ██▄▄
  ██    ██▄█ ██▄▄ ▄▄█ ██▄▄
` + "\033[97m" + `
  behavioral telemetry & personalization engine
` + "\033[0m")

	// Step 1: Create dependency injection container
	log.Println("Initializing dependency injection container...")
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("container initialization failed: %w", err)
	}
	log.Println("✓ Dependency injection container created with singleton services.")

	logger := appContainer.Logger
	logger.Startup().Info("Container initialization complete - switching to channeled logging")

	// Step 2: Start background cleanup worker
	logger.Startup().Info("Starting background cleanup worker...")
	cleanupWorker := cleanup.NewWorker(appContainer.CacheManager, cleanup.NewConfigFromEnv(), logger)
	go cleanupWorker.Start(ctx)

	// Step 3: Start periodic delivery flush loop
	logger.Startup().Info("Starting delivery flush loop...", "interval", config.FlushInterval)
	go appContainer.DeliveryService.StartFlushLoop(ctx)

	// Step 4: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	startServerTime := time.Now()

	httpServer := server.New(config.Port, appContainer)

	logger.Startup().Info("HTTP server initialized", "port", config.Port, "duration", time.Since(startServerTime))

	// Step 5: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	// Flush whatever is still queued before the process exits
	logger.Shutdown().Info("Draining delivery queue...")
	if appContainer.DeliveryService.Drain(shutdownCtx) {
		logger.Shutdown().Info("Delivery queue drained")
	} else {
		logger.Shutdown().Warn("Delivery queue not fully drained",
			"remaining", appContainer.DeliveryService.QueueSize())
	}

	logger.Shutdown().Info("Closing container resources...")
	if err := appContainer.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	log.Printf("Application shutdown complete (uptime %s, shutdown %s)",
		time.Since(start), time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
