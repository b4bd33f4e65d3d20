// Package cleanup provides the background cache hygiene worker
package cleanup

import (
	"context"
	"time"

	"github.com/pulsekit/pulse-go/internal/infrastructure/caching/manager"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// Worker handles background cache cleanup operations. TTL checks on read
// remain authoritative; the worker only reclaims memory.
type Worker struct {
	cache  *manager.Manager
	config *Config
	logger *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(cache *manager.Manager, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		cache:  cache,
		config: config,
		logger: logger,
	}
}

// Start begins the cleanup worker routine, using the configured interval.
// It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started", "interval", w.config.CleanupInterval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.performCleanup()
		}
	}
}

// performCleanup sweeps expired entries from all cache stores
func (w *Worker) performCleanup() {
	start := time.Now()

	removed := w.cache.PurgeExpired()

	duration := time.Since(start)
	if removed > 0 {
		w.logger.Cache().Info("Cache cleanup finished", "removed", removed, "duration", duration)
	} else if w.config.VerboseReporting {
		w.logger.Cache().Debug("Cache cleanup completed, no expired items", "duration", duration)
	}
}
