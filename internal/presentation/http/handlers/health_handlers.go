package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
	"github.com/pulsekit/pulse-go/internal/infrastructure/persistence/database"
)

// HealthHandlers contains the service health HTTP handlers
type HealthHandlers struct {
	db          *database.DB
	perfTracker *performance.Tracker
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(db *database.DB, perfTracker *performance.Tracker) *HealthHandlers {
	return &HealthHandlers{db: db, perfTracker: perfTracker}
}

// GetHealth handles GET /health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	snapshot := h.perfTracker.TakeSnapshot()

	c.JSON(status, gin.H{
		"status":   dbStatus,
		"database": dbStatus,
		"health":   snapshot.OverallHealth,
	})
}
