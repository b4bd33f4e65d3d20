package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
)

// ReengagementHandlers contains the admin-triggered re-engagement HTTP handlers
type ReengagementHandlers struct {
	reengagementService *services.ReengagementService
	logger              *logging.ChanneledLogger
}

// NewReengagementHandlers creates re-engagement handlers with injected dependencies
func NewReengagementHandlers(reengagementService *services.ReengagementService, logger *logging.ChanneledLogger) *ReengagementHandlers {
	return &ReengagementHandlers{
		reengagementService: reengagementService,
		logger:              logger,
	}
}

// PostReengagementCheck handles POST /api/v1/admin/reengagement - evaluates one
// user and emails them when they are dormant with a declining trend
func (h *ReengagementHandlers) PostReengagementCheck(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		Email  string `json:"email" binding:"required"`
		Name   string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sent := h.reengagementService.CheckAndNotify(req.UserID, req.Email, req.Name)
	c.JSON(http.StatusOK, gin.H{"userId": req.UserID, "sent": sent})
}

// GetReengagementCandidates handles GET /api/v1/admin/reengagement/candidates -
// sweeps the active population for dormant users with a declining trend
func (h *ReengagementHandlers) GetReengagementCandidates(c *gin.Context) {
	candidates, err := h.reengagementService.FindCandidates()
	if err != nil {
		h.logger.System().Error("Re-engagement sweep failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sweep for candidates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "count": len(candidates)})
}
