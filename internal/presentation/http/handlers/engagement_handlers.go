package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
)

// EngagementHandlers contains the engagement reporting HTTP handlers
type EngagementHandlers struct {
	engagementService *services.EngagementService
	trendService      *services.TrendService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewEngagementHandlers creates engagement handlers with injected dependencies
func NewEngagementHandlers(engagementService *services.EngagementService, trendService *services.TrendService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EngagementHandlers {
	return &EngagementHandlers{
		engagementService: engagementService,
		trendService:      trendService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// GetEngagement handles GET /api/v1/users/:id/engagement
func (h *EngagementHandlers) GetEngagement(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_engagement_request")
	defer marker.Complete()

	score, err := h.engagementService.ComputeScore(c.Param("id"))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, score)
}

// GetSegment handles GET /api/v1/users/:id/segment
func (h *EngagementHandlers) GetSegment(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_segment_request")
	defer marker.Complete()

	segment, err := h.engagementService.ClassifySegment(c.Param("id"))
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, segment)
}

// GetTrends handles GET /api/v1/users/:id/trends
func (h *EngagementHandlers) GetTrends(c *gin.Context) {
	c.JSON(http.StatusOK, h.trendService.Analyze(c.Param("id")))
}

// GetBreakdown handles GET /api/v1/users/:id/breakdown
func (h *EngagementHandlers) GetBreakdown(c *gin.Context) {
	breakdown, err := h.engagementService.Breakdown(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// GetComparison handles GET /api/v1/users/:id/comparison
func (h *EngagementHandlers) GetComparison(c *gin.Context) {
	comparison, err := h.engagementService.CompareToAverage(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// GetPatterns handles GET /api/v1/users/:id/patterns
func (h *EngagementHandlers) GetPatterns(c *gin.Context) {
	patterns, err := h.engagementService.AnalyzePatterns(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, patterns)
}

// GetLifetimeValue handles GET /api/v1/users/:id/ltv
func (h *EngagementHandlers) GetLifetimeValue(c *gin.Context) {
	ltv, err := h.engagementService.PredictLifetimeValue(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ltv)
}
