package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsekit/pulse-go/internal/application/services"
	"github.com/pulsekit/pulse-go/internal/domain/events"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/logging"
	"github.com/pulsekit/pulse-go/internal/infrastructure/observability/performance"
)

// EventHandlers contains the event capture HTTP handlers
type EventHandlers struct {
	captureService *services.CaptureService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewEventHandlers creates event handlers with injected dependencies
func NewEventHandlers(captureService *services.CaptureService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		captureService: captureService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

type trackEventRequest struct {
	Name      string         `json:"eventName" binding:"required"`
	SessionID string         `json:"sessionId"`
	Payload   map[string]any `json:"data"`
	Context   events.Context `json:"context"`
}

// PostEvent handles POST /api/v1/events - tracks one behavioral event
func (h *EventHandlers) PostEvent(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_event_request")
	defer marker.Complete()

	var req trackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader("X-Pulse-Session-ID")
	}
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	if req.Context.UserAgent == "" {
		req.Context.UserAgent = c.GetHeader("User-Agent")
	}
	if req.Context.Referrer == "" {
		req.Context.Referrer = c.GetHeader("Referer")
	}

	result, err := h.captureService.TrackEvent(req.Name, req.Payload, req.Context, sessionID)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)

	status := http.StatusAccepted
	if !result.Queued {
		// Sampled-out or dropped; still a successful capture call.
		status = http.StatusOK
	}
	c.JSON(status, result)
}
